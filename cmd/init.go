package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/config"
	"blenderctl/internal/ui"

	"github.com/spf13/cobra"
)

var initDefaults bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize blenderctl configuration",
	Long: `Creates the configuration directory and a config file at ~/.blenderctl/config.yaml

By default this walks you through the library folder, scrape sources and
update behavior interactively. Use --defaults to skip the prompts and
write a fully commented config with default values instead.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "Write a commented config with default values, without prompting")
}

func defaultLibraryFolder() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "blender-builds"
	}
	return filepath.Join(home, "blender-builds")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Get config path (respects BLENDERCTL_CONFIG environment variable)
	configPath, err := config.Path()
	if err != nil {
		return printError("failed to get config path", err)
	}

	// Ensure config directory exists
	if err := config.EnsureConfigDir(); err != nil {
		return printError("failed to create config directory", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists at: %s\n", configPath)
		fmt.Println("To check it for deprecated keys, run: blenderctl config check")
		fmt.Println("To reinitialize, delete the existing file and run this command again.")
		return nil
	}

	if initDefaults {
		return createDefaultConfig(configPath)
	}
	return createInteractiveConfig(configPath)
}

// createDefaultConfig writes the commented example config as-is
func createDefaultConfig(configPath string) error {
	exampleData, err := config.GenerateExampleConfig(defaultLibraryFolder())
	if err != nil {
		return printError("failed to generate example config", err)
	}

	if err := os.WriteFile(configPath, exampleData, 0600); err != nil {
		return printError("failed to create config file", err)
	}

	printSuccessMessage(configPath)
	return nil
}

// createInteractiveConfig builds a config from the setup prompts
func createInteractiveConfig(configPath string) error {
	folder, err := ui.PromptLibraryFolder(defaultLibraryFolder())
	if err != nil {
		return printError("setup cancelled", err)
	}

	sources, err := ui.PromptScrapeSources()
	if err != nil {
		return printError("setup cancelled", err)
	}

	behavior, err := ui.PromptUpdateBehavior()
	if err != nil {
		return printError("setup cancelled", err)
	}

	cfg := config.Default()
	cfg.Library.Folder = folder
	cfg.Updates.Behavior = behavior

	cfg.Scrape.Stable = false
	cfg.Scrape.Daily = false
	for _, source := range sources {
		switch source {
		case buildinfo.BranchStable:
			cfg.Scrape.Stable = true
		case buildinfo.BranchDaily:
			cfg.Scrape.Daily = true
		case buildinfo.BranchExperimental:
			cfg.Scrape.Experimental = true
		case buildinfo.BranchPatch:
			cfg.Scrape.Patch = true
		case buildinfo.BranchBforartists:
			cfg.Scrape.Bforartists = true
		}
	}

	if err := os.MkdirAll(folder, 0750); err != nil {
		return printError("failed to create library folder", err)
	}
	if err := cfg.Save(); err != nil {
		return printError("failed to write config file", err)
	}

	printSuccessMessage(configPath)
	return nil
}

// printSuccessMessage displays the success message after config creation
func printSuccessMessage(configPath string) {
	fmt.Println("✓ Configuration initialized successfully!")
	fmt.Printf("\nConfig file created at: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Run: blenderctl fetch      (download the remote build listings)")
	fmt.Println("2. Run: blenderctl list       (see what is available and installed)")
	fmt.Println("3. Run: blenderctl updates    (check installed builds for updates)")
	fmt.Println("\nSee 'blenderctl config example' for all configuration options.")
}

// printError prints an error message and returns nil (for cobra command compatibility)
func printError(message string, err error) error {
	fmt.Printf("%s: %v\n", message, err)
	return nil
}
