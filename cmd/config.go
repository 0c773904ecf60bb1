package cmd

import (
	"fmt"
	"os"

	"blenderctl/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  `Commands for managing and viewing blenderctl configuration.`,
}

var configExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Display example configuration",
	Long: `Displays the complete example configuration with all available options.

Use this to:
- See what configuration options are available
- Compare against your existing config to find missing fields
- Copy sections to add to your own config file`,
	RunE: runConfigExample,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long: `Displays your current configuration file.

This shows the raw YAML content of your config file at ~/.blenderctl/config.yaml
(or the path specified by BLENDERCTL_CONFIG environment variable).`,
	RunE: runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the configuration for problems",
	Long: `Validates your configuration file and reports deprecated keys.

Deprecated keys are ignored when the config is loaded, so a config that
still uses them silently falls back to defaults. This command lists the
replacement for each one.`,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configExampleCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigExample(cmd *cobra.Command, args []string) error {
	exampleData, err := config.GenerateExampleConfig(defaultLibraryFolder())
	if err != nil {
		return fmt.Errorf("failed to generate example config: %w", err)
	}

	fmt.Println("# Example blenderctl configuration with all available options:")
	fmt.Println("# Copy relevant sections to your config file at ~/.blenderctl/config.yaml")
	fmt.Println()
	fmt.Print(string(exampleData))

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath, err := config.Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s\nRun 'blenderctl init' to create one", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	fmt.Printf("# Configuration file: %s\n\n", configPath)
	fmt.Print(string(data))

	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	configPath, err := config.Path()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file not found at %s\nRun 'blenderctl init' to create one", configPath)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := config.Parse(data); err != nil {
		return err
	}

	issues, err := config.CheckDeprecated(data)
	if err != nil {
		return fmt.Errorf("failed to check config: %w", err)
	}
	if len(issues) == 0 {
		fmt.Println("✓ Configuration is valid and up to date.")
		return nil
	}

	fmt.Print(config.FormatIssues(issues))
	fmt.Println("The config still loads; deprecated keys are ignored.")
	return nil
}
