package cmd

import (
	"fmt"
	"os"

	"blenderctl/internal/config"
	"blenderctl/internal/selfupdate"
	"blenderctl/internal/ui"

	"github.com/spf13/cobra"
)

var upgradeForce bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade blenderctl to the latest version",
	Long: `Download and install the latest version of blenderctl from GitHub releases.

This command will:
1. Check for the latest release (pre-release builds follow their own channel)
2. Download the appropriate binary for your OS/architecture
3. Create a backup of the current binary
4. Replace the current binary with the new version

The upgrade is atomic - if anything fails, the backup is restored and
your current version remains intact.

Release channels:
- If you're on a stable release (e.g., v1.0.0), you'll get stable updates
- If you're on a pre-release (e.g., v1.0.0-alpha.1), you'll get pre-release updates

Note: If blenderctl is installed in a system directory (e.g., /usr/local/bin),
you may need to run this command with sudo.` + configHelp,
	RunE: runUpgrade,
}

func init() {
	rootCmd.AddCommand(upgradeCmd)
	upgradeCmd.Flags().BoolVarP(&upgradeForce, "force", "f", false, "Check even if the last check was recent")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	// Double-check this is an official build (shouldn't be reachable otherwise)
	if !IsOfficialBuild() {
		return fmt.Errorf("upgrade command is only available for official releases built by goreleaser\nBuild info: version=%s, builtBy=%s", version, builtBy)
	}

	fmt.Println("🔍 Checking for updates...")

	// A missing config is fine here; the check interval just falls back
	checkInterval := ""
	if cfg, err := config.Load(); err == nil {
		if cfg.SelfUpdate.Disabled {
			return fmt.Errorf("self-updates are disabled in the config (self_update.disabled)")
		}
		checkInterval = cfg.SelfUpdate.CheckInterval
	}

	checker := selfupdate.NewChecker(githubOwner, githubRepo, config.CacheDir(), checkInterval)

	info, err := checker.Check(version, upgradeForce)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if info == nil {
		fmt.Printf("✓ You are already running the latest version (%s)\n", version)
		return nil
	}

	fmt.Printf("\nNew version available: %s (you have %s)\n", info.LatestVersion, version)
	if info.ReleaseNotes != "" {
		fmt.Printf("\n%s\n", info.ReleaseNotes)
	}

	ok, err := ui.Confirm("Do you want to upgrade now?")
	if err != nil || !ok {
		fmt.Println("Upgrade cancelled.")
		return nil
	}

	backupPath, err := checker.Apply(info)
	if err != nil {
		if backupPath != "" {
			fmt.Printf("\n❌ Upgrade failed: %v\n", err)
			fmt.Printf("\nAttempting rollback...\n")

			if restoreErr := checker.Rollback(backupPath); restoreErr != nil {
				fmt.Printf("❌ Rollback failed: %v\n", restoreErr)
				fmt.Printf("Your backup is saved at: %s\n", backupPath)
				binaryPath, _ := os.Executable()
				fmt.Printf("Please restore it manually: mv %s %s\n", backupPath, binaryPath)
				return fmt.Errorf("upgrade and rollback both failed")
			}

			fmt.Println("✓ Rollback successful. Your original version has been restored.")
		}
		return err
	}

	fmt.Printf("✓ Upgraded to %s. Backup of the old binary: %s\n", info.LatestVersion, backupPath)
	return nil
}
