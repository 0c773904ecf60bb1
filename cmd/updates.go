package cmd

import (
	"fmt"

	"blenderctl/internal/library"
	"blenderctl/internal/update"

	"github.com/spf13/cobra"
)

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Check installed builds for available updates",
	Long: `Matches every installed build against the cached remote listings and
reports which ones have an update available.

What counts as an update is controlled by the updates section of the
config: the behavior (patch, minor or major) bounds how far a version
may jump, and per-branch settings take over when advanced mode is on.
Frozen builds are never offered updates.

Run 'blenderctl fetch' first to refresh the remote listings.` + configHelp,
	RunE: runUpdates,
}

func init() {
	rootCmd.AddCommand(updatesCmd)
}

func runUpdates(cmd *cobra.Command, args []string) error {
	cfg, err := checkConfig()
	if err != nil {
		return err
	}

	policy, err := cfg.UpdatePolicy()
	if err != nil {
		return fmt.Errorf("invalid update settings: %w", err)
	}

	result, err := library.Scan(cmd.Context(), cfg.Library.Folder, library.ExecProber{})
	if err != nil {
		return fmt.Errorf("failed to scan library: %w", err)
	}
	if len(result.Builds) == 0 {
		fmt.Println("No builds installed.")
		return nil
	}

	st, err := openStorage()
	if err != nil {
		return err
	}
	defer st.Close()

	candidates, err := st.ListAll()
	if err != nil {
		return fmt.Errorf("failed to read build cache: %w", err)
	}
	if len(candidates) == 0 {
		fmt.Println("The build cache is empty. Run 'blenderctl fetch' first.")
		return nil
	}

	found := 0
	for _, b := range result.Builds {
		label := fmt.Sprintf("%s (%s)", b.DisplayName(), b.Branch)

		if b.IsFrozen {
			fmt.Printf("  %-40s frozen, skipped\n", label)
			continue
		}
		bp, known := policy.ForBranch(b.Branch)
		if !known || !bp.Show {
			continue
		}

		u := update.FindUpdate(b, result.Builds, candidates, bp.Behavior)
		if u == nil {
			fmt.Printf("  %-40s up to date\n", label)
			continue
		}

		found++
		note := ""
		if update.IsMajorVersionUpdate(b, *u) {
			note = "  (new version series: settings and addons migrate)"
		}
		fmt.Printf("✨ %-40s → %s%s\n", label, u.Subversion, note)
		fmt.Printf("  %-40s   %s\n", "", u.Link)
	}

	if found == 0 {
		fmt.Println("\nEverything is up to date.")
	} else {
		fmt.Printf("\n%d update(s) available.\n", found)
	}
	return nil
}
