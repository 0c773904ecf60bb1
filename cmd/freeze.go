package cmd

import (
	"fmt"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/library"
	"blenderctl/internal/ui"

	"github.com/spf13/cobra"
)

var freezeCmd = &cobra.Command{
	Use:   "freeze",
	Short: "Freeze or unfreeze an installed build",
	Long: `Toggles the frozen flag on an installed build.

Frozen builds are skipped by the update check, which keeps a known-good
install pinned while its branch moves on.` + configHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleBuildFlag(cmd, "Which build do you want to freeze or unfreeze?",
			func(b *buildinfo.BuildInfo) (string, bool) {
				b.IsFrozen = !b.IsFrozen
				return "frozen", b.IsFrozen
			})
	},
}

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Mark or unmark an installed build as a favorite",
	Long: `Toggles the favorite flag on an installed build.

Favorites are starred in listings so your main working build is easy
to spot.` + configHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		return toggleBuildFlag(cmd, "Which build do you want to star or unstar?",
			func(b *buildinfo.BuildInfo) (string, bool) {
				b.IsFavorite = !b.IsFavorite
				return "a favorite", b.IsFavorite
			})
	},
}

func init() {
	rootCmd.AddCommand(freezeCmd)
	rootCmd.AddCommand(favoriteCmd)
}

// toggleBuildFlag prompts for an installed build, flips one of its
// user-settable flags and persists the sidecar.
func toggleBuildFlag(cmd *cobra.Command, message string, toggle func(*buildinfo.BuildInfo) (string, bool)) error {
	cfg, err := checkConfig()
	if err != nil {
		return err
	}

	result, err := library.Scan(cmd.Context(), cfg.Library.Folder, library.ExecProber{})
	if err != nil {
		return fmt.Errorf("failed to scan library: %w", err)
	}
	if len(result.Builds) == 0 {
		fmt.Println("No builds installed.")
		return nil
	}

	build, err := ui.SelectBuild(message, result.Builds)
	if err != nil {
		return err
	}

	label, on := toggle(build)
	if err := build.WriteSidecar(build.Link); err != nil {
		return fmt.Errorf("failed to update build metadata: %w", err)
	}

	state := "no longer"
	if on {
		state = "now"
	}
	fmt.Printf("✓ %s is %s %s.\n", build.DisplayName(), state, label)
	return nil
}
