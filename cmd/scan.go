package cmd

import (
	"fmt"

	"blenderctl/internal/library"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library folder and refresh build metadata",
	Long: `Walks the library folder and rebuilds the metadata for every install.

Each build directory carries a .blinfo sidecar file. Builds whose
sidecar is missing or from an older file version are re-probed by
running their executable, and the sidecar is rewritten. Directories
that yield no usable metadata are reported as damaged.` + configHelp,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := checkConfig()
	if err != nil {
		return err
	}

	result, err := library.Scan(cmd.Context(), cfg.Library.Folder, library.ExecProber{})
	if err != nil {
		return fmt.Errorf("failed to scan library: %w", err)
	}

	for _, b := range result.Builds {
		fmt.Printf("  %-14s %s\n", b.Branch, b.DisplayName())
	}
	fmt.Printf("✓ Found %d build(s) in %s\n", len(result.Builds), cfg.Library.Folder)

	if len(result.Damaged) > 0 {
		fmt.Printf("\n⚠️  %d damaged build(s):\n", len(result.Damaged))
		for _, d := range result.Damaged {
			fmt.Printf("  %s: %s\n", d.Path, d.Reason)
		}
		fmt.Println("Damaged builds are ignored by the other commands until repaired or removed.")
	}
	return nil
}
