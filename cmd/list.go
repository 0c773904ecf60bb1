package cmd

import (
	"errors"
	"fmt"
	"os"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/library"
	"blenderctl/internal/search"
	"blenderctl/internal/ui"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	listQuery     string
	listBranches  []string
	listInstalled bool
	listRemote    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed and cached remote builds",
	Long: `Lists builds from the local library and the cached remote listings.

A version query narrows the output. Queries have the form
major.minor.patch[-branch[,branch...]][+hash][@time] where each numeric
part may also be ^ (largest), * (any) or - (smallest):

  blenderctl list -q '4.2.^'          newest patch of the 4.2 series
  blenderctl list -q '^.^.^-daily'    newest daily build
  blenderctl list -q '*.*.*+abc123'   builds with hash abc123

Run 'blenderctl fetch' first to populate the remote listings.` + configHelp,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Version query to filter builds")
	listCmd.Flags().StringSliceVarP(&listBranches, "branch", "b", nil, "Only show these branches")
	listCmd.Flags().BoolVar(&listInstalled, "installed", false, "Only show installed builds")
	listCmd.Flags().BoolVar(&listRemote, "remote", false, "Only show cached remote builds")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := checkConfig()
	if err != nil {
		return err
	}
	if listInstalled && listRemote {
		return fmt.Errorf("--installed and --remote are mutually exclusive")
	}

	query := search.MatchAll()
	if listQuery != "" {
		query, err = search.Parse(listQuery)
		if err != nil {
			return fmt.Errorf("invalid query %q: %w", listQuery, err)
		}
	}
	if len(listBranches) > 0 {
		query = query.WithBranch(listBranches...)
	}

	var local, remote []buildinfo.BuildInfo
	if !listRemote {
		result, err := library.Scan(cmd.Context(), cfg.Library.Folder, library.ExecProber{})
		if err != nil {
			// An absent library folder just means nothing is installed yet
			if !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to scan library: %w", err)
			}
		} else {
			local = result.Builds
		}
	}
	if !listInstalled {
		st, err := openStorage()
		if err != nil {
			return err
		}
		defer st.Close()
		remote, err = st.ListAll()
		if err != nil {
			return fmt.Errorf("failed to read build cache: %w", err)
		}
	}

	rows := append(matchRows(query, local, "installed"), matchRows(query, remote, "remote")...)
	if len(rows) == 0 {
		fmt.Println("No builds match. Run 'blenderctl fetch' to refresh the remote listings.")
		return nil
	}

	fmt.Print(ui.RenderBuildTable(rows))
	return nil
}

// matchRows filters one build list through the query and shapes the
// survivors for display.
func matchRows(query search.Query, builds []buildinfo.BuildInfo, source string) []ui.BuildRow {
	basics := make([]search.BasicBuildInfo, 0, len(builds))
	byKey := make(map[string][]buildinfo.BuildInfo)
	for _, b := range builds {
		basic, err := b.Basic()
		if err != nil {
			log.Debug().Str("version", b.Subversion).Err(err).Msg("Skipping unparsable build")
			continue
		}
		basics = append(basics, basic)
		k := basicKey(basic)
		byKey[k] = append(byKey[k], b)
	}

	var rows []ui.BuildRow
	for _, m := range query.Match(basics) {
		k := basicKey(m)
		candidates := byKey[k]
		if len(candidates) == 0 {
			continue
		}
		b := candidates[0]
		byKey[k] = candidates[1:]
		rows = append(rows, ui.BuildRow{
			Name:       b.DisplayName(),
			Branch:     b.Branch,
			Hash:       b.BuildHash,
			CommitTime: commitTimeLabel(b),
			Source:     source,
			Frozen:     b.IsFrozen,
			Favorite:   b.IsFavorite,
		})
	}
	return rows
}

func basicKey(b search.BasicBuildInfo) string {
	return fmt.Sprintf("%s|%s|%s|%s|%d", b.Branch, b.BuildHash, b.Version.String(), b.Folder, b.CommitTime.Unix())
}

func commitTimeLabel(b buildinfo.BuildInfo) string {
	if b.CommitTime.IsZero() {
		return "unknown"
	}
	return b.CommitTime.UTC().Format("2006-01-02 15:04")
}
