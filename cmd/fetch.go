package cmd

import (
	"fmt"
	"sort"
	"time"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/scrape"
	"blenderctl/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	str2duration "github.com/xhit/go-str2duration/v2"
)

var fetchForce bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Refresh the remote build listings",
	Long: `Scrapes the configured remote sources and caches their build listings.

Which sources are polled is controlled by the scrape section of the
config. Listings are cached locally, so repeated runs inside
scrape.check_interval are skipped unless --force is given.` + configHelp,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "Refresh even if the cache is still fresh")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := checkConfig()
	if err != nil {
		return err
	}

	st, err := openStorage()
	if err != nil {
		return err
	}
	defer st.Close()

	if !fetchForce {
		fresh, age, err := cacheFresh(st, cfg.Scrape.CheckInterval)
		if err != nil {
			return err
		}
		if fresh {
			fmt.Printf("Build cache is %s old, still fresh. Use --force to refresh anyway.\n", age.Round(time.Minute))
			return nil
		}
	}

	minStable, err := cfg.MinimumStableVersion()
	if err != nil {
		return err
	}

	var scrapers []scrape.Scraper
	if cfg.Scrape.Stable {
		scrapers = append(scrapers, scrape.NewStable(minStable))
	}
	if cfg.Scrape.Daily {
		scrapers = append(scrapers, scrape.NewAutomated(buildinfo.BranchDaily))
	}
	if cfg.Scrape.Experimental {
		scrapers = append(scrapers, scrape.NewAutomated(buildinfo.BranchExperimental))
	}
	if cfg.Scrape.Patch {
		scrapers = append(scrapers, scrape.NewAutomated(buildinfo.BranchPatch))
	}
	if cfg.Scrape.Bforartists {
		scrapers = append(scrapers, scrape.NewBforartists())
	}
	if len(scrapers) == 0 {
		return fmt.Errorf("no scrape sources are enabled; enable at least one in the scrape section of the config")
	}

	fmt.Printf("Fetching build listings from %d source(s)...\n", len(scrapers))
	builds := scrape.Collect(cmd.Context(), scrapers, minStable)

	byBranch := make(map[string][]buildinfo.BuildInfo)
	for _, b := range builds {
		byBranch[b.Branch] = append(byBranch[b.Branch], b)
	}

	branches := make([]string, 0, len(byBranch))
	for branch := range byBranch {
		branches = append(branches, branch)
	}
	sort.Strings(branches)

	for _, branch := range branches {
		group := byBranch[branch]
		if err := st.ReplaceBranch(branch, group); err != nil {
			return fmt.Errorf("failed to cache %s builds: %w", branch, err)
		}
		fmt.Printf("  %-14s %d builds\n", branch, len(group))
	}

	if err := st.SetLastFetch(time.Now()); err != nil {
		log.Warn().Err(err).Msg("Failed to record fetch time")
	}

	fmt.Printf("✓ Cached %d builds.\n", len(builds))
	return nil
}

// cacheFresh reports whether the last fetch is younger than the
// configured check interval.
func cacheFresh(st *storage.Storage, checkInterval string) (bool, time.Duration, error) {
	last, err := st.LastFetch()
	if err != nil {
		return false, 0, fmt.Errorf("failed to read fetch time: %w", err)
	}
	if last.IsZero() {
		return false, 0, nil
	}

	interval, err := str2duration.ParseDuration(checkInterval)
	if err != nil {
		log.Debug().Str("interval", checkInterval).Msg("Invalid check interval, using default 12h")
		interval = 12 * time.Hour
	}

	age := time.Since(last)
	return age < interval, age, nil
}
