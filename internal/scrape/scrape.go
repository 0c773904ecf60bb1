// Package scrape fetches available builds from the remote sources and
// turns them into build records for the matching engine.
package scrape

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/bversion"
)

// RawBuild is one build descriptor as reported by a source, before
// version parsing.
type RawBuild struct {
	URL        string
	Version    string
	Hash       string
	CommitTime time.Time
	Branch     string
}

// Scraper fetches the available builds of one source.
type Scraper interface {
	// Branch names the branch this scraper feeds, for logging.
	Branch() string
	Scrape(ctx context.Context) ([]RawBuild, error)
}

// Collect runs every scraper concurrently and converts the results to
// build records. Descriptors whose version string cannot be parsed are
// logged and dropped, as are stable releases below minStable. A failed
// scraper loses only its own builds.
func Collect(ctx context.Context, scrapers []Scraper, minStable bversion.Version) []buildinfo.BuildInfo {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out []buildinfo.BuildInfo
	)

	for _, s := range scrapers {
		wg.Add(1)
		go func(s Scraper) {
			defer wg.Done()

			raws, err := s.Scrape(ctx)
			if err != nil {
				log.Warn().Err(err).Str("branch", s.Branch()).Msg("Scrape failed")
				return
			}

			builds := make([]buildinfo.BuildInfo, 0, len(raws))
			for _, r := range raws {
				v, err := bversion.Parse(r.Version, true)
				if err != nil {
					log.Warn().
						Str("version", r.Version).
						Str("url", r.URL).
						Msg("Dropping build with unparsable version")
					continue
				}

				b := buildinfo.New(r.URL, r.Version, r.Hash, r.CommitTime, r.Branch)
				if (b.Branch == buildinfo.BranchStable || b.Branch == buildinfo.BranchLTS) && v.LessThan(minStable) {
					continue
				}
				builds = append(builds, b)
			}

			mu.Lock()
			out = append(out, builds...)
			mu.Unlock()

			log.Debug().Str("branch", s.Branch()).Int("builds", len(builds)).Msg("Scrape finished")
		}(s)
	}

	wg.Wait()
	return out
}
