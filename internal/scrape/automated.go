package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"runtime"
	"strings"
	"time"

	"blenderctl/internal/bversion"
)

const (
	automatedURLFormat = "https://builder.blender.org/download/%s/?format=json&v=1"
	defaultTimeout     = 10 * time.Second
)

// automatedEntry is one build in the buildbot's JSON listing
type automatedEntry struct {
	FileName     string  `json:"file_name"`
	URL          string  `json:"url"`
	Version      string  `json:"version"`
	Hash         string  `json:"hash"`
	FileMtime    int64   `json:"file_mtime"`
	Platform     string  `json:"platform"`
	Architecture string  `json:"architecture"`
	Patch        *string `json:"patch"`
	ReleaseCycle *string `json:"release_cycle"`
	Branch       string  `json:"branch"`
}

// Automated scrapes the official buildbot JSON API. It serves the
// daily, experimental and patch branches (optionally their /archive
// variants).
type Automated struct {
	branch     string
	baseURL    string
	httpClient *http.Client
}

// NewAutomated creates a scraper for one buildbot branch
func NewAutomated(branch string) *Automated {
	return &Automated{
		branch:     branch,
		baseURL:    fmt.Sprintf(automatedURLFormat, branch),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (s *Automated) Branch() string {
	// The /archive listings feed the same branch as their live variant
	return strings.ReplaceAll(s.branch, "/archive", "")
}

func (s *Automated) Scrape(ctx context.Context) ([]RawBuild, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("buildbot returned status %d: %s", resp.StatusCode, string(body))
	}

	var entries []automatedEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	branch := s.Branch()

	// Prefer builds for this machine's architecture; fall back to any
	// architecture of the right platform when none exist.
	builds := s.convert(entries, branch, true)
	if len(builds) == 0 {
		builds = s.convert(entries, branch, false)
	}
	return builds, nil
}

func (s *Automated) convert(entries []automatedEntry, branch string, archSpecific bool) []RawBuild {
	var out []RawBuild
	for _, e := range entries {
		if e.Platform != runtime.GOOS {
			continue
		}
		if archSpecific && normalizeArch(e.Architecture) != normalizeArch(runtime.GOARCH) {
			continue
		}
		if !packageFileName(e.FileName) {
			continue
		}
		out = append(out, RawBuild{
			URL:        e.URL,
			Version:    enrichVersion(e, branch, archSpecific),
			Hash:       e.Hash,
			CommitTime: time.Unix(e.FileMtime, 0).UTC(),
			Branch:     branch,
		})
	}
	return out
}

// enrichVersion folds the build variant (release cycle, patch id or
// experimental branch name) into the version's prerelease slot, the
// same shape the sidecar files carry.
func enrichVersion(e automatedEntry, branch string, archSpecific bool) string {
	variant := ""
	switch {
	case branch == "daily" && e.ReleaseCycle != nil:
		variant = *e.ReleaseCycle
	case branch == "experimental" && e.Branch != "":
		variant = e.Branch
	case branch != "daily" && e.Patch != nil:
		variant = *e.Patch
	}
	if !archSpecific {
		variant += " | " + normalizeArch(e.Architecture)
	}
	if variant == "" {
		return e.Version
	}

	v, err := bversion.Parse(e.Version, true)
	if err != nil {
		// Leave it for the collector to log and drop
		return e.Version
	}
	return v.WithPrerelease(variant).String()
}

func normalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "amd64", "x86_64":
		return "x86_64"
	case "arm64", "aarch64":
		return "arm64"
	}
	return strings.ToLower(arch)
}

var packageFileRE = func() *regexp.Regexp {
	switch runtime.GOOS {
	case "windows":
		return regexp.MustCompile(`(?i)blender-.+win.+64.+zip$`)
	case "darwin":
		return regexp.MustCompile(`(?i)blender-.+(macOS|darwin).+dmg$`)
	default:
		return regexp.MustCompile(`(?i)blender-.+lin.+64.+tar`)
	}
}()

// packageFileName reports whether a listing entry is an installable
// archive rather than a checksum or metadata file.
func packageFileName(name string) bool {
	if strings.Contains(strings.ToLower(name), "sha256") {
		return false
	}
	return packageFileRE.MatchString(name)
}
