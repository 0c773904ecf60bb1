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

	"blenderctl/internal/buildinfo"
)

const bfaReleasesURL = "https://api.github.com/repos/Bforartists/Bforartists/releases"

// ghRelease represents a GitHub release
type ghRelease struct {
	TagName     string    `json:"tag_name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []ghAsset `json:"assets"`
}

// ghAsset represents a release asset
type ghAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Bforartists scrapes the fork's GitHub releases.
type Bforartists struct {
	baseURL    string
	httpClient *http.Client
}

func NewBforartists() *Bforartists {
	return &Bforartists{
		baseURL:    bfaReleasesURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (s *Bforartists) Branch() string { return buildinfo.BranchBforartists }

func (s *Bforartists) Scrape(ctx context.Context) ([]RawBuild, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, string(body))
	}

	var releases []ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var out []RawBuild
	for _, release := range releases {
		if release.Draft || release.Prerelease {
			continue
		}
		asset, ok := pickBfaAsset(release.Assets)
		if !ok {
			continue
		}
		out = append(out, RawBuild{
			URL:        asset.BrowserDownloadURL,
			Version:    strings.TrimPrefix(release.TagName, "v"),
			CommitTime: release.PublishedAt.UTC(),
			Branch:     buildinfo.BranchBforartists,
		})
	}
	return out, nil
}

var bfaAssetRE = func() *regexp.Regexp {
	switch runtime.GOOS {
	case "windows":
		return regexp.MustCompile(`(?i)^Bforartists-.+Windows.+zip$`)
	case "darwin":
		return regexp.MustCompile(`(?i)^Bforartists-.+dmg$`)
	default:
		return regexp.MustCompile(`(?i)^Bforartists-.+tar\.xz$`)
	}
}()

func pickBfaAsset(assets []ghAsset) (ghAsset, bool) {
	for _, a := range assets {
		if bfaAssetRE.MatchString(a.Name) {
			return a, true
		}
	}
	return ghAsset{}, false
}
