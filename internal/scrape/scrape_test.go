package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/bversion"
)

// pkgName builds an archive file name that passes the platform filter
// on whichever platform the tests run.
func pkgName(version string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("blender-%s-windows.amd64-release.zip", version)
	case "darwin":
		return fmt.Sprintf("blender-%s-macOS.arm64-release.dmg", version)
	default:
		return fmt.Sprintf("blender-%s-linux.x86_64-release.tar.xz", version)
	}
}

func automatedFixture() string {
	arch := normalizeArch(runtime.GOARCH)
	return fmt.Sprintf(`[
		{
			"file_name": %q,
			"url": "https://builder.blender.org/daily/a.tar.xz",
			"version": "4.3.0",
			"hash": "ddc9f92777cd",
			"file_mtime": 1722340800,
			"platform": %q,
			"architecture": %q,
			"patch": null,
			"release_cycle": "alpha",
			"branch": "main"
		},
		{
			"file_name": "%s.sha256",
			"url": "https://builder.blender.org/daily/a.tar.xz.sha256",
			"version": "4.3.0",
			"hash": "ddc9f92777cd",
			"file_mtime": 1722340800,
			"platform": %q,
			"architecture": %q,
			"patch": null,
			"release_cycle": "alpha",
			"branch": "main"
		},
		{
			"file_name": %q,
			"url": "https://builder.blender.org/daily/other-os.bin",
			"version": "4.3.0",
			"hash": "ddc9f92777cd",
			"file_mtime": 1722340800,
			"platform": "plan9",
			"architecture": %q,
			"patch": null,
			"release_cycle": "alpha",
			"branch": "main"
		}
	]`, pkgName("4.3.0-alpha"), runtime.GOOS, arch,
		pkgName("4.3.0-alpha"), runtime.GOOS, arch,
		pkgName("4.3.0-alpha"), arch)
}

func TestAutomatedScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, automatedFixture())
	}))
	defer srv.Close()

	s := NewAutomated("daily")
	s.baseURL = srv.URL

	builds, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("expected 1 build after filtering, got %d: %+v", len(builds), builds)
	}

	b := builds[0]
	if b.Version != "4.3.0-alpha" {
		t.Errorf("version = %q, want 4.3.0-alpha", b.Version)
	}
	if b.Hash != "ddc9f92777cd" || b.Branch != "daily" {
		t.Errorf("unexpected build: %+v", b)
	}
	want := time.Unix(1722340800, 0).UTC()
	if !b.CommitTime.Equal(want) {
		t.Errorf("commit time = %v, want %v", b.CommitTime, want)
	}
}

func TestAutomatedFallbackToAnyArchitecture(t *testing.T) {
	body := fmt.Sprintf(`[{
		"file_name": %q,
		"url": "https://builder.blender.org/daily/a.tar.xz",
		"version": "4.3.0",
		"hash": "abc",
		"file_mtime": 1722340800,
		"platform": %q,
		"architecture": "riscv64",
		"patch": null,
		"release_cycle": "alpha",
		"branch": "main"
	}]`, pkgName("4.3.0-alpha"), runtime.GOOS)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	s := NewAutomated("daily")
	s.baseURL = srv.URL

	builds, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("expected the fallback pass to keep the build, got %d", len(builds))
	}
	if builds[0].Version != "4.3.0-alpha | riscv64" {
		t.Errorf("version = %q", builds[0].Version)
	}
}

func TestAutomatedArchiveBranchName(t *testing.T) {
	s := NewAutomated("daily/archive")
	if s.Branch() != "daily" {
		t.Errorf("branch = %q, want daily", s.Branch())
	}
}

func TestAutomatedScrapeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewAutomated("daily")
	s.baseURL = srv.URL

	if _, err := s.Scrape(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func bfaAssetName() string {
	switch runtime.GOOS {
	case "windows":
		return "Bforartists-5.0.0-Windows-x64.zip"
	case "darwin":
		return "Bforartists-5.0.0.dmg"
	default:
		return "Bforartists-5.0.0-Linux.tar.xz"
	}
}

func TestBforartistsScrape(t *testing.T) {
	body := fmt.Sprintf(`[
		{
			"tag_name": "v5.0.0",
			"draft": false,
			"prerelease": false,
			"published_at": "2024-07-30T12:00:00Z",
			"assets": [
				{"name": "checksums.txt", "browser_download_url": "https://example.com/sums"},
				{"name": %q, "browser_download_url": "https://example.com/bfa"}
			]
		},
		{
			"tag_name": "v5.1.0-rc1",
			"draft": false,
			"prerelease": true,
			"published_at": "2024-08-10T12:00:00Z",
			"assets": [{"name": %q, "browser_download_url": "https://example.com/rc"}]
		}
	]`, bfaAssetName(), bfaAssetName())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	s := NewBforartists()
	s.baseURL = srv.URL

	builds, err := s.Scrape(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("expected 1 build, got %d: %+v", len(builds), builds)
	}
	b := builds[0]
	if b.Version != "5.0.0" || b.Branch != buildinfo.BranchBforartists {
		t.Errorf("unexpected build: %+v", b)
	}
	if b.URL != "https://example.com/bfa" {
		t.Errorf("url = %q", b.URL)
	}
}

type stubScraper struct {
	branch string
	builds []RawBuild
	err    error
}

func (s stubScraper) Branch() string { return s.branch }

func (s stubScraper) Scrape(context.Context) ([]RawBuild, error) {
	return s.builds, s.err
}

func TestCollect(t *testing.T) {
	when := time.Date(2024, 7, 30, 12, 0, 0, 0, time.UTC)
	minStable := bversion.New(3, 0, 0, "", "")

	scrapers := []Scraper{
		stubScraper{branch: "stable", builds: []RawBuild{
			{URL: "https://a", Version: "4.2.1", CommitTime: when, Branch: "stable"},
			{URL: "https://b", Version: "2.93.0", CommitTime: when, Branch: "stable"},
			{URL: "https://c", Version: "not a version", CommitTime: when, Branch: "stable"},
		}},
		stubScraper{branch: "daily", builds: []RawBuild{
			{URL: "https://d", Version: "4.3.0-alpha", Hash: "abc", CommitTime: when, Branch: "daily"},
		}},
		stubScraper{branch: "experimental", err: errors.New("connection refused")},
	}

	builds := Collect(context.Background(), scrapers, minStable)
	if len(builds) != 2 {
		t.Fatalf("expected 2 builds, got %d: %+v", len(builds), builds)
	}

	urls := map[string]bool{}
	for _, b := range builds {
		urls[b.Link] = true
	}
	if !urls["https://a"] || !urls["https://d"] {
		t.Errorf("unexpected builds kept: %v", urls)
	}
}

func TestCollectKeepsOldDailyBuilds(t *testing.T) {
	// The stable floor must not prune other branches.
	when := time.Date(2024, 7, 30, 12, 0, 0, 0, time.UTC)
	scrapers := []Scraper{
		stubScraper{branch: "daily", builds: []RawBuild{
			{URL: "https://old", Version: "2.79.0", CommitTime: when, Branch: "daily"},
		}},
	}

	builds := Collect(context.Background(), scrapers, bversion.New(3, 0, 0, "", ""))
	if len(builds) != 1 {
		t.Fatalf("expected daily build to survive, got %d", len(builds))
	}
}
