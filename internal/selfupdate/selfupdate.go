// Package selfupdate keeps the launcher binary itself current, checked
// against its GitHub releases at most once per configured interval.
package selfupdate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	str2duration "github.com/xhit/go-str2duration/v2"
)

const stampFile = "selfupdate_check_stamp"

// UpdateInfo describes an available launcher update
type UpdateInfo struct {
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
	ReleaseNotes   string
	DownloadURL    string
	AssetName      string
	IsPreRelease   bool
}

// Checker checks for and installs launcher updates
type Checker struct {
	client        *client
	cacheDir      string
	checkInterval time.Duration
}

// NewChecker creates a checker against owner/repo. checkInterval is a
// duration string like "24h" or "1d"; invalid values fall back to 24h.
func NewChecker(owner, repo, cacheDir, checkInterval string) *Checker {
	interval, err := str2duration.ParseDuration(checkInterval)
	if err != nil {
		log.Debug().Str("interval", checkInterval).Msg("Invalid check interval, using default 24h")
		interval = 24 * time.Hour
	}

	return &Checker{
		client:        newClient(owner, repo),
		cacheDir:      cacheDir,
		checkInterval: interval,
	}
}

// Check returns an available update, nil when up to date or when the
// interval since the last check has not elapsed. force skips the
// interval stamp.
func (c *Checker) Check(currentVersion string, force bool) (*UpdateInfo, error) {
	if !force && !c.stampExpired() {
		log.Debug().Msg("Skipping update check (checked recently)")
		return nil, nil
	}

	current, err := parseReleaseVersion(currentVersion)
	if err != nil {
		log.Debug().Str("version", currentVersion).Msg("Unparsable current version, skipping update check")
		return nil, nil
	}
	if current.String() == "0.0.0-dev" {
		log.Debug().Msg("Development build, skipping update check")
		return nil, nil
	}

	// A launcher running a pre-release keeps following its channel
	channel := current.channel()

	var release *Release
	if channel == "" {
		release, err = c.client.latestRelease()
	} else {
		release, err = c.client.latestPreRelease(channel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest release: %w", err)
	}

	c.touchStamp()

	latest, err := parseReleaseVersion(release.TagName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latest version %s: %w", release.TagName, err)
	}

	if !latest.newerThan(current) {
		log.Debug().
			Str("current", current.String()).
			Str("latest", latest.String()).
			Msg("No update available")
		return nil, nil
	}

	asset, ok := pickAsset(release.Assets)
	if !ok {
		return nil, fmt.Errorf("no binary found for platform %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	return &UpdateInfo{
		CurrentVersion: current.String(),
		LatestVersion:  latest.String(),
		ReleaseURL:     c.client.releaseURL(release.TagName),
		ReleaseNotes:   release.Body,
		DownloadURL:    asset.BrowserDownloadURL,
		AssetName:      asset.Name,
		IsPreRelease:   release.Prerelease,
	}, nil
}

// Apply downloads the new binary and swaps it in atomically, leaving a
// .backup next to the old one. Returns the backup path.
func (c *Checker) Apply(info *UpdateInfo) (string, error) {
	binaryPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get current binary path: %w", err)
	}
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve binary path: %w", err)
	}

	log.Info().Str("path", binaryPath).Msg("Current binary path")

	if err := checkWritePermission(binaryPath); err != nil {
		return "", fmt.Errorf("insufficient permissions to update binary: %w", err)
	}

	tmpFile, err := os.CreateTemp("", "blenderctl-update-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	log.Info().Str("url", info.DownloadURL).Msg("Downloading new version")
	if err := c.client.downloadAsset(info.DownloadURL, tmpFile); err != nil {
		tmpFile.Close()
		return "", fmt.Errorf("failed to download binary: %w", err)
	}
	tmpFile.Close()

	if err := os.Chmod(tmpPath, 0755); err != nil {
		return "", fmt.Errorf("failed to make binary executable: %w", err)
	}

	backupPath := binaryPath + ".backup"
	log.Info().Str("backup", backupPath).Msg("Creating backup")
	if err := copyFile(binaryPath, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	log.Info().Msg("Replacing binary")
	if err := os.Rename(tmpPath, binaryPath); err != nil {
		return backupPath, fmt.Errorf("failed to replace binary: %w", err)
	}

	log.Info().Msg("Update completed successfully")
	return backupPath, nil
}

// Rollback restores the binary from a backup left by Apply
func (c *Checker) Rollback(backupPath string) error {
	binaryPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get binary path: %w", err)
	}
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return fmt.Errorf("failed to resolve binary path: %w", err)
	}

	if err := os.Rename(backupPath, binaryPath); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	return nil
}

func (c *Checker) stampExpired() bool {
	info, err := os.Stat(filepath.Join(c.cacheDir, stampFile))
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > c.checkInterval
}

func (c *Checker) touchStamp() {
	os.MkdirAll(c.cacheDir, 0755)

	f, err := os.OpenFile(filepath.Join(c.cacheDir, stampFile), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to update check stamp")
		return
	}
	f.Close()
}

// pickAsset finds the release binary matching this platform
func pickAsset(assets []Asset) (Asset, bool) {
	arch := runtime.GOARCH
	switch arch {
	case "amd64":
		arch = "x86_64"
	case "386":
		arch = "i386"
	}
	want := fmt.Sprintf("%s_%s", runtime.GOOS, arch)

	for _, asset := range assets {
		if strings.Contains(asset.Name, want) {
			return asset, true
		}
	}
	return Asset{}, false
}

func checkWritePermission(path string) error {
	testFile := filepath.Join(filepath.Dir(path), ".blenderctl_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return err
	}
	f.Close()
	os.Remove(testFile)
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}
