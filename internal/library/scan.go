// Package library discovers the builds installed under the local
// library folder and keeps their sidecar metadata fresh.
package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog/log"

	"blenderctl/internal/buildinfo"
)

// Prober derives build metadata straight from a build directory's
// executable. It is consulted when a sidecar file is missing, damaged
// or written by an older file version.
type Prober interface {
	Probe(ctx context.Context, dir string) (buildinfo.BuildInfo, error)
}

// DamagedBuild is a build directory that yielded no usable metadata
type DamagedBuild struct {
	Path   string
	Reason string
}

// ScanResult is what a library scan found
type ScanResult struct {
	Builds  []buildinfo.BuildInfo
	Damaged []DamagedBuild
}

// Experimental build folders carry their branch name between '+' and
// the first '.' (e.g. blender-4.3.0+fracture_modifier.abc123)
var experimentalNameRE = regexp.MustCompile(`\+(.+?)\.`)

// Scan walks the library folder, one subfolder per branch, one build
// per directory inside. Build directories without usable metadata are
// reported as damaged instead of failing the whole scan.
func Scan(ctx context.Context, root string, prober Prober) (ScanResult, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ScanResult{}, fmt.Errorf("failed to read library folder: %w", err)
	}

	var res ScanResult
	for _, branchDir := range entries {
		if !branchDir.IsDir() {
			continue
		}
		branchPath := filepath.Join(root, branchDir.Name())

		buildDirs, err := os.ReadDir(branchPath)
		if err != nil {
			res.Damaged = append(res.Damaged, DamagedBuild{Path: branchPath, Reason: err.Error()})
			continue
		}

		for _, bd := range buildDirs {
			if !bd.IsDir() {
				continue
			}
			dir := filepath.Join(branchPath, bd.Name())

			b, err := readBuild(ctx, dir, prober)
			if err != nil {
				log.Warn().Str("path", dir).Err(err).Msg("Damaged build")
				res.Damaged = append(res.Damaged, DamagedBuild{Path: dir, Reason: err.Error()})
				continue
			}
			res.Builds = append(res.Builds, b)
		}
	}

	log.Debug().
		Int("builds", len(res.Builds)).
		Int("damaged", len(res.Damaged)).
		Msg("Library scan finished")
	return res, nil
}

func readBuild(ctx context.Context, dir string, prober Prober) (buildinfo.BuildInfo, error) {
	info, current, err := buildinfo.ReadSidecar(dir)
	if err == nil && current {
		return info, nil
	}

	// The sidecar is missing, unreadable or from an older file
	// version: derive fresh metadata from the executable itself.
	probed, perr := prober.Probe(ctx, dir)
	if perr != nil {
		return buildinfo.BuildInfo{}, fmt.Errorf("no readable build info: %w", perr)
	}

	branch := deriveBranch(dir, probed.Branch)
	if err == nil {
		branch = deriveBranch(dir, info.Branch)
	}

	// Rebuilding through the constructor keeps the stable to lts
	// promotion consistent with scraped builds.
	fresh := buildinfo.New(dir, probed.Subversion, probed.BuildHash, probed.CommitTime, branch)
	fresh.CustomName = probed.CustomName
	fresh.CustomExecutable = probed.CustomExecutable

	if err == nil {
		// Stale sidecar: the user-settable fields survive re-derivation
		fresh.CustomName = info.CustomName
		fresh.IsFavorite = info.IsFavorite
		fresh.IsFrozen = info.IsFrozen
		if fresh.CustomExecutable == "" {
			fresh.CustomExecutable = info.CustomExecutable
		}
	}

	if werr := fresh.WriteSidecar(dir); werr != nil {
		log.Warn().Str("path", dir).Err(werr).Msg("Failed to write sidecar")
	}
	return fresh, nil
}

// deriveBranch names a local build's branch after its parent folder.
// Builds under "custom" take their own folder name, experimental
// builds carry the branch inside the folder name.
func deriveBranch(dir, fallback string) string {
	parent := filepath.Base(filepath.Dir(dir))
	name := filepath.Base(dir)

	switch parent {
	case "custom":
		return name
	case "experimental":
		if m := experimentalNameRE.FindStringSubmatch(name); m != nil {
			return m[1]
		}
		if fallback != "" {
			return fallback
		}
	}
	return parent
}
