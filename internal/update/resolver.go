// Package update decides whether a newer remote build should be offered
// for an installed build, under a per-branch aggressiveness policy.
package update

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/bversion"
)

// Behavior describes how aggressively updates are offered for a branch.
type Behavior int

const (
	// BehaviorMajor offers any release higher than everything installed.
	BehaviorMajor Behavior = iota
	// BehaviorMinor offers higher minor/patch releases within the same major.
	BehaviorMinor
	// BehaviorPatch offers higher patch releases within the same major.minor.
	BehaviorPatch
)

func (b Behavior) String() string {
	switch b {
	case BehaviorMajor:
		return "major"
	case BehaviorMinor:
		return "minor"
	case BehaviorPatch:
		return "patch"
	}
	return fmt.Sprintf("behavior(%d)", int(b))
}

// ParseBehavior maps a configuration string to a Behavior.
func ParseBehavior(s string) (Behavior, error) {
	switch s {
	case "major":
		return BehaviorMajor, nil
	case "minor":
		return BehaviorMinor, nil
	case "patch":
		return BehaviorPatch, nil
	}
	return BehaviorPatch, fmt.Errorf("unknown update behavior %q", s)
}

// BranchPolicy is the behavior and visibility for one branch class.
type BranchPolicy struct {
	Behavior Behavior
	Show     bool
}

// Policy carries the resolved update settings for every branch class.
// When Advanced is false the Global policy applies to all branches.
type Policy struct {
	Advanced     bool
	Global       BranchPolicy
	Stable       BranchPolicy
	Daily        BranchPolicy
	Experimental BranchPolicy
	Bforartists  BranchPolicy
}

// ForBranch resolves the effective policy for a branch. The second
// return is false for branches outside the known classes; those never
// get update offers.
func (p Policy) ForBranch(branch string) (BranchPolicy, bool) {
	var bp BranchPolicy
	switch {
	case branch == buildinfo.BranchStable || branch == buildinfo.BranchLTS:
		bp = p.Stable
	case branch == buildinfo.BranchDaily:
		bp = p.Daily
	case isExperimental(branch):
		bp = p.Experimental
	case branch == buildinfo.BranchBforartists:
		bp = p.Bforartists
	default:
		return BranchPolicy{}, false
	}
	if !p.Advanced {
		bp = p.Global
	}
	return bp, true
}

// Visible reports whether update offers are shown for the branch at all.
func (p Policy) Visible(branch string) bool {
	bp, ok := p.ForBranch(branch)
	return ok && bp.Show
}

func isExperimental(branch string) bool {
	return strings.HasPrefix(branch, "Pr") || strings.HasPrefix(branch, "Npr")
}

// FindUpdate returns the best candidate to offer as an update for
// current, or nil when nothing qualifies. installed is the full set of
// local builds (current included) used to suppress re-offers; behavior
// bounds how far a version jump may go.
//
// Two tracks are kept: the highest candidate that is a better version
// under the behavior, and the freshest candidate carrying the same
// release version as current but a newer commit. A better version
// always wins over a fresher build of the same version.
func FindUpdate(current buildinfo.BuildInfo, installed, candidates []buildinfo.BuildInfo, behavior Behavior) *buildinfo.BuildInfo {
	currentSem := semOrZero(current)
	currentRelease := currentSem.Finalized()

	installedHashes := make(map[string]struct{}, len(installed))
	installedVersions := make([]bversion.Version, 0, len(installed))
	for _, b := range installed {
		if b.BuildHash != "" {
			installedHashes[b.BuildHash] = struct{}{}
		}
		installedVersions = append(installedVersions, semOrZero(b).Finalized())
	}

	var bestVersion *buildinfo.BuildInfo
	bestRelease := bversion.Version{}
	var bestHash *buildinfo.BuildInfo

	for i := range candidates {
		c := &candidates[i]
		if c.Branch != current.Branch {
			continue
		}
		if c.BuildHash != "" {
			if _, dup := installedHashes[c.BuildHash]; dup {
				continue
			}
		}

		sem := semOrZero(*c)
		release := sem.Finalized()

		fresher := release.Equal(currentRelease) && c.CommitTime.After(current.CommitTime)
		if versionInstalled(installedVersions, release) && !fresher {
			continue
		}

		if betterVersion(release, currentRelease, installedVersions, behavior) &&
			release.GreaterThan(bestRelease) {
			bestRelease = release
			bestVersion = c
		}

		// Daily builds bump prerelease tags meaningfully; never offer
		// a same-version build whose prerelease would go backwards.
		if fresher && !(current.Branch == buildinfo.BranchDaily && sem.LessThan(currentSem)) {
			if bestHash == nil || c.CommitTime.After(bestHash.CommitTime) {
				bestHash = c
			}
		}
	}

	if bestVersion != nil {
		log.Info().
			Str("branch", current.Branch).
			Str("installed", currentRelease.String()).
			Str("available", bestRelease.String()).
			Msg("Newer version available")
		return bestVersion
	}
	if bestHash != nil {
		log.Info().
			Str("branch", current.Branch).
			Str("version", currentRelease.String()).
			Str("hash", bestHash.BuildHash).
			Msg("Newer build of installed version available")
	}
	return bestHash
}

// IsMajorVersionUpdate reports whether candidate crosses a major or
// minor release boundary relative to installed. Callers use it to warn
// before an upgrade that would not share preference folders.
func IsMajorVersionUpdate(installed, candidate buildinfo.BuildInfo) bool {
	a := installed.FullSemversion()
	b := candidate.FullSemversion()
	return a.Major() != b.Major() || a.Minor() != b.Minor()
}

// semOrZero parses a build's version, yielding the zero version when the
// string cannot be parsed.
func semOrZero(b buildinfo.BuildInfo) bversion.Version {
	v, err := b.Semversion()
	if err != nil {
		return bversion.Version{}
	}
	return v
}

func versionInstalled(installed []bversion.Version, v bversion.Version) bool {
	for _, iv := range installed {
		if iv.Equal(v) {
			return true
		}
	}
	return false
}

// betterVersion reports whether release exceeds the best installed
// version within the scope the behavior allows.
func betterVersion(release, current bversion.Version, installed []bversion.Version, behavior Behavior) bool {
	switch behavior {
	case BehaviorMajor:
		best := bversion.Version{}
		for _, iv := range installed {
			if iv.GreaterThan(best) {
				best = iv
			}
		}
		return release.GreaterThan(best)

	case BehaviorMinor:
		if release.Major() != current.Major() {
			return false
		}
		best := bversion.Version{}
		for _, iv := range installed {
			if iv.Major() == current.Major() && iv.GreaterThan(best) {
				best = iv
			}
		}
		return release.Minor() > best.Minor() ||
			(release.Minor() == best.Minor() && release.Patch() > best.Patch())

	case BehaviorPatch:
		if release.Major() != current.Major() || release.Minor() != current.Minor() {
			return false
		}
		best := bversion.Version{}
		for _, iv := range installed {
			if iv.Major() == current.Major() && iv.Minor() == current.Minor() && iv.GreaterThan(best) {
				best = iv
			}
		}
		return release.Patch() > best.Patch()
	}
	return false
}
