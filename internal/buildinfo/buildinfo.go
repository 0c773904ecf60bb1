// Package buildinfo holds the canonical record for one discovered Blender
// build, remote or local.
package buildinfo

import (
	"strings"
	"time"

	"blenderctl/internal/bversion"
	"blenderctl/internal/search"
)

// Branch names used by the scrapers and the library layout. Experimental
// builds carry free-form branch names derived from their PR/patch tag.
const (
	BranchStable       = "stable"
	BranchLTS          = "lts"
	BranchDaily        = "daily"
	BranchExperimental = "experimental"
	BranchPatch        = "patch"
	BranchBforartists  = "bforartists"
	BranchUPBGEStable  = "upbge-stable"
	BranchUPBGEWeekly  = "upbge-weekly"
)

// ltsSeries are the major.minor series published as long-term support
// releases. Stable builds in one of these series live on the lts branch.
var ltsSeries = []string{"2.83", "2.93", "3.3", "3.6", "4.2", "4.5"}

// BuildInfo describes one build. Everything except the user-settable fields
// (CustomName, IsFavorite, IsFrozen, CustomExecutable) is fixed at
// construction.
type BuildInfo struct {
	// Link is where the build lives: a download URL for remote builds, a
	// directory path for local ones.
	Link string
	// Subversion is the raw upstream version string; Semversion is its
	// parsed form.
	Subversion string
	// BuildHash is the short commit hash, empty when unknown.
	BuildHash  string
	CommitTime time.Time
	Branch     string

	CustomName       string
	IsFavorite       bool
	IsFrozen         bool
	CustomExecutable string
}

// New constructs a build record and applies the stable-to-lts branch
// promotion.
func New(link, subversion, buildHash string, commitTime time.Time, branch string) BuildInfo {
	if branch == BranchStable && inLTSSeries(subversion) {
		branch = BranchLTS
	}
	return BuildInfo{
		Link:       link,
		Subversion: subversion,
		BuildHash:  buildHash,
		CommitTime: commitTime,
		Branch:     branch,
	}
}

func inLTSSeries(subversion string) bool {
	for _, series := range ltsSeries {
		if strings.HasPrefix(subversion, series) {
			return true
		}
	}
	return false
}

// Semversion parses the raw version string.
func (b BuildInfo) Semversion() (bversion.Version, error) {
	return bversion.Parse(b.Subversion, false)
}

// FullSemversion embeds branch and hash into the version so equal versions
// still order deterministically. A build whose version cannot be parsed
// yields the zero version.
func (b BuildInfo) FullSemversion() bversion.Version {
	v, err := b.Semversion()
	if err != nil {
		return bversion.Version{}
	}
	return v.WithBuildContext(b.Branch, b.BuildHash)
}

// Eq reports whether two records describe the same build. When both carry a
// hash, the hash decides. Otherwise equality is by release triple, ignoring
// prerelease, so "4.5.2" matches a fork's "4.5.2-windows" build. Unparsable
// versions fall back to raw string comparison.
func (b BuildInfo) Eq(other BuildInfo) bool {
	if b.BuildHash != "" && other.BuildHash != "" {
		return b.BuildHash == other.BuildHash
	}
	bv, errB := b.Semversion()
	ov, errO := other.Semversion()
	if errB != nil || errO != nil {
		return b.Subversion == other.Subversion
	}
	return bv.SameRelease(ov)
}

// Less orders builds by release-level version, breaking ties by commit time.
// When a commit time is missing the full version, with branch and hash
// folded in, keeps the order total.
func (b BuildInfo) Less(other BuildInfo) bool {
	bv, errB := b.Semversion()
	ov, errO := other.Semversion()
	if errB != nil || errO != nil {
		return b.Subversion < other.Subversion
	}
	bf, of := bv.Finalized(), ov.Finalized()
	if bf.Equal(of) {
		if !b.CommitTime.IsZero() && !other.CommitTime.IsZero() {
			return b.CommitTime.Before(other.CommitTime)
		}
		return b.FullSemversion().LessThan(other.FullSemversion())
	}
	return bf.LessThan(of)
}

// DisplayName returns the user override when set, otherwise the raw version
// string.
func (b BuildInfo) DisplayName() string {
	if b.CustomName != "" {
		return b.CustomName
	}
	return b.Subversion
}

// Basic projects the record down to what the query matcher needs. The folder
// is the containing directory name for local builds and empty for URLs.
func (b BuildInfo) Basic() (search.BasicBuildInfo, error) {
	v, err := b.Semversion()
	if err != nil {
		return search.BasicBuildInfo{}, err
	}
	return search.BasicBuildInfo{
		Version:    v.WithBuildContext(b.Branch, b.BuildHash),
		Branch:     b.Branch,
		BuildHash:  b.BuildHash,
		CommitTime: b.CommitTime.UTC(),
		Folder:     b.folder(),
	}, nil
}

func (b BuildInfo) folder() string {
	if strings.Contains(b.Link, "://") {
		return ""
	}
	link := strings.TrimRight(b.Link, "/")
	if i := strings.LastIndexByte(link, '/'); i >= 0 {
		link = link[:i]
		if j := strings.LastIndexByte(link, '/'); j >= 0 {
			return link[j+1:]
		}
		return link
	}
	return ""
}
