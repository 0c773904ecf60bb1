// Package bversion normalizes Blender's many version string styles into a
// comparable semantic version.
package bversion

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version wraps Masterminds/semver for Blender-style versioning. The zero
// value behaves as 0.0.0.
type Version struct {
	v *semver.Version
}

// New builds a version from explicit parts. The prerelease is stored verbatim,
// so Blender oddities like "alpha | x86_64" survive construction.
func New(major, minor, patch uint64, prerelease, metadata string) Version {
	return Version{v: semver.New(major, minor, patch, prerelease, metadata)}
}

func (v Version) sem() *semver.Version {
	if v.v == nil {
		return semver.New(0, 0, 0, "", "")
	}
	return v.v
}

func (v Version) Major() uint64      { return v.sem().Major() }
func (v Version) Minor() uint64      { return v.sem().Minor() }
func (v Version) Patch() uint64      { return v.sem().Patch() }
func (v Version) Prerelease() string { return v.sem().Prerelease() }
func (v Version) Metadata() string   { return v.sem().Metadata() }

// String returns the version in semver notation.
func (v Version) String() string {
	return v.sem().String()
}

// Finalized strips the prerelease and build metadata, leaving the
// release-level major.minor.patch.
func (v Version) Finalized() Version {
	s := v.sem()
	return New(s.Major(), s.Minor(), s.Patch(), "", "")
}

// WithPrerelease returns a copy with the prerelease replaced.
func (v Version) WithPrerelease(prerelease string) Version {
	s := v.sem()
	return New(s.Major(), s.Minor(), s.Patch(), prerelease, s.Metadata())
}

// WithBuildContext folds extra identifiers (branch, build hash) into the
// prerelease so that otherwise identical versions still order totally and
// deterministically. Empty parts are skipped.
func (v Version) WithBuildContext(parts ...string) Version {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return v
	}
	prerelease := ""
	if pre := v.Prerelease(); pre != "" {
		prerelease = pre + "+"
	}
	prerelease += strings.Join(kept, ".")
	return v.WithPrerelease(prerelease)
}

// Compare returns -1, 0 or 1. A version without a prerelease sorts above the
// same release triple with one; build metadata is ignored.
func (v Version) Compare(o Version) int {
	return v.sem().Compare(o.sem())
}

func (v Version) LessThan(o Version) bool    { return v.Compare(o) < 0 }
func (v Version) GreaterThan(o Version) bool { return v.Compare(o) > 0 }
func (v Version) Equal(o Version) bool       { return v.Compare(o) == 0 }

// SameRelease reports whether both versions share the release triple,
// ignoring prerelease and metadata.
func (v Version) SameRelease(o Version) bool {
	return v.Major() == o.Major() && v.Minor() == o.Minor() && v.Patch() == o.Patch()
}
