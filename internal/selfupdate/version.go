package selfupdate

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
)

// releaseVersion wraps hashicorp/go-version for the launcher's own
// release tags. The builds it manages use a different scheme.
type releaseVersion struct {
	v *version.Version
}

func parseReleaseVersion(s string) (releaseVersion, error) {
	s = strings.TrimPrefix(s, "v")
	if s == "dev" || s == "" {
		// Development builds never see update offers
		s = "0.0.0-dev"
	}

	parsed, err := version.NewVersion(s)
	if err != nil {
		return releaseVersion{}, fmt.Errorf("invalid version format: %s", s)
	}
	return releaseVersion{v: parsed}, nil
}

func (r releaseVersion) String() string { return r.v.String() }

// newerThan reports whether r is a later release than other.
// Pre-releases sort below the matching release.
func (r releaseVersion) newerThan(other releaseVersion) bool {
	return r.v.GreaterThan(other.v)
}

// channel extracts the pre-release channel ("alpha" from "1.2.0-alpha.3"),
// or "" for stable releases and unknown tags.
func (r releaseVersion) channel() string {
	pre := r.v.Prerelease()
	if pre == "" {
		return ""
	}
	ch := strings.SplitN(pre, ".", 2)[0]
	switch ch {
	case "alpha", "beta", "rc":
		return ch
	}
	return ""
}
