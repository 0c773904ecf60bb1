package bversion

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidVersionFormat is returned when no parsing strategy recognizes the
// input.
var ErrInvalidVersionFormat = errors.New("invalid version format")

// A pattern is compiled twice: anchored at the start of the string for clean
// labels, and unanchored for extracting a version out of a filename.
type pattern struct {
	anchored *regexp.Regexp
	anywhere *regexp.Regexp
}

func compile(exprs ...string) []pattern {
	ps := make([]pattern, 0, len(exprs))
	for _, e := range exprs {
		ps = append(ps, pattern{
			anchored: regexp.MustCompile("^" + e),
			anywhere: regexp.MustCompile(e),
		})
	}
	return ps
}

// Ordered from most to least specific; the first match wins. The trailing
// character classes on the prerelease captures keep platform tags like
// "-linux" and "-windows" out of the prerelease.
//
//	format                            example
//	<major>.<minor>.<patch> <pre>     2.80.0 Alpha   -> 2.80.0-alpha
//	<major>.<minor> (sub <patch>)     2.80 (sub 75)  -> 2.80.75
//	<major>.<minor> <pre>             2.83 LTS       -> 2.83.0
//	<major>.<minor>                   2.79           -> 2.79.0
//	<major>.<minor><chars{1,3}>       2.79rc1        -> 2.79.0-rc1
//	<major>.<minor><suffix>           2.79b          -> 2.79.0-b
var patterns = compile(
	`(?P<ma>\d+)\.(?P<mi>\d+)\.(?P<pa>\d+)[ \-](?P<pre>[^+]*[^wli][^ndux][^s]?)`,
	`(?P<ma>\d+)\.(?P<mi>\d+) \(sub (?P<pa>\d+)\)`,
	`(?P<ma>\d+)\.(?P<mi>\d+)[ \-](?P<pre>[^+]*[^wli][^ndux][^s]?)`,
	`(?P<ma>\d+)\.(?P<mi>\d+)$`,
	`(?P<ma>\d+)\.(?P<mi>\d+)(?P<pre>[^\-]{0,3})`,
	`(?P<ma>\d+)\.(?P<mi>\d+)(?P<pre>\D[^\.\s]*)?`,
)

// filenameVersion extracts the cleaner version-looking substring out of a
// build archive name, e.g. "blender-4.3.0-alpha-linux.tar.xz" -> "4.3.0-alpha".
var filenameVersion = regexp.MustCompile(`(?i)(\d\S*?)-(?:linux|windows|macos|darwin)`)

type parseKey struct {
	raw    string
	search bool
}

type parseResult struct {
	version Version
	err     error
}

// Parse results are deterministic per input, so they are memoized. Entries
// are write-once; a concurrent race at worst duplicates a parse.
var parseCache sync.Map

// Parse converts one of Blender's version string styles into a Version.
// With search enabled the permissive patterns may match anywhere in the
// input instead of only at the start, which is what filename extraction
// needs. The result is memoized per (raw, search) pair.
func Parse(raw string, search bool) (Version, error) {
	key := parseKey{raw: raw, search: search}
	if cached, ok := parseCache.Load(key); ok {
		r := cached.(parseResult)
		return r.version, r.err
	}
	v, err := parse(raw, search)
	parseCache.Store(key, parseResult{version: v, err: err})
	return v, err
}

func parse(raw string, search bool) (Version, error) {
	if v, err := semver.StrictNewVersion(raw); err == nil {
		return Version{v: v}, nil
	}

	// Retry strict parsing on the substring between the leading version
	// token and a trailing platform tag.
	if m := filenameVersion.FindStringSubmatch(raw); m != nil {
		if v, err := semver.StrictNewVersion(m[1]); err == nil {
			return Version{v: v}, nil
		}
	}

	for _, p := range patterns {
		re := p.anchored
		if search {
			re = p.anywhere
		}
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		return fromMatch(re, m), nil
	}

	return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, raw)
}

func fromMatch(re *regexp.Regexp, m []string) Version {
	group := func(name string) string {
		if i := re.SubexpIndex(name); i >= 0 && i < len(m) {
			return m[i]
		}
		return ""
	}

	major, _ := strconv.ParseUint(group("ma"), 10, 64)
	minor, _ := strconv.ParseUint(group("mi"), 10, 64)

	var patch uint64
	if pa := group("pa"); pa != "" {
		patch, _ = strconv.ParseUint(pa, 10, 64)
	}

	prerelease := ""
	if pre := group("pre"); pre != "" {
		prerelease = strings.Trim(strings.ToLower(pre), "- ")
		// LTS tags carry no prerelease meaning; 2.83 LTS is just 2.83.0.
		if prerelease == "lts" {
			prerelease = ""
		}
	}

	return New(major, minor, patch, prerelease, "")
}
