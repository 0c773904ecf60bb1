// Package search implements the version search query language used to filter
// build collections.
//
// The wire syntax (not semver compatible!) is
//
//	<major>.<minor>.<patch>[-<branch>[,<branch>...]][+<build_hash>][@<commit_time>]
//
// where each of major/minor/patch is a literal number or one of
//
//	^   match the largest/newest item in that column
//	*   match any item in that column
//	-   match the smallest/oldest item in that column
//
// Valid examples:
//
//	*.*.*
//	1.2.3-master
//	4.^.^-stable@^
//	4.3.^+cb886aba06d5@^
//	4.3.^-stable+cb886aba06d5@2024-07-31T23:53:51+00:00
package search

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// Op is the matching behavior of one query field.
type Op uint8

const (
	OpAny Op = iota
	OpExact
	OpNewest
	OpOldest
)

// Selector selects values for one numeric version column. The zero value
// matches anything.
type Selector struct {
	op  Op
	num uint64
}

// Exactly matches only the literal value n.
func Exactly(n uint64) Selector { return Selector{op: OpExact, num: n} }

var (
	// Any matches every value in the column.
	Any = Selector{op: OpAny}
	// Newest matches the largest value present in the candidate set.
	Newest = Selector{op: OpNewest}
	// Oldest matches the smallest value present in the candidate set.
	Oldest = Selector{op: OpOldest}
)

// TimeSelector selects commit times. The zero value matches anything.
type TimeSelector struct {
	op  Op
	at  time.Time
	raw string
}

// AtTime matches only builds with exactly this commit time.
func AtTime(t time.Time) TimeSelector { return TimeSelector{op: OpExact, at: t} }

// AtRaw keeps an unparseable timestamp literal; it matches by direct string
// comparison against the candidate's RFC3339-rendered commit time.
func AtRaw(s string) TimeSelector { return TimeSelector{op: OpExact, raw: s} }

var (
	AnyTime    = TimeSelector{op: OpAny}
	NewestTime = TimeSelector{op: OpNewest}
	OldestTime = TimeSelector{op: OpOldest}
)

// Query is an immutable filter over build collections. Construct with New or
// Parse and refine with the With* methods.
type Query struct {
	major      Selector
	minor      Selector
	patch      Selector
	branch     []string
	buildHash  string
	commitTime TimeSelector
	folder     string
}

// New builds a query from the three version column selectors.
func New(major, minor, patch Selector) Query {
	return Query{major: major, minor: minor, patch: patch}
}

// MatchAll matches every build (*.*.*).
func MatchAll() Query {
	return New(Any, Any, Any)
}

// Latest matches the newest build(s): ^.^.^@^.
func Latest() Query {
	q := New(Newest, Newest, Newest)
	q.commitTime = NewestTime
	return q
}

// WithBranch restricts matches to builds on any of the given branches.
func (q Query) WithBranch(branches ...string) Query {
	q.branch = slices.Clone(branches)
	return q
}

// WithBuildHash restricts matches to builds with exactly this hash.
func (q Query) WithBuildHash(hash string) Query {
	q.buildHash = hash
	return q
}

// WithCommitTime restricts matches by commit time.
func (q Query) WithCommitTime(sel TimeSelector) Query {
	q.commitTime = sel
	return q
}

// WithFolder restricts matches to builds in the given containing folder.
// Folders are not part of the wire syntax; this is local filtering only.
func (q Query) WithFolder(folder string) Query {
	q.folder = folder
	return q
}

// Merge overlays o on q: every field that o constrains replaces the
// corresponding field of q. Used to compose a tab filter with a user search.
func (q Query) Merge(o Query) Query {
	out := q
	if o.major.op != OpAny {
		out.major = o.major
	}
	if o.minor.op != OpAny {
		out.minor = o.minor
	}
	if o.patch.op != OpAny {
		out.patch = o.patch
	}
	if o.branch != nil {
		out.branch = slices.Clone(o.branch)
	}
	if o.buildHash != "" {
		out.buildHash = o.buildHash
	}
	if o.commitTime.op != OpAny {
		out.commitTime = o.commitTime
	}
	if o.folder != "" {
		out.folder = o.folder
	}
	return out
}

// Equal reports whether two queries constrain identically.
func (q Query) Equal(o Query) bool {
	return q.major == o.major &&
		q.minor == o.minor &&
		q.patch == o.patch &&
		slices.Equal(q.branch, o.branch) &&
		q.buildHash == o.buildHash &&
		q.commitTime.op == o.commitTime.op &&
		q.commitTime.at.Equal(o.commitTime.at) &&
		q.commitTime.raw == o.commitTime.raw &&
		q.folder == o.folder
}

// String renders the query in the wire syntax; Parse(q.String()) returns an
// equal query.
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.major.token())
	b.WriteByte('.')
	b.WriteString(q.minor.token())
	b.WriteByte('.')
	b.WriteString(q.patch.token())
	if len(q.branch) > 0 {
		b.WriteByte('-')
		b.WriteString(strings.Join(q.branch, ","))
	}
	if q.buildHash != "" {
		b.WriteByte('+')
		b.WriteString(q.buildHash)
	}
	if tok, ok := q.commitTime.token(); ok {
		b.WriteByte('@')
		b.WriteString(tok)
	}
	return b.String()
}

func (s Selector) token() string {
	switch s.op {
	case OpNewest:
		return "^"
	case OpOldest:
		return "-"
	case OpExact:
		return strconv.FormatUint(s.num, 10)
	default:
		return "*"
	}
}

func (s TimeSelector) token() (string, bool) {
	switch s.op {
	case OpNewest:
		return "^", true
	case OpOldest:
		return "-", true
	case OpExact:
		if s.raw != "" {
			return s.raw, true
		}
		return s.at.Format(time.RFC3339), true
	default:
		return "", false
	}
}
