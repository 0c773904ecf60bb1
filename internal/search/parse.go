package search

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"blenderctl/internal/timeutil"
)

// ErrInvalidQuerySyntax is returned when a query string does not match the
// wire syntax.
var ErrInvalidQuerySyntax = errors.New("invalid version search query")

// Regex breakdown:
//
//	^                          start of string
//	([\^\-\*]|\d+)          x3 major, minor and patch (required)
//	(?:-([^@\s+]+))?           branch list (optional)
//	(?:\+([0-9A-Za-z]+))?      build hash (optional; never temporal)
//	(?:@([\^\-\*]|[\dT+:Z \-]+))?  commit time (^|*|- or an ISO timestamp)
//	$                          end of string
var queryRE = regexp.MustCompile(
	`^([\^\-\*]|\d+)\.([\^\-\*]|\d+)\.([\^\-\*]|\d+)` +
		`(?:-([^@\s+]+))?` +
		`(?:\+([0-9A-Za-z]+))?` +
		`(?:@([\^\-\*]|[\dT+:Z \-]+))?$`,
)

// Parse parses the wire syntax into a Query. Fields absent from the string
// are left unconstrained.
func Parse(s string) (Query, error) {
	m := queryRE.FindStringSubmatch(s)
	if m == nil {
		return Query{}, fmt.Errorf("%w: %q", ErrInvalidQuerySyntax, s)
	}

	major, err := parseSelector(m[1])
	if err != nil {
		return Query{}, fmt.Errorf("%w: %q: %v", ErrInvalidQuerySyntax, s, err)
	}
	minor, err := parseSelector(m[2])
	if err != nil {
		return Query{}, fmt.Errorf("%w: %q: %v", ErrInvalidQuerySyntax, s, err)
	}
	patch, err := parseSelector(m[3])
	if err != nil {
		return Query{}, fmt.Errorf("%w: %q: %v", ErrInvalidQuerySyntax, s, err)
	}

	q := New(major, minor, patch)
	if m[4] != "" {
		q = q.WithBranch(strings.Split(m[4], ",")...)
	}
	if m[5] != "" {
		q = q.WithBuildHash(m[5])
	}
	if m[6] != "" {
		q = q.WithCommitTime(parseTimeSelector(m[6]))
	}
	return q, nil
}

func parseSelector(tok string) (Selector, error) {
	switch tok {
	case "^":
		return Newest, nil
	case "*":
		return Any, nil
	case "-":
		return Oldest, nil
	}
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return Selector{}, err
	}
	return Exactly(n), nil
}

func parseTimeSelector(tok string) TimeSelector {
	switch tok {
	case "^":
		return NewestTime
	case "*":
		return AnyTime
	case "-":
		return OldestTime
	}
	// Unparseable timestamps degrade to literal string matching rather than
	// failing the whole query.
	if t, err := timeutil.ParseISO(tok); err == nil {
		return AtTime(t)
	}
	return AtRaw(tok)
}
