// Package timeutil parses the commit-time formats found in sidecar files and
// query strings.
package timeutil

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ISO-8601 variants accepted for commit times: date and time separated by
// 'T' or a space, with or without an explicit zone offset.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// legacyLayout is the commit-time format written by sidecar files before 1.5.
const legacyLayout = "02-Jan-06-15:04"

// Hand-written textual dates ("july 31 2024") carry an explicit year
// that the free-text parser would treat as relative to today, so they
// get absolute layouts of their own.
var textualLayouts = []string{
	"January 2 2006",
	"January 2, 2006",
	"2 January 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseISO parses an ISO-8601 timestamp. Layouts without a zone offset are
// interpreted as UTC.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 timestamp: %q", s)
}

// ParseCommitTime parses a commit time from a sidecar file: ISO-8601 first,
// then the pre-1.5 sidecar format, then free-text as a last resort.
func ParseCommitTime(s string) (time.Time, error) {
	if t, err := ParseISO(s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(legacyLayout, s); err == nil {
		return t, nil
	}
	if t, err := parseTextual(s); err == nil {
		return t, nil
	}
	return parseFreeText(s)
}

func parseTextual(s string) (time.Time, error) {
	s = titleWords(strings.TrimSpace(s))
	for _, layout := range textualLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not a textual date: %q", s)
}

// titleWords normalizes month-name casing so "july" parses
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		if len(r) > 0 && unicode.IsLetter(r[0]) {
			r[0] = unicode.ToUpper(r[0])
		}
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func parseFreeText(s string) (time.Time, error) {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	parsed, err := w.Parse(s, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse commit time: %w", err)
	}
	if parsed == nil {
		return time.Time{}, fmt.Errorf("could not understand commit time: %q", s)
	}
	return parsed.Time, nil
}
