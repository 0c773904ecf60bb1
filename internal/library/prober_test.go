package library

import (
	"testing"
	"time"
)

const blenderBanner = `Blender 4.3.0 Alpha
	build date: 2024-07-30
	build time: 00:56:06
	build commit date: 2024-07-29
	build commit time: 23:07
	build hash: ddc9f92777cd
	build platform: Linux
`

func TestParseVersionOutput(t *testing.T) {
	b, err := parseVersionOutput(blenderBanner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.Subversion != "4.3.0 Alpha" {
		t.Errorf("subversion = %q", b.Subversion)
	}
	if b.BuildHash != "ddc9f92777cd" {
		t.Errorf("hash = %q", b.BuildHash)
	}
	want := time.Date(2024, 7, 29, 23, 7, 0, 0, time.UTC)
	if !b.CommitTime.Equal(want) {
		t.Errorf("commit time = %v, want %v", b.CommitTime, want)
	}
	if b.CustomName != "" {
		t.Errorf("custom name = %q", b.CustomName)
	}

	v, err := b.Semversion()
	if err != nil {
		t.Fatalf("banner version does not parse: %v", err)
	}
	if v.String() != "4.3.0-alpha" {
		t.Errorf("parsed version = %s", v)
	}
}

func TestParseVersionOutputBforartists(t *testing.T) {
	b, err := parseVersionOutput("Bforartists 4.3.0\n\tbuild hash: abc123\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Subversion != "4.3.0" || b.BuildHash != "abc123" {
		t.Errorf("unexpected build: %+v", b)
	}
	// No commit stamp in the banner; the scan time stands in.
	if b.CommitTime.IsZero() {
		t.Error("commit time should default to now")
	}
}

func TestParseVersionOutputCustomFork(t *testing.T) {
	b, err := parseVersionOutput("Goo Engine 3.6.5\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.CustomName != "Goo Engine" {
		t.Errorf("custom name = %q", b.CustomName)
	}
	if b.Subversion != "3.6.5" {
		t.Errorf("subversion = %q", b.Subversion)
	}
}

func TestParseVersionOutputGarbage(t *testing.T) {
	for _, out := range []string{"", "   \n", "nonsense"} {
		if _, err := parseVersionOutput(out); err == nil {
			t.Errorf("expected error for %q", out)
		}
	}
}
