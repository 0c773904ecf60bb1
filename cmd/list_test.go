package cmd

import (
	"testing"
	"time"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/search"
)

func listFixture() []buildinfo.BuildInfo {
	at := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	stable := buildinfo.New("https://example.com/blender-4.1.1.tar.xz", "4.1.1", "aaa111", at, "stable")
	daily := buildinfo.New("https://example.com/blender-4.3.0.tar.xz", "4.3.0-alpha", "bbb222", at, "daily")
	frozen := buildinfo.New("/library/daily/blender-4.2.0", "4.2.0-beta", "ccc333", at, "daily")
	frozen.IsFrozen = true
	frozen.CustomName = "render box"
	return []buildinfo.BuildInfo{stable, daily, frozen}
}

func TestMatchRowsMatchAll(t *testing.T) {
	rows := matchRows(search.MatchAll(), listFixture(), "remote")
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, r := range rows {
		if r.Source != "remote" {
			t.Errorf("source = %q, want remote", r.Source)
		}
	}
}

func TestMatchRowsBranchFilter(t *testing.T) {
	query := search.MatchAll().WithBranch("daily")
	rows := matchRows(query, listFixture(), "installed")
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2: %+v", len(rows), rows)
	}
	for _, r := range rows {
		if r.Branch != "daily" {
			t.Errorf("branch = %q, want daily", r.Branch)
		}
	}
}

func TestListHelpExamplesParse(t *testing.T) {
	for _, s := range []string{"4.2.^", "^.^.^-daily", "*.*.*+abc123"} {
		if _, err := search.Parse(s); err != nil {
			t.Errorf("help example %q does not parse: %v", s, err)
		}
	}

	// The hash form must constrain the hash, not the branch list.
	query, err := search.Parse("*.*.*+ccc333")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rows := matchRows(query, listFixture(), "installed")
	if len(rows) != 1 || rows[0].Hash != "ccc333" {
		t.Fatalf("got %+v, want only the ccc333 build", rows)
	}
}

func TestMatchRowsKeepsUserFlags(t *testing.T) {
	query := search.MatchAll().WithBuildHash("ccc333")
	rows := matchRows(query, listFixture(), "installed")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Name != "render box" {
		t.Errorf("name = %q, want the custom name", r.Name)
	}
	if !r.Frozen {
		t.Error("frozen flag lost")
	}
	if r.CommitTime != "2024-07-01 12:00" {
		t.Errorf("commit time = %q", r.CommitTime)
	}
}
