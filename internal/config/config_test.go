package config

import (
	"strings"
	"testing"

	"blenderctl/internal/update"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("library:\n  folder: /builds\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Library.Folder != "/builds" {
		t.Errorf("library folder = %q", cfg.Library.Folder)
	}
	if !cfg.Scrape.Stable || !cfg.Scrape.Daily {
		t.Error("stable and daily scraping should default to on")
	}
	if cfg.Scrape.MinimumStableVersion != "3.0" {
		t.Errorf("minimum stable version = %q", cfg.Scrape.MinimumStableVersion)
	}
	if cfg.Updates.Behavior != "patch" || !cfg.Updates.Show {
		t.Errorf("update defaults = %q/%v", cfg.Updates.Behavior, cfg.Updates.Show)
	}
	if cfg.Updates.Daily.Behavior != "patch" || !cfg.Updates.Daily.Show {
		t.Errorf("per-branch defaults = %+v", cfg.Updates.Daily)
	}
	if cfg.SelfUpdate.CheckInterval != "24h" {
		t.Errorf("self update interval = %q", cfg.SelfUpdate.CheckInterval)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	raw := `
library:
  folder: /builds
scrape:
  stable: false
  minimum_stable_version: "2.83"
updates:
  advanced: true
  behavior: major
  show: false
  daily:
    behavior: minor
    show: false
`
	cfg, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Scrape.Stable {
		t.Error("scrape.stable: false was not honored")
	}
	if !cfg.Scrape.Daily {
		t.Error("scrape.daily should keep its default when absent")
	}
	if cfg.Updates.Daily.Behavior != "minor" || cfg.Updates.Daily.Show {
		t.Errorf("daily update config = %+v", cfg.Updates.Daily)
	}
	// Untouched branch sections keep their defaults.
	if cfg.Updates.Stable.Behavior != "patch" || !cfg.Updates.Stable.Show {
		t.Errorf("stable update config = %+v", cfg.Updates.Stable)
	}

	min, err := cfg.MinimumStableVersion()
	if err != nil {
		t.Fatalf("minimum stable version: %v", err)
	}
	if min.Major() != 2 || min.Minor() != 83 {
		t.Errorf("minimum stable version = %s", min)
	}
}

func TestParseRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing library folder", "scrape:\n  stable: true\n"},
		{"unknown behavior", "library:\n  folder: /builds\nupdates:\n  behavior: yolo\n"},
		{"unknown branch behavior", "library:\n  folder: /builds\nupdates:\n  daily:\n    behavior: huge\n"},
		{"bad minimum version", "library:\n  folder: /builds\nscrape:\n  minimum_stable_version: nope\n"},
		{"not yaml", "{{{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestUpdatePolicy(t *testing.T) {
	cfg := Default()
	cfg.Library.Folder = "/builds"
	cfg.Updates.Advanced = true
	cfg.Updates.Behavior = "major"
	cfg.Updates.Daily = BranchUpdateConfig{Behavior: "minor", Show: false}

	p, err := cfg.UpdatePolicy()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Advanced {
		t.Error("advanced flag lost")
	}
	if p.Global.Behavior != update.BehaviorMajor {
		t.Errorf("global behavior = %v", p.Global.Behavior)
	}
	if p.Daily.Behavior != update.BehaviorMinor || p.Daily.Show {
		t.Errorf("daily policy = %+v", p.Daily)
	}
	if p.Stable.Behavior != update.BehaviorPatch || !p.Stable.Show {
		t.Errorf("stable policy = %+v", p.Stable)
	}
}

func TestCheckDeprecated(t *testing.T) {
	raw := `
library_folder: /builds
scrape:
  automated: true
updates:
  show_button: true
`
	issues, err := CheckDeprecated([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %+v", len(issues), issues)
	}

	out := FormatIssues(issues)
	if !strings.Contains(out, "library_folder") || !strings.Contains(out, "scrape.automated") {
		t.Errorf("formatted output missing fields:\n%s", out)
	}
}

func TestCheckDeprecatedCleanConfig(t *testing.T) {
	issues, err := CheckDeprecated([]byte("library:\n  folder: /builds\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(issues) != 0 {
		t.Errorf("expected no issues, got %+v", issues)
	}
	if FormatIssues(nil) != "" {
		t.Error("formatting no issues should produce empty output")
	}
}
