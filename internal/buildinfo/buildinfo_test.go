package buildinfo

import (
	"testing"
	"time"
)

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPromotesLTS(t *testing.T) {
	tests := []struct {
		name       string
		subversion string
		branch     string
		want       string
	}{
		{"stable lts series", "3.6.14", BranchStable, BranchLTS},
		{"stable non-lts series", "4.1.0", BranchStable, BranchStable},
		{"daily untouched", "3.6.14", BranchDaily, BranchDaily},
		{"fork untouched", "4.2.0", BranchBforartists, BranchBforartists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("https://example.com/b.tar.xz", tt.subversion, "", at(2024, 7, 16), tt.branch)
			if b.Branch != tt.want {
				t.Errorf("expected branch %s, got %s", tt.want, b.Branch)
			}
		})
	}
}

func TestEq(t *testing.T) {
	tests := []struct {
		name string
		a, b BuildInfo
		want bool
	}{
		{
			name: "hash wins over version",
			a:    BuildInfo{Subversion: "4.5.2", BuildHash: "abc"},
			b:    BuildInfo{Subversion: "9.9.9", BuildHash: "abc"},
			want: true,
		},
		{
			name: "different hashes differ",
			a:    BuildInfo{Subversion: "4.5.2", BuildHash: "abc"},
			b:    BuildInfo{Subversion: "4.5.2", BuildHash: "def"},
			want: false,
		},
		{
			name: "no hash compares release triple",
			a:    BuildInfo{Subversion: "4.5.2"},
			b:    BuildInfo{Subversion: "4.5.2-fork"},
			want: true,
		},
		{
			name: "one hash missing compares versions",
			a:    BuildInfo{Subversion: "4.5.2", BuildHash: "abc"},
			b:    BuildInfo{Subversion: "4.5.2"},
			want: true,
		},
		{
			name: "differing patch differs",
			a:    BuildInfo{Subversion: "4.5.2"},
			b:    BuildInfo{Subversion: "4.5.3"},
			want: false,
		},
		{
			name: "unparsable falls back to raw string",
			a:    BuildInfo{Subversion: "garbage"},
			b:    BuildInfo{Subversion: "garbage"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Eq(tt.b); got != tt.want {
				t.Errorf("Eq = %v, want %v", got, tt.want)
			}
			if got := tt.b.Eq(tt.a); got != tt.want {
				t.Errorf("Eq (flipped) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLess(t *testing.T) {
	t.Run("release version decides", func(t *testing.T) {
		a := BuildInfo{Subversion: "4.2.0", CommitTime: at(2024, 8, 1)}
		b := BuildInfo{Subversion: "4.3.0", CommitTime: at(2024, 7, 1)}
		if !a.Less(b) || b.Less(a) {
			t.Error("expected 4.2.0 < 4.3.0 regardless of commit time")
		}
	})

	t.Run("prerelease is ignored at release level", func(t *testing.T) {
		a := BuildInfo{Subversion: "4.3.0-alpha", CommitTime: at(2024, 7, 1)}
		b := BuildInfo{Subversion: "4.3.0", CommitTime: at(2024, 7, 2)}
		if !a.Less(b) {
			t.Error("expected the older build to sort first on equal release versions")
		}
	})

	t.Run("commit time breaks version ties", func(t *testing.T) {
		a := BuildInfo{Subversion: "4.3.0", CommitTime: at(2024, 7, 28)}
		b := BuildInfo{Subversion: "4.3.0", CommitTime: at(2024, 7, 30)}
		if !a.Less(b) || b.Less(a) {
			t.Error("expected commit time to break the tie")
		}
	})

	t.Run("missing commit time falls back to full version", func(t *testing.T) {
		a := BuildInfo{Subversion: "4.3.0", Branch: "daily", BuildHash: "aaa"}
		b := BuildInfo{Subversion: "4.3.0", Branch: "daily", BuildHash: "bbb", CommitTime: at(2024, 7, 30)}
		if !a.Less(b) || b.Less(a) {
			t.Error("expected a deterministic order from the full version")
		}
	})
}

func TestBasic(t *testing.T) {
	b := New("/library/daily/blender-4.3.0-alpha", "4.3.0-alpha", "ddc9f92777cd", at(2024, 7, 30), BranchDaily)

	basic, err := b.Basic()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if basic.Branch != BranchDaily {
		t.Errorf("expected branch daily, got %s", basic.Branch)
	}
	if basic.Folder != "daily" {
		t.Errorf("expected folder daily, got %q", basic.Folder)
	}
	if basic.Version.Major() != 4 || basic.Version.Minor() != 3 {
		t.Errorf("unexpected version %s", basic.Version)
	}

	remote := New("https://builder.blender.org/b.tar.xz", "4.3.0", "", at(2024, 7, 30), BranchDaily)
	rb, err := remote.Basic()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rb.Folder != "" {
		t.Errorf("remote builds have no folder, got %q", rb.Folder)
	}

	if _, err := (BuildInfo{Subversion: "garbage"}).Basic(); err == nil {
		t.Error("expected error for unparsable version")
	}
}
