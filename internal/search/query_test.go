package search

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	utc := time.UTC

	tests := []struct {
		name    string
		input   string
		want    Query
		wantErr bool
	}{
		{
			name:  "literal triple",
			input: "1.2.3",
			want:  New(Exactly(1), Exactly(2), Exactly(3)),
		},
		{
			name:  "mixed selectors",
			input: "^.*.-",
			want:  New(Newest, Any, Oldest),
		},
		{
			name:  "wildcards with branch",
			input: "*.*.*-daily",
			want:  MatchAll().WithBranch("daily"),
		},
		{
			name:  "branch list",
			input: "*.*.*-stable,lts",
			want:  MatchAll().WithBranch("stable", "lts"),
		},
		{
			name:  "build hash",
			input: "*.*.*+cb886aba06d5",
			want:  MatchAll().WithBuildHash("cb886aba06d5"),
		},
		{
			name:  "commit time with offset",
			input: "*.*.*@2024-07-31T23:53:51+00:00",
			want:  MatchAll().WithCommitTime(AtTime(time.Date(2024, 7, 31, 23, 53, 51, 0, utc))),
		},
		{
			name:  "commit time space separated",
			input: "*.*.*@2024-07-31 23:53:51+00:00",
			want:  MatchAll().WithCommitTime(AtTime(time.Date(2024, 7, 31, 23, 53, 51, 0, utc))),
		},
		{
			name:  "newest commit time",
			input: "4.^.^-stable@^",
			want:  New(Exactly(4), Newest, Newest).WithBranch("stable").WithCommitTime(NewestTime),
		},
		{
			name:  "everything at once",
			input: "4.3.^-stable+cb886aba06d5@2024-07-31T23:53:51+00:00",
			want: New(Exactly(4), Exactly(3), Newest).
				WithBranch("stable").
				WithBuildHash("cb886aba06d5").
				WithCommitTime(AtTime(time.Date(2024, 7, 31, 23, 53, 51, 0, utc))),
		},
		{
			name:    "not a query",
			input:   "abc",
			wantErr: true,
		},
		{
			name:    "missing patch",
			input:   "1.2",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				if !errors.Is(err, ErrInvalidQuerySyntax) {
					t.Errorf("expected ErrInvalidQuerySyntax, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestParseUnparseableTimestampDegradesToLiteral(t *testing.T) {
	// "T" alone is inside the commit-time character class but is not a
	// timestamp; the raw text must be retained for literal comparison.
	q, err := Parse("*.*.*@TTT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := MatchAll().WithCommitTime(AtRaw("TTT"))
	if !q.Equal(want) {
		t.Errorf("expected %s, got %s", want, q)
	}
	if q.String() != "*.*.*@TTT" {
		t.Errorf("literal timestamp must round-trip, got %s", q)
	}
}

func TestStringRoundTrip(t *testing.T) {
	queries := []Query{
		MatchAll(),
		Latest(),
		New(Newest, Newest, Any),
		New(Any, Any, Exactly(14)),
		MatchAll().WithBranch("lts"),
		New(Newest, Any, Any).WithBranch("daily").WithCommitTime(NewestTime),
		New(Oldest, Any, Newest),
		New(Exactly(4), Exactly(0), Exactly(0)),
		New(Exactly(4), Any, Any),
		New(Newest, Newest, Any).
			WithBranch("stable").
			WithCommitTime(AtTime(time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC))),
		MatchAll().WithBranch("stable", "lts").WithBuildHash("cb886aba06d5"),
	}

	for _, q := range queries {
		s := q.String()
		t.Run(s, func(t *testing.T) {
			parsed, err := Parse(s)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !parsed.Equal(q) {
				t.Errorf("round trip changed query: %s -> %s", q, parsed)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	tab := MatchAll().WithBranch("stable", "lts")

	t.Run("user search overrides versions", func(t *testing.T) {
		user := New(Exactly(4), Newest, Newest)
		got := tab.Merge(user)
		want := New(Exactly(4), Newest, Newest).WithBranch("stable", "lts")
		if !got.Equal(want) {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("user branch overrides tab branch", func(t *testing.T) {
		user := MatchAll().WithBranch("daily")
		got := tab.Merge(user)
		if !got.Equal(MatchAll().WithBranch("daily")) {
			t.Errorf("unexpected merge result: %s", got)
		}
	})

	t.Run("unconstrained right side changes nothing", func(t *testing.T) {
		got := tab.Merge(MatchAll())
		if !got.Equal(tab) {
			t.Errorf("unexpected merge result: %s", got)
		}
	})

	t.Run("hash and time overlay", func(t *testing.T) {
		user := MatchAll().WithBuildHash("abc123").WithCommitTime(NewestTime)
		got := tab.Merge(user)
		want := tab.WithBuildHash("abc123").WithCommitTime(NewestTime)
		if !got.Equal(want) {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestFolderIsNotSerialized(t *testing.T) {
	q := MatchAll().WithFolder("stable")
	if q.String() != "*.*.*" {
		t.Errorf("folder must stay out of the wire syntax, got %s", q)
	}
}
