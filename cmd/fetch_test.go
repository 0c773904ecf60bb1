package cmd

import (
	"testing"
	"time"

	"blenderctl/internal/storage"
)

func newTestCache(t *testing.T) *storage.Storage {
	t.Helper()
	st, err := storage.NewStorage(":memory:")
	if err != nil {
		t.Fatalf("NewStorage: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestCacheFreshNeverFetched(t *testing.T) {
	st := newTestCache(t)

	fresh, _, err := cacheFresh(st, "12h")
	if err != nil {
		t.Fatalf("cacheFresh: %v", err)
	}
	if fresh {
		t.Error("cache should not be fresh before the first fetch")
	}
}

func TestCacheFresh(t *testing.T) {
	st := newTestCache(t)

	if err := st.SetLastFetch(time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("SetLastFetch: %v", err)
	}

	fresh, age, err := cacheFresh(st, "12h")
	if err != nil {
		t.Fatalf("cacheFresh: %v", err)
	}
	if !fresh {
		t.Error("an hour-old cache should be fresh with a 12h interval")
	}
	if age < 55*time.Minute || age > 65*time.Minute {
		t.Errorf("age = %v, want about an hour", age)
	}

	fresh, _, err = cacheFresh(st, "30m")
	if err != nil {
		t.Fatalf("cacheFresh: %v", err)
	}
	if fresh {
		t.Error("an hour-old cache should be stale with a 30m interval")
	}
}

func TestCacheFreshBadInterval(t *testing.T) {
	st := newTestCache(t)

	if err := st.SetLastFetch(time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("SetLastFetch: %v", err)
	}

	// An unparsable interval falls back to 12h
	fresh, _, err := cacheFresh(st, "soon")
	if err != nil {
		t.Fatalf("cacheFresh: %v", err)
	}
	if !fresh {
		t.Error("fallback interval should consider an hour-old cache fresh")
	}
}
