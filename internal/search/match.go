package search

import (
	"time"

	"blenderctl/internal/bversion"
)

// BasicBuildInfo is the reduced build projection the matcher operates on,
// deliberately decoupled from any list-widget or storage type.
type BasicBuildInfo struct {
	Version    bversion.Version
	Branch     string
	BuildHash  string
	CommitTime time.Time
	Folder     string
}

// Less orders builds by version, then by commit time.
func (b BasicBuildInfo) Less(o BasicBuildInfo) bool {
	if b.Version.Equal(o.Version) {
		return b.CommitTime.Before(o.CommitTime)
	}
	return b.Version.LessThan(o.Version)
}

// Match filters builds down to those selected by the query. Constrained
// fields narrow the candidate set one after another, in priority order:
// major, minor, patch, branch, build hash, commit time. The temporal
// selectors (^ and -) therefore operate on the set left over by the earlier
// columns, which is what makes "newest minor of the newest major" work. The
// input is never mutated and the surviving candidates keep their relative
// order.
func (q Query) Match(builds []BasicBuildInfo) []BasicBuildInfo {
	out := make([]BasicBuildInfo, 0, len(builds))
	for _, b := range builds {
		if q.folder != "" && b.Folder != q.folder {
			continue
		}
		out = append(out, b)
	}

	numeric := []struct {
		sel Selector
		get func(BasicBuildInfo) uint64
	}{
		{q.major, func(b BasicBuildInfo) uint64 { return b.Version.Major() }},
		{q.minor, func(b BasicBuildInfo) uint64 { return b.Version.Minor() }},
		{q.patch, func(b BasicBuildInfo) uint64 { return b.Version.Patch() }},
	}
	for _, col := range numeric {
		out = narrowNumeric(col.sel, col.get, out)
		if len(out) == 0 {
			return out
		}
	}

	if q.branch != nil {
		out = narrowBranch(q.branch, out)
		if len(out) == 0 {
			return out
		}
	}

	if q.buildHash != "" {
		kept := out[:0:0]
		for _, b := range out {
			if b.BuildHash == q.buildHash {
				kept = append(kept, b)
			}
		}
		out = kept
		if len(out) == 0 {
			return out
		}
	}

	return narrowTime(q.commitTime, out)
}

func narrowNumeric(sel Selector, get func(BasicBuildInfo) uint64, builds []BasicBuildInfo) []BasicBuildInfo {
	if sel.op == OpAny || len(builds) == 0 {
		return builds
	}

	target := sel.num
	switch sel.op {
	case OpNewest:
		target = get(builds[0])
		for _, b := range builds[1:] {
			if v := get(b); v > target {
				target = v
			}
		}
	case OpOldest:
		target = get(builds[0])
		for _, b := range builds[1:] {
			if v := get(b); v < target {
				target = v
			}
		}
	}

	kept := builds[:0:0]
	for _, b := range builds {
		if get(b) == target {
			kept = append(kept, b)
		}
	}
	return kept
}

func narrowBranch(branches []string, builds []BasicBuildInfo) []BasicBuildInfo {
	kept := builds[:0:0]
	for _, b := range builds {
		for _, want := range branches {
			if b.Branch == want {
				kept = append(kept, b)
				break
			}
		}
	}
	return kept
}

func narrowTime(sel TimeSelector, builds []BasicBuildInfo) []BasicBuildInfo {
	if sel.op == OpAny || len(builds) == 0 {
		return builds
	}

	kept := builds[:0:0]
	switch sel.op {
	case OpExact:
		for _, b := range builds {
			if sel.raw != "" {
				if b.CommitTime.Format(time.RFC3339) == sel.raw {
					kept = append(kept, b)
				}
			} else if b.CommitTime.Equal(sel.at) {
				kept = append(kept, b)
			}
		}
	case OpNewest:
		target := builds[0].CommitTime
		for _, b := range builds[1:] {
			if b.CommitTime.After(target) {
				target = b.CommitTime
			}
		}
		for _, b := range builds {
			if b.CommitTime.Equal(target) {
				kept = append(kept, b)
			}
		}
	case OpOldest:
		target := builds[0].CommitTime
		for _, b := range builds[1:] {
			if b.CommitTime.Before(target) {
				target = b.CommitTime
			}
		}
		for _, b := range builds {
			if b.CommitTime.Equal(target) {
				kept = append(kept, b)
			}
		}
	}
	return kept
}
