package library

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/timeutil"
)

var (
	versionLineRE    = regexp.MustCompile(`(?m)^(?:Blender|Bforartists) (.+)$`)
	commitTimeRE     = regexp.MustCompile(`build commit time: (.*)`)
	commitDateRE     = regexp.MustCompile(`build commit date: (.*)`)
	buildHashRE      = regexp.MustCompile(`build hash: (.*)`)
	commitTimeLayout = "2006-01-02 15:04"
)

// ExecProber derives build metadata by running the build's executable
// with -v and parsing its banner.
type ExecProber struct{}

func (ExecProber) Probe(ctx context.Context, dir string) (buildinfo.BuildInfo, error) {
	exe, rel, err := findExecutable(dir)
	if err != nil {
		return buildinfo.BuildInfo{}, err
	}

	out, err := exec.CommandContext(ctx, exe, "-v").Output()
	if err != nil {
		return buildinfo.BuildInfo{}, fmt.Errorf("failed to run %s: %w", exe, err)
	}

	b, err := parseVersionOutput(string(out))
	if err != nil {
		return buildinfo.BuildInfo{}, err
	}
	b.Link = dir
	if rel != defaultExecutable() {
		b.CustomExecutable = rel
	}
	return b, nil
}

// executableCandidates are tried in order inside a build directory.
// The fork comes first so its bundles are not misread as vanilla ones.
func executableCandidates() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"bforartists.exe", "blender.exe"}
	case "darwin":
		return []string{
			"Bforartists.app/Contents/MacOS/Bforartists",
			"Blender.app/Contents/MacOS/Blender",
			"Bforartists/Bforartists.app/Contents/MacOS/Bforartists",
			"Blender/Blender.app/Contents/MacOS/Blender",
		}
	default:
		return []string{"bforartists", "blender"}
	}
}

func defaultExecutable() string {
	switch runtime.GOOS {
	case "windows":
		return "blender.exe"
	case "darwin":
		return "Blender/Blender.app/Contents/MacOS/Blender"
	default:
		return "blender"
	}
}

func findExecutable(dir string) (path, rel string, err error) {
	for _, candidate := range executableCandidates() {
		p := filepath.Join(dir, filepath.FromSlash(candidate))
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, candidate, nil
		}
	}
	return "", "", fmt.Errorf("no executable found in %s", dir)
}

// parseVersionOutput reads the -v banner. The first line names the
// product and version; custom forks may carry a free-form name there.
func parseVersionOutput(out string) (buildinfo.BuildInfo, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return buildinfo.BuildInfo{}, fmt.Errorf("empty version output")
	}

	var b buildinfo.BuildInfo

	if m := versionLineRE.FindStringSubmatch(out); m != nil {
		b.Subversion = strings.TrimSpace(m[1])
	} else {
		first := strings.TrimSpace(lines[0])
		idx := strings.LastIndex(first, " ")
		if idx < 0 {
			return buildinfo.BuildInfo{}, fmt.Errorf("unrecognized version banner %q", first)
		}
		b.CustomName = first[:idx]
		b.Subversion = first[idx+1:]
	}

	if m := buildHashRE.FindStringSubmatch(out); m != nil {
		b.BuildHash = strings.TrimSpace(m[1])
	}

	ctime := commitTimeRE.FindStringSubmatch(out)
	cdate := commitDateRE.FindStringSubmatch(out)
	if ctime != nil && cdate != nil {
		stamp := strings.TrimSpace(cdate[1]) + " " + strings.TrimSpace(ctime[1])
		t, err := time.Parse(commitTimeLayout, stamp)
		if err != nil {
			t, err = timeutil.ParseCommitTime(stamp)
		}
		if err == nil {
			b.CommitTime = t.UTC()
		}
	}
	if b.CommitTime.IsZero() {
		b.CommitTime = time.Now().UTC()
	}

	return b, nil
}
