package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"blenderctl/internal/timeutil"
)

// SidecarName is the metadata file written next to each local build.
const SidecarName = ".blinfo"

// FileVersion is bumped when the sidecar schema changes. A mismatch forces a
// full re-derivation of the record from the build itself.
const FileVersion = "1.5"

type sidecarDoc struct {
	FileVersion string          `json:"file_version"`
	Blinfo      []sidecarRecord `json:"blinfo"`
}

type sidecarRecord struct {
	Branch           string `json:"branch"`
	Subversion       string `json:"subversion"`
	BuildHash        string `json:"build_hash"`
	CommitTime       string `json:"commit_time"`
	CustomName       string `json:"custom_name"`
	IsFavorite       bool   `json:"is_favorite"`
	CustomExecutable string `json:"custom_executable"`
	IsFrozen         bool   `json:"is_frozen"`
}

// ReadSidecar loads the sidecar for the build directory. current reports
// whether the file was written by this schema version; when false the caller
// should re-derive the record and write it back. Any malformed sidecar is an
// error, which callers treat the same as a missing one.
func ReadSidecar(dir string) (info BuildInfo, current bool, err error) {
	path := filepath.Join(dir, SidecarName)
	data, err := os.ReadFile(path)
	if err != nil {
		return BuildInfo{}, false, err
	}

	var doc sidecarDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return BuildInfo{}, false, fmt.Errorf("malformed sidecar %s: %w", path, err)
	}
	if len(doc.Blinfo) == 0 {
		return BuildInfo{}, false, fmt.Errorf("sidecar %s has no build entry", path)
	}
	rec := doc.Blinfo[0]

	commitTime, err := timeutil.ParseCommitTime(rec.CommitTime)
	if err != nil {
		log.Debug().Str("path", path).Str("commit_time", rec.CommitTime).Msg("Unreadable sidecar commit time")
		commitTime = time.Time{}
	}

	info = BuildInfo{
		Link:             dir,
		Subversion:       rec.Subversion,
		BuildHash:        rec.BuildHash,
		CommitTime:       commitTime,
		Branch:           rec.Branch,
		CustomName:       rec.CustomName,
		IsFavorite:       rec.IsFavorite,
		CustomExecutable: rec.CustomExecutable,
		IsFrozen:         rec.IsFrozen,
	}
	return info, doc.FileVersion == FileVersion, nil
}

// WriteSidecar writes the record's sidecar into the build directory,
// overwriting any previous one.
func (b BuildInfo) WriteSidecar(dir string) error {
	doc := sidecarDoc{
		FileVersion: FileVersion,
		Blinfo: []sidecarRecord{{
			Branch:           b.Branch,
			Subversion:       b.Subversion,
			BuildHash:        b.BuildHash,
			CommitTime:       b.CommitTime.Format(time.RFC3339),
			CustomName:       b.CustomName,
			IsFavorite:       b.IsFavorite,
			CustomExecutable: b.CustomExecutable,
			IsFrozen:         b.IsFrozen,
		}},
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	path := filepath.Join(dir, SidecarName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	log.Debug().Str("path", path).Msg("Sidecar written")
	return nil
}
