// Package storage caches scraped remote builds in SQLite so listing
// and update checks work between fetches without hitting the network.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/timeutil"
)

// Storage represents the SQLite storage layer
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new storage instance
func NewStorage(dbPath string) (*Storage, error) {
	log.Debug().Str("path", dbPath).Msg("Opening database")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug().Msg("Database initialized successfully")
	return storage, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// initSchema creates the database schema
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS remote_builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		branch TEXT NOT NULL,
		subversion TEXT NOT NULL,
		build_hash TEXT NOT NULL DEFAULT '',
		commit_time TEXT NOT NULL,
		url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_remote_builds_branch ON remote_builds(branch);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// ReplaceBranch swaps the cached builds of one branch for a fresh
// scrape result, atomically.
func (s *Storage) ReplaceBranch(branch string, builds []buildinfo.BuildInfo) error {
	log.Debug().Str("branch", branch).Int("builds", len(builds)).Msg("Replacing cached builds")

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM remote_builds WHERE branch = ?`, branch); err != nil {
		return fmt.Errorf("failed to clear branch: %w", err)
	}

	insert := `
		INSERT INTO remote_builds (branch, subversion, build_hash, commit_time, url)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, b := range builds {
		_, err := tx.Exec(insert, b.Branch, b.Subversion, b.BuildHash,
			b.CommitTime.UTC().Format(time.RFC3339), b.Link)
		if err != nil {
			return fmt.Errorf("failed to insert build: %w", err)
		}
	}

	return tx.Commit()
}

// ListAll retrieves every cached remote build
func (s *Storage) ListAll() ([]buildinfo.BuildInfo, error) {
	return s.list(`SELECT branch, subversion, build_hash, commit_time, url FROM remote_builds ORDER BY id`)
}

// ListBranch retrieves the cached builds of one branch
func (s *Storage) ListBranch(branch string) ([]buildinfo.BuildInfo, error) {
	return s.list(`SELECT branch, subversion, build_hash, commit_time, url FROM remote_builds WHERE branch = ? ORDER BY id`, branch)
}

func (s *Storage) list(query string, args ...any) ([]buildinfo.BuildInfo, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query builds: %w", err)
	}
	defer rows.Close()

	var builds []buildinfo.BuildInfo
	for rows.Next() {
		var branch, subversion, hash, commitTime, url string
		if err := rows.Scan(&branch, &subversion, &hash, &commitTime, &url); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}

		ct, err := timeutil.ParseCommitTime(commitTime)
		if err != nil {
			log.Debug().Str("commit_time", commitTime).Msg("Unreadable cached commit time")
		}
		builds = append(builds, buildinfo.New(url, subversion, hash, ct, branch))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating builds: %w", err)
	}

	log.Debug().Int("count", len(builds)).Msg("Retrieved cached builds")
	return builds, nil
}

// LastFetch returns when the cache was last refreshed, or the zero
// time when it never was.
func (s *Storage) LastFetch() (time.Time, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'last_fetch'`).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read last fetch: %w", err)
	}
	return timeutil.ParseISO(value)
}

// SetLastFetch records a cache refresh
func (s *Storage) SetLastFetch(t time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('last_fetch', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		t.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record last fetch: %w", err)
	}
	return nil
}
