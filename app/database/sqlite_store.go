package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lysyi3m/blepo/app/video"
)

const watchedDBName = "watched.db"

var _ WatchedStore = (*SQLiteStore)(nil)

type SQLiteStore struct {
	db *DB
}

// NewSQLiteStore opens <dir>/watched.db and brings its schema up to date.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, writeError(fmt.Errorf("failed to create data directory: %w", err))
	}

	db, err := Open(filepath.Join(dataDir, watchedDBName))
	if err != nil {
		return nil, readError(err)
	}

	version, dirty, err := RunMigrations(db)
	if err != nil {
		db.Close()
		return nil, writeError(err)
	}
	slog.Debug("Database migrations applied", "version", version, "dirty", dirty)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) LoadWatched() (video.WatchedSet, error) {
	rows, err := s.db.Query(`SELECT video_id FROM watched`)
	if err != nil {
		return nil, readError(fmt.Errorf("failed to query watched videos: %w", err))
	}
	defer rows.Close()

	set := video.NewWatchedSet()
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, readError(fmt.Errorf("failed to scan watched video: %w", err))
		}

		id, err := video.ParseVideoID(raw)
		if err != nil {
			return nil, readError(fmt.Errorf("invalid stored video id: %w", err))
		}
		set.Add(id)
	}

	if err := rows.Err(); err != nil {
		return nil, readError(fmt.Errorf("failed to iterate watched videos: %w", err))
	}

	return set, nil
}

func (s *SQLiteStore) MarkWatched(id video.VideoID) error {
	_, err := s.db.Exec(`
		INSERT INTO watched (video_id) VALUES (?)
		ON CONFLICT (video_id) DO NOTHING
	`, id.String())
	if err != nil {
		return writeError(fmt.Errorf("failed to mark %s watched: %w", id, err))
	}
	return nil
}
