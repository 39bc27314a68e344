package database

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/google/renameio/v2"

	"github.com/lysyi3m/blepo/app/video"
)

const watchedFileName = "watched.json"

var _ WatchedStore = (*JSONStore)(nil)

// JSONStore keeps watched ids as a JSON array in <dir>/watched.json.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONStore(dataDir string) (*JSONStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, writeError(fmt.Errorf("failed to create data directory: %w", err))
	}

	return &JSONStore{path: filepath.Join(dataDir, watchedFileName)}, nil
}

func (s *JSONStore) Path() string {
	return s.path
}

func (s *JSONStore) LoadWatched() (video.WatchedSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load()
	if err != nil {
		return nil, readError(err)
	}
	return set, nil
}

func (s *JSONStore) MarkWatched(id video.VideoID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.load()
	if err != nil {
		return readError(err)
	}

	if set.Has(id) {
		return nil
	}
	set.Add(id)

	if err := s.save(set); err != nil {
		return writeError(err)
	}
	return nil
}

func (s *JSONStore) load() (video.WatchedSet, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return video.NewWatchedSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var ids []video.VideoID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	return video.NewWatchedSet(ids...), nil
}

func (s *JSONStore) save(set video.WatchedSet) error {
	ids := make([]string, 0, set.Len())
	for id := range set {
		ids = append(ids, id.String())
	}
	slices.Sort(ids)

	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode watched ids: %w", err)
	}

	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}
