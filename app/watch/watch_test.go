package watch

import (
	"errors"
	"testing"

	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/player"
	"github.com/lysyi3m/blepo/app/video"
)

type memoryStore struct {
	watched video.WatchedSet
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{watched: video.NewWatchedSet()}
}

func (s *memoryStore) LoadWatched() (video.WatchedSet, error) {
	return s.watched, nil
}

func (s *memoryStore) MarkWatched(id video.VideoID) error {
	if s.err != nil {
		return s.err
	}
	s.watched.Add(id)
	return nil
}

type recordingPlayer struct {
	played []string
	err    error
}

func (p *recordingPlayer) Play(url string) error {
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, url)
	return nil
}

func testVideo(t *testing.T) video.Video {
	t.Helper()
	id, err := video.ParseVideoID("abc123")
	if err != nil {
		t.Fatalf("Failed to parse video id: %v", err)
	}
	return video.Video{ID: id, Title: "Test", URL: "https://www.youtube.com/watch?v=abc123"}
}

func TestMarkAndPlay(t *testing.T) {
	v := testVideo(t)
	store := newMemoryStore()
	p := &recordingPlayer{}

	if err := MarkAndPlay(v, store, p); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if len(p.played) != 1 || p.played[0] != v.URL {
		t.Errorf("Expected %s to be played, got: %v", v.URL, p.played)
	}
	if !store.watched.Has(v.ID) {
		t.Error("Expected video to be marked watched")
	}
}

func TestMarkAndPlayFailingPlayer(t *testing.T) {
	v := testVideo(t)
	store := newMemoryStore()
	p := &recordingPlayer{err: &player.PlayError{Err: errors.New("mpv crashed")}}

	err := MarkAndPlay(v, store, p)

	var playErr *player.PlayError
	if !errors.As(err, &playErr) {
		t.Fatalf("Expected *PlayError, got: %v", err)
	}
	if store.watched.Has(v.ID) {
		t.Error("Expected watched state to be untouched after play failure")
	}
}

func TestMarkAndPlayStoreFailure(t *testing.T) {
	v := testVideo(t)
	store := newMemoryStore()
	store.err = &database.StoreError{Op: database.OpWrite, Err: errors.New("read-only")}

	err := MarkAndPlay(v, store, &recordingPlayer{})

	var storeErr *database.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("Expected *StoreError, got: %v", err)
	}
}

func TestMarkOnly(t *testing.T) {
	v := testVideo(t)
	store := newMemoryStore()

	for range 2 {
		if err := MarkOnly(v, store); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
	}

	if store.watched.Len() != 1 || !store.watched.Has(v.ID) {
		t.Errorf("Expected exactly one watched id, got: %d", store.watched.Len())
	}
}
