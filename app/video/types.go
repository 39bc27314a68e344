package video

import (
	"errors"
	"strings"
	"time"
)

const channelIDPrefix = "UC"

var (
	ErrEmptyChannelID       = errors.New("channel ID cannot be empty")
	ErrInvalidChannelPrefix = errors.New("channel ID must start with 'UC'")
	ErrEmptyVideoID         = errors.New("video ID cannot be empty")
	ErrInvalidFetchWindow   = errors.New("fetch_window_days must be positive")
	ErrInvalidSelection     = errors.New("video number must be at least 1")
)

// ChannelID identifies a YouTube channel. The zero value is not a valid ID;
// use ParseChannelID.
type ChannelID struct {
	id string
}

func ParseChannelID(id string) (ChannelID, error) {
	if id == "" {
		return ChannelID{}, ErrEmptyChannelID
	}
	if !strings.HasPrefix(id, channelIDPrefix) {
		return ChannelID{}, ErrInvalidChannelPrefix
	}
	return ChannelID{id: id}, nil
}

func (c ChannelID) String() string {
	return c.id
}

type Channel struct {
	Name string
	ID   ChannelID
}

// VideoID identifies a video within YouTube. It is the key for watched-state
// lookups and short-form checks.
type VideoID struct {
	id string
}

func ParseVideoID(id string) (VideoID, error) {
	if id == "" {
		return VideoID{}, ErrEmptyVideoID
	}
	return VideoID{id: id}, nil
}

func (v VideoID) String() string {
	return v.id
}

func (v VideoID) MarshalText() ([]byte, error) {
	return []byte(v.id), nil
}

func (v *VideoID) UnmarshalText(text []byte) error {
	parsed, err := ParseVideoID(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Video is an entry produced by a feed source. Watched state is tracked by
// the store, never on the value itself.
type Video struct {
	ID          VideoID
	Title       string
	URL         string
	Published   time.Time
	ChannelName string
	ChannelID   ChannelID
}

// FetchWindow is the recency window in days.
type FetchWindow struct {
	days int
}

func ParseFetchWindow(days int) (FetchWindow, error) {
	if days <= 0 {
		return FetchWindow{}, ErrInvalidFetchWindow
	}
	return FetchWindow{days: days}, nil
}

func (w FetchWindow) Days() int {
	return w.days
}

// Cutoff returns the oldest publish time still inside the window.
func (w FetchWindow) Cutoff(now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -w.days)
}

// SelectionIndex is the 1-based number a user picks from a listing.
type SelectionIndex struct {
	n int
}

func ParseSelectionIndex(n int) (SelectionIndex, error) {
	if n < 1 {
		return SelectionIndex{}, ErrInvalidSelection
	}
	return SelectionIndex{n: n}, nil
}

func (s SelectionIndex) Number() int {
	return s.n
}

// Offset converts the selection to a 0-based slice index.
func (s SelectionIndex) Offset() int {
	return s.n - 1
}

// WatchedSet is a snapshot of watched video IDs.
type WatchedSet map[VideoID]struct{}

func NewWatchedSet(ids ...VideoID) WatchedSet {
	set := make(WatchedSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s WatchedSet) Has(id VideoID) bool {
	_, ok := s[id]
	return ok
}

func (s WatchedSet) Add(id VideoID) {
	s[id] = struct{}{}
}

func (s WatchedSet) Len() int {
	return len(s)
}
