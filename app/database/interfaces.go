package database

import (
	"github.com/lysyi3m/blepo/app/video"
)

// WatchedStore persists the set of videos the user has already seen.
type WatchedStore interface {
	LoadWatched() (video.WatchedSet, error)
	// MarkWatched is idempotent.
	MarkWatched(id video.VideoID) error
}
