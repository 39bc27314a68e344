package watch

import (
	"log/slog"

	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/player"
	"github.com/lysyi3m/blepo/app/video"
)

// MarkAndPlay plays v and records it as watched only once playback has
// started. A play failure leaves watched state untouched.
func MarkAndPlay(v video.Video, store database.WatchedStore, p player.Player) error {
	if err := p.Play(v.URL); err != nil {
		return err
	}

	if err := store.MarkWatched(v.ID); err != nil {
		return err
	}

	slog.Debug("Video played", "video_id", v.ID.String(), "channel", v.ChannelName)
	return nil
}

// MarkOnly records v as watched without playing it.
func MarkOnly(v video.Video, store database.WatchedStore) error {
	if err := store.MarkWatched(v.ID); err != nil {
		return err
	}

	slog.Debug("Video marked watched", "video_id", v.ID.String(), "channel", v.ChannelName)
	return nil
}
