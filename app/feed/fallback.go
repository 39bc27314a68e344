package feed

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/blepo/app/video"
)

var _ Source = (*FallbackSource)(nil)

// FallbackSource asks the secondary source only when the primary reports
// 404, which for the RSS feed means the feed is disabled for that channel.
// Outages and bad data are returned as-is.
type FallbackSource struct {
	primary   Source
	secondary Source
}

func NewFallbackSource(primary, secondary Source) *FallbackSource {
	return &FallbackSource{
		primary:   primary,
		secondary: secondary,
	}
}

func (s *FallbackSource) Fetch(ctx context.Context, channel video.Channel) ([]video.Video, error) {
	videos, err := s.primary.Fetch(ctx, channel)
	if err == nil || !IsNotFound(err) {
		return videos, err
	}

	slog.Info("Primary source returned 404, trying fallback", "channel", channel.Name, "channel_id", channel.ID.String())
	return s.secondary.Fetch(ctx, channel)
}
