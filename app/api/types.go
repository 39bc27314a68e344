package api

import (
	"context"
	"sync"
	"time"

	"github.com/lysyi3m/blepo/app/config"
	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/feed"
	"github.com/lysyi3m/blepo/app/pipeline"
	"github.com/lysyi3m/blepo/app/player"
	"github.com/lysyi3m/blepo/app/video"
)

type RunnerInterface interface {
	Run(ctx context.Context, channels []video.Channel, window video.FetchWindow, store database.WatchedStore) ([]video.Video, error)
}

var _ RunnerInterface = (*pipeline.Pipeline)(nil)

type GeneratorInterface interface {
	Run(info feed.ChannelInfo, videos []video.Video) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type PlayerFactory func() (player.Player, error)

type Handler struct {
	runner      RunnerInterface
	store       database.WatchedStore
	newPlayer   PlayerFactory
	configCache *config.Cache
	generator   GeneratorInterface
	version     string

	mu          sync.RWMutex
	videos      []video.Video
	refreshedAt time.Time
}

type VideoResponse struct {
	Number      int       `json:"number"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Published   time.Time `json:"published"`
	ChannelName string    `json:"channel_name"`
	ChannelID   string    `json:"channel_id"`
}

func newVideoResponse(number int, v video.Video) VideoResponse {
	return VideoResponse{
		Number:      number,
		ID:          v.ID.String(),
		Title:       v.Title,
		URL:         v.URL,
		Published:   v.Published,
		ChannelName: v.ChannelName,
		ChannelID:   v.ChannelID.String(),
	}
}
