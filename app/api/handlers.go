package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/blepo/app/config"
	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/feed"
	"github.com/lysyi3m/blepo/app/video"
	"github.com/lysyi3m/blepo/app/watch"
)

func NewHandler(runner RunnerInterface, store database.WatchedStore, newPlayer PlayerFactory,
	configCache *config.Cache, version string) *Handler {
	return &Handler{
		runner:      runner,
		store:       store,
		newPlayer:   newPlayer,
		configCache: configCache,
		generator:   feed.NewGenerator(),
		version:     version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	h.mu.RLock()
	cached := len(h.videos)
	refreshedAt := h.refreshedAt
	h.mu.RUnlock()

	health := map[string]interface{}{
		"status":        "ok",
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"channels":      h.configCache.GetChannelCount(),
		"cached_videos": cached,
	}

	if !refreshedAt.IsZero() {
		health["refreshed_at"] = refreshedAt.In(time.Local).Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.refresh(c)
	if err != nil {
		slog.Error("Pipeline error", "operation", "list_videos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := make([]VideoResponse, 0, len(videos))
	for i, v := range videos {
		response = append(response, newVideoResponse(i+1, v))
	}

	c.JSON(http.StatusOK, gin.H{
		"videos": response,
		"total":  len(response),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	videos, ok := h.cached()
	if !ok {
		var err error
		videos, err = h.refresh(c)
		if err != nil {
			slog.Error("Pipeline error", "operation", "get_feed", "error", err)
			c.Status(http.StatusInternalServerError)
			return
		}
	}

	rss, err := h.generator.Run(feed.ChannelInfo{
		Title:    "blepo",
		SelfLink: fmt.Sprintf("%s://%s/feed.xml", scheme(c), c.Request.Host),
		Version:  h.version,
	}, videos)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(videos)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) MarkWatched(c *gin.Context) {
	v, ok := h.selectVideo(c)
	if !ok {
		return
	}

	if err := watch.MarkOnly(v, h.store); err != nil {
		slog.Error("Store error", "operation", "mark_watched", "video_id", v.ID.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"video":   newVideoResponse(c.GetInt("number"), v),
	})
}

func (h *Handler) PlayVideo(c *gin.Context) {
	v, ok := h.selectVideo(c)
	if !ok {
		return
	}

	p, err := h.newPlayer()
	if err != nil {
		slog.Error("Player unavailable", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := watch.MarkAndPlay(v, h.store, p); err != nil {
		slog.Error("Playback error", "operation", "play", "video_id", v.ID.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"video":   newVideoResponse(c.GetInt("number"), v),
	})
}

func (h *Handler) refresh(c *gin.Context) ([]video.Video, error) {
	appConfig, err := h.configCache.Get()
	if err != nil {
		return nil, err
	}

	ctx := c.Request.Context()
	videos, err := h.runner.Run(ctx, appConfig.Channels, appConfig.Window, h.store)
	if err != nil {
		return nil, err
	}
	// a list built on a cancelled request is incomplete
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.videos = videos
	h.refreshedAt = time.Now()
	h.mu.Unlock()

	return videos, nil
}

func (h *Handler) cached() ([]video.Video, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.videos, !h.refreshedAt.IsZero()
}

// selectVideo resolves the :number path parameter against the cached list
// and writes the error response itself when it cannot.
func (h *Handler) selectVideo(c *gin.Context) (video.Video, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid number: %s", c.Param("number"))})
		return video.Video{}, false
	}

	index, err := video.ParseSelectionIndex(n)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return video.Video{}, false
	}

	videos, ok := h.cached()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no video list loaded, request /videos first"})
		return video.Video{}, false
	}

	if index.Offset() >= len(videos) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": fmt.Sprintf("video #%d not found (have %d unwatched videos)", index.Number(), len(videos)),
		})
		return video.Video{}, false
	}

	c.Set("number", index.Number())
	return videos[index.Offset()], true
}

func scheme(c *gin.Context) string {
	if c.Request.TLS != nil {
		return "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}
