package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/blepo/app/config"
	"github.com/lysyi3m/blepo/app/database"
	"github.com/lysyi3m/blepo/app/feed"
	"github.com/lysyi3m/blepo/app/pipeline"
	"github.com/lysyi3m/blepo/app/player"
	"github.com/lysyi3m/blepo/app/video"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRunner struct {
	videos []video.Video
	err    error
	runs   int
}

func (r *stubRunner) Run(ctx context.Context, channels []video.Channel, window video.FetchWindow, store database.WatchedStore) ([]video.Video, error) {
	r.runs++
	return r.videos, r.err
}

type memoryStore struct {
	watched video.WatchedSet
	err     error
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

type fixture struct {
	runner      *stubRunner
	store       *memoryStore
	player      *recordingPlayer
	configCache *config.Cache
	engine      *gin.Engine
}

func newFixture(t *testing.T, apiKey string) *fixture {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configPath, []byte(config.ExampleConfig), 0644); err != nil {
		t.Fatal(err)
	}
	configCache := config.NewCache(configPath)
	appConfig, err := configCache.Get()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	var videos []video.Video
	for i, id := range []string{"aaa", "bbb"} {
		videoID, _ := video.ParseVideoID(id)
		videos = append(videos, video.Video{
			ID:          videoID,
			Title:       "Title " + id,
			URL:         "https://www.youtube.com/watch?v=" + id,
			Published:   time.Date(2024, 3, 10-i, 12, 0, 0, 0, time.UTC),
			ChannelName: "Channel Name",
			ChannelID:   appConfig.Channels[0].ID,
		})
	}

	f := &fixture{
		runner:      &stubRunner{videos: videos},
		store:       &memoryStore{watched: video.NewWatchedSet()},
		player:      &recordingPlayer{},
		configCache: configCache,
	}

	handler := NewHandler(f.runner, f.store, func() (player.Player, error) {
		return f.player, nil
	}, configCache, "test")
	f.engine = NewServer(handler, apiKey)

	return f
}

func (f *fixture) do(method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["channels"] != float64(1) {
		t.Errorf("Expected 1 channel, got %v", body["channels"])
	}
	if body["cached_videos"] != float64(0) {
		t.Errorf("Expected 0 cached videos, got %v", body["cached_videos"])
	}
}

func TestListVideos(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodGet, "/videos", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Videos []VideoResponse `json:"videos"`
		Total  int             `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Total != 2 || len(body.Videos) != 2 {
		t.Fatalf("Expected 2 videos, got %d", body.Total)
	}
	if body.Videos[0].Number != 1 || body.Videos[0].ID != "aaa" {
		t.Errorf("Unexpected first entry: %+v", body.Videos[0])
	}
	if body.Videos[1].Number != 2 || body.Videos[1].ID != "bbb" {
		t.Errorf("Unexpected second entry: %+v", body.Videos[1])
	}
}

func TestListVideosStoreFailure(t *testing.T) {
	f := newFixture(t, "")
	f.runner.err = &database.StoreError{Op: database.OpRead, Err: errors.New("disk gone")}

	w := f.do(http.MethodGet, "/videos", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestMarkWatched(t *testing.T) {
	f := newFixture(t, "")

	if w := f.do(http.MethodPost, "/videos/1/watched", nil); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before the list is loaded, got %d", w.Code)
	}

	f.do(http.MethodGet, "/videos", nil)

	w := f.do(http.MethodPost, "/videos/2/watched", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	bbb, _ := video.ParseVideoID("bbb")
	if !f.store.watched.Has(bbb) || f.store.watched.Len() != 1 {
		t.Errorf("Expected only bbb to be marked watched")
	}
	if len(f.player.played) != 0 {
		t.Errorf("Expected nothing to be played, got %v", f.player.played)
	}
}

func TestSelectionErrors(t *testing.T) {
	f := newFixture(t, "")
	f.do(http.MethodGet, "/videos", nil)

	tests := []struct {
		path   string
		status int
	}{
		{"/videos/abc/watched", http.StatusBadRequest},
		{"/videos/0/watched", http.StatusBadRequest},
		{"/videos/-1/play", http.StatusBadRequest},
		{"/videos/3/watched", http.StatusNotFound},
		{"/videos/99/play", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := f.do(http.MethodPost, tt.path, nil)
			if w.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
		})
	}
}

func TestPlayVideo(t *testing.T) {
	f := newFixture(t, "")
	f.do(http.MethodGet, "/videos", nil)

	w := f.do(http.MethodPost, "/videos/1/play", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(f.player.played) != 1 || f.player.played[0] != "https://www.youtube.com/watch?v=aaa" {
		t.Errorf("Expected aaa to be played, got %v", f.player.played)
	}
	aaa, _ := video.ParseVideoID("aaa")
	if !f.store.watched.Has(aaa) {
		t.Error("Expected played video to be marked watched")
	}
}

func TestPlayVideoFailure(t *testing.T) {
	f := newFixture(t, "")
	f.player.err = &player.PlayError{Err: errors.New("mpv crashed")}
	f.do(http.MethodGet, "/videos", nil)

	w := f.do(http.MethodPost, "/videos/1/play", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
	if f.store.watched.Len() != 0 {
		t.Error("Expected watched state to be untouched")
	}
}

func TestFeedXML(t *testing.T) {
	f := newFixture(t, "")

	w := f.do(http.MethodGet, "/feed.xml", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "application/xml") {
		t.Errorf("Unexpected content type: %s", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Feed-Items") != "2" {
		t.Errorf("Expected 2 feed items, got %s", w.Header().Get("X-Feed-Items"))
	}
	if !strings.Contains(w.Body.String(), "yt:video:aaa") {
		t.Error("Expected feed to contain the cached videos")
	}

	// a loaded list is reused
	f.do(http.MethodGet, "/feed.xml", nil)
	if f.runner.runs != 1 {
		t.Errorf("Expected a single pipeline run, got %d", f.runner.runs)
	}
}

func TestAuthMiddleware(t *testing.T) {
	f := newFixture(t, "secret")

	tests := []struct {
		name    string
		headers map[string]string
		status  int
	}{
		{"missing key", nil, http.StatusUnauthorized},
		{"wrong key", map[string]string{"X-API-Key": "nope"}, http.StatusUnauthorized},
		{"header key", map[string]string{"X-API-Key": "secret"}, http.StatusOK},
		{"bearer key", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodGet, "/videos", tt.headers)
			if w.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, w.Code)
			}
		})
	}

	if w := f.do(http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Errorf("Expected health to stay public, got %d", w.Code)
	}
}

type ctxSource struct {
	videos []video.Video
}

func (s *ctxSource) Fetch(ctx context.Context, channel video.Channel) ([]video.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, feed.NetworkError(err)
	}
	return s.videos, nil
}

type noShorts struct{}

func (noShorts) IsShort(ctx context.Context, id video.VideoID) bool {
	return false
}

func TestCancelledRefreshKeepsCachedList(t *testing.T) {
	f := newFixture(t, "")

	recent := f.runner.videos[0]
	recent.Published = time.Now().Add(-time.Hour)
	handler := NewHandler(pipeline.New(&ctxSource{videos: []video.Video{recent}}, noShorts{}), f.store,
		func() (player.Player, error) { return f.player, nil }, f.configCache, "test")
	f.engine = NewServer(handler, "")

	if w := f.do(http.MethodGet, "/videos", nil); w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/videos", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	if w.Code == http.StatusOK {
		t.Errorf("Expected cancelled refresh to fail, got 200: %s", w.Body.String())
	}

	if videos, _ := handler.cached(); len(videos) != 1 {
		t.Errorf("Expected 1 cached video, got %d", len(videos))
	}
	if w := f.do(http.MethodPost, "/videos/1/watched", nil); w.Code != http.StatusOK {
		t.Errorf("Expected previous list to survive, got %d: %s", w.Code, w.Body.String())
	}
}
