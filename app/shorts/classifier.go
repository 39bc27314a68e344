package shorts

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/lysyi3m/blepo/app/video"
)

const defaultShortsBaseURL = "https://www.youtube.com/shorts"

// Classifier decides whether a video is short-form. It never fails: any
// uncertainty is reported as "not short".
type Classifier interface {
	IsShort(ctx context.Context, id video.VideoID) bool
}

type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Rate      rate.Limit
	Burst     int
}

// HTTPClassifier probes /shorts/<id>. YouTube answers 200 for a short and
// redirects to /watch for anything else.
type HTTPClassifier struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
}

func NewHTTPClassifier(config Config) *HTTPClassifier {
	if config.BaseURL == "" {
		config.BaseURL = defaultShortsBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Rate <= 0 {
		config.Rate = rate.Inf
	}
	if config.Burst <= 0 {
		config.Burst = 1
	}

	return &HTTPClassifier{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter:   rate.NewLimiter(config.Rate, config.Burst),
		baseURL:   config.BaseURL,
		userAgent: config.UserAgent,
	}
}

func (c *HTTPClassifier) IsShort(ctx context.Context, id video.VideoID) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		slog.Debug("Shorts check skipped", "video_id", id.String(), "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fmt.Sprintf("%s/%s", c.baseURL, id), nil)
	if err != nil {
		return false
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Shorts check failed", "video_id", id.String(), "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
