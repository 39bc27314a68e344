package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/blepo/app/video"
)

const defaultFeedBaseURL = "https://www.youtube.com/feeds/videos.xml"

// RSSSource reads the public Atom feed YouTube publishes for each channel.
type RSSSource struct {
	httpClient *http.Client
	parser     *Parser
	baseURL    string
	userAgent  string
	timeout    time.Duration
}

type RSSOption func(*RSSSource)

// WithFeedBaseURL points the source at another feed endpoint.
func WithFeedBaseURL(url string) RSSOption {
	return func(s *RSSSource) {
		s.baseURL = url
	}
}

func WithUserAgent(userAgent string) RSSOption {
	return func(s *RSSSource) {
		s.userAgent = userAgent
	}
}

func WithTimeout(timeout time.Duration) RSSOption {
	return func(s *RSSSource) {
		s.timeout = timeout
	}
}

func NewRSSSource(httpClient *http.Client, parser *Parser, opts ...RSSOption) *RSSSource {
	s := &RSSSource{
		httpClient: httpClient,
		parser:     parser,
		baseURL:    defaultFeedBaseURL,
		userAgent:  "blepo/1.0",
		timeout:    30 * time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RSSSource) Fetch(ctx context.Context, channel video.Channel) ([]video.Video, error) {
	data, err := s.fetchFeed(ctx, fmt.Sprintf("%s?channel_id=%s", s.baseURL, channel.ID))
	if err != nil {
		return nil, err
	}

	videos, err := s.parser.Run(data, channel)
	if err != nil {
		return nil, err
	}

	slog.Debug("Feed fetched", "source", "rss", "channel", channel.Name, "videos", len(videos))
	return videos, nil
}

func (s *RSSSource) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, NetworkError(fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, StatusError(resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NetworkError(fmt.Errorf("failed to read response body: %w", err))
	}

	return data, nil
}
