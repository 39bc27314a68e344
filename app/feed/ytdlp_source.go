package feed

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/lysyi3m/blepo/app/video"
)

const (
	channelURLTemplate = "https://www.youtube.com/channel/%s/videos"
	watchURLTemplate   = "https://www.youtube.com/watch?v=%s"
	uploadDateLayout   = "20060102"
)

type ytDlpEntry struct {
	ID         string  `json:"id"`
	Title      *string `json:"title"`
	URL        *string `json:"url"`
	Timestamp  *int64  `json:"timestamp"`
	UploadDate *string `json:"upload_date"`
}

// YtDlpSource lists a channel's uploads by running yt-dlp. It is slower than
// the feed but works for channels whose feed is unavailable.
type YtDlpSource struct {
	binary  string
	timeout time.Duration
	now     func() time.Time
}

func NewYtDlpSource(binary string, timeout time.Duration) *YtDlpSource {
	return &YtDlpSource{
		binary:  cmp.Or(binary, "yt-dlp"),
		timeout: timeout,
		now:     time.Now,
	}
}

func (s *YtDlpSource) Fetch(ctx context.Context, channel video.Channel) ([]video.Video, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	url := fmt.Sprintf(channelURLTemplate, channel.ID)
	cmd := exec.CommandContext(ctx, s.binary,
		"--flat-playlist",
		"--dump-json",
		"--extractor-args", "youtubetab:approximate_date",
		url)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, NetworkError(fmt.Errorf("yt-dlp failed: %s", strings.TrimSpace(stderr.String())))
		}
		return nil, NetworkError(fmt.Errorf("failed to run yt-dlp: %w", err))
	}

	videos, err := ParseYtDlpOutput(stdout.Bytes(), channel, s.now)
	if err != nil {
		return nil, err
	}

	slog.Debug("Feed fetched", "source", "yt-dlp", "channel", channel.Name, "videos", len(videos))
	return videos, nil
}

// ParseYtDlpOutput parses the JSON-lines output of `yt-dlp --dump-json`.
// Entries without any date are stamped with now().
func ParseYtDlpOutput(data []byte, channel video.Channel, now func() time.Time) ([]video.Video, error) {
	var videos []video.Video

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		v, err := parseYtDlpEntry(line, channel, now)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	if err := scanner.Err(); err != nil {
		return nil, ParseError(err)
	}

	if videos == nil {
		videos = []video.Video{}
	}
	return videos, nil
}

func parseYtDlpEntry(line []byte, channel video.Channel, now func() time.Time) (video.Video, error) {
	var entry ytDlpEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return video.Video{}, ParseError(err)
	}

	id, err := video.ParseVideoID(entry.ID)
	if err != nil {
		return video.Video{}, ParseError(fmt.Errorf("invalid video ID: %w", err))
	}

	var published time.Time
	switch {
	case entry.Timestamp != nil:
		published = time.Unix(*entry.Timestamp, 0).UTC()
	case entry.UploadDate != nil:
		published, err = time.Parse(uploadDateLayout, *entry.UploadDate)
		if err != nil {
			return video.Video{}, ParseError(fmt.Errorf("invalid upload_date '%s': %w", *entry.UploadDate, err))
		}
	default:
		published = now().UTC()
	}

	v := video.Video{
		ID:          id,
		URL:         fmt.Sprintf(watchURLTemplate, id),
		Published:   published,
		ChannelName: channel.Name,
		ChannelID:   channel.ID,
	}
	if entry.Title != nil {
		v.Title = *entry.Title
	}
	if entry.URL != nil && *entry.URL != "" {
		v.URL = *entry.URL
	}

	return v, nil
}
