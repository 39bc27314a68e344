package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/blepo/app/video"
)

const guidPrefix = "yt:video:"

// Parser turns a YouTube channel Atom feed into videos.
type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte, channel video.Channel) ([]video.Video, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, ParseError(fmt.Errorf("failed to parse feed: %w", err))
	}

	videos := make([]video.Video, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		v, err := p.normalizeItem(item, channel)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}

	return videos, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item, channel video.Channel) (video.Video, error) {
	id, err := video.ParseVideoID(p.extractVideoID(item))
	if err != nil {
		return video.Video{}, ParseError(fmt.Errorf("invalid video ID: %w", err))
	}

	if item.PublishedParsed == nil {
		return video.Video{}, ParseError(fmt.Errorf("invalid date '%s' for video %s", item.Published, id))
	}

	return video.Video{
		ID:          id,
		Title:       item.Title,
		URL:         cmp.Or(item.Link, "https://www.youtube.com/watch?v="+id.String()),
		Published:   item.PublishedParsed.UTC(),
		ChannelName: channel.Name,
		ChannelID:   channel.ID,
	}, nil
}

// extractVideoID prefers the yt:videoId element, then the entry id
// ("yt:video:<id>"), then the v= parameter of the watch link.
func (p *Parser) extractVideoID(item *gofeed.Item) string {
	if values := item.Extensions["yt"]["videoId"]; len(values) > 0 {
		if id := strings.TrimSpace(values[0].Value); id != "" {
			return id
		}
	}

	if strings.HasPrefix(item.GUID, guidPrefix) {
		return strings.TrimPrefix(item.GUID, guidPrefix)
	}

	if u, err := url.Parse(item.Link); err == nil {
		return u.Query().Get("v")
	}

	return ""
}
