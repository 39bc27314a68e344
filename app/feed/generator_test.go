package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/blepo/app/video"
)

func TestGenerateRSS(t *testing.T) {
	generator := NewGenerator()
	channel := testChannel(t)

	first, _ := video.ParseVideoID("abc123def45")
	second, _ := video.ParseVideoID("xyz789ghi01")

	videos := []video.Video{
		{
			ID:          first,
			Title:       "Tips & Tricks <2024>",
			URL:         "https://www.youtube.com/watch?v=abc123def45",
			Published:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
			ChannelName: channel.Name,
			ChannelID:   channel.ID,
		},
		{
			ID:          second,
			Title:       "Second Video",
			URL:         "https://www.youtube.com/watch?v=xyz789ghi01",
			Published:   time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
			ChannelName: channel.Name,
			ChannelID:   channel.ID,
		},
	}

	rss, err := generator.Run(ChannelInfo{
		Title:    "My Videos",
		SelfLink: "http://localhost:8080/feed.xml",
		Version:  "test",
	}, videos)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// Verify RSS structure
	if !strings.Contains(rss, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Error("RSS should contain XML declaration")
	}
	if !strings.Contains(rss, `<rss version="2.0"`) {
		t.Error("RSS should contain RSS version")
	}
	if !strings.Contains(rss, "<title>My Videos</title>") {
		t.Error("RSS should contain channel title")
	}
	if !strings.Contains(rss, `<atom:link href="http://localhost:8080/feed.xml" rel="self"`) {
		t.Error("RSS should contain self link")
	}
	if !strings.Contains(rss, "<generator>blepo/test</generator>") {
		t.Error("RSS should contain generator")
	}

	// Verify items
	if strings.Count(rss, "<item>") != 2 {
		t.Errorf("Expected 2 items, got %d", strings.Count(rss, "<item>"))
	}
	if !strings.Contains(rss, `<guid isPermaLink="false">yt:video:abc123def45</guid>`) {
		t.Error("RSS should contain video guid")
	}
	if !strings.Contains(rss, "<title>Tips &amp; Tricks &lt;2024&gt;</title>") {
		t.Error("RSS should escape item titles")
	}
	if strings.Index(rss, "abc123def45") > strings.Index(rss, "xyz789ghi01") {
		t.Error("RSS should keep the given order")
	}
}

func TestGenerateEmptyRSS(t *testing.T) {
	rss, err := NewGenerator().Run(ChannelInfo{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if strings.Contains(rss, "<item>") {
		t.Error("Empty feed should not contain items")
	}
	if !strings.Contains(rss, "<title>blepo</title>") {
		t.Error("Empty feed should use default title")
	}
	if strings.Contains(rss, "atom:link href") {
		t.Error("Feed without self link should omit atom:link")
	}
}
