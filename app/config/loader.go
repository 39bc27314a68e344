package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/blepo/app/video"
)

// Load reads and validates the channel configuration at path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &NotFoundError{Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	slog.Debug("Loaded configuration", "path", path, "channels", len(config.Channels), "window_days", config.Window.Days())
	return config, nil
}

// Parse validates YAML configuration content
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	days := DefaultFetchWindowDays
	if raw.FetchWindowDays != nil {
		days = *raw.FetchWindowDays
	}

	window, err := video.ParseFetchWindow(days)
	if err != nil {
		return nil, err
	}

	channels := make([]video.Channel, 0, len(raw.Channels))
	for _, rc := range raw.Channels {
		id, err := video.ParseChannelID(rc.ID)
		if err != nil {
			return nil, &ChannelError{Name: rc.Name, Err: err}
		}
		channels = append(channels, video.Channel{Name: rc.Name, ID: id})
	}

	return &Config{
		Window:   window,
		Channels: channels,
	}, nil
}
