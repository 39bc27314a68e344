package config

import (
	"fmt"

	"github.com/lysyi3m/blepo/app/video"
)

// Config is the validated channel configuration.
type Config struct {
	Window   video.FetchWindow
	Channels []video.Channel
}

type rawConfig struct {
	FetchWindowDays *int         `yaml:"fetch_window_days"`
	Channels        []rawChannel `yaml:"channels"`
}

type rawChannel struct {
	Name string `yaml:"name"`
	ID   string `yaml:"id"`
}

// NotFoundError is returned when the config file does not exist yet.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found at %s\n\nCreate it with content like:\n\n%s", e.Path, ExampleConfig)
}

// ChannelError reports a channel entry whose id is rejected.
type ChannelError struct {
	Name string
	Err  error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("invalid channel %q: %v", e.Name, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}
