package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const appName = "blepo"

type rawCfg struct {
	// Files
	ConfigPath string `long:"config" env:"BLEPO_CONFIG" description:"Channels file (default: $XDG_CONFIG_HOME/blepo/config.yml)"`
	DataDir    string `long:"data-dir" env:"BLEPO_DATA_DIR" description:"Directory for watched state (default: $XDG_DATA_HOME/blepo)"`
	Store      string `long:"store" env:"BLEPO_STORE" default:"json" choice:"json" choice:"sqlite" description:"Watched state backend"`

	// Sources
	Timeout        int     `long:"timeout" env:"BLEPO_TIMEOUT" default:"30" description:"Timeout in seconds for HTTP requests"`
	YtDlpTimeout   int     `long:"yt-dlp-timeout" env:"BLEPO_YTDLP_TIMEOUT" default:"0" description:"Timeout in seconds for a yt-dlp listing, 0 for none"`
	UserAgent      string  `long:"user-agent" env:"USER_AGENT" default:"blepo/1.0" description:"User agent string for HTTP requests"`
	YtDlpBinary    string  `long:"yt-dlp" env:"BLEPO_YTDLP" default:"yt-dlp" description:"yt-dlp binary used when a channel feed is unavailable"`
	PlayerBinary   string  `long:"player" env:"BLEPO_PLAYER" default:"mpv" description:"Media player binary"`
	ShortsRate     float64 `long:"shorts-rate" env:"BLEPO_SHORTS_RATE" default:"10" description:"Short-form checks per second"`
	ShortsBurst    int     `long:"shorts-burst" env:"BLEPO_SHORTS_BURST" default:"5" description:"Short-form check burst size"`
	MaxConcurrency int     `long:"max-concurrency" env:"BLEPO_MAX_CONCURRENCY" default:"0" description:"Maximum concurrent fetches or checks, 0 for unlimited"`

	// HTTP API
	Serve        bool   `long:"serve" env:"BLEPO_SERVE" description:"Run the HTTP API instead of the interactive prompt"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" description:"Timezone for displayed dates (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

// Load reads .env, then flags and environment from os.Args.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	configPath, err := resolveConfigPath(raw.ConfigPath)
	if err != nil {
		return nil, err
	}

	dataDir, err := resolveDataDir(raw.DataDir)
	if err != nil {
		return nil, err
	}

	if raw.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %d", raw.Timeout)
	}
	if raw.YtDlpTimeout < 0 {
		return nil, fmt.Errorf("yt-dlp timeout must not be negative, got %d", raw.YtDlpTimeout)
	}

	cfg := &Cfg{
		ConfigPath:     configPath,
		DataDir:        dataDir,
		Store:          raw.Store,
		Timeout:        time.Duration(raw.Timeout) * time.Second,
		YtDlpTimeout:   time.Duration(raw.YtDlpTimeout) * time.Second,
		UserAgent:      raw.UserAgent,
		YtDlpBinary:    raw.YtDlpBinary,
		PlayerBinary:   raw.PlayerBinary,
		ShortsRate:     raw.ShortsRate,
		ShortsBurst:    raw.ShortsBurst,
		MaxConcurrency: raw.MaxConcurrency,
		Serve:          raw.Serve,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not determine config directory: %w", err)
	}
	return filepath.Join(dir, appName, "config.yml"), nil
}

// resolveDataDir follows the XDG base directory layout.
func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine data directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
