package config

import (
	"log/slog"
	"os"
	"sync"
	"time"
)

// Cache holds the last valid configuration and reloads it when the file's
// modification time changes. A reload that fails keeps the previous value.
type Cache struct {
	path    string
	config  *Config
	modTime time.Time
	mu      sync.RWMutex
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Run performs the initial load.
func (cc *Cache) Run() error {
	_, err := cc.Get()
	return err
}

func (cc *Cache) Get() (*Config, error) {
	info, err := os.Stat(cc.path)

	cc.mu.RLock()
	current, loadedAt := cc.config, cc.modTime
	cc.mu.RUnlock()

	if current != nil && (err != nil || info.ModTime().Equal(loadedAt)) {
		if err != nil {
			slog.Warn("Configuration file unavailable, keeping previous", "path", cc.path, "error", err)
		}
		return current, nil
	}

	config, loadErr := Load(cc.path)
	if loadErr != nil {
		if current != nil {
			slog.Warn("Configuration reload failed, keeping previous", "path", cc.path, "error", loadErr)
			return current, nil
		}
		return nil, loadErr
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.config = config
	if info != nil {
		cc.modTime = info.ModTime()
	}

	if current != nil {
		slog.Info("Configuration reloaded", "path", cc.path, "channels", len(config.Channels))
	}

	return config, nil
}

func (cc *Cache) GetChannelCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	if cc.config == nil {
		return 0
	}
	return len(cc.config.Channels)
}
