package cfg

import (
	"time"
)

type Cfg struct {
	// Files
	ConfigPath string
	DataDir    string
	Store      string

	// Sources
	Timeout        time.Duration
	YtDlpTimeout   time.Duration
	UserAgent      string
	YtDlpBinary    string
	PlayerBinary   string
	ShortsRate     float64
	ShortsBurst    int
	MaxConcurrency int

	// HTTP API
	Serve        bool
	Port         string
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
