package cfg

import "time"

type Cfg struct {
	// Sources
	FeedsFile string
	Feeds     []string

	// Digest
	Days   int
	Output string

	// Fetching
	WorkerCount  int
	FetchTimeout time.Duration
	MaxRetries   int
	UserAgent    string

	// Storage
	DBPath string

	// Serve mode
	Serve           bool
	Port            string
	RefreshInterval time.Duration
	APIAccessKey    string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
