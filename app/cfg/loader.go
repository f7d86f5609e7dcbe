package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// EnvFile is read before parsing when present. Variables already set in the
// environment take precedence.
const EnvFile = ".env"

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Sources
	FeedsFile string   `long:"feeds-file" env:"FEEDS_FILE" default:"feeds.txt" description:"File listing feed URLs (.txt, one per line, or .yml)"`
	Feeds     []string `long:"feed" env:"FEEDS" env-delim:";" description:"Additional feed URL (repeatable; FEEDS is ';'-separated)"`

	// Digest
	Days   int    `long:"days" env:"DAYS" default:"7" description:"Include posts published within this many days"`
	Output string `long:"output" env:"OUTPUT" default:"digest.html" description:"Where to write the HTML digest in one-shot mode"`

	// Fetching
	WorkerCount  int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of concurrent feed fetchers"`
	FetchTimeout int    `long:"timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-feed fetch timeout in seconds"`
	MaxRetries   int    `long:"max-retries" env:"MAX_RETRIES" default:"2" description:"Retries for failed fetches"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"Feed Digest/1.0" description:"User agent string for HTTP requests"`

	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"digest.db" description:"SQLite database for run history"`

	// Serve mode
	Serve           bool   `long:"serve" env:"SERVE" description:"Run as a server that rebuilds the digest periodically"`
	Port            string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve mode)"`
	RefreshInterval int    `long:"refresh-interval" env:"REFRESH_INTERVAL" default:"3600" description:"Digest rebuild interval in seconds (serve mode)"`
	APIAccessKey    string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for the refresh endpoint (optional)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for digest timestamps (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command-line flags and environment variables. It returns
// nil, nil when help was requested.
func Load() (*Cfg, error) {
	if err := loadEnvFile(EnvFile); err != nil {
		return nil, err
	}
	return parse(nil)
}

func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validate(&raw); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		FeedsFile:       raw.FeedsFile,
		Feeds:           raw.Feeds,
		Days:            raw.Days,
		Output:          raw.Output,
		WorkerCount:     raw.WorkerCount,
		FetchTimeout:    time.Duration(raw.FetchTimeout) * time.Second,
		MaxRetries:      raw.MaxRetries,
		UserAgent:       raw.UserAgent,
		DBPath:          raw.DBPath,
		Serve:           raw.Serve,
		Port:            raw.Port,
		RefreshInterval: time.Duration(raw.RefreshInterval) * time.Second,
		APIAccessKey:    raw.APIAccessKey,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	return cfg, nil
}

func validate(raw *rawCfg) error {
	nonNegativeFields := map[string]int{
		"days":        raw.Days,
		"max retries": raw.MaxRetries,
	}
	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	positiveFields := map[string]int{
		"worker count":     raw.WorkerCount,
		"timeout":          raw.FetchTimeout,
		"refresh interval": raw.RefreshInterval,
	}
	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Cfg) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	return loc, nil
}
