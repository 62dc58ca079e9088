package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Grid display modes. GridModeSummary shows an "available" marker in
// unbooked slots, GridModeDetail shows the "{room}-{timecode}" identifier.
const (
	GridModeSummary = "summary"
	GridModeDetail  = "detail"
)

const (
	defaultListen       = "127.0.0.1:8080"
	defaultTimezone     = "UTC"
	defaultRefreshCron  = "*/5 * * * *"
	defaultCacheDir     = "./var/ptg-cache"
	defaultDayGrace     = "1h"
	defaultEtherpadBase = "https://etherpad.opendev.org/p/"
	defaultICSDomain    = "ptg.opendev.org"
	defaultICSPrefix    = "[PTG]"
	defaultCheckinHint  = "in #%s"
	defaultLogLevel     = "info"

	defaultCaptureWidth  = 1280
	defaultCaptureHeight = 900
	defaultCaptureOutput = "./var/preview.png"
)

// CaptureConfig controls headless screenshots of the board page.
type CaptureConfig struct {
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Output string `yaml:"output" json:"output"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the board and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone the event runs in. Day selection and the
	// realtime anchoring of slots use it.
	Timezone string `yaml:"timezone" json:"timezone"`

	// DocumentURL is either an http(s) URL of the schedule JSON or a path
	// to a local copy of it.
	DocumentURL string `yaml:"document_url" json:"document_url"`

	// RefreshCron is a cron-style schedule string (e.g. "*/5 * * * *").
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the HTTP cache (ETag / Last-Modified + body).
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// DayGrace shifts the clock backwards before computing today's day
	// name, so a day stays current past midnight. "0" disables it.
	DayGrace string `yaml:"day_grace" json:"day_grace"`

	// GridMode selects the placeholder text of unbooked slots.
	GridMode string `yaml:"grid_mode" json:"grid_mode"`

	EtherpadBase string `yaml:"etherpad_base" json:"etherpad_base"`

	// EventStart (YYYY-MM-DD) dates the first day section. When set, slots
	// without a realtime anchor get one derived from their description.
	EventStart string `yaml:"event_start" json:"event_start"`

	ICSDomain string `yaml:"ics_domain" json:"ics_domain"`
	ICSPrefix string `yaml:"ics_prefix" json:"ics_prefix"`

	// CheckinHint is the check-in command shown when nobody is checked into
	// a track. %s is replaced by the track code.
	CheckinHint string `yaml:"checkin_hint" json:"checkin_hint"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if strings.TrimSpace(c.DayGrace) == "" {
		c.DayGrace = defaultDayGrace
	}
	switch c.GridMode {
	case GridModeSummary, GridModeDetail:
	default:
		c.GridMode = GridModeSummary
	}
	if c.EtherpadBase == "" {
		c.EtherpadBase = defaultEtherpadBase
	}
	if c.ICSDomain == "" {
		c.ICSDomain = defaultICSDomain
	}
	if c.ICSPrefix == "" {
		c.ICSPrefix = defaultICSPrefix
	}
	if c.CheckinHint == "" {
		c.CheckinHint = defaultCheckinHint
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Capture.Width <= 0 {
		c.Capture.Width = defaultCaptureWidth
	}
	if c.Capture.Height <= 0 {
		c.Capture.Height = defaultCaptureHeight
	}
	if c.Capture.Output == "" {
		c.Capture.Output = defaultCaptureOutput
	}
}

// Grace returns the parsed DayGrace. Unparseable or negative values give 0.
func (c *Config) Grace() time.Duration {
	s := strings.TrimSpace(c.DayGrace)
	if s == "0" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Location loads Timezone, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EventStartDate parses EventStart in the configured zone. ok is false when
// it is unset or malformed.
func (c *Config) EventStartDate() (time.Time, bool) {
	if c.EventStart == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", c.EventStart, c.Location())
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ApplyEnv loads envFile (if present) into the process environment and
// overrides the matching fields from PTGBOARD_* variables.
func (c *Config) ApplyEnv(envFile string) {
	if envFile != "" {
		// A missing .env file is normal.
		_ = godotenv.Load(envFile)
	}
	overrides := []struct {
		key string
		dst *string
	}{
		{"PTGBOARD_LISTEN", &c.Listen},
		{"PTGBOARD_DOCUMENT_URL", &c.DocumentURL},
		{"PTGBOARD_TIMEZONE", &c.Timezone},
		{"PTGBOARD_LOG_LEVEL", &c.LogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist a default config is written (0600) and
//     returned.
//   - Otherwise the YAML is unmarshalled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Return cfg with the error so the caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".ptgboard-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
