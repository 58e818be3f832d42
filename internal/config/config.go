package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the upload service.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the upload service.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone all generated events are localized to
	// (e.g. "Europe/Vilnius").
	Timezone string `yaml:"timezone" json:"timezone"`

	// Institution is the name prefixed to event locations.
	Institution string `yaml:"institution" json:"institution"`

	// CalendarName is written as X-WR-CALNAME on generated calendars.
	CalendarName string `yaml:"calendar_name" json:"calendar_name"`

	// MaxUploadMB caps the accepted PDF upload size in mebibytes.
	MaxUploadMB int `yaml:"max_upload_mb" json:"max_upload_mb"`

	// FallbackSemesterStart / FallbackSemesterEnd are used when the
	// timetable text carries no recognizable semester date range.
	// Format: YYYY-MM-DD.
	FallbackSemesterStart string `yaml:"fallback_semester_start" json:"fallback_semester_start"`
	FallbackSemesterEnd   string `yaml:"fallback_semester_end" json:"fallback_semester_end"`

	// HistoryDB is the sqlite file recording past conversions. Empty
	// disables history.
	HistoryDB string `yaml:"history_db" json:"history_db"`

	// HistoryRetentionDays is how long conversion records are kept.
	HistoryRetentionDays int `yaml:"history_retention_days" json:"history_retention_days"`

	// PruneCron is a cron-style schedule for history pruning.
	PruneCron string `yaml:"prune" json:"prune"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:                "127.0.0.1:8080",
		Timezone:              "Europe/Vilnius",
		Institution:           "Vilnius Tech",
		CalendarName:          "Vilnius Tech Schedule",
		MaxUploadMB:           16,
		FallbackSemesterStart: "2025-09-04",
		FallbackSemesterEnd:   "2026-01-26",
		HistoryDB:             "./var/vtcal-history.db",
		HistoryRetentionDays:  90,
		PruneCron:             "0 3 * * *",
		BasicAuth:             nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Vilnius"
	}
	if c.Institution == "" {
		c.Institution = "Vilnius Tech"
	}
	if c.CalendarName == "" {
		c.CalendarName = "Vilnius Tech Schedule"
	}
	if c.MaxUploadMB <= 0 {
		c.MaxUploadMB = 16
	}
	if c.FallbackSemesterStart == "" {
		c.FallbackSemesterStart = "2025-09-04"
	}
	if c.FallbackSemesterEnd == "" {
		c.FallbackSemesterEnd = "2026-01-26"
	}
	if c.HistoryRetentionDays <= 0 {
		c.HistoryRetentionDays = 90
	}
	if c.PruneCron == "" {
		c.PruneCron = "0 3 * * *"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
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

// Save writes the given configuration to the specified path.
//
// The write is atomic (temp file + rename in the target directory) and the
// final file ends up with 0600 permissions.
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

	tmp, err := os.CreateTemp(dir, ".vtcal-config-*.tmp")
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
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method that delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
