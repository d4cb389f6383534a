// Package config handles configuration for the terminal client: defaults,
// an optional config file and command-line flags, applied in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/taskboard/internal/flagx"
)

type Config struct {
	ServerEndpointAddr    string        `mapstructure:"server_endpoint_addr"`
	ReminderInterval      time.Duration `mapstructure:"reminder_interval"`
	UnreadRefreshInterval time.Duration `mapstructure:"unread_refresh_interval"`
	// TimeZone is an IANA name; empty means the system zone.
	TimeZone       string        `mapstructure:"time_zone"`
	DatabasePath   string        `mapstructure:"database_path"`
	KeyringService string        `mapstructure:"keyring_service"`
	KeyringDir     string        `mapstructure:"keyring_dir"`
	LogFile        string        `mapstructure:"log_file"`
	LogLevel       string        `mapstructure:"log_level"`
	EffectTimeout  time.Duration `mapstructure:"effect_timeout"`
	// ExportDir receives a copy of every audit export; empty keeps exports
	// on the server only.
	ExportDir string `mapstructure:"export_dir"`
	// KeyringPassword unlocks the file keyring backend; it can also come
	// from TASKBOARD_KEYRING_PASSWORD. Empty means ask on the terminal.
	KeyringPassword string `mapstructure:"keyring_password"`
}

// KeyringPasswordEnv overrides the keyring password from the file.
const KeyringPasswordEnv = "TASKBOARD_KEYRING_PASSWORD"

func (c *Config) LoadDefaults() {
	dir := defaultDir()

	c.ServerEndpointAddr = "localhost:50051"
	c.ReminderInterval = 60 * time.Second
	c.UnreadRefreshInterval = 30 * time.Second
	c.TimeZone = ""
	c.DatabasePath = filepath.Join(dir, "taskboard.db")
	c.KeyringService = "taskboard"
	c.KeyringDir = filepath.Join(dir, "credentials")
	c.LogFile = ""
	c.LogLevel = "warn"
	c.EffectTimeout = 10 * time.Second
	c.ExportDir = ""
}

func defaultDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "taskboard")
	}
	return ".taskboard"
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Load builds a Config from defaults, the file named by -c/-config (if any)
// and the remaining flags in args.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := loadFile(cfg, flagx.ConfigFileFlag(args)); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv(KeyringPasswordEnv); ok {
		cfg.KeyringPassword = v
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if cfg.ReminderInterval <= 0 || cfg.UnreadRefreshInterval <= 0 {
		return nil, fmt.Errorf("intervals must be positive")
	}
	return cfg, nil
}

func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
