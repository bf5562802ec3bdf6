package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "segue"

// Defaults applied by the getters.
const (
	DefaultSeekStep     = 5 * time.Second
	DefaultLookahead    = 2 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
	DefaultSampleRate   = 44100
	DefaultVolume       = 1.0
	DefaultLogLevel     = "info"
)

type Config struct {
	SeekStep     time.Duration `koanf:"seek_step"`     // e.g. "5s"
	Lookahead    time.Duration `koanf:"lookahead"`     // how early the next track is primed
	PollInterval time.Duration `koanf:"poll_interval"` // position refresh and drain check period
	SampleRate   int           `koanf:"sample_rate"`   // output rate in Hz
	Volume       *float64      `koanf:"volume"`        // 0.0-1.0 (default: 1.0)

	// Desktop integration (Linux only)
	InhibitSuspend *bool `koanf:"inhibit_suspend"` // block suspend while playing (default: true)
	MPRIS          *bool `koanf:"mpris"`           // expose media keys over D-Bus (default: true)

	Log LogConfig `koanf:"log"`
}

// LogConfig holds the rotating log file settings.
type LogConfig struct {
	Level      string `koanf:"level"`        // debug, info, warn, error (default: info)
	File       string `koanf:"file"`         // default: $XDG_STATE_HOME/segue/segue.log
	MaxSizeMB  int    `koanf:"max_size_mb"`  // default: 10
	MaxBackups int    `koanf:"max_backups"`  // default: 3
	MaxAgeDays int    `koanf:"max_age_days"` // default: 28
}

// Load reads the config. With an explicit path only that file is read and
// it must exist; otherwise the default locations are tried, last wins.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	} else {
		for _, p := range getConfigPaths() {
			if _, err := os.Stat(p); err == nil {
				if err := k.Load(file.Provider(p), toml.Parser()); err != nil {
					return nil, fmt.Errorf("load config %s: %w", p, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/segue/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetSeekStep returns the seek increment for the seek keys.
func (c *Config) GetSeekStep() time.Duration {
	if c.SeekStep <= 0 {
		return DefaultSeekStep
	}
	return c.SeekStep
}

// GetLookahead returns how long before the end of a track the next one is
// opened.
func (c *Config) GetLookahead() time.Duration {
	if c.Lookahead <= 0 {
		return DefaultLookahead
	}
	return c.Lookahead
}

func (c *Config) GetPollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

// GetSampleRate returns the output rate, restricted to 8-192 kHz.
func (c *Config) GetSampleRate() int {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return DefaultSampleRate
	}
	return c.SampleRate
}

func (c *Config) GetVolume() float64 {
	if c.Volume == nil || *c.Volume < 0 || *c.Volume > 1 {
		return DefaultVolume
	}
	return *c.Volume
}

func (c *Config) InhibitSuspendEnabled() bool {
	return c.InhibitSuspend == nil || *c.InhibitSuspend
}

func (c *Config) MPRISEnabled() bool {
	return c.MPRIS == nil || *c.MPRIS
}

// GetLogConfig returns the log configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Level = DefaultLogLevel
	}
	if cfg.File == "" {
		cfg.File = filepath.Join(xdg.StateHome, appName, appName+".log")
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays <= 0 {
		cfg.MaxAgeDays = 28
	}

	return cfg
}
