package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultUserAgent mimics a desktop browser; many job boards refuse bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Config holds application configuration.
type Config struct {
	DBPath      string           `toml:"db_path"`
	MetricsFile string           `toml:"metrics_file"`
	Fetch       FetchConfig      `toml:"fetch"`
	Log         LogConfig        `toml:"log"`
	Platforms   []PlatformConfig `toml:"platform"`
}

// FetchConfig controls page retrieval.
type FetchConfig struct {
	UserAgent       string   `toml:"user_agent"`
	Timeout         Duration `toml:"timeout"`
	RespectRobots   bool     `toml:"respect_robots"`
	Headless        bool     `toml:"headless"`
	HeadlessTimeout Duration `toml:"headless_timeout"`
}

// LogConfig toggles zap development output.
type LogConfig struct {
	Development bool `toml:"development"`
}

// PlatformConfig maps a URL pattern to a source name.
type PlatformConfig struct {
	Name    string `toml:"name"`
	Pattern string `toml:"pattern"`
}

// Duration decodes TOML strings like "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultDBPath returns the default database path using XDG_DATA_HOME.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "jobtrack", "jobs.db")
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "jobtrack", "config.toml")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath: DefaultDBPath(),
		Fetch: FetchConfig{
			UserAgent:       DefaultUserAgent,
			Timeout:         Duration{10 * time.Second},
			HeadlessTimeout: Duration{45 * time.Second},
		},
	}
}

// Load builds Config from defaults, the TOML file at path and the
// environment. A missing file is only an error when explicit is set.
// A .env file next to the config file seeds variables that are not
// already set.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath()
	}
	path = ExpandPath(path)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) || explicit {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	// Env overrides
	if db := os.Getenv("JOBTRACK_DB"); db != "" {
		cfg.DBPath = db
	}
	if ua := os.Getenv("JOBTRACK_USER_AGENT"); ua != "" {
		cfg.Fetch.UserAgent = ua
	}
	if timeout := os.Getenv("JOBTRACK_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			cfg.Fetch.Timeout = Duration{d}
		}
	}
	if headless := os.Getenv("JOBTRACK_HEADLESS"); headless != "" {
		if b, err := strconv.ParseBool(headless); err == nil {
			cfg.Fetch.Headless = b
		}
	}

	cfg.DBPath = ExpandPath(cfg.DBPath)
	cfg.MetricsFile = ExpandPath(cfg.MetricsFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("read env file %s: %w", path, err)
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path must be set")
	}
	if c.Fetch.Timeout.Duration <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if c.Fetch.Headless && c.Fetch.HeadlessTimeout.Duration <= 0 {
		return fmt.Errorf("fetch.headless_timeout must be > 0 when headless is enabled")
	}
	for _, p := range c.Platforms {
		if p.Name == "" {
			return fmt.Errorf("platform name must be set (pattern %q)", p.Pattern)
		}
		if _, err := regexp.Compile(p.Pattern); err != nil {
			return fmt.Errorf("platform %s: invalid pattern %q: %w", p.Name, p.Pattern, err)
		}
	}
	return nil
}
