package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Configuration defaults
const (
	DefaultKWinTimeout    = 2 * time.Second
	DefaultPollInterval   = 1000 * time.Millisecond
	DefaultFlushInterval  = 15 * time.Minute
	DefaultMergeThreshold = 30 * time.Second // Merge sessions if gap is less than this
	DefaultMinDuration    = 10 * time.Second // Ignore sessions shorter than this

	MinPollInterval  = 50 * time.Millisecond
	MinFlushInterval = 1 * time.Minute
)

// Duration is a time.Duration written as "1s" or "15m" in config.toml.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	Backend  string         `toml:"backend"`
	Format   string         `toml:"format"`
	KWin     KWinConfig     `toml:"kwin"`
	Sway     SwayConfig     `toml:"sway"`
	Watch    WatchConfig    `toml:"watch"`
	Postgres PostgresConfig `toml:"postgres"`
	Webhook  WebhookConfig  `toml:"webhook"`
}

type KWinConfig struct {
	Timeout Duration `toml:"timeout"`
}

type SwayConfig struct {
	SubtractBar bool `toml:"subtract_bar"`
}

type WatchConfig struct {
	Interval       Duration `toml:"interval"`
	FlushInterval  Duration `toml:"flush_interval"`
	MergeThreshold Duration `toml:"merge_threshold"`
	MinDuration    Duration `toml:"min_duration"`
	IgnoreFile     string   `toml:"ignore_file"`
}

type PostgresConfig struct {
	ConnectionString string `toml:"connection_string"`
}

type WebhookConfig struct {
	URL     string            `toml:"url"`
	Headers map[string]string `toml:"headers"`
}

func DefaultConfig() *Config {
	return &Config{
		Backend: "auto",
		Format:  "json",
		KWin: KWinConfig{
			Timeout: Duration{DefaultKWinTimeout},
		},
		Sway: SwayConfig{
			SubtractBar: true,
		},
		Watch: WatchConfig{
			Interval:       Duration{DefaultPollInterval},
			FlushInterval:  Duration{DefaultFlushInterval},
			MergeThreshold: Duration{DefaultMergeThreshold},
			MinDuration:    Duration{DefaultMinDuration},
		},
	}
}

func ConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "active-window"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// IgnoreFilePath returns the configured ignore list, or the default one next
// to config.toml.
func (c *Config) IgnoreFilePath() (string, error) {
	if c.Watch.IgnoreFile != "" {
		return c.Watch.IgnoreFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "ignore"), nil
}

// Load reads config.toml from path, or from ConfigPath when path is empty.
// A missing default file yields the defaults; a missing explicit file is an
// error. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			cfg.applyEnv()
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ACTIVE_WINDOW_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("POSTGRES_CONNECTION_STRING"); v != "" && c.Postgres.ConnectionString == "" {
		c.Postgres.ConnectionString = v
	}
	if v := os.Getenv("WEBHOOK_URL"); v != "" && c.Webhook.URL == "" {
		c.Webhook.URL = v
	}
}

// Validate checks the intervals before anything starts polling.
func (c *Config) Validate() error {
	if c.KWin.Timeout.Duration <= 0 {
		return fmt.Errorf("kwin timeout must be positive, got %v", c.KWin.Timeout)
	}
	if c.Watch.Interval.Duration < MinPollInterval {
		return fmt.Errorf("poll interval too short (minimum %v), got %v", MinPollInterval, c.Watch.Interval)
	}
	if c.Watch.FlushInterval.Duration < MinFlushInterval {
		return fmt.Errorf("flush interval must be at least %v, got %v", MinFlushInterval, c.Watch.FlushInterval)
	}
	if c.Watch.MergeThreshold.Duration < 0 {
		return fmt.Errorf("merge threshold must be non-negative, got %v", c.Watch.MergeThreshold)
	}
	if c.Watch.MinDuration.Duration < 0 {
		return fmt.Errorf("minimum session duration must be non-negative, got %v", c.Watch.MinDuration)
	}
	return nil
}

// Save writes the config as TOML to path, or to ConfigPath when path is empty.
func (c *Config) Save(path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}

// LoadEnvFile loads environment variables from a .env file. Variables that
// are already set are left alone.
func LoadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Split on first '=' sign
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		if _, set := os.LookupEnv(key); set {
			continue
		}
		os.Setenv(key, value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}
