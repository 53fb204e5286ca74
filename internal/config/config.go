package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration as read from YAML.
type Config struct {
	Server struct {
		Host        string        `yaml:"host"`
		Port        string        `yaml:"port"`
		Prefork     bool          `yaml:"prefork"`
		Debug       bool          `yaml:"debug"`
		ReadTimeout time.Duration `yaml:"read_timeout"`
	} `yaml:"server"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	Meme MemeConfig `yaml:"meme"`

	Cache struct {
		RedisHost   string `yaml:"redis_host"`
		RateLimitDB int    `yaml:"rate_limit_db"`
		StatsDB     int    `yaml:"stats_db"`
	} `yaml:"cache"`

	RateLimiter struct {
		Interval          time.Duration `yaml:"interval"`
		EnableUserLimiter bool          `yaml:"enable_user_limiter"`
		UserLimit         int           `yaml:"user_limit"`
	} `yaml:"rate_limiter"`

	Auth struct {
		Postgres       PostgresConfig `yaml:"postgres"`
		ReloadInterval time.Duration  `yaml:"reload_interval"`
	} `yaml:"auth"`
}

// MemeConfig drives the caption pipeline and the external image tool.
type MemeConfig struct {
	ToolPath              string        `yaml:"tool_path"`
	TmpDir                string        `yaml:"tmp_dir"`
	FontPath              string        `yaml:"font_path"`
	FillColor             string        `yaml:"fill_color"`
	StrokeColor           string        `yaml:"stroke_color"`
	StrokeWeight          float64       `yaml:"stroke_weight"`
	Gravity               string        `yaml:"gravity"`
	Padding               float64       `yaml:"padding"`
	MaxTextLength         int           `yaml:"max_text_length"`
	MaxImageBytes         int64         `yaml:"max_image_bytes"`
	FetchTimeout          time.Duration `yaml:"fetch_timeout"`
	CommandTimeout        time.Duration `yaml:"command_timeout"`
	MaxConcurrentCommands int           `yaml:"max_concurrent_commands"`
}

// PostgresConfig holds the connection settings of the API token store.
// Host may also carry a full postgres:// URL.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Enabled reports whether a token store is configured.
func (p PostgresConfig) Enabled() bool {
	return strings.TrimSpace(p.Host) != ""
}

// gravities accepted by gm/magick -gravity and the draw primitive.
var gravities = map[string]bool{
	"northwest": true, "north": true, "northeast": true,
	"west": true, "center": true, "east": true,
	"southwest": true, "south": true, "southeast": true,
}

// Load reads the configuration from $CONFIG_PATH, or config.yaml when unset.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadOrDefault behaves like Load but falls back to environment overrides on
// top of the defaults when the file does not exist.
func LoadOrDefault() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		var cfg Config
		applyEnv(&cfg)
		applyDefaults(&cfg)
		return cfg
	}
	return LoadFrom(path)
}

// LoadFrom reads, defaults and validates the configuration at path.
// It panics when the file cannot be used, the service cannot start without it.
func LoadFrom(path string) Config {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

func applyEnv(cfg *Config) {
	if os.Getenv("IS_LOCAL") != "" {
		cfg.Server.Debug = true
	}
	if v := os.Getenv("MEME_TOOL"); v != "" {
		cfg.Meme.ToolPath = v
	}
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}

	m := &cfg.Meme
	if m.ToolPath == "" {
		m.ToolPath = "gm"
	}
	if m.TmpDir == "" {
		m.TmpDir = os.TempDir()
	}
	if m.FontPath == "" {
		m.FontPath = "resources/impact.ttf"
	}
	if m.FillColor == "" {
		m.FillColor = "#FFF"
	}
	if m.StrokeColor == "" {
		m.StrokeColor = "#000"
	}
	if m.StrokeWeight == 0 {
		m.StrokeWeight = 1
	}
	if m.Gravity == "" {
		m.Gravity = "center"
	}
	if m.Padding == 0 {
		m.Padding = 40
	}
	if m.MaxTextLength == 0 {
		m.MaxTextLength = 200
	}
	if m.MaxImageBytes == 0 {
		m.MaxImageBytes = 10 << 20
	}
	if m.FetchTimeout == 0 {
		m.FetchTimeout = 10 * time.Second
	}
	if m.CommandTimeout == 0 {
		m.CommandTimeout = 20 * time.Second
	}

	if cfg.RateLimiter.Interval == 0 {
		cfg.RateLimiter.Interval = time.Minute
	}
	if cfg.Auth.ReloadInterval == 0 {
		cfg.Auth.ReloadInterval = time.Minute
	}
}

// Validate checks values that defaults cannot fix.
func (c Config) Validate() error {
	switch {
	case c.Server.Port == "":
		return fmt.Errorf("server.port is empty")
	case c.Meme.Padding < 0:
		return fmt.Errorf("meme.padding must not be negative")
	case c.Meme.MaxTextLength <= 0:
		return fmt.Errorf("meme.max_text_length must be positive")
	case c.Meme.MaxImageBytes <= 0:
		return fmt.Errorf("meme.max_image_bytes must be positive")
	case c.Meme.FetchTimeout <= 0:
		return fmt.Errorf("meme.fetch_timeout must be positive")
	case c.Meme.CommandTimeout <= 0:
		return fmt.Errorf("meme.command_timeout must be positive")
	case c.Meme.MaxConcurrentCommands < 0:
		return fmt.Errorf("meme.max_concurrent_commands must not be negative")
	case !gravities[strings.ToLower(c.Meme.Gravity)]:
		return fmt.Errorf("meme.gravity %q is not supported", c.Meme.Gravity)
	case c.RateLimiter.Interval <= 0:
		return fmt.Errorf("rate_limiter.interval must be positive")
	case c.RateLimiter.UserLimit < 0:
		return fmt.Errorf("rate_limiter.user_limit must not be negative")
	case c.Auth.ReloadInterval <= 0:
		return fmt.Errorf("auth.reload_interval must be positive")
	}
	return nil
}
