// Package config loads the glycoworks configuration from a TOML file
// with environment variable overrides. The zero configuration is fully
// usable: file-backed cache and dataset store under the user's home
// directory, no external services.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration.
type Config struct {
	LogLevel string      `toml:"log_level"` // debug, info, warn, error
	Cache    CacheConfig `toml:"cache"`
	Store    StoreConfig `toml:"store"`
	HTTP     HTTPConfig  `toml:"http"`
	ML       MLConfig    `toml:"ml"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // file, redis, null
	Dir       string   `toml:"dir"`     // file backend root
	TTL       duration `toml:"ttl"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
}

// StoreConfig selects and tunes the dataset store backend.
type StoreConfig struct {
	Backend       string `toml:"backend"` // file, mongo
	Dir           string `toml:"dir"`     // file backend root
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// HTTPConfig covers the API server and outbound chemistry clients.
type HTTPConfig struct {
	Listen     string   `toml:"listen"`
	ClientTTL  duration `toml:"client_ttl"` // chemistry response cache lifetime
	RetryCount int      `toml:"retry_count"`
}

// MLConfig points at model weight files on disk.
type MLConfig struct {
	ModelPath  string `toml:"model_path"`
	LectinPath string `toml:"lectin_path"`
}

// duration lets TOML carry values like "12h" or "30m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Cache: CacheConfig{
			Backend:   "file",
			TTL:       duration{7 * 24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
		Store: StoreConfig{
			Backend:       "file",
			MongoDatabase: "glycoworks",
		},
		HTTP: HTTPConfig{
			Listen:     ":8080",
			ClientTTL:  duration{30 * 24 * time.Hour},
			RetryCount: 3,
		},
	}
}

// DefaultPath returns the conventional config file location,
// ~/.config/glycoworks/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "glycoworks", "config.toml"), nil
}

// Load reads the configuration from path, layered over the defaults and
// under the GLYCOWORKS_* environment overrides. An empty path uses
// [DefaultPath]; a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	envString("GLYCOWORKS_LOG_LEVEL", &c.LogLevel)
	envString("GLYCOWORKS_CACHE_BACKEND", &c.Cache.Backend)
	envString("GLYCOWORKS_CACHE_DIR", &c.Cache.Dir)
	envDuration("GLYCOWORKS_CACHE_TTL", &c.Cache.TTL)
	envString("GLYCOWORKS_REDIS_ADDR", &c.Cache.RedisAddr)
	envInt("GLYCOWORKS_REDIS_DB", &c.Cache.RedisDB)
	envString("GLYCOWORKS_STORE_BACKEND", &c.Store.Backend)
	envString("GLYCOWORKS_STORE_DIR", &c.Store.Dir)
	envString("GLYCOWORKS_MONGO_URI", &c.Store.MongoURI)
	envString("GLYCOWORKS_MONGO_DATABASE", &c.Store.MongoDatabase)
	envString("GLYCOWORKS_LISTEN", &c.HTTP.Listen)
	envDuration("GLYCOWORKS_CLIENT_TTL", &c.HTTP.ClientTTL)
	envInt("GLYCOWORKS_RETRY_COUNT", &c.HTTP.RetryCount)
	envString("GLYCOWORKS_MODEL_PATH", &c.ML.ModelPath)
	envString("GLYCOWORKS_LECTIN_PATH", &c.ML.LectinPath)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envDuration(key string, dst *duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch c.Cache.Backend {
	case "file", "redis", "null":
	default:
		return fmt.Errorf("invalid cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "file", "mongo":
	default:
		return fmt.Errorf("invalid store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "mongo" && c.Store.MongoURI == "" {
		return fmt.Errorf("store backend mongo requires mongo_uri")
	}
	if c.HTTP.RetryCount < 0 {
		return fmt.Errorf("retry_count must be non-negative")
	}
	return nil
}
