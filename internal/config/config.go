// Package config loads codstats settings from defaults, an optional YAML
// file and CODSTATS_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CODSTATS_"
	// PathEnvVar names an explicit config file.
	PathEnvVar = "CODSTATS_CONFIG"
	// DefaultCacheKey is the storage slot holding the normalized matches.
	DefaultCacheKey = "codStatsData"
)

// DefaultPaths are searched for a config file when none is given.
var DefaultPaths = []string{"codstats.yaml", "codstats.yml"}

type Config struct {
	API      APIConfig      `koanf:"api"`
	CSV      CSVConfig      `koanf:"csv"`
	Cache    CacheConfig    `koanf:"cache"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
}

// APIConfig points at the match-history service.
type APIConfig struct {
	BaseURL string        `koanf:"base_url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
	Limit   int           `koanf:"limit" validate:"gte=1,lte=10000"`
	UseAPI  bool          `koanf:"use_api"`
}

// CSVConfig locates the bundled fallback export. Path may be a file or an
// http(s) URL.
type CSVConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type CacheConfig struct {
	Path string `koanf:"path" validate:"required"`
	Key  string `koanf:"key" validate:"required"`
}

// AnalysisConfig tunes session detection.
type AnalysisConfig struct {
	SessionGap     time.Duration `koanf:"session_gap" validate:"gt=0"`
	MinSessionSize int           `koanf:"min_session_size" validate:"gte=1"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
			Limit:   10000,
			UseAPI:  true,
		},
		CSV:   CSVConfig{Path: "cod_stats1.csv"},
		Cache: CacheConfig{Path: DefaultCachePath(), Key: DefaultCacheKey},
		Analysis: AnalysisConfig{
			SessionGap:     2 * time.Hour,
			MinSessionSize: 3,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Log:    LogConfig{Level: "info", Format: "console"},
	}
}

// DefaultCachePath is ~/.codstats/cache.db, or ./codstats.db when the home
// directory is unknown.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "codstats.db"
	}
	return filepath.Join(home, ".codstats", "cache.db")
}

// Load layers defaults, the config file at path (or the first of
// DefaultPaths found), and the environment. A .env file in the working
// directory is read into the environment first when present.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKey maps CODSTATS_API_BASE_URL to api.base_url. The first segment
// after the prefix is the section. CODSTATS_CONFIG is not a setting.
func envKey(key string) string {
	if key == PathEnvVar {
		return ""
	}
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return ""
	}
	return section + "." + rest
}
