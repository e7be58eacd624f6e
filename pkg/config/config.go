// Package config loads conceptmap settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, by default $XDG_CONFIG_HOME/conceptmap/config.toml
//  3. environment variables, optionally seeded from a .env file
//
// A minimal file:
//
//	[layout]
//	default_depth = 3
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
// Environment overrides are listed in [EnvVars].
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	apperr "github.com/matzehuels/conceptmap/pkg/errors"
)

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreFile  = "file"
	StoreMongo = "mongo"
)

// Config holds every setting.
type Config struct {
	Layout   LayoutConfig   `toml:"layout"`
	Cache    CacheConfig    `toml:"cache"`
	Store    StoreConfig    `toml:"store"`
	Generate GenerateConfig `toml:"generate"`
	Server   ServerConfig   `toml:"server"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	DefaultDepth int `toml:"default_depth"`
	LabelWords   int `toml:"label_words"`
}

// CacheConfig selects the cache backend.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`

	// KeyPrefix namespaces Redis keys. File caches ignore it.
	KeyPrefix string `toml:"key_prefix"`
}

// StoreConfig selects where maps are persisted.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// GenerateConfig configures the language model client.
type GenerateConfig struct {
	Model   string   `toml:"model"`
	BaseURL string   `toml:"base_url"`
	APIKey  string   `toml:"api_key"`
	Timeout Duration `toml:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// GenerateRate is the sustained number of generate requests per second
	// across all clients; GenerateBurst is the bucket size.
	GenerateRate  float64 `toml:"generate_rate"`
	GenerateBurst int     `toml:"generate_burst"`
}

// Duration is a time.Duration written as a string ("90s", "720h") in TOML.
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
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout: LayoutConfig{DefaultDepth: 3, LabelWords: 5},
		Cache:  CacheConfig{Backend: CacheFile, KeyPrefix: "conceptmap:"},
		Store:  StoreConfig{Backend: StoreFile, Database: "conceptmap"},
		Generate: GenerateConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration{2 * time.Minute},
		},
		Server: ServerConfig{
			Addr:          ":8080",
			GenerateRate:  0.5,
			GenerateBurst: 3,
		},
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "conceptmap"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LoadEnv loads variables from .env files without overriding ones already
// set. With no arguments it reads ./.env if present; named files must exist.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		return godotenv.Load()
	}
	return godotenv.Load(files...)
}

// Load reads path on top of the defaults and applies environment
// overrides. An empty path uses [DefaultPath], which may be absent; an
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				return Config{}, apperr.New(apperr.ErrCodeInvalidInput, "%s: unknown settings %s", path, strings.Join(keys, ", "))
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			// No config file yet.
		default:
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnvVars lists the environment variables that override file settings.
var EnvVars = []string{
	"CONCEPTMAP_DEPTH",
	"CONCEPTMAP_CACHE",
	"CONCEPTMAP_CACHE_DIR",
	"CONCEPTMAP_REDIS_URL",
	"CONCEPTMAP_CACHE_PREFIX",
	"CONCEPTMAP_STORE",
	"CONCEPTMAP_STORE_DIR",
	"CONCEPTMAP_MONGO_URI",
	"CONCEPTMAP_MONGO_DB",
	"CONCEPTMAP_MODEL",
	"CONCEPTMAP_ADDR",
	"OPENAI_API_KEY",
	"OPENAI_BASE_URL",
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str("CONCEPTMAP_CACHE", &c.Cache.Backend)
	str("CONCEPTMAP_CACHE_DIR", &c.Cache.Dir)
	str("CONCEPTMAP_REDIS_URL", &c.Cache.RedisURL)
	str("CONCEPTMAP_CACHE_PREFIX", &c.Cache.KeyPrefix)
	str("CONCEPTMAP_STORE", &c.Store.Backend)
	str("CONCEPTMAP_STORE_DIR", &c.Store.Dir)
	str("CONCEPTMAP_MONGO_URI", &c.Store.MongoURI)
	str("CONCEPTMAP_MONGO_DB", &c.Store.Database)
	str("CONCEPTMAP_MODEL", &c.Generate.Model)
	str("CONCEPTMAP_ADDR", &c.Server.Addr)
	str("OPENAI_API_KEY", &c.Generate.APIKey)
	str("OPENAI_BASE_URL", &c.Generate.BaseURL)

	if v, ok := lookup("CONCEPTMAP_DEPTH"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperr.New(apperr.ErrCodeInvalidDepth, "CONCEPTMAP_DEPTH must be an integer, got %q", v)
		}
		c.Layout.DefaultDepth = n
	}
	return nil
}

// Validate checks backend names and ranges.
func (c Config) Validate() error {
	if err := apperr.ValidateDepth(c.Layout.DefaultDepth); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return apperr.New(apperr.ErrCodeInvalidInput, "cache backend redis needs redis_url")
		}
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return apperr.New(apperr.ErrCodeInvalidInput, "store backend mongo needs mongo_uri")
		}
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown store backend %q (want file or mongo)", c.Store.Backend)
	}
	if c.Generate.BaseURL != "" {
		if err := apperr.ValidateURL(c.Generate.BaseURL); err != nil {
			return err
		}
	}
	if c.Server.GenerateRate < 0 || c.Server.GenerateBurst < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "generate rate and burst cannot be negative")
	}
	return nil
}
