package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where config files are searched, in order.
// The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/media-indexer/config.yaml",
	"/etc/media-indexer/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// Config is the full application configuration.
type Config struct {
	Volumes VolumesConfig `koanf:"volumes"`
	Index   IndexConfig   `koanf:"index"`
	Tags    TagsConfig    `koanf:"tags"`
	Store   StoreConfig   `koanf:"store"`
	Cache   CacheConfig   `koanf:"cache"`
	Server  ServerConfig  `koanf:"server"`
}

// VolumesConfig describes the ordered volume roots of an indexing
// batch. The first root is processed in truncate mode when Truncate
// is set; all subsequent roots append.
type VolumesConfig struct {
	Roots        []string      `koanf:"roots"`
	Truncate     bool          `koanf:"truncate"`
	CheckTimeout time.Duration `koanf:"check_timeout"`
}

// IndexConfig tunes the synchronizer pipeline.
type IndexConfig struct {
	NamingRule    string        `koanf:"naming_rule"` // parent-dir, top-dir, root-leaf
	Workers       int           `koanf:"workers"`     // 0 = auto from CPUs
	BatchSize     int           `koanf:"batch_size"`
	RetryAttempts int           `koanf:"retry_attempts"`
	RetryBackoff  time.Duration `koanf:"retry_backoff"`
}

// TagsConfig selects the tag extractor implementation.
type TagsConfig struct {
	// Extractor is "auto" (mdls when available, otherwise none),
	// "mdls", or "none".
	Extractor string `koanf:"extractor"`
	// Timeout bounds one extraction subprocess.
	Timeout time.Duration `koanf:"timeout"`
}

// StoreConfig locates the SQLite store.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// CacheConfig bounds the serving read cache.
type CacheConfig struct {
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
	MaxBytes   int64         `koanf:"max_bytes"`
}

// ServerConfig tunes the serving facade.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	DefaultPageSize int           `koanf:"default_page_size"`
	MaxPageSize     int           `koanf:"max_page_size"`
	ThumbnailSize   int           `koanf:"thumbnail_size"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
}

func defaultConfig() *Config {
	return &Config{
		Volumes: VolumesConfig{
			Roots:        nil,
			Truncate:     true,
			CheckTimeout: 5 * time.Second,
		},
		Index: IndexConfig{
			NamingRule:    "parent-dir",
			Workers:       0,
			BatchSize:     500,
			RetryAttempts: 3,
			RetryBackoff:  100 * time.Millisecond,
		},
		Tags: TagsConfig{
			Extractor: "auto",
			Timeout:   10 * time.Second,
		},
		Store: StoreConfig{
			Path: "/data/media-indexer.db",
		},
		Cache: CacheConfig{
			TTL:        5 * time.Minute,
			MaxEntries: 256,
			MaxBytes:   256 << 20, // 256MB of assembled payloads
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			DefaultPageSize: 20,
			MaxPageSize:     100,
			ThumbnailSize:   200,
			ReadTimeout:     15 * time.Second,
			IdleTimeout:     60 * time.Second,
		},
	}
}

// envVars maps supported environment variables to koanf paths.
// Volume roots are deliberately not settable from the environment:
// they are positional, ordered, and come from the file or the CLI.
var envVars = map[string]string{
	"VOLUME_TRUNCATE":       "volumes.truncate",
	"VOLUME_CHECK_TIMEOUT":  "volumes.check_timeout",
	"INDEX_NAMING_RULE":     "index.naming_rule",
	"INDEX_WORKERS":         "index.workers",
	"INDEX_BATCH_SIZE":      "index.batch_size",
	"TAGS_EXTRACTOR":        "tags.extractor",
	"STORE_PATH":            "store.path",
	"CACHE_TTL":             "cache.ttl",
	"CACHE_MAX_ENTRIES":     "cache.max_entries",
	"CACHE_MAX_BYTES":       "cache.max_bytes",
	"SERVER_HOST":           "server.host",
	"SERVER_PORT":           "server.port",
	"SERVER_MAX_PAGE_SIZE":  "server.max_page_size",
	"SERVER_THUMBNAIL_SIZE": "server.thumbnail_size",
}

// Load reads configuration with the precedence ENV > file > defaults.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

// LoadFile reads configuration from an explicit file path, still
// applying defaults below and environment variables above it.
func LoadFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return loadFrom(path)
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", func(key string) string {
		if path, ok := envVars[key]; ok {
			return path
		}
		return "" // unknown variables are ignored
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface as
// confusing runtime behavior.
func (c *Config) Validate() error {
	for _, root := range c.Volumes.Roots {
		if root == "" {
			return fmt.Errorf("volumes.roots contains an empty path")
		}
	}

	switch c.Index.NamingRule {
	case "parent-dir", "top-dir", "root-leaf", "":
	default:
		return fmt.Errorf("index.naming_rule %q is not one of parent-dir, top-dir, root-leaf", c.Index.NamingRule)
	}

	switch c.Tags.Extractor {
	case "auto", "mdls", "none", "":
	default:
		return fmt.Errorf("tags.extractor %q is not one of auto, mdls, none", c.Tags.Extractor)
	}

	if c.Index.BatchSize < 1 {
		return fmt.Errorf("index.batch_size must be >= 1")
	}
	if c.Index.RetryAttempts < 0 {
		return fmt.Errorf("index.retry_attempts must be >= 0")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path must be set")
	}
	if c.Server.MaxPageSize < 1 {
		return fmt.Errorf("server.max_page_size must be >= 1")
	}
	if c.Server.DefaultPageSize < 1 || c.Server.DefaultPageSize > c.Server.MaxPageSize {
		return fmt.Errorf("server.default_page_size must be between 1 and server.max_page_size")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be >= 1")
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
