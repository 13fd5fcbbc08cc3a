// Package config loads keyforge's TOML configuration file and turns it into
// the stores, caches and log writers the CLI and the API server run on.
//
// The file lives at $XDG_CONFIG_HOME/keyforge/config.toml (falling back to
// ~/.config/keyforge/config.toml). A missing file is not an error: every
// field has a default, and command-line flags override whatever is loaded.
//
//	[layout]
//	strategy   = "branch-and-bound"
//	node_limit = 0
//
//	[store]
//	driver = "file"              # file | mongodb
//	dir    = "~/.local/share/keyforge"
//
//	[cache]
//	driver = "file"              # file | redis | memory | none
//	ttl    = "720h"
//
//	[server]
//	addr = ":8080"
//
//	[log]
//	level = "info"
//	file  = ""
package config

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/keyforge/pkg/cache"
	"github.com/matzehuels/keyforge/pkg/core/layout"
	kerrors "github.com/matzehuels/keyforge/pkg/errors"
	"github.com/matzehuels/keyforge/pkg/store"
)

// AppName names the config, cache and data directories.
const AppName = "keyforge"

// Store drivers.
const (
	StoreFile  = "file"
	StoreMongo = "mongodb"
)

// Cache drivers.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

// Defaults.
const (
	DefaultAddr         = ":8080"
	DefaultMaxNodeLimit = 10_000_000
	DefaultLogLevel     = "info"
	DefaultMaxSizeMB    = 10
	DefaultMaxBackups   = 3
	DefaultDatabase     = AppName
)

// Config is the parsed configuration file.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

type LayoutConfig struct {
	Strategy  string `toml:"strategy"`
	NodeLimit int    `toml:"node_limit"`
}

type StoreConfig struct {
	Driver   string `toml:"driver"`
	Dir      string `toml:"dir"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type CacheConfig struct {
	Driver        string   `toml:"driver"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	Scope         string   `toml:"scope"` // key prefix for deployments sharing one backend
}

type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxNodeLimit int    `toml:"max_node_limit"` // upper bound on per-request node_limit
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Duration is a time.Duration written as a Go duration string ("90m").
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

// DefaultPath returns the config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the default cache directory (~/.cache/keyforge).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the default store directory (~/.local/share/keyforge).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// Load reads path, or [DefaultPath] when path is empty, and applies
// defaults. A missing default file yields the defaults; a missing file
// that was asked for explicitly is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "locate config file")
		}
		path = p
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.SetDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills in blank fields.
func (c *Config) SetDefaults() error {
	if c.Layout.Strategy == "" {
		c.Layout.Strategy = layout.BranchAndBound.String()
	}
	if c.Store.Driver == "" {
		c.Store.Driver = StoreFile
	}
	if c.Store.Driver == StoreFile && c.Store.Dir == "" {
		dir, err := DataDir()
		if err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "resolve data directory")
		}
		c.Store.Dir = dir
	}
	if c.Store.Database == "" {
		c.Store.Database = DefaultDatabase
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheFile
	}
	if c.Cache.Driver == CacheFile && c.Cache.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "resolve cache directory")
		}
		c.Cache.Dir = dir
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = cache.DefaultLayoutTTL
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxNodeLimit == 0 {
		c.Server.MaxNodeLimit = DefaultMaxNodeLimit
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = DefaultMaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = DefaultMaxBackups
	}
	return nil
}

// Validate rejects unknown drivers, strategies and levels.
func (c *Config) Validate() error {
	if _, err := layout.ParseStrategy(c.Layout.Strategy); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "layout.strategy")
	}
	if c.Layout.NodeLimit < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "layout.node_limit must not be negative")
	}

	switch c.Store.Driver {
	case StoreFile:
	case StoreMongo:
		if c.Store.URI == "" {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "store.uri is required for the mongodb driver")
		}
	default:
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "store.driver %q: want file or mongodb", c.Store.Driver)
	}

	switch c.Cache.Driver {
	case CacheFile, CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return kerrors.New(kerrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis driver")
		}
	default:
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "cache.driver %q: want file, redis, memory or none", c.Cache.Driver)
	}
	if c.Cache.TTL.Duration < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	if c.Server.MaxNodeLimit < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "server.max_node_limit must not be negative")
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidConfig, err, "log.level")
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return kerrors.New(kerrors.ErrCodeInvalidConfig, "log.max_size_mb and log.max_backups must not be negative")
	}
	return nil
}

// Strategy returns the configured layout strategy.
func (c *Config) Strategy() layout.Strategy {
	s, err := layout.ParseStrategy(c.Layout.Strategy)
	if err != nil {
		return layout.BranchAndBound
	}
	return s
}

// LogLevel returns the configured log level, info if it does not parse.
func (c *Config) LogLevel() log.Level {
	l, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}

// OpenStore connects the configured store backend.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Driver {
	case StoreMongo:
		s, err := store.NewMongoStore(ctx, c.Store.URI, c.Store.Database)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeNetwork, err, "connect to mongodb")
		}
		return s, nil
	default:
		s, err := store.NewFileStore(expandHome(c.Store.Dir))
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "open store")
		}
		return s, nil
	}
}

// OpenCache connects the configured cache backend. The memory cache keeps
// entries for at most the configured TTL.
func (c *Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Driver {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheMemory:
		mc, err := cache.NewMemoryCache(ctx, c.Cache.TTL.Duration)
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "create memory cache")
		}
		return mc, nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:      c.Cache.RedisAddr,
			Password:  c.Cache.RedisPassword,
			DB:        c.Cache.RedisDB,
			KeyPrefix: AppName + ":",
		})
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeNetwork, err, "connect to redis")
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(expandHome(c.Cache.Dir))
		if err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeInternal, err, "open cache")
		}
		return fc, nil
	}
}

// Keyer returns the cache keyer for the configured scope, or nil for the
// default keyer.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Scope == "" {
		return nil
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Scope+":")
}

// LogWriter returns a rotating writer for the configured log file, or nil
// when no file is set.
func (c *Config) LogWriter() io.WriteCloser {
	if c.Log.File == "" {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   expandHome(c.Log.File),
		MaxSize:    c.Log.MaxSizeMB, // megabytes
		MaxBackups: c.Log.MaxBackups,
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
