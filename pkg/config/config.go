// Package config loads application settings from a TOML file.
//
// Settings are separate from the kitchen document: they choose the solver,
// the objective weights, the cache backend and the API listener. Every key
// is optional; a missing file yields [Default].
//
//	[solver]
//	engine = "glpk"
//	timeout = "5m"
//
//	[objective]
//	pattern = -1.0
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kitchendesigner/pkg/cache"
	"github.com/matzehuels/kitchendesigner/pkg/compile"
	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/objective"
	"github.com/matzehuels/kitchendesigner/pkg/solver"
)

const appName = "kitchendesigner"

// Config is the full settings file.
type Config struct {
	Solver    Solver            `toml:"solver"`
	Objective objective.Weights `toml:"objective"`
	Cache     Cache             `toml:"cache"`
	Server    Server            `toml:"server"`
}

// Solver selects the engine and the constraint families to compile.
type Solver struct {
	Engine    string        `toml:"engine"`
	Timeout   time.Duration `toml:"timeout"`
	KeepFiles bool          `toml:"keep_files"`
	Families  []string      `toml:"families"` // empty compiles every family
}

type Cache struct {
	Backend         string        `toml:"backend"` // file | redis | mongo | none
	Dir             string        `toml:"dir"`     // empty uses the XDG cache directory
	RedisAddr       string        `toml:"redis_addr"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	TTL             time.Duration `toml:"ttl"`
}

type Server struct {
	Addr           string        `toml:"addr"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	MaxBodyBytes   int64         `toml:"max_body_bytes"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Solver: Solver{
			Engine:  solver.Default,
			Timeout: 5 * time.Minute,
		},
		Objective: objective.DefaultWeights(),
		Cache: Cache{
			Backend:         cache.BackendFile,
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   cache.DefaultMongoDatabase,
			MongoCollection: cache.DefaultMongoCollection,
			TTL:             cache.TTLSolution,
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: 10 * time.Minute,
			MaxBodyBytes:   1 << 20,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/kitchendesigner/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the configured cache directory or the XDG default
// (~/.cache/kitchendesigner).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads settings from path. A missing file yields the defaults unless
// required is set.
func Load(path string, required bool) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) && !required {
		return Default(), nil
	}
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Read(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Read decodes settings over the defaults and validates them. Unknown keys
// are rejected.
func Read(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode settings")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidSettings, "unknown setting %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings. An unknown engine is not an error: the
// solver falls back to the default.
func (c Config) Validate() error {
	v := errors.Violations{Code: errors.ErrCodeInvalidSettings}
	if c.Solver.Timeout < 0 {
		v.Add("solver timeout must not be negative, got %s", c.Solver.Timeout)
	}
	for _, f := range c.Solver.Families {
		if _, err := compile.ParseFamily(f); err != nil {
			v.Add("%s", errors.UserMessage(err))
		}
	}
	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		v.Add("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		v.Add("cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Server.MaxBodyBytes < 0 {
		v.Add("server max_body_bytes must not be negative")
	}
	if err := c.Objective.Validate(); err != nil {
		v.Add("%s", errors.UserMessage(err))
	}
	return v.Err()
}

// Families parses the configured family names.
func (c Config) Families() ([]compile.Family, error) {
	out := make([]compile.Family, 0, len(c.Solver.Families))
	for _, name := range c.Solver.Families {
		f, err := compile.ParseFamily(name)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// CacheOptions translates the cache section for cache.Open.
func (c Config) CacheOptions() (cache.Options, error) {
	opts := cache.Options{
		Backend:         c.Cache.Backend,
		RedisAddr:       c.Cache.RedisAddr,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
	if opts.Backend == "" || opts.Backend == cache.BackendFile {
		dir, err := c.CacheDir()
		if err != nil {
			return opts, err
		}
		opts.Dir = dir
	}
	return opts, nil
}
