// Package config loads genomechart plot configurations from TOML files.
//
// A configuration names the genomic region shown by all charts, optional
// cache settings, and one [[chart]] table per data file:
//
//	region = "chr1:1000-2000"
//	title  = "Peaks and signal"
//
//	[cache]
//	backend = "file"
//	ttl     = "24h"
//
//	[[chart]]
//	name   = "peaks"
//	file   = "peaks.bed"
//	format = "bed"
//	type   = "BlocksTrack"
//	[chart.settings]
//	title = "Peaks"
//
// Chart file paths are resolved relative to the configuration file.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/genomechart/pkg/cache"
	"github.com/matzehuels/genomechart/pkg/chart"
	"github.com/matzehuels/genomechart/pkg/errors"
	"github.com/matzehuels/genomechart/pkg/genomics"
	gcio "github.com/matzehuels/genomechart/pkg/io"
)

// Defaults applied by [Config.SetDefaults].
const (
	DefaultTitle        = "genomechart"
	DefaultCacheBackend = cache.BackendNone
	DefaultRedisAddr    = "localhost:6379"
	DefaultMongoURI     = "mongodb://localhost:27017"
)

// Config is a plot configuration.
type Config struct {
	Region  string   `toml:"region"`
	Title   string   `toml:"title"`
	Scripts []string `toml:"scripts"`
	Imports []string `toml:"imports"`
	Cache   Cache    `toml:"cache"`
	Charts  []Chart  `toml:"chart"`

	// Window is the parsed Region. Set by Load and Validate.
	Window genomics.Window `toml:"-"`
	// Dir is the directory chart files are resolved against.
	Dir string `toml:"-"`
}

// Cache configures the payload cache.
type Cache struct {
	Backend   string   `toml:"backend"`
	TTL       Duration `toml:"ttl"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	MongoURI  string   `toml:"mongo_uri"`
}

// Chart configures one chart.
type Chart struct {
	Name     string            `toml:"name"`
	File     string            `toml:"file"`
	Format   string            `toml:"format"`
	Type     string            `toml:"type"`
	Group    string            `toml:"group"`
	Filter   map[string]string `toml:"filter"`
	Settings map[string]any    `toml:"settings"`
	Colors   map[string]any    `toml:"colors"`
}

// Path returns the chart file path resolved against dir.
func (c Chart) Path(dir string) string {
	if filepath.IsAbs(c.File) || dir == "" {
		return c.File
	}
	return filepath.Join(dir, c.File)
}

// Duration is a time.Duration decoded from a string such as "24h".
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

// Load reads, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	}

	cfg, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", path)
	}
	cfg.Dir = filepath.Dir(abs)
	return cfg, nil
}

// Parse decodes, defaults and validates a configuration. Keys that do not
// map to a field are rejected.
func Parse(data string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills unset fields with their defaults.
func (c *Config) SetDefaults() {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = DefaultCacheBackend
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = cache.DefaultTTL
	}
	if c.Cache.RedisAddr == "" {
		c.Cache.RedisAddr = DefaultRedisAddr
	}
	if c.Cache.MongoURI == "" {
		c.Cache.MongoURI = DefaultMongoURI
	}
	for i := range c.Charts {
		ch := &c.Charts[i]
		if ch.Name == "" {
			ch.Name = strings.TrimSuffix(filepath.Base(ch.File), filepath.Ext(ch.File))
		}
	}
}

// Validate checks the region and every chart.
func (c *Config) Validate() error {
	w, err := genomics.ParseWindow(c.Region)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "region")
	}
	c.Window = w

	if !cache.ValidBackends[c.Cache.Backend] {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl: must not be negative")
	}
	if len(c.Charts) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "no [[chart]] entries")
	}

	seen := make(map[string]bool)
	for i, ch := range c.Charts {
		if err := ch.validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "chart %d", i+1)
		}
		if seen[ch.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "chart %d: duplicate name %q", i+1, ch.Name)
		}
		seen[ch.Name] = true
	}
	return nil
}

func (c Chart) validate() error {
	if c.File == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "file is required")
	}
	if err := errors.ValidatePath(c.File); err != nil {
		return err
	}
	if err := errors.ValidateDatasourceName(c.Name); err != nil {
		return err
	}
	if err := gcio.ValidateFormat(c.Format); err != nil {
		return err
	}
	if c.Type != "" {
		if _, err := chart.ParseType(c.Type); err != nil {
			return err
		}
	}
	return nil
}

// Params returns the manager registration parameters of the chart.
func (c Chart) Params() map[string]any {
	if c.Group == "" {
		return nil
	}
	return map[string]any{"group": c.Group}
}

// Options returns the cache options for this configuration. defaultDir is
// used by the file backend when no dir is configured.
func (c Cache) Options(defaultDir string) cache.Options {
	dir := c.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend: c.Backend,
		Dir:     dir,
		Redis:   cache.RedisConfig{Addr: c.RedisAddr, Prefix: "genomechart:"},
		Mongo:   cache.MongoConfig{URI: c.MongoURI},
	}
}
