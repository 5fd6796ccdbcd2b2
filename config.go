package cubeql

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/zoobzio/cubeql/internal/evaluator"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvDialect  = "CUBEQL_DIALECT"
	EnvTimezone = "CUBEQL_TIMEZONE"
	EnvCatalog  = "CUBEQL_CATALOG"
	EnvMaxDepth = "CUBEQL_MAX_DEPTH"
)

// Config holds build settings.
type Config struct {
	// Dialect names the target dialect; see Dialects.
	Dialect string `yaml:"dialect"`
	// Timezone is the default query time zone. Empty or UTC disables conversion.
	Timezone string `yaml:"timezone"`
	// Catalog qualifies schema.table names on dialects that support catalogs.
	Catalog string `yaml:"catalog"`
	// MaxDepth bounds member graph recursion.
	MaxDepth int `yaml:"max_depth"`

	// Logger receives debug output for each build. Nil discards it.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Dialect:  "postgres",
		Timezone: "UTC",
		MaxDepth: evaluator.DefaultMaxDepth,
	}
}

// ParseConfig parses a YAML configuration document over the defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads the configuration file at path, then applies environment
// overrides. An empty path uses the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if cfg, err = ParseConfig(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	return cfg.WithEnv(os.LookupEnv)
}

// WithEnv returns a copy of c with overrides from lookup applied.
func (c Config) WithEnv(lookup func(string) (string, bool)) (Config, error) {
	if v, ok := lookup(EnvDialect); ok && v != "" {
		c.Dialect = v
	}
	if v, ok := lookup(EnvTimezone); ok && v != "" {
		c.Timezone = v
	}
	if v, ok := lookup(EnvCatalog); ok {
		c.Catalog = v
	}
	if v, ok := lookup(EnvMaxDepth); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		c.MaxDepth = n
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	if _, ok := dialects[c.Dialect]; !ok {
		return fmt.Errorf("config: unknown dialect %q", c.Dialect)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("config: max_depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
