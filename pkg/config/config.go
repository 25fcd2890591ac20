// Package config loads the gesetze configuration from a YAML file, a .env file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/gesetze/pkg/linker"
	"github.com/coolbeans/gesetze/pkg/provider"
)

// DefaultPath is read when no config file is given and it exists.
const DefaultPath = "gesetze.yaml"

// Environment variables overriding file settings.
const (
	EnvProviders = "GESETZE_PROVIDERS"
	EnvBlock     = "GESETZE_BLOCK"
	EnvTitle     = "GESETZE_TITLE"
	EnvAddr      = "GESETZE_ADDR"
	EnvCacheSize = "GESETZE_CACHE_SIZE"
)

// Config is the complete application configuration.
type Config struct {
	// Providers lists provider identifiers by preference.
	Providers []string `yaml:"providers"`

	// Block lists providers that are never used.
	Block []string `yaml:"block"`

	Title      provider.TitleMode `yaml:"title"`
	Attributes linker.Attributes  `yaml:"attributes"`

	// Libraries maps a provider identifier to an index file replacing the
	// embedded one.
	Libraries map[string]string `yaml:"libraries"`

	// Watch reloads the files in Libraries when they change.
	Watch bool `yaml:"watch"`

	Server    ServerConfig `yaml:"server"`
	CacheSize int          `yaml:"cache_size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Title: provider.TitleNone,
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
		},
		CacheSize: linker.DefaultCacheSize,
	}
}

// Load reads the config file at path, then applies the environment. An empty
// path reads DefaultPath if present and falls back to defaults otherwise.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if value, ok := lookupEnv(EnvProviders); ok {
		c.Providers = splitList(value)
	}
	if value, ok := lookupEnv(EnvBlock); ok {
		c.Block = splitList(value)
	}
	if value, ok := lookupEnv(EnvTitle); ok {
		mode, err := provider.ParseTitleMode(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTitle, err)
		}
		c.Title = mode
	}
	if value, ok := lookupEnv(EnvAddr); ok {
		c.Server.Addr = value
	}
	if value, ok := lookupEnv(EnvCacheSize); ok {
		size, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheSize, err)
		}
		c.CacheSize = size
	}
	return nil
}

// Validate checks settings that YAML decoding cannot.
func (c *Config) Validate() error {
	var errs []error
	for id, path := range c.Libraries {
		if _, err := provider.LoadOptions(id); err != nil {
			errs = append(errs, fmt.Errorf("libraries: %w", err))
		}
		if path == "" {
			errs = append(errs, fmt.Errorf("libraries: %s: path is required", id))
		}
	}
	for _, attr := range c.Attributes {
		if attr.Name == "" {
			errs = append(errs, fmt.Errorf("attributes: name is required"))
		}
	}
	if c.Watch && len(c.Libraries) == 0 {
		errs = append(errs, fmt.Errorf("watch: requires at least one entry in libraries"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server: addr is required"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server: max_body_bytes must be positive"))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative"))
	}
	return errors.Join(errs...)
}

// ResolverConfig converts the settings to a linker configuration.
func (c *Config) ResolverConfig() linker.Config {
	return linker.Config{
		Order:      append([]string(nil), c.Providers...),
		BlockList:  append([]string(nil), c.Block...),
		Title:      c.Title,
		Attributes: c.Attributes.Clone(),
	}
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
