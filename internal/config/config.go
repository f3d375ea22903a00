// Package config loads the client configuration from an optional YAML file
// and command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/client"
	"gopkg.in/yaml.v3"
)

// Storage kinds for the persisted session.
const (
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageNone   = "none"
)

const (
	defaultAPIURL      = "http://localhost:8000/api"
	defaultTimeout     = "30s"
	defaultConsoleAddr = "127.0.0.1:4200"
)

// Config is the client configuration.
type Config struct {
	// APIURL is the base of the REST API, eg http://localhost:8000/api
	APIURL string `yaml:"api_url" validate:"required,url,http_url"`

	// Storage selects where the session survives between runs.
	Storage    string `yaml:"storage" validate:"required,oneof=file memory none"`
	StorageDir string `yaml:"storage_dir"`

	// CacheDir enables the on-disk HTTP cache when set.
	CacheDir string `yaml:"cache_dir"`

	Timeout string `yaml:"timeout" validate:"required,duration"`

	Console ConsoleConfig `yaml:"console"`
}

// ConsoleConfig configures the local web console.
type ConsoleConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// Overrides are values given on the command line. Empty fields leave the
// file value alone.
type Overrides struct {
	APIURL      string
	Storage     string
	StorageDir  string
	CacheDir    string
	Timeout     string
	ConsoleAddr string
}

// DefaultPath returns ~/.escuela/config.yaml, or "" when there is no home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".escuela", "config.yaml")
}

// Load reads the file at path, applies overrides and defaults, then
// validates the result. An empty path reads DefaultPath, which may be
// absent; an explicit path must exist.
func Load(path string, overrides Overrides) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			log.Debug().Str("path", path).Msg("config file loaded")
		case errors.Is(err, os.ErrNotExist) && !explicit:
			// no config file, flags and defaults only
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.Apply(overrides)
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Apply copies every non-empty override onto the config.
func (c *Config) Apply(o Overrides) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}

	set(&c.APIURL, o.APIURL)
	set(&c.Storage, o.Storage)
	set(&c.StorageDir, o.StorageDir)
	set(&c.CacheDir, o.CacheDir)
	set(&c.Timeout, o.Timeout)
	set(&c.Console.Addr, o.ConsoleAddr)
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}
	if c.Storage == "" {
		c.Storage = StorageFile
	}
	if c.Timeout == "" {
		c.Timeout = defaultTimeout
	}
	// bind to localhost only, the console holds a live session
	if c.Console.Addr == "" {
		c.Console.Addr = defaultConsoleAddr
	}
}

// TimeoutDuration returns the parsed request timeout.
func (c *Config) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Client returns the HTTP client configuration.
func (c *Config) Client(debug bool) client.Config {
	return client.Config{
		BaseURL:  strings.TrimRight(c.APIURL, "/"),
		Timeout:  c.TimeoutDuration(),
		CacheDir: c.CacheDir,
		Debug:    debug,
	}
}
