// Package config loads service configuration from an optional YAML file with
// DATALENS_-prefixed environment overrides.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigFileName is the default config file looked up in the working directory.
const ConfigFileName = "datalens.yaml"

// Config holds everything the assistant service needs at startup.
type Config struct {
	Provider   string `koanf:"provider"`
	Model      string `koanf:"model"`
	ImageModel string `koanf:"image_model"`

	MaxRetries       int           `koanf:"max_retries"`
	RetryDefaultWait time.Duration `koanf:"retry_default_wait"`
	RetryMaxWait     time.Duration `koanf:"retry_max_wait"`

	Store       string `koanf:"store"` // memory, mongo, postgres
	MongoURI    string `koanf:"mongo_uri"`
	MongoDB     string `koanf:"mongo_db"`
	PostgresURL string `koanf:"postgres_url"`

	HTTPAddr string `koanf:"http_addr"`
	LogLevel string `koanf:"log_level"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "gemini"
	}
	if c.Model == "" {
		c.Model = "gemini-2.5-pro"
	}
	if c.ImageModel == "" {
		c.ImageModel = "gemini-2.0-flash-exp-image-generation"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDefaultWait <= 0 {
		c.RetryDefaultWait = 15 * time.Second
	}
	if c.RetryMaxWait <= 0 {
		c.RetryMaxWait = 60 * time.Second
	}
	if c.Store == "" {
		c.Store = "memory"
	}
	if c.MongoDB == "" {
		c.MongoDB = "datalens"
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load reads path (or ConfigFileName when empty), overlays DATALENS_ env vars
// and applies defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = ConfigFileName
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// DATALENS_MONGO_URI -> mongo_uri
	err := k.Load(env.Provider("DATALENS_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DATALENS_"))
	}), nil)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}
