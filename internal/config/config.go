// Package config loads the daemon configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	Browser BrowserConfig `yaml:"browser"`
	Fill    FillConfig    `yaml:"fill"`
	Mapper  MapperConfig  `yaml:"mapper"`
	Cache   CacheConfig   `yaml:"cache"`
	API     APIConfig     `yaml:"api"`
}

// BrowserConfig controls the Chrome lifecycle.
type BrowserConfig struct {
	Remote           string        `yaml:"remote"`  // ws:// devtools URL; empty launches locally
	Mode             string        `yaml:"mode"`    // headless | headful
	XvfbDisplay      string        `yaml:"xvfb_display"`
	ResourceBlocking []string      `yaml:"resource_blocking"` // image | font | media | stylesheet
	NavTimeout       time.Duration `yaml:"nav_timeout"`
}

// FillConfig tunes the fill session pacing.
type FillConfig struct {
	MinKeyDelay   time.Duration `yaml:"min_key_delay"`
	MaxKeyDelay   time.Duration `yaml:"max_key_delay"`
	MinFieldDelay time.Duration `yaml:"min_field_delay"`
	MaxFieldDelay time.Duration `yaml:"max_field_delay"`
}

// MapperConfig points at the remote mapping service.
type MapperConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig controls the local mapping cache.
type CacheConfig struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

// APIConfig controls the HTTP surface.
type APIConfig struct {
	Addr      string `yaml:"addr"`
	TokenHash string `yaml:"token_hash"` // bcrypt hash of the bearer token
}

// LoadFile reads a YAML configuration file and applies defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Browser.Mode == "" {
		c.Browser.Mode = "headless"
	}
	if c.Browser.XvfbDisplay == "" {
		c.Browser.XvfbDisplay = ":99"
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 45 * time.Second
	}
	if len(c.Browser.ResourceBlocking) == 0 {
		c.Browser.ResourceBlocking = []string{"image", "font", "media"}
	}

	if c.Fill.MinKeyDelay <= 0 {
		c.Fill.MinKeyDelay = 30 * time.Millisecond
	}
	if c.Fill.MaxKeyDelay <= c.Fill.MinKeyDelay {
		c.Fill.MaxKeyDelay = c.Fill.MinKeyDelay + 60*time.Millisecond
	}
	if c.Fill.MinFieldDelay <= 0 {
		c.Fill.MinFieldDelay = 300 * time.Millisecond
	}
	if c.Fill.MaxFieldDelay <= c.Fill.MinFieldDelay {
		c.Fill.MaxFieldDelay = c.Fill.MinFieldDelay + 600*time.Millisecond
	}

	if c.Mapper.Timeout <= 0 {
		c.Mapper.Timeout = 60 * time.Second
	}

	if c.Cache.Path == "" {
		c.Cache.Path = "formfill.db"
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 7 * 24 * time.Hour
	}

	if c.API.Addr == "" {
		c.API.Addr = "127.0.0.1:8090"
	}
}
