/*
Package config manages TOML config for the wordvec server.
*/
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/wordvec/internal/utils"
	"github.com/bastiangx/wordvec/pkg/catalog"
)

// Config holds the entire config structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Models  ModelsConfig  `toml:"models"`
	Sampler SamplerConfig `toml:"sampler"`
}

// ServerConfig has HTTP server related options.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"` // requests per second, 0 disables
	RateBurst int     `toml:"rate_burst"`
	MaxBatch  int     `toml:"max_batch"`
}

// ModelsConfig holds model loading and cache options.
type ModelsConfig struct {
	DataDir        string `toml:"data_dir"`
	Default        string `toml:"default"`
	CacheLimit     int    `toml:"cache_limit"` // max loaded models, 0 = unlimited
	LoadTimeoutSec int    `toml:"load_timeout_seconds"`
	Preload        bool   `toml:"preload"` // load the default model at startup
}

// SamplerConfig tunes random word selection.
type SamplerConfig struct {
	BatchSize  int `toml:"batch_size"`
	MaxRetries int `toml:"max_retries"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      5000,
			RateLimit: 50,
			RateBurst: 100,
			MaxBatch:  1000,
		},
		Models: ModelsConfig{
			DataDir:        "data/",
			Default:        catalog.DefaultModelID,
			CacheLimit:     3,
			LoadTimeoutSec: 300,
			Preload:        false,
		},
		Sampler: SamplerConfig{
			BatchSize:  10,
			MaxRetries: 5,
		},
	}
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LoadTimeout returns the model load timeout as a duration.
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.Models.LoadTimeoutSec) * time.Second
}

// InitConfig loads config from file or creates default if missing.
// Any failure falls back to builtin defaults rather than aborting startup.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file. Missing keys keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes config to a TOML file.
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
