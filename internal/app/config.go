package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "lectobot/core/config"
	coredatabase "lectobot/core/database"
	"lectobot/internal/content"
)

// Config is the full bot configuration: the shared core settings plus the
// database and content sections this bot adds.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Content  content.Config      `yaml:"content"`
}

// CoreConfig exposes the embedded core configuration to the cmd runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads the YAML config file, applies environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("app: parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("app: process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	normalizeDatabase(&cfg.Database)
	return &cfg, nil
}

func normalizeDatabase(db *coredatabase.Config) {
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.MaxConnections <= 0 {
		db.MaxConnections = 10
	}
}
