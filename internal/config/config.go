// Package config loads the service configuration from storyforge.yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type ServiceConfig struct {
	Version int `yaml:"version"`
	Project struct {
		ID          string `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"project"`
	Network struct {
		APIPort int `yaml:"api_port"`
	} `yaml:"network"`
	Storage struct {
		Backend string `yaml:"backend"` // "dir" or "postgres"
		Dir     string `yaml:"dir"`
	} `yaml:"storage"`
	MQTT struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
		Topic   string `yaml:"topic"`
	} `yaml:"mqtt"`
	Autosave struct {
		DebounceMS int `yaml:"debounce_ms"`
	} `yaml:"autosave"`
}

// APIPort returns the configured API port, defaulting to 8080 if not set.
func (c *ServiceConfig) APIPort() int {
	if c.Network.APIPort == 0 {
		return 8080
	}
	return c.Network.APIPort
}

// StorageBackend returns the configured backend, defaulting to "dir".
func (c *ServiceConfig) StorageBackend() string {
	if c.Storage.Backend == "" {
		return "dir"
	}
	return c.Storage.Backend
}

// DocumentDir returns the document directory for the dir backend,
// defaulting to "documents".
func (c *ServiceConfig) DocumentDir() string {
	if c.Storage.Dir == "" {
		return "documents"
	}
	return c.Storage.Dir
}

// AutosaveDebounceMS returns the auto-save quiet period in milliseconds,
// defaulting to 1500.
func (c *ServiceConfig) AutosaveDebounceMS() int {
	if c.Autosave.DebounceMS == 0 {
		return 1500
	}
	return c.Autosave.DebounceMS
}

func LoadServiceConfig(path string) (*ServiceConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ServiceConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported storyforge.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}
