// Package config loads service configuration from an optional YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Registry RegistryConfig `yaml:"registry"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr                   string `yaml:"addr"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// RegistryConfig controls the Companies House client. Zero timeouts fall back
// to the registry client defaults (short lookups, longer download).
type RegistryConfig struct {
	APIBaseURL             string `yaml:"api_base_url"`
	DocumentBaseURL        string `yaml:"document_base_url"`
	LookupTimeoutSeconds   int    `yaml:"lookup_timeout_seconds"`
	DownloadTimeoutSeconds int    `yaml:"download_timeout_seconds"`
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	if s.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// LookupTimeout returns the filing-history/metadata call timeout.
func (r RegistryConfig) LookupTimeout() time.Duration {
	return time.Duration(r.LookupTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the content download timeout.
func (r RegistryConfig) DownloadTimeout() time.Duration {
	return time.Duration(r.DownloadTimeoutSeconds) * time.Second
}

// Load reads the config file at path (missing file is fine, defaults apply)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Addr: ":8080"},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if base := os.Getenv("REGISTRY_API_BASE_URL"); base != "" {
		cfg.Registry.APIBaseURL = base
	}
	if base := os.Getenv("REGISTRY_DOCUMENT_BASE_URL"); base != "" {
		cfg.Registry.DocumentBaseURL = base
	}

	return cfg, nil
}
