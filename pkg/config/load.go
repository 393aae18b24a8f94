package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. A missing file is not an error: the gateway can run
// on defaults plus environment overrides alone.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads the YAML file, then applies the
// environment variables named in §6, then re-validates. Environment
// variables always win over file-based configuration.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies the environment variables §6 names as
// "recognized options (complete)".
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("PORT"); val != "" {
		if p, err := strconv.ParseUint(val, 10, 16); err == nil {
			cfg.Server.Port = uint16(p)
		}
	}
	if val := os.Getenv("ROUTE_PREFIX"); val != "" {
		cfg.Server.RoutePrefix = val
	}
	if val := os.Getenv("AUTH_TOKEN"); val != "" {
		cfg.Auth.AdminToken = val
	}
	if val := os.Getenv("SHARED_TOKEN"); val != "" {
		cfg.Auth.SharedToken = val
	}
	if val := os.Getenv("SHARE_AUTH_TOKEN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Auth.ShareAuthToken = b
		}
	}
	if val := os.Getenv("TOKEN_STORE_PATH"); val != "" {
		cfg.TokenStore.Path = val
	}
	if val := os.Getenv("PROXY_STORE_PATH"); val != "" {
		cfg.ProxyStore.Path = val
	}
	if val := os.Getenv("LOG_RING_CAPACITY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Logs.Capacity = i
		}
	}
	if val := os.Getenv("IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Streaming.IdleTimeout = d
		}
	}
	if val := os.Getenv("TOTAL_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Streaming.TotalTimeout = d
		}
	}
	if val := os.Getenv("TLS_CERT_FILE"); val != "" {
		cfg.Security.TLS.CertFile = val
		cfg.Security.TLS.Enabled = true
	}
	if val := os.Getenv("TLS_KEY_FILE"); val != "" {
		cfg.Security.TLS.KeyFile = val
	}
}
