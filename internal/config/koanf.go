// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search when set.
const ConfigPathEnvVar = "DAGDIGEST_CONFIG_PATH"

// envPrefix is stripped from environment variables before they are mapped
// onto config paths.
const envPrefix = "DAGDIGEST_"

// DefaultConfigPaths are searched in order when no explicit path is given.
var DefaultConfigPaths = []string{
	"dagdigest.yaml",
	"dagdigest.yml",
	"/etc/dagdigest/config.yaml",
	"/etc/dagdigest/config.yml",
}

// defaultConfig returns the built-in defaults. Every optional knob has a
// working value so a minimal config only needs the inventory source and,
// when mail is enabled, the transport settings.
func defaultConfig() Config {
	return Config{
		Cluster: ClusterConfig{
			Name: "Mail Cluster",
		},
		Inventory: InventoryConfig{
			Source:  "file",
			Timeout: 30 * time.Second,
		},
		Thresholds: ThresholdsConfig{
			BackupFreshness:     24 * time.Hour,
			CopyQueueWarn:       5,
			DiskFreeWarnPercent: 10,
		},
		Email: EmailConfig{
			Port:                587,
			FromName:            "DagDigest",
			UseStartTLS:         true,
			HighPriorityOnAlarm: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration from three layers, later layers winning:
//
//  1. Built-in defaults
//  2. YAML config file (explicit path, DAGDIGEST_CONFIG_PATH, or the
//     first DefaultConfigPaths entry that exists)
//  3. DAGDIGEST_-prefixed environment variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// envTransformFunc maps environment variable names to koanf config paths.
// The first underscore-separated segment is the section, the rest is the
// key within it:
//
//   - DAGDIGEST_INVENTORY_SOURCE -> inventory.source
//   - DAGDIGEST_INVENTORY_AUTH_TOKEN -> inventory.auth_token
//   - DAGDIGEST_THRESHOLDS_COPY_QUEUE_WARN -> thresholds.copy_queue_warn
//   - DAGDIGEST_EMAIL_HOST -> email.host
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}
