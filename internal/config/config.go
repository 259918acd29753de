// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package config provides configuration for the digest job.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (dagdigest.yaml)
//  3. Environment Variables: Override any setting (DAGDIGEST_ prefix)
//
// The thresholds section carries the three classification knobs; everything
// else configures the collaborators around the classification core
// (inventory retrieval, mail transport, logging). Those values pass through
// to the collaborators unmodified.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration.
type Config struct {
	Cluster    ClusterConfig    `koanf:"cluster"`
	Inventory  InventoryConfig  `koanf:"inventory"`
	Thresholds ThresholdsConfig `koanf:"thresholds"`
	Email      EmailConfig      `koanf:"email"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ClusterConfig identifies the cluster being reported on.
type ClusterConfig struct {
	// Name is the display name used in the subject line and report header.
	// The snapshot's own cluster field, when present, takes precedence.
	Name string `koanf:"name"`
}

// InventoryConfig selects and configures the snapshot source.
//
// Environment Variables:
//   - DAGDIGEST_INVENTORY_SOURCE: "file" or "http"
//   - DAGDIGEST_INVENTORY_PATH: snapshot file path (file source)
//   - DAGDIGEST_INVENTORY_URL: exporter endpoint (http source)
//   - DAGDIGEST_INVENTORY_AUTH_TOKEN: bearer token for the exporter
type InventoryConfig struct {
	Source    string        `koanf:"source" validate:"oneof=file http"`
	Path      string        `koanf:"path"`
	URL       string        `koanf:"url" validate:"omitempty,url"`
	AuthToken string        `koanf:"auth_token"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
}

// ThresholdsConfig holds the classification thresholds.
type ThresholdsConfig struct {
	// BackupFreshness is how recent a backup must be to count as fresh.
	BackupFreshness time.Duration `koanf:"backup_freshness" validate:"gt=0"`

	// CopyQueueWarn is the copy-queue length above which a copy is flagged
	// as lagging.
	CopyQueueWarn int64 `koanf:"copy_queue_warn" validate:"min=1"`

	// DiskFreeWarnPercent is the free-disk percentage at or below which a
	// copy's disk is flagged low.
	DiskFreeWarnPercent float64 `koanf:"disk_free_warn_percent" validate:"gt=0,lte=100"`
}

// EmailConfig holds the mail transport settings.
type EmailConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port" validate:"omitempty,min=1,max=65535"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`

	// Recipients is a semicolon-delimited address list.
	Recipients string `koanf:"recipients"`

	UseStartTLS bool `koanf:"use_start_tls"`

	// HighPriorityOnAlarm sets the mail priority flag when the report
	// carries any alarm.
	HighPriorityOnAlarm bool `koanf:"high_priority_on_alarm"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	switch c.Inventory.Source {
	case "file":
		if c.Inventory.Path == "" {
			return fmt.Errorf("inventory.path is required for the file source")
		}
	case "http":
		if c.Inventory.URL == "" {
			return fmt.Errorf("inventory.url is required for the http source")
		}
	}

	if c.Email.Enabled {
		if c.Email.Host == "" {
			return fmt.Errorf("email.host is required when email is enabled")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email.from is required when email is enabled")
		}
		if c.Email.Recipients == "" {
			return fmt.Errorf("email.recipients is required when email is enabled")
		}
	}

	return nil
}
