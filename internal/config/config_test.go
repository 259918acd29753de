// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dagdigest.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfigFile(t, `
inventory:
  source: file
  path: /var/lib/dagdigest/snapshot.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cluster.Name != "Mail Cluster" {
		t.Errorf("Cluster.Name = %q, want default", cfg.Cluster.Name)
	}
	if cfg.Thresholds.BackupFreshness != 24*time.Hour {
		t.Errorf("BackupFreshness = %v, want 24h", cfg.Thresholds.BackupFreshness)
	}
	if cfg.Thresholds.CopyQueueWarn != 5 {
		t.Errorf("CopyQueueWarn = %d, want 5", cfg.Thresholds.CopyQueueWarn)
	}
	if cfg.Thresholds.DiskFreeWarnPercent != 10 {
		t.Errorf("DiskFreeWarnPercent = %v, want 10", cfg.Thresholds.DiskFreeWarnPercent)
	}
	if cfg.Email.Port != 587 {
		t.Errorf("Email.Port = %d, want 587", cfg.Email.Port)
	}
	if !cfg.Email.UseStartTLS {
		t.Error("Email.UseStartTLS = false, want true by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v, want info/console defaults", cfg.Logging)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
cluster:
  name: PROD-DAG01
inventory:
  source: file
  path: /tmp/snapshot.json
thresholds:
  backup_freshness: 12h
  copy_queue_warn: 10
  disk_free_warn_percent: 15
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cluster.Name != "PROD-DAG01" {
		t.Errorf("Cluster.Name = %q, want PROD-DAG01", cfg.Cluster.Name)
	}
	if cfg.Thresholds.BackupFreshness != 12*time.Hour {
		t.Errorf("BackupFreshness = %v, want 12h", cfg.Thresholds.BackupFreshness)
	}
	if cfg.Thresholds.CopyQueueWarn != 10 {
		t.Errorf("CopyQueueWarn = %d, want 10", cfg.Thresholds.CopyQueueWarn)
	}
	if cfg.Thresholds.DiskFreeWarnPercent != 15 {
		t.Errorf("DiskFreeWarnPercent = %v, want 15", cfg.Thresholds.DiskFreeWarnPercent)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
cluster:
  name: FromFile
inventory:
  source: file
  path: /tmp/snapshot.json
`)

	t.Setenv("DAGDIGEST_CLUSTER_NAME", "FromEnv")
	t.Setenv("DAGDIGEST_THRESHOLDS_COPY_QUEUE_WARN", "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Cluster.Name != "FromEnv" {
		t.Errorf("Cluster.Name = %q, want env value to win", cfg.Cluster.Name)
	}
	if cfg.Thresholds.CopyQueueWarn != 25 {
		t.Errorf("CopyQueueWarn = %d, want 25 from env", cfg.Thresholds.CopyQueueWarn)
	}
}

func TestLoadValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "file source without path",
			yaml: `
inventory:
  source: file
`,
			wantErr: "inventory.path",
		},
		{
			name: "http source without url",
			yaml: `
inventory:
  source: http
`,
			wantErr: "inventory.url",
		},
		{
			name: "unknown source",
			yaml: `
inventory:
  source: carrier_pigeon
  path: /tmp/snapshot.json
`,
			wantErr: "validation failed",
		},
		{
			name: "email enabled without host",
			yaml: `
inventory:
  source: file
  path: /tmp/snapshot.json
email:
  enabled: true
  from: digest@example.com
  recipients: ops@example.com
`,
			wantErr: "email.host",
		},
		{
			name: "email enabled without recipients",
			yaml: `
inventory:
  source: file
  path: /tmp/snapshot.json
email:
  enabled: true
  host: smtp.example.com
  from: digest@example.com
`,
			wantErr: "email.recipients",
		},
		{
			name: "bad log level",
			yaml: `
inventory:
  source: file
  path: /tmp/snapshot.json
logging:
  level: verbose
`,
			wantErr: "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil, want validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"DAGDIGEST_INVENTORY_SOURCE", "inventory.source"},
		{"DAGDIGEST_INVENTORY_AUTH_TOKEN", "inventory.auth_token"},
		{"DAGDIGEST_THRESHOLDS_COPY_QUEUE_WARN", "thresholds.copy_queue_warn"},
		{"DAGDIGEST_EMAIL_HIGH_PRIORITY_ON_ALARM", "email.high_priority_on_alarm"},
		{"DAGDIGEST_EMAIL_HOST", "email.host"},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
