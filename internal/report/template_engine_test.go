// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

package report

import (
	"strings"
	"testing"

	"github.com/tomtom215/dagdigest/internal/models"
)

func TestEngine_RenderSubject(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name     string
		template string
		report   *models.Report
		want     string
		wantErr  bool
	}{
		{
			name:     "cluster name substitution",
			template: "Digest for {{.ClusterName}}",
			report:   &models.Report{ClusterName: "EXCH-PROD"},
			want:     "Digest for EXCH-PROD",
		},
		{
			name:     "date formatting",
			template: "Digest ({{formatDateShort .GeneratedAt}})",
			report:   &models.Report{GeneratedAt: testNow},
			want:     "Digest (Aug 30, 2026)",
		},
		{
			name:     "invalid template syntax",
			template: "{{.Invalid",
			report:   &models.Report{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.RenderSubject(tt.template, tt.report)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RenderSubject() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("RenderSubject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEngine_RenderDigest(t *testing.T) {
	engine := NewEngine()
	r := buildTestReport(t)

	subject, bodyHTML, bodyText, err := engine.RenderDigest(r)
	if err != nil {
		t.Fatalf("RenderDigest() error = %v", err)
	}

	if !strings.Contains(subject, "EXCH-PROD") {
		t.Errorf("subject %q missing cluster name", subject)
	}

	// Alarm blocks present (the test snapshot has all three alarms).
	for _, want := range []string{"Dismounted Copies", "Failed Copies", "Low Disk Space"} {
		if !strings.Contains(bodyHTML, want) {
			t.Errorf("HTML body missing alarm block %q", want)
		}
	}

	// All databases appear in the main table.
	for _, name := range []string{"DB-A", "DB-B", "DB-C", "DB-D", "DB-E"} {
		if !strings.Contains(bodyHTML, name) {
			t.Errorf("HTML body missing database %q", name)
		}
		if !strings.Contains(bodyText, name) {
			t.Errorf("text body missing database %q", name)
		}
	}

	// Backup display labels surface as specified.
	for _, want := range []string{"Full Backup", "In Progress", "None"} {
		if !strings.Contains(bodyHTML, want) {
			t.Errorf("HTML body missing backup label %q", want)
		}
	}

	if !strings.Contains(bodyHTML, "run-1") {
		t.Error("HTML body missing run ID")
	}
}

func TestEngine_RenderDigest_NoAlarms(t *testing.T) {
	engine := NewEngine()
	r := &models.Report{
		ClusterName: "EXCH-PROD",
		RunID:       "run-2",
		GeneratedAt: testNow,
		Databases: []models.ClassifiedDatabase{
			{
				Name:               "DB01",
				ServerGroup:        "A: MBX1",
				BackupStatus:       models.BackupStatusFull,
				LastBackupDisplay:  "2026-08-30 10:00:00",
				Status:             models.DatabaseStatus{Status: models.CopyStatusMounted, Display: "Mounted", Severity: models.SeveritySuccess},
				MinDiskFreePercent: 100,
			},
		},
		Summary: models.ReportSummary{Total: 1, BackedUp: 1},
	}

	_, bodyHTML, _, err := engine.RenderDigest(r)
	if err != nil {
		t.Fatalf("RenderDigest() error = %v", err)
	}

	// Alarm blocks only emitted when non-empty.
	for _, block := range []string{"Dismounted Copies", "Failed Copies", "Low Disk Space"} {
		if strings.Contains(bodyHTML, block) {
			t.Errorf("HTML body contains alarm block %q for alarm-free report", block)
		}
	}
}

func TestEngine_HTMLEscaping(t *testing.T) {
	engine := NewEngine()
	r := &models.Report{
		ClusterName: "<script>alert(1)</script>",
		GeneratedAt: testNow,
	}

	_, bodyHTML, _, err := engine.RenderDigest(r)
	if err != nil {
		t.Fatalf("RenderDigest() error = %v", err)
	}
	if strings.Contains(bodyHTML, "<script>alert(1)</script>") {
		t.Error("snapshot-derived content not escaped in HTML body")
	}
}
