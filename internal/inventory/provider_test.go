// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/dagdigest/internal/models"
)

const sampleSnapshot = `{
  "cluster": "EXCH-PROD",
  "collected_at": "2026-08-30T04:00:00Z",
  "databases": [
    {
      "name": "DB01",
      "active_server": "MBX1",
      "last_full_backup": "2026-08-29T22:00:00Z",
      "backup_in_progress": false,
      "dag": "DAG01",
      "size": "512.3 GB",
      "available_new_mailbox_space_bytes": 1073741824,
      "copies": [
        {"server": "MBX1", "status": "Mounted", "copy_queue_length": 0,
         "disk": {"total_bytes": 2199023255552, "free_bytes": 1099511627776,
                  "free_percent": 50.0, "volume": "E:\\DB01"}},
        {"server": "MBX2", "status": "Healthy", "copy_queue_length": 2}
      ]
    },
    {
      "name": "DB02",
      "active_server": "MBX2",
      "backup_in_progress": false,
      "copies": []
    }
  ],
  "mailbox_counts": {"DB01": 342}
}`

func verifySnapshot(t *testing.T, snap *Snapshot) {
	t.Helper()

	if snap.Cluster != "EXCH-PROD" {
		t.Errorf("Cluster = %q, want EXCH-PROD", snap.Cluster)
	}
	if len(snap.Databases) != 2 {
		t.Fatalf("got %d databases, want 2", len(snap.Databases))
	}

	db := snap.Databases[0]
	if db.Name != "DB01" || db.ActiveServer != "MBX1" || db.DAG != "DAG01" {
		t.Errorf("DB01 fields wrong: %+v", db)
	}
	if db.LastFullBackup == nil {
		t.Error("DB01 LastFullBackup = nil, want set")
	}
	if db.LastIncrementalBackup != nil {
		t.Error("DB01 LastIncrementalBackup set, want nil for absent field")
	}
	if len(db.Copies) != 2 {
		t.Fatalf("DB01 got %d copies, want 2", len(db.Copies))
	}
	if db.Copies[0].Status != models.CopyStatusMounted {
		t.Errorf("copy status = %q, want Mounted", db.Copies[0].Status)
	}
	if db.Copies[0].Disk == nil || db.Copies[0].Disk.FreePercent != 50.0 {
		t.Errorf("copy disk = %+v, want free_percent 50", db.Copies[0].Disk)
	}
	if db.Copies[1].Disk != nil {
		t.Error("second copy disk set, want nil for absent telemetry")
	}

	counter := snap.Counts()
	if got := counter.MailboxCount("DB01"); got != 342 {
		t.Errorf("MailboxCount(DB01) = %d, want 342", got)
	}
	if got := counter.MailboxCount("DB02"); got != 0 {
		t.Errorf("MailboxCount(DB02) = %d, want 0 for absent database", got)
	}
}

func TestFileProvider_Snapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(sampleSnapshot), 0o600); err != nil {
		t.Fatal(err)
	}

	snap, err := NewFileProvider(path).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	verifySnapshot(t, snap)
}

func TestFileProvider_Missing(t *testing.T) {
	_, err := NewFileProvider(filepath.Join(t.TempDir(), "absent.json")).Snapshot(context.Background())
	if err == nil {
		t.Fatal("Snapshot() error = nil for missing file")
	}
}

func TestFileProvider_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileProvider(path).Snapshot(context.Background())
	if err == nil {
		t.Fatal("Snapshot() error = nil for malformed document")
	}
}

func TestHTTPProvider_Snapshot(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleSnapshot))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "secret-token", 0)
	snap, err := p.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	verifySnapshot(t, snap)

	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
}

func TestHTTPProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPProvider(srv.URL, "", 0).Snapshot(context.Background())
	if err == nil {
		t.Fatal("Snapshot() error = nil for 500 response")
	}
}
