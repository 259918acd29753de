// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package inventory retrieves the snapshot of database and replication-copy
// facts that a digest run classifies.
//
// The facts originate on the cluster side, where a collection script exports
// them as a single JSON document:
//
//	{
//	  "cluster": "EXCH-PROD",
//	  "collected_at": "2026-08-30T04:00:00Z",
//	  "databases": [
//	    {
//	      "name": "DB01",
//	      "active_server": "MBX1",
//	      "last_full_backup": "2026-08-29T22:00:00Z",
//	      "backup_in_progress": false,
//	      "dag": "DAG01",
//	      "size": "512.3 GB",
//	      "available_new_mailbox_space_bytes": 1073741824,
//	      "copies": [
//	        {"server": "MBX1", "status": "Mounted", "copy_queue_length": 0,
//	         "disk": {"total_bytes": 2199023255552, "free_bytes": 1099511627776,
//	                  "free_percent": 50.0, "volume": "E:\\DB01"}},
//	        {"server": "MBX2", "status": "Healthy", "copy_queue_length": 2}
//	      ]
//	    }
//	  ],
//	  "mailbox_counts": {"DB01": 342}
//	}
//
// Providers fetch that document from a file or an HTTP exporter endpoint.
// Retrieval failure is fatal to the run; everything past retrieval is a
// pure function of the snapshot.
package inventory

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/dagdigest/internal/models"
)

// Snapshot is one complete, consistent point-in-time fact set. The
// aggregation step requires the whole snapshot before sorting begins;
// providers never stream partial results.
type Snapshot struct {
	// Cluster is the display name of the cluster the facts describe.
	Cluster string `json:"cluster,omitempty"`

	// CollectedAt is when the cluster-side script gathered the facts.
	CollectedAt *time.Time `json:"collected_at,omitempty"`

	// Databases holds one fact per database.
	Databases []models.DatabaseFact `json:"databases"`

	// MailboxCounts maps database name to mailbox count. Optional;
	// databases absent from the map count as 0.
	MailboxCounts map[string]int `json:"mailbox_counts,omitempty"`
}

// Provider fetches a snapshot.
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// MailboxCounter returns the mailbox count for a database name. Lookup
// failure and absence both return 0, never an error; the classifier must
// tolerate a missing count.
type MailboxCounter interface {
	MailboxCount(name string) int
}

// Counts implements MailboxCounter over the snapshot's embedded counts.
func (s *Snapshot) Counts() MailboxCounter {
	return snapshotCounter{counts: s.MailboxCounts}
}

type snapshotCounter struct {
	counts map[string]int
}

func (c snapshotCounter) MailboxCount(name string) int {
	return c.counts[name]
}

// ============================================================================
// File Provider
// ============================================================================

// FileProvider reads the snapshot document from a local file.
type FileProvider struct {
	// Path is the snapshot file location.
	Path string
}

// NewFileProvider creates a provider reading from path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Snapshot reads and decodes the snapshot file.
func (p *FileProvider) Snapshot(_ context.Context) (*Snapshot, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", p.Path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot file %s: %w", p.Path, err)
	}
	return &snap, nil
}

// ============================================================================
// HTTP Provider
// ============================================================================

// HTTPProvider fetches the snapshot document from an exporter endpoint.
type HTTPProvider struct {
	// URL is the exporter endpoint.
	URL string

	// AuthToken, when set, is sent as a bearer token.
	AuthToken string

	client *http.Client
}

// NewHTTPProvider creates a provider fetching from url with the given
// request timeout.
func NewHTTPProvider(url, authToken string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPProvider{
		URL:       url,
		AuthToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

// Snapshot fetches and decodes the snapshot document.
func (p *HTTPProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+p.AuthToken)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot from %s: %w", p.URL, err)
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // Best effort cleanup

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("snapshot endpoint %s returned status %d", p.URL, resp.StatusCode)
	}

	var snap Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot response: %w", err)
	}
	return &snap, nil
}
