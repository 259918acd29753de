// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package classify turns raw replication/backup facts into classified
// per-database records.
//
// The classifier is a pure function of the snapshot it is given: it holds an
// immutable set of thresholds and a fixed "now" reference, never mutates its
// input, and cannot fail for any well-formed snapshot. Missing optional
// fields and unrecognized status strings degrade to documented fallbacks
// rather than errors.
//
// Classification rules:
//
//   - Per-copy health annotations use a strict severity precedence:
//     Dismounted, then Suspended, then Failed, then Resynchronizing; any
//     other status is Default unless the copy queue exceeds the warning
//     threshold, in which case it is Fail.
//
//   - Backup status is a first-match-wins state machine: InProgress, fresh
//     FullBackup, fresh IncrementalBackup, CopyQueueWarning, NoBackup. The
//     ordering is deliberate since several conditions can hold at once.
//
//   - Database status comes from the copy hosted on the declared active
//     server; when no copy matches, the first copy in supplied order is
//     used, and a database with no copies at all is Unknown.
//
//   - A database whose copies report no disk telemetry has a minimum
//     disk-free percentage of 100: absence of telemetry is not failure.
//     This is a documented policy, not an accident.
package classify

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/dagdigest/internal/models"
)

// Options holds the classification thresholds. Construct once at startup
// and pass explicitly; there is no ambient configuration.
type Options struct {
	// FreshnessWindow is how recent a backup must be to count as fresh.
	FreshnessWindow time.Duration

	// QueueWarnThreshold is the copy-queue length above which a copy is
	// flagged as lagging.
	QueueWarnThreshold int64

	// DiskWarnPercent is the free-disk percentage at or below which a disk
	// line is flagged low.
	DiskWarnPercent float64
}

// DefaultOptions returns the standard thresholds: 24h freshness window,
// copy-queue warning above 5, disk warning at 10% free.
func DefaultOptions() Options {
	return Options{
		FreshnessWindow:    24 * time.Hour,
		QueueWarnThreshold: 5,
		DiskWarnPercent:    10,
	}
}

// Classifier applies the classification rules to database facts. It is
// immutable after construction and safe for concurrent use.
type Classifier struct {
	opts Options
	now  time.Time
}

// New creates a Classifier with the given thresholds and "now" reference.
// Fixing now at construction keeps classification idempotent: the same
// snapshot classified twice yields identical output.
func New(opts Options, now time.Time) *Classifier {
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = DefaultOptions().FreshnessWindow
	}
	if opts.QueueWarnThreshold <= 0 {
		opts.QueueWarnThreshold = DefaultOptions().QueueWarnThreshold
	}
	if opts.DiskWarnPercent <= 0 {
		opts.DiskWarnPercent = DefaultOptions().DiskWarnPercent
	}
	return &Classifier{opts: opts, now: now}
}

// Options returns the thresholds the classifier was built with.
func (c *Classifier) Options() Options {
	return c.opts
}

// Classify builds the ClassifiedDatabase for one raw fact. mailboxCount is
// the database's mailbox count from the mailbox-count provider (0 when the
// provider had no answer).
func (c *Classifier) Classify(db models.DatabaseFact, mailboxCount int) models.ClassifiedDatabase {
	copies := c.copyHealth(db)
	diskLines, minFree := c.diskLines(db)

	annotations := make([]string, 0, len(copies))
	for _, ch := range copies {
		annotations = append(annotations, ch.Annotation)
	}

	return models.ClassifiedDatabase{
		Name:               db.Name,
		ActiveServer:       db.ActiveServer,
		ServerGroup:        c.serverGroup(db),
		Copies:             copies,
		HealthSummary:      strings.Join(annotations, "; "),
		BackupStatus:       c.backupStatus(db),
		LastBackupDisplay:  lastBackupDisplay(db),
		Status:             c.databaseStatus(db),
		SpaceSummary:       spaceSummary(db, mailboxCount),
		SizeDisplay:        db.SizeDisplay,
		MailboxCount:       mailboxCount,
		DiskLines:          diskLines,
		MinDiskFreePercent: minFree,
	}
}

// serverGroup derives the deterministic server-group label: active servers
// first, passive servers sorted ascending, optional DAG suffix. The label
// is independent of copy ordering in the snapshot.
func (c *Classifier) serverGroup(db models.DatabaseFact) string {
	seen := make(map[string]bool, len(db.Copies))
	var active, passive []string
	for _, copyFact := range db.Copies {
		if seen[copyFact.Server] {
			continue
		}
		seen[copyFact.Server] = true
		if copyFact.Server == db.ActiveServer {
			active = append(active, copyFact.Server)
		} else {
			passive = append(passive, copyFact.Server)
		}
	}
	sort.Strings(passive)

	var b strings.Builder
	if len(active) > 0 {
		b.WriteString("A: " + strings.Join(active, ", "))
	} else {
		// No copy reports the declared active server; show it anyway so the
		// label always names at least the active server.
		b.WriteString("A: " + db.ActiveServer)
	}
	if len(passive) > 0 {
		b.WriteString(" | P: " + strings.Join(passive, ", "))
	}
	if db.DAG != "" {
		b.WriteString(" | DAG: " + db.DAG)
	}
	return b.String()
}

// copyHealth builds the ordered per-copy health annotations, preserving
// copy order as supplied.
func (c *Classifier) copyHealth(db models.DatabaseFact) []models.CopyHealth {
	if len(db.Copies) == 0 {
		return nil
	}
	out := make([]models.CopyHealth, 0, len(db.Copies))
	for _, copyFact := range db.Copies {
		status := models.ParseCopyStatus(string(copyFact.Status))
		severity := annotationSeverity(status, copyFact.CopyQueueLength, c.opts.QueueWarnThreshold)
		out = append(out, models.CopyHealth{
			Server:          copyFact.Server,
			Status:          status,
			CopyQueueLength: copyFact.CopyQueueLength,
			Severity:        severity,
			Annotation: fmt.Sprintf("%s: %s (CopyQueue: %d)",
				copyFact.Server, status.Display(), copyFact.CopyQueueLength),
		})
	}
	return out
}

// annotationSeverity applies the per-copy precedence rules. A queue-length
// breach only matters for statuses outside the four named classes; a
// dismounted copy stays Dismounted regardless of queue length.
func annotationSeverity(status models.CopyStatus, queueLen, threshold int64) models.Severity {
	switch status {
	case models.CopyStatusDismounted:
		return models.SeverityDismounted
	case models.CopyStatusSuspended:
		return models.SeveritySuspended
	case models.CopyStatusFailed:
		return models.SeverityFail
	case models.CopyStatusResynchronizing:
		return models.SeverityResynchronizing
	default:
		if queueLen > threshold {
			return models.SeverityFail
		}
		return models.SeverityDefault
	}
}

// backupStatus runs the backup state machine. Evaluation order is strict and
// first match wins; several conditions can be simultaneously true.
func (c *Classifier) backupStatus(db models.DatabaseFact) models.BackupStatus {
	switch {
	case db.BackupInProgress:
		return models.BackupStatusInProgress
	case c.fresh(db.LastFullBackup):
		return models.BackupStatusFull
	case c.fresh(db.LastIncrementalBackup):
		return models.BackupStatusIncremental
	case c.anyQueueExceeded(db):
		return models.BackupStatusCopyQueueWarning
	default:
		return models.BackupStatusNone
	}
}

// fresh reports whether ts exists and is newer than now minus the freshness
// window.
func (c *Classifier) fresh(ts *time.Time) bool {
	return ts != nil && ts.After(c.now.Add(-c.opts.FreshnessWindow))
}

func (c *Classifier) anyQueueExceeded(db models.DatabaseFact) bool {
	for _, copyFact := range db.Copies {
		if copyFact.CopyQueueLength > c.opts.QueueWarnThreshold {
			return true
		}
	}
	return false
}

// lastBackupDisplay formats the full-backup timestamp, or "N/A" when none
// exists. The incremental timestamp is never surfaced here even when it
// decided the backup category; the report documents the full-backup age
// only.
func lastBackupDisplay(db models.DatabaseFact) string {
	if db.LastFullBackup == nil {
		return "N/A"
	}
	return db.LastFullBackup.Format("2006-01-02 15:04:05")
}

// databaseStatus selects the active copy (declared active server, falling
// back to the first copy in supplied order) and maps its status. A database
// with no copies is Unknown.
func (c *Classifier) databaseStatus(db models.DatabaseFact) models.DatabaseStatus {
	if len(db.Copies) == 0 {
		return models.DatabaseStatus{
			Status:   models.CopyStatusUnknown,
			Display:  models.CopyStatusUnknown.Display(),
			Severity: models.CopyStatusUnknown.SeverityClass(),
		}
	}
	selected := db.Copies[0]
	for _, copyFact := range db.Copies {
		if copyFact.Server == db.ActiveServer {
			selected = copyFact
			break
		}
	}
	status := models.ParseCopyStatus(string(selected.Status))
	return models.DatabaseStatus{
		Status:   status,
		Display:  status.Display(),
		Severity: status.SeverityClass(),
	}
}

// diskLines builds the per-copy disk summaries and the minimum free
// percentage. Databases with zero disk-reporting copies report 100% free.
func (c *Classifier) diskLines(db models.DatabaseFact) ([]models.DiskLine, float64) {
	var lines []models.DiskLine
	minFree := 100.0
	reported := false
	for _, copyFact := range db.Copies {
		if copyFact.Disk == nil {
			continue
		}
		role := models.CopyRolePassive
		if copyFact.Server == db.ActiveServer {
			role = models.CopyRoleActive
		}
		free := copyFact.Disk.FreePercent
		lines = append(lines, models.DiskLine{
			Server:      copyFact.Server,
			Role:        role,
			Volume:      copyFact.Disk.Volume,
			TotalGB:     toGB(copyFact.Disk.TotalBytes),
			FreeGB:      toGB(copyFact.Disk.FreeBytes),
			FreePercent: free,
			LowDisk:     free <= c.opts.DiskWarnPercent,
		})
		if !reported || free < minFree {
			minFree = free
			reported = true
		}
	}
	return lines, minFree
}

// toGB converts bytes to GiB rounded to 2 decimals.
func toGB(bytes uint64) float64 {
	return math.Round(float64(bytes)/(1<<30)*100) / 100
}

// spaceSummary builds the free-space / mailbox-count summary string.
func spaceSummary(db models.DatabaseFact, mailboxCount int) string {
	return fmt.Sprintf("%s free, %d mailboxes",
		humanize.IBytes(db.AvailableNewMailboxSpaceBytes), mailboxCount)
}
