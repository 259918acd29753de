// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package models provides data structures for the DagDigest application.
//
// replication.go - Replication and Backup Fact Models
//
// This file contains the raw fact types delivered by the inventory layer
// (one DatabaseFact per database, one ReplicationCopyFact per database-copy
// pair) together with the closed status and severity enumerations used to
// classify them.
//
// Facts are a point-in-time snapshot: DagDigest never mutates them and never
// persists them past report emission. Optional telemetry (backup timestamps,
// disk metrics, DAG membership) is modeled with pointers so that absence is
// distinguishable from a zero value.
package models

import (
	"strings"
	"time"
)

// ============================================================================
// Severity Classes
// ============================================================================

// Severity is the closed set of display-emphasis classes assigned to a
// status. The renderer maps each severity to a CSS class; the classifier
// never produces a value outside this set.
type Severity string

const (
	// SeverityDefault is the fallback class for statuses with no special
	// emphasis, including unrecognized status strings.
	SeverityDefault Severity = "default"

	// SeveritySuccess marks healthy/backed-up states.
	SeveritySuccess Severity = "success"

	// SeverityFail marks failed, unprotected, or queue-exceeded states.
	SeverityFail Severity = "fail"

	// SeverityInProgress marks transitional states (mounting, seeding,
	// backup running).
	SeverityInProgress Severity = "in_progress"

	// SeverityDismounted marks copies or databases that are offline.
	SeverityDismounted Severity = "dismounted"

	// SeveritySuspended marks copies whose replication is suspended.
	SeveritySuspended Severity = "suspended"

	// SeverityResynchronizing marks copies that are catching up.
	SeverityResynchronizing Severity = "resynchronizing"
)

// ValidSeverities contains all valid severity classes.
var ValidSeverities = []Severity{
	SeverityDefault,
	SeveritySuccess,
	SeverityFail,
	SeverityInProgress,
	SeverityDismounted,
	SeveritySuspended,
	SeverityResynchronizing,
}

// IsValidSeverity checks if a severity class is valid.
func IsValidSeverity(s Severity) bool {
	for _, valid := range ValidSeverities {
		if s == valid {
			return true
		}
	}
	return false
}

// ============================================================================
// Copy Status
// ============================================================================

// CopyStatus is the replication status reported for a single database copy.
// The known values below cover the states the replication subsystem emits;
// any other string passes through untouched and classifies as
// SeverityDefault rather than failing (unknown states are a display concern,
// not an error).
type CopyStatus string

const (
	CopyStatusMounted         CopyStatus = "Mounted"
	CopyStatusMounting        CopyStatus = "Mounting"
	CopyStatusDismounted      CopyStatus = "Dismounted"
	CopyStatusDismounting     CopyStatus = "Dismounting"
	CopyStatusHealthy         CopyStatus = "Healthy"
	CopyStatusFailed          CopyStatus = "Failed"
	CopyStatusSuspended       CopyStatus = "Suspended"
	CopyStatusSeeding         CopyStatus = "Seeding"
	CopyStatusInitializing    CopyStatus = "Initializing"
	CopyStatusResynchronizing CopyStatus = "Resynchronizing"

	// CopyStatusUnknown is synthesized when a database reports no copies at
	// all; it never arrives from the inventory layer.
	CopyStatusUnknown CopyStatus = "Unknown"
)

// copyStatusInfo is the exhaustive mapping from known copy statuses to their
// display text and severity class. Statuses absent from this table render
// their raw string with SeverityDefault.
var copyStatusInfo = map[CopyStatus]struct {
	Display  string
	Severity Severity
}{
	CopyStatusMounted:         {"Mounted", SeveritySuccess},
	CopyStatusMounting:        {"Mounting", SeverityInProgress},
	CopyStatusDismounted:      {"Dismounted", SeverityDismounted},
	CopyStatusDismounting:     {"Dismounting", SeverityInProgress},
	CopyStatusHealthy:         {"Healthy", SeveritySuccess},
	CopyStatusFailed:          {"Failed", SeverityFail},
	CopyStatusSuspended:       {"Suspended", SeveritySuspended},
	CopyStatusSeeding:         {"Seeding", SeverityInProgress},
	CopyStatusInitializing:    {"Initializing", SeverityInProgress},
	CopyStatusResynchronizing: {"Resynchronizing", SeverityResynchronizing},
	CopyStatusUnknown:         {"Unknown", SeverityFail},
}

// ParseCopyStatus normalizes a raw status string to a known CopyStatus when
// it matches one case-insensitively, and passes it through unchanged
// otherwise.
func ParseCopyStatus(raw string) CopyStatus {
	for known := range copyStatusInfo {
		if strings.EqualFold(raw, string(known)) {
			return known
		}
	}
	return CopyStatus(raw)
}

// Display returns the display text for the status. Unrecognized statuses
// display their raw string.
func (s CopyStatus) Display() string {
	if info, ok := copyStatusInfo[s]; ok {
		return info.Display
	}
	return string(s)
}

// SeverityClass returns the severity class for the status, SeverityDefault
// for unrecognized values.
func (s CopyStatus) SeverityClass() Severity {
	if info, ok := copyStatusInfo[s]; ok {
		return info.Severity
	}
	return SeverityDefault
}

// ============================================================================
// Backup Status
// ============================================================================

// BackupStatus is the per-database backup classification produced by the
// status classifier. The categories are evaluated in strict priority order
// (see classify.Classifier); each carries fixed display text and severity.
type BackupStatus string

const (
	// BackupStatusNone means no fresh full or incremental backup exists.
	BackupStatusNone BackupStatus = "no_backup"

	// BackupStatusInProgress means a backup is currently running.
	BackupStatusInProgress BackupStatus = "in_progress"

	// BackupStatusFull means a full backup is within the freshness window.
	BackupStatusFull BackupStatus = "full_backup"

	// BackupStatusIncremental means only an incremental backup is within the
	// freshness window.
	BackupStatusIncremental BackupStatus = "incremental_backup"

	// BackupStatusCopyQueueWarning means no fresh backup exists and at least
	// one copy exceeds the copy-queue threshold. Treated as failure severity
	// with distinct display text.
	BackupStatusCopyQueueWarning BackupStatus = "copy_queue_warning"
)

// backupStatusInfo maps each backup category to its display text and
// severity class.
var backupStatusInfo = map[BackupStatus]struct {
	Display  string
	Severity Severity
}{
	BackupStatusNone:             {"None", SeverityFail},
	BackupStatusInProgress:       {"In Progress", SeverityInProgress},
	BackupStatusFull:             {"Full Backup", SeveritySuccess},
	BackupStatusIncremental:      {"Incremental Backup", SeveritySuccess},
	BackupStatusCopyQueueWarning: {"Warning: CopyQueue Exceeded", SeverityFail},
}

// Display returns the fixed display text for the category.
func (s BackupStatus) Display() string {
	if info, ok := backupStatusInfo[s]; ok {
		return info.Display
	}
	return string(s)
}

// SeverityClass returns the fixed severity class for the category.
func (s BackupStatus) SeverityClass() Severity {
	if info, ok := backupStatusInfo[s]; ok {
		return info.Severity
	}
	return SeverityDefault
}

// IsBackedUp reports whether the category counts as backed up for the
// report's summary counters.
func (s BackupStatus) IsBackedUp() bool {
	return s == BackupStatusFull || s == BackupStatusIncremental
}

// ============================================================================
// Raw Facts
// ============================================================================

// DiskMetrics is the optional disk telemetry a copy reports for the volume
// hosting it. All fields are as supplied by the inventory layer; FreePercent
// is already a percentage (0-100), not a fraction.
type DiskMetrics struct {
	TotalBytes  uint64  `json:"total_bytes"`
	FreeBytes   uint64  `json:"free_bytes"`
	FreePercent float64 `json:"free_percent"`
	Volume      string  `json:"volume,omitempty"`
}

// ReplicationCopyFact describes one copy of a database on one server.
type ReplicationCopyFact struct {
	// Server is the host server identifier (e.g. "MBX1").
	Server string `json:"server"`

	// Status is the raw replication status string for this copy.
	Status CopyStatus `json:"status"`

	// CopyQueueLength is the count of replication log records not yet
	// applied to this copy; a proxy for replication lag.
	CopyQueueLength int64 `json:"copy_queue_length"`

	// Disk is nil when the copy reports no disk telemetry.
	Disk *DiskMetrics `json:"disk,omitempty"`
}

// DatabaseFact is the raw per-database record from the inventory layer,
// including its associated replication copies.
type DatabaseFact struct {
	// Name uniquely identifies the database within the snapshot.
	Name string `json:"name"`

	// ActiveServer is the server currently serving the active copy.
	ActiveServer string `json:"active_server"`

	// LastFullBackup is nil when the database has never had a full backup.
	LastFullBackup *time.Time `json:"last_full_backup,omitempty"`

	// LastIncrementalBackup is nil when no incremental backup exists.
	LastIncrementalBackup *time.Time `json:"last_incremental_backup,omitempty"`

	// BackupInProgress is set while a backup is running against the database.
	BackupInProgress bool `json:"backup_in_progress"`

	// DAG is the availability-group identifier, empty for standalone
	// databases.
	DAG string `json:"dag,omitempty"`

	// SizeDisplay is the human-readable database size as reported by the
	// inventory layer (passed through to the report unchanged).
	SizeDisplay string `json:"size,omitempty"`

	// AvailableNewMailboxSpaceBytes is the reclaimable space available for
	// new mailboxes.
	AvailableNewMailboxSpaceBytes uint64 `json:"available_new_mailbox_space_bytes"`

	// Copies are the replication copies associated with this database, in
	// the order the inventory layer supplied them. May be empty.
	Copies []ReplicationCopyFact `json:"copies"`
}
