// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package models provides data structures for the DagDigest application.
//
// report.go - Classified Database and Report Models
//
// This file contains the derived types built from raw facts: the
// ClassifiedDatabase produced by the classifier (immutable once built) and
// the Report handed to the renderer and mail transport.
package models

import "time"

// CopyRole tags a copy as active or passive relative to the database's
// active server.
type CopyRole string

const (
	CopyRoleActive  CopyRole = "Active"
	CopyRolePassive CopyRole = "Passive"
)

// CopyHealth is one per-copy health annotation, tagged with the severity
// class that determined it.
type CopyHealth struct {
	// Server is the host server identifier for the copy.
	Server string

	// Status is the copy's (normalized) replication status.
	Status CopyStatus

	// CopyQueueLength mirrors the raw fact.
	CopyQueueLength int64

	// Severity is the class assigned by the annotation precedence rules,
	// which may differ from Status.SeverityClass() when the copy queue
	// exceeds the warning threshold.
	Severity Severity

	// Annotation is the rendered annotation string embedding status name
	// and copy-queue length.
	Annotation string
}

// DiskLine is one per-copy disk summary line in the report.
type DiskLine struct {
	// Server is the host server identifier for the copy.
	Server string

	// Role is Active or Passive per the normalizer's role assignment.
	Role CopyRole

	// Volume is the mount-point label, empty when not reported.
	Volume string

	// TotalGB and FreeGB are bytes divided by 2^30, rounded to 2 decimals.
	TotalGB float64
	FreeGB  float64

	// FreePercent is the percentage as supplied by the copy.
	FreePercent float64

	// LowDisk is set when FreePercent is at or below the configured
	// disk-free warning threshold.
	LowDisk bool
}

// DatabaseStatus is the classified mount/replication state of a database,
// derived from its active copy (or the first copy as fallback).
type DatabaseStatus struct {
	// Status is the normalized copy status the classification was derived
	// from, or CopyStatusUnknown when the database has no copies.
	Status CopyStatus

	// Display is the human-readable label; raw status string for
	// unrecognized statuses.
	Display string

	// Severity is the display-emphasis class.
	Severity Severity
}

// ClassifiedDatabase is the fully classified record for one database.
// Exactly one is produced per input DatabaseFact; nothing is mutated after
// construction.
type ClassifiedDatabase struct {
	// Name is the database name.
	Name string

	// ActiveServer is the declared active server from the raw fact, kept
	// for the report's sort policy.
	ActiveServer string

	// ServerGroup is the rendered server-group label, e.g.
	// "A: MBX1 | P: MBX2, MBX3 | DAG: DAG01".
	ServerGroup string

	// Copies holds the per-copy health annotations in supplied copy order.
	Copies []CopyHealth

	// HealthSummary is all copy annotations joined with "; ".
	HealthSummary string

	// BackupStatus is the backup classification category.
	BackupStatus BackupStatus

	// LastBackupDisplay is the formatted full-backup timestamp, or "N/A"
	// when no full backup exists. The incremental timestamp is deliberately
	// not surfaced here even when it decided the category.
	LastBackupDisplay string

	// Status is the classified database mount/replication status.
	Status DatabaseStatus

	// SpaceSummary is the free-space / mailbox-count summary string.
	SpaceSummary string

	// SizeDisplay is the database size descriptor passed through from the
	// raw fact.
	SizeDisplay string

	// MailboxCount is the mailbox count for this database; 0 when the
	// mailbox-count provider had no answer.
	MailboxCount int

	// DiskLines holds the per-copy disk summaries; empty when no copy
	// reports disk telemetry.
	DiskLines []DiskLine

	// MinDiskFreePercent is the worst-case free percentage across all
	// copies, or 100 when no copy reports disk telemetry (absence is not
	// failure).
	MinDiskFreePercent float64
}

// HasLowDisk reports whether any disk line is flagged low.
func (c ClassifiedDatabase) HasLowDisk() bool {
	for _, line := range c.DiskLines {
		if line.LowDisk {
			return true
		}
	}
	return false
}

// ReportSummary holds the report's summary counters. NotBackedUp is always
// derived as Total - BackedUp - InProgress so the three counts sum to Total.
type ReportSummary struct {
	Total       int
	BackedUp    int
	InProgress  int
	NotBackedUp int
}

// Report is the structured result handed to the renderer: the sorted
// classified collection plus alarm lists and summary counters.
type Report struct {
	// ClusterName is the display name of the cluster being reported on.
	ClusterName string

	// RunID uniquely identifies this report run (carried in logs and the
	// X-DagDigest-Run mail header).
	RunID string

	// GeneratedAt is the "now" reference the classifier used for backup
	// freshness comparison.
	GeneratedAt time.Time

	// Databases is the classified collection in report order.
	Databases []ClassifiedDatabase

	// Dismounted lists databases whose health summary contains a Dismounted
	// annotation.
	Dismounted []ClassifiedDatabase

	// Failed lists databases whose health summary contains a Failed
	// annotation.
	Failed []ClassifiedDatabase

	// LowDisk lists databases whose minimum disk-free percentage is
	// strictly below the configured threshold.
	LowDisk []ClassifiedDatabase

	// Summary holds the counters.
	Summary ReportSummary
}

// HasAlarms reports whether any alarm list is non-empty.
func (r *Report) HasAlarms() bool {
	return len(r.Dismounted) > 0 || len(r.Failed) > 0 || len(r.LowDisk) > 0
}
