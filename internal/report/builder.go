// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package report aggregates classified databases into the digest report and
// renders it for delivery.
//
// builder.go - Report Assembly
//
// This file implements the aggregation step: classifying the full snapshot,
// applying the report's ordering policy, and deriving alarm lists and
// summary counters. Aggregation requires the complete snapshot up front;
// the group/sort policy is meaningless over a partial collection.
package report

import (
	"sort"
	"time"

	"github.com/tomtom215/dagdigest/internal/classify"
	"github.com/tomtom215/dagdigest/internal/models"
)

// MailboxCounts maps database name to mailbox count. Databases absent from
// the map count as 0; the mailbox-count provider never errors into the
// report.
type MailboxCounts map[string]int

// Build classifies every fact in the snapshot and assembles the report:
// exactly one ClassifiedDatabase per input fact, sorted by the report
// ordering policy, with alarm lists and summary counters derived over the
// full collection.
func Build(facts []models.DatabaseFact, counts MailboxCounts, c *classify.Classifier,
	clusterName, runID string, generatedAt time.Time) *models.Report {

	classified := make([]models.ClassifiedDatabase, 0, len(facts))
	for _, fact := range facts {
		classified = append(classified, c.Classify(fact, counts[fact.Name]))
	}

	sortDatabases(classified)

	r := &models.Report{
		ClusterName: clusterName,
		RunID:       runID,
		GeneratedAt: generatedAt,
		Databases:   classified,
	}

	diskThreshold := c.Options().DiskWarnPercent
	for _, db := range classified {
		if hasCopyWithStatus(db, models.CopyStatusDismounted) {
			r.Dismounted = append(r.Dismounted, db)
		}
		if hasCopyWithStatus(db, models.CopyStatusFailed) {
			r.Failed = append(r.Failed, db)
		}
		if db.MinDiskFreePercent < diskThreshold {
			r.LowDisk = append(r.LowDisk, db)
		}

		switch {
		case db.BackupStatus.IsBackedUp():
			r.Summary.BackedUp++
		case db.BackupStatus == models.BackupStatusInProgress:
			r.Summary.InProgress++
		}
	}

	r.Summary.Total = len(classified)
	// Derived, never independently recomputed: the three counts always sum
	// to the total.
	r.Summary.NotBackedUp = r.Summary.Total - r.Summary.BackedUp - r.Summary.InProgress

	return r
}

// groupKey orders backup categories for the report: unprotected databases
// first, running backups second, everything else last.
func groupKey(s models.BackupStatus) int {
	switch s {
	case models.BackupStatusNone:
		return 0
	case models.BackupStatusInProgress:
		return 1
	default:
		return 2
	}
}

// sortDatabases applies the report ordering policy: group key, then active
// server, then database name, all ascending. The sort is stable and the
// name tiebreak makes the order total.
func sortDatabases(dbs []models.ClassifiedDatabase) {
	sort.SliceStable(dbs, func(i, j int) bool {
		gi, gj := groupKey(dbs[i].BackupStatus), groupKey(dbs[j].BackupStatus)
		if gi != gj {
			return gi < gj
		}
		if dbs[i].ActiveServer != dbs[j].ActiveServer {
			return dbs[i].ActiveServer < dbs[j].ActiveServer
		}
		return dbs[i].Name < dbs[j].Name
	})
}

// hasCopyWithStatus reports whether any copy annotation carries the given
// status. Alarm membership keys on the copy status itself, not its severity
// class: a healthy copy flagged Fail for queue lag is not a failed copy.
func hasCopyWithStatus(db models.ClassifiedDatabase, status models.CopyStatus) bool {
	for _, ch := range db.Copies {
		if ch.Status == status {
			return true
		}
	}
	return false
}
