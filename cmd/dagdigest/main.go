// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// DagDigest is a one-shot reporting job for mail-server clusters. Each run
// retrieves a snapshot of database, backup, and replication facts, classifies
// every database's backup recency and copy health, assembles a sorted digest
// with alarm lists and summary counters, and delivers it as an HTML email.
//
// The job is stateless: it holds no store between runs and draws every
// conclusion from the current snapshot alone. Scheduling belongs to cron or
// a systemd timer:
//
//	# /etc/cron.d/dagdigest
//	0 7 * * * dagdigest /usr/local/bin/dagdigest -config /etc/dagdigest/config.yaml
//
// # Flags
//
//	-config PATH   config file (default: search dagdigest.yaml, /etc/dagdigest/)
//	-out PATH      also write the rendered HTML body to a file
//	-no-email      skip delivery, render only
//	-print-text    print the plaintext body to stdout
//
// # Exit Codes
//
// The run exits non-zero when a collaborator fails: config load, snapshot
// retrieval, rendering, or delivery. An empty snapshot or a report full of
// alarms is still a successful run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/dagdigest/internal/classify"
	"github.com/tomtom215/dagdigest/internal/config"
	"github.com/tomtom215/dagdigest/internal/delivery"
	"github.com/tomtom215/dagdigest/internal/inventory"
	"github.com/tomtom215/dagdigest/internal/logging"
	"github.com/tomtom215/dagdigest/internal/report"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file")
		outPath    = flag.String("out", "", "write the rendered HTML body to this file")
		noEmail    = flag.Bool("no-email", false, "render the digest but skip email delivery")
		printText  = flag.Bool("print-text", false, "print the plaintext body to stdout")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Default logger for config errors; config not yet available.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	runID := uuid.NewString()
	log := logging.With().Str("run_id", runID).Logger()

	log.Info().
		Str("source", cfg.Inventory.Source).
		Str("cluster", cfg.Cluster.Name).
		Msg("Digest run starting")

	ctx := context.Background()

	var provider inventory.Provider
	switch cfg.Inventory.Source {
	case "http":
		provider = inventory.NewHTTPProvider(cfg.Inventory.URL, cfg.Inventory.AuthToken, cfg.Inventory.Timeout)
	default:
		provider = inventory.NewFileProvider(cfg.Inventory.Path)
	}

	snap, err := provider.Snapshot(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Snapshot retrieval failed")
	}
	log.Info().
		Int("databases", len(snap.Databases)).
		Msg("Snapshot retrieved")

	// The snapshot's own cluster name wins over the configured one.
	clusterName := cfg.Cluster.Name
	if snap.Cluster != "" {
		clusterName = snap.Cluster
	}

	classifier := classify.New(classify.Options{
		FreshnessWindow:    cfg.Thresholds.BackupFreshness,
		QueueWarnThreshold: cfg.Thresholds.CopyQueueWarn,
		DiskWarnPercent:    cfg.Thresholds.DiskFreeWarnPercent,
	}, time.Now())

	r := report.Build(snap.Databases, snap.MailboxCounts, classifier, clusterName, runID, time.Now())

	log.Info().
		Int("total", r.Summary.Total).
		Int("backed_up", r.Summary.BackedUp).
		Int("in_progress", r.Summary.InProgress).
		Int("not_backed_up", r.Summary.NotBackedUp).
		Int("dismounted", len(r.Dismounted)).
		Int("failed", len(r.Failed)).
		Int("low_disk", len(r.LowDisk)).
		Msg("Report assembled")

	subject, bodyHTML, bodyText, err := report.NewEngine().RenderDigest(r)
	if err != nil {
		log.Fatal().Err(err).Msg("Digest rendering failed")
	}

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(bodyHTML), 0o644); err != nil {
			log.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write HTML output")
		}
		log.Info().Str("path", *outPath).Msg("HTML body written")
	}

	if *printText {
		fmt.Println(bodyText)
	}

	if *noEmail || !cfg.Email.Enabled {
		log.Info().Msg("Email delivery skipped")
		return
	}

	sender := delivery.NewEmailSender(delivery.SMTPConfig{
		Host:        cfg.Email.Host,
		Port:        cfg.Email.Port,
		Username:    cfg.Email.Username,
		Password:    cfg.Email.Password,
		From:        cfg.Email.From,
		FromName:    cfg.Email.FromName,
		UseStartTLS: cfg.Email.UseStartTLS,
	})

	result, err := sender.Send(ctx, &delivery.Message{
		Recipients:   delivery.SplitRecipients(cfg.Email.Recipients),
		Subject:      subject,
		BodyHTML:     bodyHTML,
		BodyText:     bodyText,
		HighPriority: cfg.Email.HighPriorityOnAlarm && r.HasAlarms(),
		RunID:        runID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Email delivery failed")
	}
	if !result.Success {
		log.Fatal().
			Str("error_code", result.ErrorCode).
			Bool("transient", result.IsTransient).
			Str("error", result.ErrorMessage).
			Msg("Email delivery failed")
	}

	delivered := log.Info().Int("recipients", len(result.Recipients))
	if result.DeliveredAt != nil {
		delivered = delivered.Time("delivered_at", *result.DeliveredAt)
	}
	delivered.Msg("Digest delivered")
}
