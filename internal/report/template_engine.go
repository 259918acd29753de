// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package report aggregates classified databases into the digest report and
// renders it for delivery.
//
// template_engine.go - Digest Template Engine
//
// This file implements the template rendering engine for the digest:
//   - Go template-based rendering with HTML and plaintext support
//   - Built-in template functions for formatting dates, percentages, and sizes
//   - Variable substitution with automatic escaping for security
//
// Security:
//   - All snapshot-derived content is HTML-escaped by default
//   - Template injection is prevented through Go's html/template package
package report

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tomtom215/dagdigest/internal/models"
)

// Engine renders digest reports through Go templates.
type Engine struct {
	// funcMap provides custom template functions shared by the HTML and
	// plaintext templates.
	funcMap map[string]any
}

// NewEngine creates a template engine with the standard function set.
func NewEngine() *Engine {
	e := &Engine{}
	e.funcMap = e.buildFuncMap()
	return e
}

// buildFuncMap creates the template function map.
func (e *Engine) buildFuncMap() map[string]any {
	return map[string]any{
		// Date/time formatting
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
		"formatDateShort": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("2006-01-02 15:04:05 MST")
		},

		// Number formatting
		"formatPercent": func(f float64) string {
			return fmt.Sprintf("%.1f%%", f)
		},
		"formatGB": func(f float64) string {
			return fmt.Sprintf("%.2f GB", f)
		},
		"humanBytes": func(b uint64) string {
			return humanize.IBytes(b)
		},

		// Severity to CSS class mapping. Severity values are a closed
		// enumeration, so the class name is derived directly.
		"severityClass": func(s models.Severity) string {
			return "sev-" + string(s)
		},
	}
}

// RenderSubject renders a subject-line template with the report data.
// Subjects use text/template since mail headers carry no markup.
func (e *Engine) RenderSubject(tmpl string, r *models.Report) (string, error) {
	t, err := texttemplate.New("subject").Funcs(e.funcMap).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse subject template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render subject: %w", err)
	}
	return buf.String(), nil
}

// RenderHTML renders an HTML body template with the report data. Snapshot
// content is escaped automatically.
func (e *Engine) RenderHTML(tmpl string, r *models.Report) (string, error) {
	t, err := htmltemplate.New("html").Funcs(e.funcMap).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render HTML body: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders a plaintext body template with the report data.
func (e *Engine) RenderText(tmpl string, r *models.Report) (string, error) {
	t, err := texttemplate.New("text").Funcs(e.funcMap).Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse text template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render text body: %w", err)
	}
	return buf.String(), nil
}

// RenderDigest renders the built-in digest templates: subject, HTML body,
// and plaintext body.
func (e *Engine) RenderDigest(r *models.Report) (subject, bodyHTML, bodyText string, err error) {
	subject, err = e.RenderSubject(digestSubjectTemplate, r)
	if err != nil {
		return "", "", "", err
	}
	bodyHTML, err = e.RenderHTML(digestHTMLTemplate, r)
	if err != nil {
		return "", "", "", err
	}
	bodyText, err = e.RenderText(digestTextTemplate, r)
	if err != nil {
		return "", "", "", err
	}
	return subject, bodyHTML, bodyText, nil
}
