// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package report aggregates classified databases into the digest report and
// renders it for delivery.
//
// builtin_templates.go - Built-in Digest Templates
//
// This file contains the built-in subject, HTML, and plaintext templates
// for the digest email. Alarm blocks render only when non-empty, before the
// main table.
package report

// digestSubjectTemplate is the built-in subject line.
const digestSubjectTemplate = `{{.ClusterName}} - Database Backup & Replication Digest ({{formatDateShort .GeneratedAt}})`

// digestHTMLTemplate is the built-in HTML body.
const digestHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.ClusterName}} - Backup &amp; Replication Digest</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: #f4f5f7; color: #222; margin: 0; padding: 20px; }
    .container { max-width: 960px; margin: 0 auto; background: #fff; border-radius: 10px; overflow: hidden; box-shadow: 0 1px 4px rgba(0,0,0,0.1); }
    .header { padding: 30px; text-align: center; color: #fff; }
    .header.ok { background: linear-gradient(135deg, #11998e 0%, #38ef7d 100%); }
    .header.alarm { background: linear-gradient(135deg, #eb3349 0%, #f45c43 100%); }
    .header h1 { margin: 0; font-size: 24px; }
    .header .meta { font-size: 13px; margin-top: 8px; opacity: 0.9; }
    .summary { display: flex; justify-content: space-around; padding: 20px; background: #fafbfc; border-bottom: 1px solid #e3e6ea; }
    .summary .stat { text-align: center; }
    .summary .stat .num { font-size: 28px; font-weight: 700; }
    .summary .stat .label { font-size: 12px; color: #777; text-transform: uppercase; }
    .alarms { margin: 20px; border: 1px solid #eb3349; border-radius: 8px; padding: 15px; background: #fdf2f2; }
    .alarms h3 { color: #eb3349; margin: 0 0 10px; }
    .alarms ul { margin: 0; padding-left: 20px; }
    table { width: 100%; border-collapse: collapse; margin: 0; }
    th { background: #2c3e50; color: #fff; padding: 10px 8px; font-size: 12px; text-align: left; }
    td { padding: 8px; border-bottom: 1px solid #e3e6ea; font-size: 13px; vertical-align: top; }
    .disk { font-size: 12px; color: #555; }
    .disk .low, td.disk.low { color: #eb3349; font-weight: 600; }
    .sev-default { }
    .sev-success { color: #11998e; font-weight: 600; }
    .sev-fail { color: #eb3349; font-weight: 600; }
    .sev-in_progress { color: #f2994a; font-weight: 600; }
    .sev-dismounted { color: #fff; background: #eb3349; padding: 2px 6px; border-radius: 4px; }
    .sev-suspended { color: #b45309; font-weight: 600; }
    .sev-resynchronizing { color: #2563eb; font-weight: 600; }
    .footer { background: #fafbfc; padding: 20px; text-align: center; font-size: 12px; color: #888; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header {{if .HasAlarms}}alarm{{else}}ok{{end}}">
      <h1>{{.ClusterName}} Backup &amp; Replication Digest</h1>
      <div class="meta">Generated {{formatDateTime .GeneratedAt}}</div>
    </div>

    <div class="summary">
      <div class="stat"><div class="num">{{.Summary.Total}}</div><div class="label">Databases</div></div>
      <div class="stat"><div class="num">{{.Summary.BackedUp}}</div><div class="label">Backed Up</div></div>
      <div class="stat"><div class="num">{{.Summary.InProgress}}</div><div class="label">In Progress</div></div>
      <div class="stat"><div class="num">{{.Summary.NotBackedUp}}</div><div class="label">Not Backed Up</div></div>
    </div>

    {{if .Dismounted}}
    <div class="alarms">
      <h3>Dismounted Copies</h3>
      <ul>
        {{range .Dismounted}}
        <li><strong>{{.Name}}</strong> &mdash; {{.HealthSummary}}</li>
        {{end}}
      </ul>
    </div>
    {{end}}

    {{if .Failed}}
    <div class="alarms">
      <h3>Failed Copies</h3>
      <ul>
        {{range .Failed}}
        <li><strong>{{.Name}}</strong> &mdash; {{.HealthSummary}}</li>
        {{end}}
      </ul>
    </div>
    {{end}}

    {{if .LowDisk}}
    <div class="alarms">
      <h3>Low Disk Space</h3>
      <ul>
        {{range .LowDisk}}
        <li><strong>{{.Name}}</strong> &mdash; {{formatPercent .MinDiskFreePercent}} free at worst copy</li>
        {{end}}
      </ul>
    </div>
    {{end}}

    <table>
      <tr>
        <th>Database</th>
        <th>Servers</th>
        <th>Status</th>
        <th>Copy Health</th>
        <th>Backup</th>
        <th>Last Full Backup</th>
        <th>Size / Space</th>
        <th>Disk</th>
      </tr>
      {{range .Databases}}
      <tr>
        <td><strong>{{.Name}}</strong></td>
        <td>{{.ServerGroup}}</td>
        <td><span class="{{severityClass .Status.Severity}}">{{.Status.Display}}</span></td>
        <td>
          {{range .Copies}}
          <span class="{{severityClass .Severity}}">{{.Annotation}}</span><br>
          {{end}}
        </td>
        <td><span class="{{severityClass .BackupStatus.SeverityClass}}">{{.BackupStatus.Display}}</span></td>
        <td>{{.LastBackupDisplay}}</td>
        <td>{{.SizeDisplay}}<br><span class="disk">{{.SpaceSummary}}</span></td>
        <td class="disk{{if .HasLowDisk}} low{{end}}">
          {{if .DiskLines}}
          {{range .DiskLines}}
          <span class="{{if .LowDisk}}low{{end}}">{{.Server}} ({{.Role}}{{if .Volume}}, {{.Volume}}{{end}}): {{formatGB .FreeGB}} of {{formatGB .TotalGB}} free ({{formatPercent .FreePercent}})</span><br>
          {{end}}
          {{else}}
          N/A
          {{end}}
        </td>
      </tr>
      {{end}}
    </table>

    <div class="footer">
      DagDigest run {{.RunID}} &middot; Stateless snapshot report; each run is independent.
    </div>
  </div>
</body>
</html>`

// digestTextTemplate is the built-in plaintext body.
const digestTextTemplate = `{{.ClusterName}} - Database Backup & Replication Digest
Generated {{formatDateTime .GeneratedAt}} (run {{.RunID}})

Databases: {{.Summary.Total}} total, {{.Summary.BackedUp}} backed up, {{.Summary.InProgress}} in progress, {{.Summary.NotBackedUp}} not backed up
{{if .Dismounted}}
!! DISMOUNTED COPIES
{{range .Dismounted}}  - {{.Name}}: {{.HealthSummary}}
{{end}}{{end}}{{if .Failed}}
!! FAILED COPIES
{{range .Failed}}  - {{.Name}}: {{.HealthSummary}}
{{end}}{{end}}{{if .LowDisk}}
!! LOW DISK SPACE
{{range .LowDisk}}  - {{.Name}}: {{formatPercent .MinDiskFreePercent}} free at worst copy
{{end}}{{end}}
{{range .Databases}}* {{.Name}} [{{.ServerGroup}}]
  Status: {{.Status.Display}} | Backup: {{.BackupStatus.Display}} | Last full: {{.LastBackupDisplay}}
  Copies: {{.HealthSummary}}
  Space: {{.SizeDisplay}} ({{.SpaceSummary}})
{{range .DiskLines}}  Disk {{.Server}} ({{.Role}}): {{formatGB .FreeGB}} of {{formatGB .TotalGB}} free ({{formatPercent .FreePercent}}){{if .LowDisk}} [LOW]{{end}}
{{end}}
{{end}}`
