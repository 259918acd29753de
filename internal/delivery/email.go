// DagDigest - Mail Cluster Backup & Replication Health Digest
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dagdigest

// Package delivery sends the rendered digest by email.
//
// The transport is plain SMTP with optional STARTTLS and PLAIN auth. The
// digest is a multipart/alternative message carrying both the plaintext and
// HTML bodies. All transport settings pass through from configuration
// unmodified; nothing here makes classification decisions.
//
// Security:
//   - Credentials are never logged
//   - TLS 1.2 minimum when STARTTLS is enabled
package delivery

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Error codes for failed deliveries.
const (
	ErrorCodeInvalidConfig    = "INVALID_CONFIG"
	ErrorCodeInvalidRecipient = "INVALID_RECIPIENT"
	ErrorCodeConnectionFailed = "CONNECTION_FAILED"
	ErrorCodeAuthFailed       = "AUTH_FAILED"
	ErrorCodeTimeout          = "TIMEOUT"
	ErrorCodeServerError      = "SERVER_ERROR"
	ErrorCodeUnknown          = "UNKNOWN"
)

// SMTPConfig holds the mail transport settings.
type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FromName    string
	UseStartTLS bool
}

// Message is one digest email: subject, both bodies, and the recipient
// list already split from the configured semicolon-delimited string.
type Message struct {
	Recipients []string
	Subject    string
	BodyHTML   string
	BodyText   string

	// HighPriority sets the X-Priority header so alarm-carrying digests
	// surface in mail clients.
	HighPriority bool

	// RunID is carried in the X-DagDigest-Run header for traceability.
	RunID string
}

// Result describes a delivery attempt.
type Result struct {
	Success     bool
	Recipients  []string
	DeliveredAt *time.Time

	// ErrorMessage and ErrorCode are set on failure.
	ErrorMessage string
	ErrorCode    string

	// IsTransient indicates the failure may succeed on retry.
	IsTransient bool
}

// EmailSender delivers digest messages via SMTP.
type EmailSender struct {
	cfg SMTPConfig

	// dialTimeout is the connection timeout.
	dialTimeout time.Duration
}

// NewEmailSender creates a sender with the given transport settings.
func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return &EmailSender{
		cfg:         cfg,
		dialTimeout: 30 * time.Second,
	}
}

// SplitRecipients splits a semicolon-delimited recipient list, trimming
// whitespace and dropping empty entries.
func SplitRecipients(list string) []string {
	var out []string
	for _, r := range strings.Split(list, ";") {
		r = strings.TrimSpace(r)
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

// ValidateEmail checks basic email address format.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid email address format: %s", email)
	}
	if !strings.Contains(parts[1], ".") {
		return fmt.Errorf("invalid email domain: %s", parts[1])
	}
	return nil
}

// Validate checks the SMTP configuration.
func (s *EmailSender) Validate() error {
	if s.cfg.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if s.cfg.Port <= 0 || s.cfg.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", s.cfg.Port)
	}
	if s.cfg.From == "" {
		return fmt.Errorf("SMTP from address is required")
	}
	if err := ValidateEmail(s.cfg.From); err != nil {
		return fmt.Errorf("invalid SMTP from address: %w", err)
	}
	return nil
}

// Send delivers the message. Failures are captured in the Result rather
// than returned, so callers can log the classification; the error return is
// reserved for invalid call arguments.
func (s *EmailSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	result := &Result{Recipients: msg.Recipients}

	if len(msg.Recipients) == 0 {
		result.ErrorMessage = "no recipients configured"
		result.ErrorCode = ErrorCodeInvalidRecipient
		return result, nil
	}
	for _, rcpt := range msg.Recipients {
		if err := ValidateEmail(rcpt); err != nil {
			result.ErrorMessage = err.Error()
			result.ErrorCode = ErrorCodeInvalidRecipient
			return result, nil
		}
	}
	if err := s.Validate(); err != nil {
		result.ErrorMessage = err.Error()
		result.ErrorCode = ErrorCodeInvalidConfig
		return result, nil
	}

	body := s.buildMessage(msg)
	if err := s.sendSMTP(ctx, msg.Recipients, body); err != nil {
		result.ErrorMessage = err.Error()
		result.ErrorCode = classifyEmailError(err)
		result.IsTransient = isTransientEmailError(result.ErrorCode)
		return result, nil
	}

	now := time.Now()
	result.Success = true
	result.DeliveredAt = &now
	return result, nil
}

// buildMessage constructs the RFC 2822 message with headers.
func (s *EmailSender) buildMessage(msg *Message) string {
	var b strings.Builder

	fromName := s.cfg.FromName
	if fromName == "" {
		fromName = "DagDigest"
	}

	b.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, s.cfg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(msg.Recipients, ", ")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	if msg.RunID != "" {
		b.WriteString(fmt.Sprintf("X-DagDigest-Run: %s\r\n", msg.RunID))
	}
	if msg.HighPriority {
		b.WriteString("X-Priority: 1\r\n")
		b.WriteString("Importance: high\r\n")
	}

	hasHTML := msg.BodyHTML != ""
	hasText := msg.BodyText != ""

	switch {
	case hasHTML && hasText:
		boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
		b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n", boundary))
		b.WriteString("\r\n")

		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.BodyText)
		b.WriteString("\r\n")

		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.BodyHTML)
		b.WriteString("\r\n")

		b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	case hasHTML:
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.BodyHTML)
	default:
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(msg.BodyText)
	}

	return b.String()
}

// sendSMTP sends the message via SMTP.
func (s *EmailSender) sendSMTP(ctx context.Context, recipients []string, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	dialer := &net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if s.cfg.UseStartTLS {
		tlsConfig := &tls.Config{
			ServerName: s.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("failed to start TLS: %w", err)
		}
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start message: %w", err)
	}
	if _, err := writer.Write([]byte(body)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close message: %w", err)
	}

	if err := client.Quit(); err != nil {
		// Message was accepted; a failed QUIT is not a delivery failure.
		return nil
	}
	return nil
}

// classifyEmailError classifies an error into an error code.
func classifyEmailError(err error) string {
	errStr := err.Error()

	if strings.Contains(errStr, "authentication") || strings.Contains(errStr, "auth") {
		return ErrorCodeAuthFailed
	}
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "connect") {
		return ErrorCodeConnectionFailed
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return ErrorCodeTimeout
	}
	if strings.Contains(errStr, "recipient") || strings.Contains(errStr, "mailbox") {
		return ErrorCodeServerError
	}
	return ErrorCodeUnknown
}

// isTransientEmailError returns true if the error may succeed on retry.
func isTransientEmailError(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeServerError:
		return true
	default:
		return false
	}
}
