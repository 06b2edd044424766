package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent represents a security-relevant event
type AuditEvent struct {
	EventType     string
	UserID        string
	IPAddress     string
	Success       bool
	FailureReason string
}

// AuditLogger provides structured audit logging
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// LogAuthAttempt logs authentication attempts
func (al *AuditLogger) LogAuthAttempt(event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}

	if event.Success {
		al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
	} else {
		al.logger.LogAttrs(context.Background(), slog.LevelWarn, "audit", attrs...)
	}
}

// LogVerification logs verification protocol outcomes (issue, resend, redeem)
func (al *AuditLogger) LogVerification(userID, operation string, success bool, failureReason string) {
	attrs := []slog.Attr{
		slog.String("audit_type", "verification"),
		slog.String("event_type", operation),
		slog.String("user_id", userID),
		slog.Bool("success", success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	if failureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", failureReason))
	}

	level := slog.LevelInfo
	if !success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(context.Background(), level, "audit", attrs...)
}

// LogBillingChange logs super-admin changes to a tenant's plan state
func (al *AuditLogger) LogBillingChange(adminUID, restaurantID, planStatus string, success bool) {
	attrs := []slog.Attr{
		slog.String("audit_type", "billing"),
		slog.String("event_type", "plan_update"),
		slog.String("admin_uid", adminUID),
		slog.String("restaurant_id", restaurantID),
		slog.String("plan_status", planStatus),
		slog.Bool("success", success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	al.logger.LogAttrs(context.Background(), slog.LevelInfo, "audit", attrs...)
}
