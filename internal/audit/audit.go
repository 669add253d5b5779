package audit

import (
	"context"
	"log/slog"
	"time"
)

// Event represents an audit entry for a tool call.
type Event struct {
	// Type describes the event kind.
	Type string
	// Tool is the tool name.
	Tool string
	// CorrelationID links the start and finish of one call.
	CorrelationID string
	// Status is the call outcome: ok, error or unconfigured.
	Status string
	// Duration is how long the call took.
	Duration time.Duration
	// Reason provides additional context.
	Reason string
}

// Event types.
const (
	EventToolStart  = "tool_start"
	EventToolFinish = "tool_finish"
)

// Logger records audit events.
type Logger interface {
	// Record stores an audit event.
	Record(ctx context.Context, event Event)
}

// StdLogger writes audit events to slog.
type StdLogger struct {
	logger *slog.Logger
}

// New returns a StdLogger.
func New(logger *slog.Logger) *StdLogger {
	return &StdLogger{logger: logger}
}

// Record logs an audit event.
func (l *StdLogger) Record(ctx context.Context, event Event) {
	if l == nil || l.logger == nil {
		return
	}
	attrs := []any{
		"type", event.Type,
		"tool", event.Tool,
		"correlation_id", event.CorrelationID,
	}
	if event.Status != "" {
		attrs = append(attrs, "status", event.Status)
	}
	if event.Duration > 0 {
		attrs = append(attrs, "duration", event.Duration)
	}
	if event.Reason != "" {
		attrs = append(attrs, "reason", event.Reason)
	}
	l.logger.InfoContext(ctx, "audit", attrs...)
}
