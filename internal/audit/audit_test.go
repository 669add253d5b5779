package audit

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestStdLoggerRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	New(logger).Record(context.Background(), Event{
		Type:          EventToolFinish,
		Tool:          "execute_go",
		CorrelationID: "abc",
		Status:        "ok",
		Duration:      time.Second,
	})
	out := buf.String()
	for _, want := range []string{"type=tool_finish", "tool=execute_go", "correlation_id=abc", "status=ok", "duration=1s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "reason=") {
		t.Fatalf("empty reason should be omitted: %q", out)
	}
}

func TestStdLoggerNil(t *testing.T) {
	var l *StdLogger
	l.Record(context.Background(), Event{Type: EventToolStart})
	New(nil).Record(context.Background(), Event{Type: EventToolStart})
}
