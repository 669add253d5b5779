package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsRegistered(t *testing.T) {
	ToolCallsTotal.WithLabelValues("execute_go", "ok").Inc()
	ExecuteDuration.Observe(0.1)
	ObserveWait("job", "DONE", time.Second)
	ObserveAPI("GET", 200, 10*time.Millisecond)
	HTTPRequestsTotal.WithLabelValues("POST", "2xx").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"dataiku_mcp_tool_calls_total":             false,
		"dataiku_mcp_execute_duration_seconds":     false,
		"dataiku_mcp_waits_total":                  false,
		"dataiku_mcp_wait_duration_seconds":        false,
		"dataiku_mcp_api_requests_total":           false,
		"dataiku_mcp_api_request_duration_seconds": false,
		"dataiku_mcp_http_requests_total":          false,
	}
	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{0: "error", 200: "2xx", 404: "4xx", 503: "5xx"}
	for code, want := range cases {
		if got := StatusClass(code); got != want {
			t.Errorf("StatusClass(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestObserveWaitCounts(t *testing.T) {
	before := counterValue(t, WaitsTotal, "scenario", "TIMEOUT")
	ObserveWait("scenario", "TIMEOUT", 2*time.Second)
	after := counterValue(t, WaitsTotal, "scenario", "TIMEOUT")
	if after-before != 1 {
		t.Fatalf("expected wait count to increase by 1, got delta=%f", after-before)
	}
}

func TestMiddlewareCapturesStatusCode(t *testing.T) {
	before := counterValue(t, HTTPRequestsTotal, "POST", "4xx")

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	after := counterValue(t, HTTPRequestsTotal, "POST", "4xx")
	if after-before != 1 {
		t.Errorf("expected 4xx count to increase by 1, got delta=%f", after-before)
	}
}

func TestStatusWriterFlush(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec, status: http.StatusOK}
	sw.Flush()
	if !rec.Flushed {
		t.Error("expected underlying writer to be flushed")
	}
}

func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}
