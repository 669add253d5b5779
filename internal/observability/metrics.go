// Package observability provides Prometheus metrics for tool calls, waits
// and DSS API traffic.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WaitBuckets covers completion waits from one second up to an hour.
var WaitBuckets = []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800, 3600}

var (
	// ToolCallsTotal counts MCP tool calls by tool and outcome.
	ToolCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataiku_mcp_tool_calls_total",
			Help: "Tool calls",
		},
		[]string{"tool", "status"},
	)

	// ExecuteDuration records how long each code execution took in seconds.
	ExecuteDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dataiku_mcp_execute_duration_seconds",
			Help:    "Code execution duration",
			Buckets: WaitBuckets,
		},
	)

	// WaitsTotal counts completed waits by kind and result status.
	WaitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataiku_mcp_waits_total",
			Help: "Completion waits",
		},
		[]string{"kind", "status"},
	)

	// WaitDuration records wait duration in seconds by kind.
	WaitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataiku_mcp_wait_duration_seconds",
			Help:    "Completion wait duration",
			Buckets: WaitBuckets,
		},
		[]string{"kind"},
	)

	// APIRequestsTotal counts DSS API requests by method and status class.
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataiku_mcp_api_requests_total",
			Help: "DSS API requests",
		},
		[]string{"method", "status"},
	)

	// APIRequestDuration records DSS API latency in seconds by method.
	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataiku_mcp_api_request_duration_seconds",
			Help:    "DSS API request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// HTTPRequestsTotal counts requests served by the streamable HTTP transport.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dataiku_mcp_http_requests_total",
			Help: "MCP HTTP requests",
		},
		[]string{"method", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		ToolCallsTotal,
		ExecuteDuration,
		WaitsTotal,
		WaitDuration,
		APIRequestsTotal,
		APIRequestDuration,
		HTTPRequestsTotal,
	)
}

// StatusClass turns an HTTP status code into a label like "2xx".
// Transport failures with no status map to "error".
func StatusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

// ObserveAPI records one DSS API round trip.
func ObserveAPI(method string, code int, elapsed time.Duration) {
	APIRequestsTotal.WithLabelValues(method, StatusClass(code)).Inc()
	APIRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// ObserveWait records one finished completion wait.
func ObserveWait(kind, status string, elapsed time.Duration) {
	WaitsTotal.WithLabelValues(kind, status).Inc()
	WaitDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// Middleware wraps an HTTP handler to count served requests.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		HTTPRequestsTotal.WithLabelValues(r.Method, StatusClass(sw.status)).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.written = true
	return w.ResponseWriter.Write(b)
}

// Flush keeps SSE streaming working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
