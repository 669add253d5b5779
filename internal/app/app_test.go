package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JedIV/dataiku-chat-control/internal/dsl"
)

func serverConfig(t *testing.T, yaml string) dsl.ServerConfig {
	t.Helper()
	cfg, err := dsl.Load([]byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg.Server
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func TestRoutes(t *testing.T) {
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mcp"))
	})
	a, err := New(context.Background(), serverConfig(t, ""), mcpHandler, Options{
		Extra: map[string]http.Handler{"/extra": http.NotFoundHandler(), "": mcpHandler},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	h := a.Handler()

	if code, body := get(t, h, "/mcp"); code != http.StatusOK || body != "mcp" {
		t.Fatalf("/mcp: %d %q", code, body)
	}
	if code, _ := get(t, h, "/healthz"); code != http.StatusOK {
		t.Fatalf("/healthz: %d", code)
	}
	if code, _ := get(t, h, "/readyz"); code != http.StatusServiceUnavailable {
		t.Fatalf("/readyz before start: %d", code)
	}
	code, body := get(t, h, "/metrics")
	if code != http.StatusOK || !strings.Contains(body, "dataiku_mcp_http_requests_total") {
		t.Fatalf("/metrics: %d", code)
	}
	if code, _ := get(t, h, "/extra"); code != http.StatusNotFound {
		t.Fatalf("/extra: %d", code)
	}
}

func TestMetricsDisabled(t *testing.T) {
	cfg := serverConfig(t, "server:\n  http:\n    metrics:\n      enabled: false\n")
	a, err := New(context.Background(), cfg, http.NotFoundHandler(), Options{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if code, _ := get(t, a.Handler(), "/metrics"); code != http.StatusNotFound {
		t.Fatalf("/metrics: %d", code)
	}
}

func TestNewValidates(t *testing.T) {
	cfg := serverConfig(t, "")
	if _, err := New(context.Background(), cfg, nil, Options{}); err == nil {
		t.Fatal("expected error for nil handler")
	}
	if _, err := New(nil, cfg, http.NotFoundHandler(), Options{}); err == nil {
		t.Fatal("expected error for nil context")
	}
}

func TestServeAndShutdown(t *testing.T) {
	a, err := New(context.Background(), serverConfig(t, ""), http.NotFoundHandler(), Options{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/readyz"
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			body, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK && string(body) == "ready" {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("server never became ready")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown timed out")
	}
	if code, _ := get(t, a.Handler(), "/readyz"); code != http.StatusServiceUnavailable {
		t.Fatalf("readyz after shutdown: %d", code)
	}
}
