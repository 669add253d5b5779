package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestBytesWithSubstitutes(t *testing.T) {
	raw := []byte(`port: {{ envOr "PORT" "8080" }}
transport: {{ env "TRANSPORT" | lower }}
`)
	out, err := BytesWith("cfg", raw, lookupFrom(map[string]string{"TRANSPORT": "HTTP"}))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "port: 8080\ntransport: http\n"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestBytesWithReportsMissing(t *testing.T) {
	raw := []byte(`a: {{ env "B_VAR" }}
b: {{ env "A_VAR" }}
`)
	_, err := BytesWith("", raw, lookupFrom(nil))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "missing env vars: A_VAR, B_VAR") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBytesWithParseError(t *testing.T) {
	if _, err := BytesWith("bad", []byte("{{ env "), lookupFrom(nil)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("name: {{ default \"dataiku\" \"\" }}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := File(path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "name: dataiku\n" {
		t.Fatalf("got %q", out)
	}
	if _, err := File(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected read error")
	}
}
