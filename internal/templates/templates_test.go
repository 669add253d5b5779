package templates

import (
	"strings"
	"testing"
)

func TestLoadFallsBackToEnglish(t *testing.T) {
	bundle, err := Load("xx")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if bundle.Lang() != "en" {
		t.Fatalf("expected en fallback, got %q", bundle.Lang())
	}
}

func TestRenderCredentialsMissing(t *testing.T) {
	bundle, err := Load("en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := bundle.Render(KeyCredentialsMissing, map[string]any{"Missing": []string{"DATAIKU_URL", "DATAIKU_API_KEY"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "ERROR: Dataiku credentials not configured.") {
		t.Fatalf("unexpected prefix: %q", out)
	}
	if !strings.Contains(out, "Missing: DATAIKU_URL, DATAIKU_API_KEY") {
		t.Fatalf("missing variables not listed: %q", out)
	}
}

func TestRenderInstructions(t *testing.T) {
	bundle, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := bundle.Render(KeyInstructionsConfigured, map[string]any{
		"ExecuteTool": "execute_go",
		"ListTool":    "list_helpers",
		"URL":         "https://dss.example.com",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"execute_go", "list_helpers", "https://dss.example.com"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in instructions", want)
		}
	}
}

func TestRenderUnknownKey(t *testing.T) {
	bundle, err := Load("en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := bundle.Render("nope", nil); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestRenderOr(t *testing.T) {
	if got := RenderOr(nil, KeyNoOutput, nil, "fallback"); got != "fallback" {
		t.Fatalf("nil renderer: got %q", got)
	}
	bundle, err := Load("en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := RenderOr(bundle, KeyNoOutput, nil, "fallback"); got != "(executed successfully, no output)" {
		t.Fatalf("got %q", got)
	}
	if got := RenderOr(bundle, "missing.key", nil, "fallback"); got != "fallback" {
		t.Fatalf("unknown key: got %q", got)
	}
}
