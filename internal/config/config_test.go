package config

import (
	"slices"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvURL, "https://dss.example.com")
	t.Setenv(EnvAPIKey, "key")
	t.Setenv("DATAIKU_MCP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.URL != "https://dss.example.com" || cfg.APIKey != "key" {
		t.Fatalf("credentials: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("shutdown timeout: %v", cfg.ShutdownTimeout)
	}
	if cfg.CredentialsMissing() {
		t.Fatal("credentials reported missing")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("DATAIKU_INSECURE_SKIP_VERIFY", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMissingCredentials(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want []string
	}{
		{"both", Config{}, []string{EnvURL, EnvAPIKey}},
		{"key", Config{URL: "https://dss"}, []string{EnvAPIKey}},
		{"url blank", Config{URL: "  ", APIKey: "k"}, []string{EnvURL}},
		{"none", Config{URL: "https://dss", APIKey: "k"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.cfg.MissingCredentials()
			if !slices.Equal(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			if tc.cfg.CredentialsMissing() != (len(tc.want) > 0) {
				t.Fatal("CredentialsMissing disagrees with MissingCredentials")
			}
		})
	}
}
