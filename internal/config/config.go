package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environment variable names for the DSS credentials.
const (
	EnvURL    = "DATAIKU_URL"
	EnvAPIKey = "DATAIKU_API_KEY"
)

// Config stores environment-driven settings for the server.
type Config struct {
	// URL is the DSS instance base URL.
	URL string `env:"DATAIKU_URL"`
	// APIKey authenticates against the DSS public API.
	APIKey string `env:"DATAIKU_API_KEY"`
	// InsecureSkipVerify disables TLS verification for self-signed instances.
	InsecureSkipVerify bool `env:"DATAIKU_INSECURE_SKIP_VERIFY" envDefault:"false"`
	// ConfigPath is the path to the YAML configuration file. Empty selects the embedded default.
	ConfigPath string `env:"DATAIKU_MCP_CONFIG"`
	// Transport overrides server.transport from the YAML config.
	Transport string `env:"DATAIKU_MCP_TRANSPORT"`
	// LogLevel sets the logger level.
	LogLevel string `env:"DATAIKU_MCP_LOG_LEVEL" envDefault:"info"`
	// LogFormat selects json or text log output.
	LogFormat string `env:"DATAIKU_MCP_LOG_FORMAT" envDefault:"json"`
	// Lang selects message language for templates.
	Lang string `env:"DATAIKU_MCP_LANG" envDefault:"en"`
	// ShutdownTimeout controls graceful shutdown duration.
	ShutdownTimeout time.Duration `env:"DATAIKU_MCP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses environment variables into Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}

// MissingCredentials lists the required credential variables that are unset.
func (c Config) MissingCredentials() []string {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, EnvURL)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, EnvAPIKey)
	}
	return missing
}

// CredentialsMissing reports whether the server cannot reach DSS.
func (c Config) CredentialsMissing() bool {
	return len(c.MissingCredentials()) > 0
}
