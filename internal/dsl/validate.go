package dsl

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/JedIV/dataiku-chat-control/internal/constants"
	"github.com/JedIV/dataiku-chat-control/internal/timeutil"
	"github.com/JedIV/dataiku-chat-control/internal/wait"
)

// Validate applies defaults and verifies required fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Server.Name == "" {
		cfg.Server.Name = "dataiku"
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = "dev"
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Server.Transport)) {
	case "":
		cfg.Server.Transport = constants.TransportStdio
	case constants.TransportStdio, constants.TransportHTTP:
		cfg.Server.Transport = strings.ToLower(strings.TrimSpace(cfg.Server.Transport))
	default:
		return fmt.Errorf("server.transport must be stdio or http")
	}
	for name, value := range map[string]string{
		"server.shutdown_timeout":   cfg.Server.ShutdownTimeout,
		"server.execute_timeout":    cfg.Server.ExecuteTimeout,
		"server.http.read_timeout":  cfg.Server.HTTP.ReadTimeout,
		"server.http.write_timeout": cfg.Server.HTTP.WriteTimeout,
		"server.http.idle_timeout":  cfg.Server.HTTP.IdleTimeout,
		"client.request_timeout":    cfg.Client.RequestTimeout,
	} {
		if _, err := timeutil.ParseNonNegative(value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if strings.TrimSpace(cfg.Server.HTTP.Host) == "" {
		cfg.Server.HTTP.Host = "127.0.0.1"
	}
	if cfg.Server.HTTP.Port == 0 {
		cfg.Server.HTTP.Port = 8080
	}
	if cfg.Server.HTTP.Port < 1 || cfg.Server.HTTP.Port > 65535 {
		return fmt.Errorf("server.http.port must be between 1 and 65535")
	}
	if cfg.Server.HTTP.Path == "" {
		cfg.Server.HTTP.Path = "/mcp"
	}
	if !strings.HasPrefix(cfg.Server.HTTP.Path, "/") {
		return fmt.Errorf("server.http.path must start with /")
	}

	if cfg.Server.HTTP.Metrics.Path == "" {
		cfg.Server.HTTP.Metrics.Path = "/metrics"
	}
	if cfg.Server.HTTP.Metrics.Path == cfg.Server.HTTP.Path {
		return fmt.Errorf("server.http.metrics.path must differ from server.http.path")
	}

	if cfg.Client.RequestsPerSecond < 0 {
		return fmt.Errorf("client.requests_per_second must be >= 0")
	}
	if cfg.Client.Burst < 0 {
		return fmt.Errorf("client.burst must be >= 0")
	}

	for kind, w := range cfg.Waits {
		if _, ok := wait.BuiltinDefaults()[wait.Kind(kind)]; !ok {
			return fmt.Errorf("waits.%s: unknown kind (want job, scenario, recipe or future)", kind)
		}
		if _, err := timeutil.ParseNonNegative(w.Timeout); err != nil {
			return fmt.Errorf("waits.%s.timeout: %w", kind, err)
		}
		if _, err := timeutil.ParseNonNegative(w.PollInterval); err != nil {
			return fmt.Errorf("waits.%s.poll_interval: %w", kind, err)
		}
	}

	resourceURIs := map[string]struct{}{constants.HelpersResourceURI: {}}
	for i, res := range cfg.Resources {
		if res.URI == "" {
			return fmt.Errorf("resources[%d].uri is required", i)
		}
		if _, exists := resourceURIs[res.URI]; exists {
			return fmt.Errorf("duplicate resource uri: %s", res.URI)
		}
		resourceURIs[res.URI] = struct{}{}
		if cfg.Resources[i].MIMEType == "" {
			cfg.Resources[i].MIMEType = "text/plain"
		}
	}

	return nil
}

// Addr returns the HTTP listen address.
func (c HTTPConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// WaitDefaults converts the waits section for wait.New. Values were
// checked by Validate.
func (c *Config) WaitDefaults() map[wait.Kind]wait.Defaults {
	out := make(map[wait.Kind]wait.Defaults, len(c.Waits))
	for kind, w := range c.Waits {
		timeout, _ := timeutil.ParseNonNegative(w.Timeout)
		interval, _ := timeutil.ParseNonNegative(w.PollInterval)
		out[wait.Kind(kind)] = wait.Defaults{Timeout: timeout, PollInterval: interval}
	}
	return out
}

// Timeout returns the DSS request timeout (default 60s).
func (c ClientConfig) Timeout() time.Duration {
	return timeutil.ParseDurationOrDefault(c.RequestTimeout, 60*time.Second)
}
