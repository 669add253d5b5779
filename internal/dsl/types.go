package dsl

// Config is the top-level YAML configuration.
type Config struct {
	// Server describes the MCP server settings.
	Server ServerConfig `yaml:"server"`
	// Client tunes the DSS API client.
	Client ClientConfig `yaml:"client"`
	// Waits overrides the completion wait defaults per operation kind.
	Waits map[string]WaitConfig `yaml:"waits"`
	// Resources lists static resources.
	Resources []ResourceConfig `yaml:"resources"`
}

// ServerConfig defines MCP server settings.
type ServerConfig struct {
	// Name is the MCP server name.
	Name string `yaml:"name"`
	// Version is the MCP server version.
	Version string `yaml:"version"`
	// Transport selects the server transport ("stdio" or "http").
	Transport string `yaml:"transport"`
	// ShutdownTimeout overrides graceful shutdown duration.
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	// ExecuteTimeout bounds a single code execution; empty means no limit.
	ExecuteTimeout string `yaml:"execute_timeout"`
	// HTTP configures HTTP transport.
	HTTP HTTPConfig `yaml:"http"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Host is the listen host.
	Host string `yaml:"host"`
	// Port is the listen port.
	Port int `yaml:"port"`
	// Path is the MCP HTTP endpoint path.
	Path string `yaml:"path"`
	// ReadTimeout limits request read time.
	ReadTimeout string `yaml:"read_timeout"`
	// WriteTimeout limits response write time.
	WriteTimeout string `yaml:"write_timeout"`
	// IdleTimeout controls idle connections.
	IdleTimeout string `yaml:"idle_timeout"`
	// Stateless disables session tracking.
	Stateless bool `yaml:"stateless"`
	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// ClientConfig tunes the DSS API client.
type ClientConfig struct {
	// RequestTimeout bounds each HTTP request.
	RequestTimeout string `yaml:"request_timeout"`
	// RequestsPerSecond throttles requests; 0 disables throttling.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// Burst is the throttle burst size.
	Burst int `yaml:"burst"`
}

// WaitConfig overrides the defaults of one wait kind.
type WaitConfig struct {
	// Timeout bounds the whole wait.
	Timeout string `yaml:"timeout"`
	// PollInterval is the pause between status queries.
	PollInterval string `yaml:"poll_interval"`
}

// ResourceConfig declares a static MCP resource.
type ResourceConfig struct {
	// Name is a human-friendly resource name.
	Name string `yaml:"name"`
	// URI is the resource identifier.
	URI string `yaml:"uri"`
	// Description explains the resource.
	Description string `yaml:"description"`
	// MIMEType sets the content type.
	MIMEType string `yaml:"mime_type"`
	// Text is the static resource content.
	Text string `yaml:"text"`
}
