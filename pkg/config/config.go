package config

import (
	"time"

	securitytls "github.com/relaygw/relay/pkg/security/tls"
)

// Config is the root configuration structure for the gateway. It is loaded
// from a YAML file, then overlaid with environment variables (§6 "Recognized
// options"), and served from a singleton that ReloadConfig refreshes from
// disk. No SIGHUP handler is installed, and a file Watcher reloads it only
// once started.
type Config struct {
	// Server contains the HTTP listener configuration.
	Server ServerConfig `yaml:"server"`

	// Auth contains the bearer-token gate configuration (C10).
	Auth AuthConfig `yaml:"auth"`

	// TokenStore locates the persisted token pool snapshot.
	TokenStore StoreConfig `yaml:"token_store"`

	// ProxyStore locates the persisted proxy registry snapshot.
	ProxyStore StoreConfig `yaml:"proxy_store"`

	// Telemetry contains logging, metrics, and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Logs contains the in-memory telemetry ring buffer configuration (C9).
	Logs LogsConfig `yaml:"logs"`

	// Streaming contains the streaming pipeline's timeout configuration (C8).
	Streaming StreamingConfig `yaml:"streaming"`

	// Vendor contains the upstream vendor endpoint configuration.
	Vendor VendorConfig `yaml:"vendor"`

	// Security contains TLS configuration for the gateway's own listener.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	// Port is the TCP port the gateway listens on. Default 3000.
	Port uint16 `yaml:"port"`

	// RoutePrefix is prepended to every route (e.g. "/api"). Optional.
	RoutePrefix string `yaml:"route_prefix"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
}

// AuthConfig configures the auth gate (C10).
type AuthConfig struct {
	// AdminToken is the process-wide admin bearer (env AUTH_TOKEN). Required.
	AdminToken string `yaml:"admin_token"`

	// SharedToken, if set, is a bearer that selects round-robin over the
	// enabled token set (the "shared pool" mode).
	SharedToken string `yaml:"shared_token"`

	// ShareAuthToken gates whether /build-key and /config-version/get
	// require admin auth.
	ShareAuthToken bool `yaml:"share_auth_token"`
}

// StoreConfig locates one of the two persisted snapshot files.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LogsConfig configures the telemetry ring (C9).
type LogsConfig struct {
	// Capacity is the ring buffer's maximum record count. Default 2048.
	Capacity int `yaml:"capacity"`
}

// StreamingConfig configures the streaming pipeline's timeouts (C8).
type StreamingConfig struct {
	// TotalTimeout is the per-request wall-clock budget. Default 300s.
	TotalTimeout time.Duration `yaml:"total_timeout"`

	// IdleTimeout is the between-frames read-idle timer. Default 60s.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// CompressionThreshold is the payload size above which outbound frames
	// may be gzip-compressed (§4.1). Default 16 KiB.
	CompressionThreshold int `yaml:"compression_threshold"`
}

// VendorConfig locates the upstream vendor's HTTP endpoints and fixed
// client-identity headers.
type VendorConfig struct {
	ChatURL          string            `yaml:"chat_url"`
	CppURLs          map[string]string `yaml:"cpp_urls"` // keyed by gcpp_host: asia/eu/us
	ModelsURL        string            `yaml:"models_url"`
	ConfigVersionURL string            `yaml:"config_version_url"`
	ProfileURL       string            `yaml:"profile_url"`
	ClientVersion    string            `yaml:"client_version"`
	GhostMode        bool              `yaml:"ghost_mode"`
	RefreshSchedule  string            `yaml:"refresh_schedule"` // cron expression for the profile refresh sweep
}

// TelemetryConfig groups the ambient observability stack.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures the slog-based structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json", "text", or "console"

	// AddSource annotates each record with the calling file:line.
	AddSource bool `yaml:"add_source"`

	// RedactPII enables automatic redaction of API keys, emails, SSNs, and
	// similar sensitive values from log field values before they're written.
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns supplements the built-in redaction patterns with
	// operator-defined ones (e.g. an internal token format).
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern is a single named regular expression and its replacement,
// used to scrub a custom sensitive-value shape from log output.
type RedactPattern struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// MetricsConfig configures the Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool       `yaml:"enabled"`
	Endpoint    string     `yaml:"endpoint"`
	SampleRatio float64    `yaml:"sample_ratio"`
	Sampler     string     `yaml:"sampler"`
	Exporter    string     `yaml:"exporter"`
	ServiceName string     `yaml:"service_name"`
	OTLP        OTLPConfig `yaml:"otlp"`
}

// OTLPConfig configures the OTLP gRPC trace exporter.
type OTLPConfig struct {
	Insecure bool          `yaml:"insecure"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SecurityConfig configures TLS termination for the gateway's own listener
// (not the vendor connection, which is always HTTPS).
type SecurityConfig struct {
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig is the gateway listener's TLS material: certificate/key paths,
// minimum version and cipher suite policy, optional hot-reload interval,
// and optional mTLS (client certificate) settings. It is the YAML-facing
// alias of pkg/security/tls.Config so the listener and the reload/mTLS
// helpers in that package share one struct end to end.
type TLSConfig = securitytls.Config
