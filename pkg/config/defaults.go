package config

import "time"

// Default values for configuration fields, per §6 "Environment /
// config" and the additional ambient fields this expansion adds.
const (
	DefaultPort            = uint16(3000)
	DefaultReadTimeout      = 30 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
	DefaultIdleTimeout      = 120 * time.Second
	DefaultShutdownTimeout  = 30 * time.Second
	DefaultMaxHeaderBytes   = 1 << 20

	DefaultTokenStorePath = "data/tokens.bin"
	DefaultProxyStorePath = "data/proxies.bin"

	DefaultLogsCapacity = 2048

	DefaultStreamingTotalTimeout         = 300 * time.Second
	DefaultStreamingIdleTimeout          = 60 * time.Second
	DefaultStreamingCompressionThreshold = 16 * 1024

	DefaultVendorChatURL          = "https://api2.cursor.sh/aiserver.v1.ChatService/StreamChat"
	DefaultVendorModelsURL        = "https://api2.cursor.sh/aiserver.v1.AiService/AvailableModels"
	DefaultVendorConfigVersionURL = "https://api2.cursor.sh/aiserver.v1.AiService/GetConfigVersion"
	DefaultVendorProfileURL       = "https://api2.cursor.sh/auth/full_stripe_profile"
	DefaultVendorClientVersion    = "0.42.3"
	DefaultRefreshSchedule        = "0 */6 * * *"

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
	DefaultMetricsPath   = "/metrics"
	DefaultMetricsEnabled = true
	DefaultTracingSampleRatio = 1.0
)

// ApplyDefaults fills zero-valued fields of cfg with their documented
// defaults. Idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.TokenStore.Path == "" {
		cfg.TokenStore.Path = DefaultTokenStorePath
	}
	if cfg.ProxyStore.Path == "" {
		cfg.ProxyStore.Path = DefaultProxyStorePath
	}

	if cfg.Logs.Capacity == 0 {
		cfg.Logs.Capacity = DefaultLogsCapacity
	}

	if cfg.Streaming.TotalTimeout == 0 {
		cfg.Streaming.TotalTimeout = DefaultStreamingTotalTimeout
	}
	if cfg.Streaming.IdleTimeout == 0 {
		cfg.Streaming.IdleTimeout = DefaultStreamingIdleTimeout
	}
	if cfg.Streaming.CompressionThreshold == 0 {
		cfg.Streaming.CompressionThreshold = DefaultStreamingCompressionThreshold
	}

	if cfg.Vendor.ChatURL == "" {
		cfg.Vendor.ChatURL = DefaultVendorChatURL
	}
	if cfg.Vendor.ModelsURL == "" {
		cfg.Vendor.ModelsURL = DefaultVendorModelsURL
	}
	if cfg.Vendor.ConfigVersionURL == "" {
		cfg.Vendor.ConfigVersionURL = DefaultVendorConfigVersionURL
	}
	if cfg.Vendor.ClientVersion == "" {
		cfg.Vendor.ClientVersion = DefaultVendorClientVersion
	}
	if cfg.Vendor.ProfileURL == "" {
		cfg.Vendor.ProfileURL = DefaultVendorProfileURL
	}
	if cfg.Vendor.RefreshSchedule == "" {
		cfg.Vendor.RefreshSchedule = DefaultRefreshSchedule
	}
	if cfg.Vendor.CppURLs == nil {
		cfg.Vendor.CppURLs = map[string]string{
			"asia": "https://asia.aiserver.cursor.sh/aiserver.v1.CppService/StreamCpp",
			"eu":   "https://eu.aiserver.cursor.sh/aiserver.v1.CppService/StreamCpp",
			"us":   "https://us.aiserver.cursor.sh/aiserver.v1.CppService/StreamCpp",
		}
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
}
