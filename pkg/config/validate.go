package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in one validation pass.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the full configuration and returns a ValidationError
// aggregating every field-level problem, or nil if the config is usable.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateStore("token_store", &cfg.TokenStore)...)
	errs = append(errs, validateStore("proxy_store", &cfg.ProxyStore)...)
	errs = append(errs, validateLogs(&cfg.Logs)...)
	errs = append(errs, validateStreaming(&cfg.Streaming)...)
	errs = append(errs, validateVendor(&cfg.Vendor)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError
	if cfg.Port == 0 {
		errs = append(errs, FieldError{Field: "server.port", Message: "port must be nonzero"})
	}
	if cfg.RoutePrefix != "" && !strings.HasPrefix(cfg.RoutePrefix, "/") {
		errs = append(errs, FieldError{Field: "server.route_prefix", Message: "route_prefix must start with '/'"})
	}
	return errs
}

func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError
	if cfg.AdminToken == "" {
		errs = append(errs, FieldError{Field: "auth.admin_token", Message: "AUTH_TOKEN is required"})
	}
	return errs
}

func validateStore(prefix string, cfg *StoreConfig) []FieldError {
	var errs []FieldError
	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: prefix + ".path", Message: "store path is required"})
	}
	return errs
}

func validateLogs(cfg *LogsConfig) []FieldError {
	var errs []FieldError
	if cfg.Capacity <= 0 {
		errs = append(errs, FieldError{Field: "logs.capacity", Message: "capacity must be positive"})
	}
	return errs
}

func validateStreaming(cfg *StreamingConfig) []FieldError {
	var errs []FieldError
	if cfg.TotalTimeout <= 0 {
		errs = append(errs, FieldError{Field: "streaming.total_timeout", Message: "must be positive"})
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, FieldError{Field: "streaming.idle_timeout", Message: "must be positive"})
	}
	if cfg.CompressionThreshold < 0 {
		errs = append(errs, FieldError{Field: "streaming.compression_threshold", Message: "must not be negative"})
	}
	return errs
}

func validateVendor(cfg *VendorConfig) []FieldError {
	var errs []FieldError
	for field, raw := range map[string]string{
		"vendor.chat_url":           cfg.ChatURL,
		"vendor.models_url":        cfg.ModelsURL,
		"vendor.config_version_url": cfg.ConfigVersionURL,
	} {
		if raw == "" {
			errs = append(errs, FieldError{Field: field, Message: "is required"})
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, FieldError{Field: field, Message: "must be an absolute http(s) URL"})
		}
	}
	for host, raw := range cfg.CppURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, FieldError{Field: "vendor.cpp_urls." + host, Message: "must be an absolute http(s) URL"})
		}
	}
	return errs
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError
	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{Field: "security.tls.cert_file", Message: "required when TLS is enabled"})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{Field: "security.tls.key_file", Message: "required when TLS is enabled"})
		}
	}
	return errs
}
