// Package config provides configuration management for the gateway.
//
// It loads a YAML file, applies documented defaults, overlays the
// environment variables §6 names as "recognized options", and
// validates the result. A singleton accessor (Initialize/GetConfig) serves
// the live configuration to the rest of the process, and ReloadConfig
// re-reads the file into it. A Watcher (fsnotify-backed) calls ReloadConfig
// on out-of-band file edits once started; the gateway does not start one.
// A Watcher reloads only the YAML configuration, even when an added
// token/proxy store file changes; it does not reload the stores.
//
// # Loading
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// # Singleton
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// # Validation
//
// Validate aggregates every field-level problem into one ValidationError
// rather than failing on the first:
//
//	configuration validation failed with 2 errors:
//	  - auth.admin_token: AUTH_TOKEN is required
//	  - vendor.chat_url: must be an absolute http(s) URL
package config
