// Package server provides the gateway's HTTP surface.
//
// This package ties together the core components (auth gate, token
// pool, proxy registry, translator, streaming pipeline, telemetry ring,
// persistence stores, vendor client) into one HTTP server. Start and
// graceful Shutdown are methods of Server; signal handling lives in
// cmd/mercator, not here.
//
// # Architecture
//
// The server package is the top-level orchestrator that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Configures TLS termination
//   - Manages graceful shutdown
//
// # Basic Usage
//
//	import (
//	    "github.com/relaygw/relay/pkg/config"
//	    "github.com/relaygw/relay/pkg/server"
//	)
//
//	cfg := config.GetConfig()
//	srv := server.New(server.Deps{
//	    Config: cfg,
//	    Gate:   gate,
//	    Pool:   pool,
//	    // ...
//	})
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
//	if err := srv.Shutdown(context.Background()); err != nil {
//	    log.Error("shutdown error", "error", err)
//	}
//
// Shutdown drains in-flight requests within the configured shutdown
// timeout, then stops the background profile refresh scheduler.
//
// # Routes
//
// The server exposes:
//
//   - POST /v1/chat/completions, GET /v1/models - the OpenAI-compatible surface
//   - POST /tokens/* - admin token pool management
//   - POST /proxies/* - admin proxy registry management
//   - POST /build-key, /config-version/get - dynamic key and config-version tooling
//   - GET/POST /config/get, /config/set, /config/reload - the operator text blob
//   - GET/POST /logs, /logs/get, /logs/tokens/get - telemetry ring queries
//   - GET /gen-uuid, /gen-hash, /gen-checksum - secret/ID factories
//   - GET /health - liveness and counters
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. Timeout: Enforces per-request timeout
//  2. CORS: Adds Cross-Origin Resource Sharing headers
//  3. Logging: Logs request/response details
//  4. Recovery: Recovers from panics and returns 500 error
//  5. RequestID: Generates unique request ID for tracing
//
// # TLS Support
//
// The server supports TLS 1.3 with configurable certificates:
//
//	security:
//	  tls:
//	    enabled: true
//	    cert_file: "/path/to/cert.pem"
//	    key_file: "/path/to/key.pem"
//
// # Auth
//
// Bearers are matched by pkg/authgate as an admin bearer, a shared bearer,
// or a dynamic key. The /tokens/*, /proxies/* and /config/* endpoints
// accept only the admin bearer. /logs, /logs/get and /logs/tokens/get
// accept any of the three and scope non-admin callers to their own
// token_key. /build-key and /config-version/get require the admin bearer
// only when Auth.ShareAuthToken is set.
package server
