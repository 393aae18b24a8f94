// Mercator Jupiter is a gateway that exposes an OpenAI-compatible chat
// completion API and a code-completion surface, translating both into a
// single upstream vendor's private streaming protocol.
//
// It provides:
//   - Multi-tenant credential pooling with per-request token leasing
//   - Request/response translation between OpenAI's wire format and the
//     vendor's framed Protobuf stream
//   - Admin tooling for managing tokens, proxies, and dynamic access keys
//   - An in-memory telemetry ring for recent request/response shapes
//
// Usage:
//
//	# Start server with default configuration
//	mercator run
//
//	# Start with custom configuration file
//	mercator run --config /path/to/config.yaml
//
//	# Show version information
//	mercator version
//
//	# Build or decode a dynamic access key
//	mercator keys build --numeric 12345
//	mercator keys decode sk-...
//
// For complete documentation, see: https://github.com/relaygw/relay
package main

func main() {
	Execute()
}
