// Package translator converts between the client-facing OpenAI chat
// completion shape and the vendor's framed Protobuf stream protocol (C7 in
// the gateway's component design).
//
// Construction (client -> vendor) happens once per request in BuildRequest.
// Consumption (vendor -> client) is stateful across the life of one request:
// a Translator accumulates text deltas, tracks timing, and finally renders
// either a single JSON response (non-stream) or a sequence of SSE chunks
// (stream), in vendor frame order.
package translator
