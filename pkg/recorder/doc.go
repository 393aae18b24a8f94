// Package recorder implements the telemetry recorder (C9): a bounded,
// append-only, in-memory ring of LogRecord values plus a non-blocking
// snapshot-query API. One record is opened per client request and closed
// when the request terminates, successfully or not.
//
// The recorder never stores request or response content — only cumulative
// character counts and timings (§4.9 "Privacy") — and identifies the
// backing token by a truncated hash, never the token itself.
package recorder
