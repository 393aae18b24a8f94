// Package streaming implements the streaming pipeline (C8): it issues the
// vendor HTTPS POST, decodes the response's framed body (C1), dispatches
// decoded messages to the translator (C7), and writes either SSE events or
// an accumulated non-stream buffer, enforcing the per-request wall-clock
// budget and the between-frames read-idle timer (§4.8).
package streaming
