package server

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/relaygw/relay/pkg/tokenpool"
)

// TestWriteStreamErrorAfterStreamStarted asserts §7's stream-mode error
// representation: once SSE framing has begun, a later failure must render
// as a trailing `data: {"error":...}` / `data: [DONE]` pair rather than an
// HTTP error body (the status line is already committed by then).
func TestWriteStreamErrorAfterStreamStarted(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	sink := &chatSink{w: rr}

	if err := sink.WriteLine(`data: {"delta":"he"}`); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
	if !sink.started {
		t.Fatalf("expected sink.started to be true after a successful write")
	}

	s.writeStreamError(sink, &tokenpool.TokenBusyError{Alias: "tok-1"})

	body := rr.Body.String()
	if !strings.Contains(body, `"error"`) {
		t.Fatalf("expected an error event in body, got %q", body)
	}
	if !strings.HasSuffix(strings.TrimRight(body, "\n"), "data: [DONE]") {
		t.Fatalf("expected body to end with data: [DONE], got %q", body)
	}
	// The HTTP status must remain whatever net/http defaulted to on the
	// first Write (200) — writeStreamError must not attempt WriteHeader.
	if rr.Code != 200 {
		t.Fatalf("status = %d, want 200 (already committed by the first SSE line)", rr.Code)
	}
}

// TestRenderedErrorWrapsCause asserts the *renderedError wrapper that
// runChatRequest returns after rendering a stream error as SSE: errors.As
// matches it (which is how handleChatCompletions skips writeError), and it
// unwraps to, and reports the message of, its cause.
func TestRenderedErrorWrapsCause(t *testing.T) {
	cause := &tokenpool.TokenBusyError{Alias: "tok-1"}
	wrapped := &renderedError{cause: cause}

	var rendered *renderedError
	if !errors.As(wrapped, &rendered) {
		t.Fatalf("expected errors.As to match *renderedError")
	}
	if rendered.Unwrap() != cause {
		t.Fatalf("Unwrap() = %v, want %v", rendered.Unwrap(), cause)
	}
	if wrapped.Error() != cause.Error() {
		t.Fatalf("Error() = %q, want %q", wrapped.Error(), cause.Error())
	}
}
