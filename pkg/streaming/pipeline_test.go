package streaming

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relaygw/relay/pkg/frame"
	"github.com/relaygw/relay/pkg/recorder"
	"github.com/relaygw/relay/pkg/translator"
	"github.com/relaygw/relay/pkg/wire"
)

type bufSink struct{ lines []string }

func (s *bufSink) WriteLine(line string) error {
	s.lines = append(s.lines, line)
	return nil
}

type failingSink struct{}

func (failingSink) WriteLine(string) error { return io.ErrClosedPipe }

type noopRecorder struct{}

func (noopRecorder) AddDelay(string, uint32, uint32) {}
func (noopRecorder) SetUsage(recorder.Usage)         {}

func framedBody(t *testing.T, messages []wire.StreamMessage) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range messages {
		f, err := frame.EncodeMessage(m.Marshal())
		if err != nil {
			t.Fatalf("EncodeMessage: %v", err)
		}
		buf.Write(f)
	}
	return buf.Bytes()
}

func TestDriveHappyStream(t *testing.T) {
	body := framedBody(t, []wire.StreamMessage{
		{Kind: wire.StreamKindTextDelta, TextDelta: wire.TextDelta{Content: "he"}},
		{Kind: wire.StreamKindTextDelta, TextDelta: wire.TextDelta{Content: "llo"}},
		{Kind: wire.StreamKindEndOfTurn, EndOfTurn: wire.EndOfTurn{FinishReason: wire.FinishStop}},
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}

	tr := translator.New("gpt-4", true, false, nil)
	sink := &bufSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = Drive(ctx, resp, cancel, tr, sink, noopRecorder{}, time.Second)
	if err != nil {
		t.Fatalf("Drive: %v", err)
	}
	if len(sink.lines) != 5 {
		t.Fatalf("got %d lines, want 5: %v", len(sink.lines), sink.lines)
	}
}

func TestDriveVendorErrorFrame(t *testing.T) {
	var buf bytes.Buffer
	f, _ := frame.EncodeError([]byte(`{"code":"unauthenticated"}`))
	buf.Write(f)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}

	tr := translator.New("gpt-4", false, false, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = Drive(ctx, resp, cancel, tr, &bufSink{}, noopRecorder{}, time.Second)
	vendorErr, ok := err.(*translator.VendorErrorFrame)
	if !ok {
		t.Fatalf("err = %v (%T), want *translator.VendorErrorFrame", err, err)
	}
	if !vendorErr.IsTokenExpired() {
		t.Fatalf("expected IsTokenExpired() for unauthenticated code")
	}
}

func TestDriveTotalTimeout(t *testing.T) {
	blockCh := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, _ := frame.EncodeMessage((&wire.StreamMessage{Kind: wire.StreamKindTextDelta, TextDelta: wire.TextDelta{Content: "he"}}).Marshal())
		w.Write(f)
		w.(http.Flusher).Flush()
		<-blockCh
	}))
	defer srv.Close()
	defer close(blockCh)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequestWithContext: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	tr := translator.New("gpt-4", true, false, nil)
	err = Drive(ctx, resp, cancel, tr, &bufSink{}, noopRecorder{}, time.Minute)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("err = %v (%T), want *TimeoutError", err, err)
	}
	if timeoutErr.Kind != TimeoutTotal {
		t.Fatalf("Kind = %q, want %q", timeoutErr.Kind, TimeoutTotal)
	}
}

func TestDriveClientCancelled(t *testing.T) {
	body := framedBody(t, []wire.StreamMessage{
		{Kind: wire.StreamKindTextDelta, TextDelta: wire.TextDelta{Content: "he"}},
		{Kind: wire.StreamKindEndOfTurn, EndOfTurn: wire.EndOfTurn{FinishReason: wire.FinishStop}},
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}

	tr := translator.New("gpt-4", true, false, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = Drive(ctx, resp, cancel, tr, failingSink{}, noopRecorder{}, time.Second)
	if _, ok := err.(*ClientCancelledError); !ok {
		t.Fatalf("err = %v, want *ClientCancelledError", err)
	}
}
