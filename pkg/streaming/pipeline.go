package streaming

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/relaygw/relay/pkg/frame"
	"github.com/relaygw/relay/pkg/recorder"
	"github.com/relaygw/relay/pkg/translator"
	"github.com/relaygw/relay/pkg/wire"
)

// Sink receives rendered SSE lines in stream mode. A real Sink writes to
// the client's http.ResponseWriter and flushes after every line; a
// ClientCancelledError is returned the moment a write fails, so the
// pipeline can stop pulling frames immediately (§4.8 "Cancellation").
type Sink interface {
	WriteLine(line string) error
}

// DelayRecorder receives each text/thinking/tool delay as it is produced,
// for the telemetry recorder (C9) to append to LogRecord.chain.delays.
type DelayRecorder interface {
	AddDelay(label string, chars, ms uint32)
	SetUsage(u recorder.Usage)
}

type frameResult struct {
	tag     byte
	payload []byte
	err     error
}

// Drive reads frames from resp.Body until the translator reports Done, an
// error frame arrives, or the stream ends/stalls/times out. ctx must be the
// request context Post returned (the one actually bounded by the §4.8
// total-timeout deadline, not the caller's own context) so the
// DeadlineExceeded check below observes the timeout that fired. cancel is
// the vendor request's own cancel func — firing the idle timer cancels it
// to unblock the in-flight Read (§4.8 "Between two successive frames, a
// read-idle timer... fires").
func Drive(ctx context.Context, resp *http.Response, cancel context.CancelFunc, tr *translator.Translator, sink Sink, rec DelayRecorder, idleTimeout time.Duration) error {
	defer resp.Body.Close()

	for {
		result := make(chan frameResult, 1)
		go func() {
			tag, payload, err := frame.ReadFrame(resp.Body)
			result <- frameResult{tag: tag, payload: payload, err: err}
		}()

		var fr frameResult
		select {
		case fr = <-result:
		case <-time.After(idleTimeout):
			cancel()
			<-result // drain the now-cancelled read
			return &TimeoutError{Kind: TimeoutIdle}
		case <-ctx.Done():
			cancel()
			<-result
			if ctx.Err() == context.DeadlineExceeded {
				return &TimeoutError{Kind: TimeoutTotal}
			}
			return &ClientCancelledError{Cause: ctx.Err()}
		}

		if fr.err != nil {
			if fr.err == io.EOF {
				return nil
			}
			if ctx.Err() == context.DeadlineExceeded {
				return &TimeoutError{Kind: TimeoutTotal}
			}
			return fr.err
		}

		if frame.IsError(fr.tag) {
			env, err := decodeErrorEnvelope(fr.payload)
			if err != nil {
				return &translator.FrameCorruptError{Cause: err}
			}
			return &translator.VendorErrorFrame{Code: env.Code, Message: env.Message, Detail: env.Detail}
		}

		var msg wire.StreamMessage
		if err := msg.Unmarshal(fr.payload); err != nil {
			return &translator.FrameCorruptError{Cause: err}
		}

		outcome := tr.HandleMessage(msg)
		if outcome.Delay != nil && rec != nil {
			rec.AddDelay(outcome.Delay.Label, outcome.Delay.Chars, outcome.Delay.MS)
		}
		if msg.Kind == wire.StreamKindUsage && rec != nil {
			rec.SetUsage(recorder.Usage{
				InputTokens:  msg.Usage.InputTokens,
				OutputTokens: msg.Usage.OutputTokens,
				Truncated:    msg.Usage.Truncated,
			})
		}
		for _, line := range outcome.SSELines {
			if err := sink.WriteLine(line); err != nil {
				return &ClientCancelledError{Cause: err}
			}
		}
		if outcome.Done {
			return nil
		}
	}
}

func decodeErrorEnvelope(payload []byte) (wire.ErrorEnvelope, error) {
	var env wire.ErrorEnvelope
	err := json.Unmarshal(payload, &env)
	return env, err
}
