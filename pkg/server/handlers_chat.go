package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/relaygw/relay/pkg/dynamickey"
	"github.com/relaygw/relay/pkg/fingerprint"
	"github.com/relaygw/relay/pkg/recorder"
	"github.com/relaygw/relay/pkg/streaming"
	"github.com/relaygw/relay/pkg/telemetry/tracing"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/translator"
)

// chatSink adapts an http.ResponseWriter into a streaming.Sink that writes
// SSE "data: ..." lines and flushes after each one (§4.8 "forward SSE
// to client"). started tracks whether any line has actually reached the
// wire yet, which is what decides how a later failure gets rendered (§7
// "Propagation policy": a plain HTTP error body is still possible before
// the response is committed; once SSE framing has begun, only a trailing
// error event can be emitted).
type chatSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *chatSink) WriteLine(line string) error {
	if _, err := fmt.Fprintf(s.w, "%s\n\n", line); err != nil {
		return err
	}
	s.started = true
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// renderedError marks an error whose client-facing representation has
// already been written to the response (an SSE error event), so the
// caller must not also attempt writeError's HTTP error body.
type renderedError struct{ cause error }

func (e *renderedError) Error() string { return e.cause.Error() }
func (e *renderedError) Unwrap() error { return e.cause }

// discardSink satisfies streaming.Sink for non-stream requests, where the
// translator never produces SSE lines until the final Result() call.
type discardSink struct{}

func (discardSink) WriteLine(string) error { return nil }

// delayTracker adapts the recorder.Handle into streaming.DelayRecorder and
// also forwards each delay into Prometheus (§4.9, §6 supplemented
// metrics). Usage goes only to the recorder handle.
type delayTracker struct {
	handle  *recorder.Handle
	metrics *delayMetricsSink
}

type delayMetricsSink struct {
	model string
	fn    func(label string, ms uint32)
}

func (d *delayTracker) AddDelay(label string, chars, ms uint32) {
	d.handle.AddDelay(label, chars, ms)
	if d.metrics != nil && d.metrics.fn != nil {
		d.metrics.fn(label, ms)
	}
}

func (d *delayTracker) SetUsage(u recorder.Usage) {
	d.handle.SetUsage(u)
}

// handleChatCompletions implements POST /v1/chat/completions (§4.7),
// the central translation path.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, translator.RenderError(http.StatusMethodNotAllowed, nil, "method_not_allowed", "POST required"))
		return
	}

	authCtx, err := s.gate.Authenticate(bearerFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if authCtx.Lease == nil {
		writeError(w, &translator.BadRequestError{Reason: "admin bearer cannot issue chat requests"})
		return
	}
	defer authCtx.Lease.Release()

	var req translator.ChatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}

	token := authCtx.Lease.Token()
	handle := s.ring.Open(req.Model, recorder.TokenKey(token.PrimaryToken), req.Stream)
	started := time.Now()

	ctx, span := s.tracer.Start(r.Context(), "mercator.server.request")
	defer span.End()
	r = r.WithContext(ctx)
	tracing.SetModelAttributes(span, req.Model, req.Stream)
	tracing.SetRequestAttributes(span, fmt.Sprintf("%d", handle.Record().ID), token.Alias)
	tracing.SetProxyAttribute(span, token.ProxyName)

	wantUsage := req.StreamOptions != nil && req.StreamOptions.IncludeUsage
	err = s.runChatRequest(r, w, req, token, wantUsage, handle)

	duration := time.Since(started)
	tracing.SetDurationAttribute(span, duration.Milliseconds())
	if err != nil {
		handle.Close(recorder.StatusFailure, &recorder.ErrorDetail{Error: err.Error()})
		s.recordOutcome(false)
		if s.metrics != nil {
			s.metrics.RecordRequest(req.Model, "failure", duration, 0, 0)
		}
		tracing.SetErrorAttributes(span, err, "chat_request_failed")
		var rendered *renderedError
		if !errors.As(err, &rendered) {
			writeError(w, err)
		}
		return
	}

	handle.Close(recorder.StatusSuccess, nil)
	s.recordOutcome(true)
	rec := handle.Record()
	in, out := 0, 0
	if rec.Chain.Usage != nil {
		in, out = int(rec.Chain.Usage.InputTokens), int(rec.Chain.Usage.OutputTokens)
	}
	tracing.SetTokenAttributes(span, in, out)
	if s.metrics != nil {
		s.metrics.RecordRequest(req.Model, "success", duration, in, out)
	}
}

// runChatRequest builds and issues the vendor request, then drives the
// streaming pipeline, writing either SSE chunks (stream mode) or a single
// JSON body (non-stream mode).
func (s *Server) runChatRequest(r *http.Request, w http.ResponseWriter, req translator.ChatCompletionRequest, token tokenpool.TokenRecord, wantUsage bool, handle *recorder.Handle) error {
	catalog := s.currentCatalog()

	var overrides dynamickey.Overrides
	if bearer := bearerFrom(r); len(bearer) > 0 {
		if payload, decErr := dynamickey.Decode(bearer); decErr == nil {
			overrides = payload.Overrides
		}
	}
	flags := translator.FlagsFromOverrides(overrides)
	disableVision := overrides.DisableVision

	built, err := translator.BuildRequest(req, token, flags, disableVision, catalog)
	if err != nil {
		return err
	}
	if built.VisionDisabled {
		handle.AddWarning("vision_disabled")
	}

	httpClient, err := s.proxies.ClientFor(token.ProxyName)
	if err != nil {
		return err
	}

	headers, err := fingerprint.BuildHeaders(fingerprint.TokenFingerprint{
		ChecksumFirst:  token.ChecksumFirst,
		ChecksumSecond: token.ChecksumSecond,
		ClientKey:      token.ClientKey,
		ConfigVersion:  token.ConfigVersion,
		Timezone:       token.Timezone,
	}, time.Now().UnixMilli())
	if err != nil {
		return err
	}
	headers["Authorization"] = "Bearer " + token.PrimaryToken
	headers["Content-Type"] = "application/connect+proto"

	resp, reqCtx, cancel, err := streaming.Post(r.Context(), httpClient, s.cfg.Vendor.ChatURL, headers, built.Frame, s.cfg.Streaming.TotalTimeout)
	if err != nil {
		return err
	}
	defer cancel()

	tr := translator.New(req.Model, req.Stream, wantUsage, nil)

	var sink streaming.Sink
	if req.Stream {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		flusher, _ := w.(http.Flusher)
		sink = &chatSink{w: w, flusher: flusher}
	} else {
		sink = discardSink{}
	}

	tracker := &delayTracker{handle: handle}
	if s.metrics != nil {
		tracker.metrics = &delayMetricsSink{model: req.Model, fn: func(label string, ms uint32) {
			s.metrics.RecordStreamDelay(label, ms)
		}}
	}

	if err := streaming.Drive(reqCtx, resp, cancel, tr, sink, tracker, s.cfg.Streaming.IdleTimeout); err != nil {
		if cs, ok := sink.(*chatSink); ok && cs.started {
			s.writeStreamError(cs, err)
			return &renderedError{cause: err}
		}
		return err
	}

	if !req.Stream {
		result, err := tr.Result()
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, result)
	}
	return nil
}

// writeStreamError renders err as the terminal SSE error event (§7
// "Propagation policy": "a single final error representation... an SSE
// data: {"error":{...}} line followed by data: [DONE]"). The HTTP status
// line is already committed by this point, so only the body carries the
// classification; a write failure here just means the client is already
// gone and is otherwise ignored.
func (s *Server) writeStreamError(sink streaming.Sink, err error) {
	status, code, name, message := classifyError(err)
	body := translator.RenderError(status, code, name, message)
	for _, line := range translator.SSEError(body) {
		if werr := sink.WriteLine(line); werr != nil {
			return
		}
	}
}

// handleModels implements GET /v1/models (§6), optionally filtered by
// a JSON body of {nightly, long_context, max_named, extra_names}.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, translator.RenderError(http.StatusMethodNotAllowed, nil, "method_not_allowed", "GET or POST required"))
		return
	}
	if _, err := s.gate.Authenticate(bearerFrom(r)); err != nil {
		writeError(w, err)
		return
	}

	var filter struct {
		Nightly     *bool    `json:"nightly"`
		LongContext *bool    `json:"long_context"`
		MaxNamed    int      `json:"max_named"`
		ExtraNames  []string `json:"extra_names"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&filter)
	}

	catalog := s.currentCatalog()
	entries := catalog.List(translator.ListFilter{
		Nightly:     filter.Nightly,
		LongContext: filter.LongContext,
		MaxNamed:    filter.MaxNamed,
		ExtraNames:  filter.ExtraNames,
	})
	writeJSON(w, http.StatusOK, translator.ModelListResponse{Object: "list", Data: entries})
}

func (s *Server) currentCatalog() *translator.Catalog {
	s.catalogMu.RLock()
	defer s.catalogMu.RUnlock()
	return s.catalog
}

func (s *Server) setCatalog(c *translator.Catalog) {
	s.catalogMu.Lock()
	defer s.catalogMu.Unlock()
	s.catalog = c
}
