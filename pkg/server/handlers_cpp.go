package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relaygw/relay/pkg/fingerprint"
	"github.com/relaygw/relay/pkg/frame"
	"github.com/relaygw/relay/pkg/recorder"
	"github.com/relaygw/relay/pkg/streaming"
	"github.com/relaygw/relay/pkg/telemetry/tracing"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/translator"
)

// cppURLFor resolves the regional Copilot++ endpoint for a token, falling
// back to the "us" entry when the token carries no gcpp_host override
// (§3 "gcpp_host: optional enum {Asia, EU, US}; selects regional
// code-completion backend URL").
func (s *Server) cppURLFor(host string) string {
	if host == "" {
		host = "us"
	}
	if url, ok := s.cfg.Vendor.CppURLs[host]; ok && url != "" {
		return url
	}
	return s.cfg.Vendor.CppURLs["us"]
}

// handleCppComplete implements POST /v1/cpp/complete, the Copilot++
// analogue of /v1/chat/completions (§1, §4.7 "translated analogously using
// distinct Protobuf messages (same framing)"). Code completion is a
// single-shot request/response, not SSE, so the response body's frames are
// read to completion and folded into one JSON result.
func (s *Server) handleCppComplete(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, &translator.BadRequestError{Reason: "admin bearer cannot issue cpp requests"})
		return
	}
	defer authCtx.Lease.Release()

	var req translator.CppCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &translator.BadRequestError{Reason: "malformed JSON body: " + err.Error()})
		return
	}

	token := authCtx.Lease.Token()
	handle := s.ring.Open("cpp", recorder.TokenKey(token.PrimaryToken), false)

	ctx, span := s.tracer.Start(r.Context(), "mercator.server.request")
	defer span.End()
	r = r.WithContext(ctx)
	tracing.SetModelAttributes(span, "cpp", false)
	tracing.SetRequestAttributes(span, fmt.Sprintf("%d", handle.Record().ID), token.Alias)
	tracing.SetProxyAttribute(span, token.ProxyName)

	result, err := s.runCppRequest(r, token, req)
	if err != nil {
		handle.Close(recorder.StatusFailure, &recorder.ErrorDetail{Error: err.Error()})
		s.recordOutcome(false)
		tracing.SetErrorAttributes(span, err, "cpp_request_failed")
		writeError(w, err)
		return
	}

	handle.Close(recorder.StatusSuccess, nil)
	s.recordOutcome(true)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) runCppRequest(r *http.Request, token tokenpool.TokenRecord, req translator.CppCompletionRequest) (translator.CppCompletionResponse, error) {
	built, err := translator.BuildCppRequest(req, token)
	if err != nil {
		return translator.CppCompletionResponse{}, err
	}

	httpClient, err := s.proxies.ClientFor(token.ProxyName)
	if err != nil {
		return translator.CppCompletionResponse{}, err
	}

	headers, err := fingerprint.BuildHeaders(fingerprint.TokenFingerprint{
		ChecksumFirst:  token.ChecksumFirst,
		ChecksumSecond: token.ChecksumSecond,
		ClientKey:      token.ClientKey,
		ConfigVersion:  token.ConfigVersion,
		Timezone:       token.Timezone,
	}, time.Now().UnixMilli())
	if err != nil {
		return translator.CppCompletionResponse{}, err
	}
	headers["Authorization"] = "Bearer " + token.PrimaryToken
	headers["Content-Type"] = "application/connect+proto"

	url := s.cppURLFor(gcppHostToString(token.GCPPHost))
	resp, reqCtx, cancel, err := streaming.Post(r.Context(), httpClient, url, headers, built.Frame, s.cfg.Streaming.TotalTimeout)
	if err != nil {
		return translator.CppCompletionResponse{}, err
	}
	defer cancel()
	defer resp.Body.Close()

	out := translator.CppCompletionResponse{Object: "cpp.completion"}
	for {
		tag, payload, readErr := frame.ReadFrame(resp.Body)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if reqCtx.Err() == context.DeadlineExceeded {
				return translator.CppCompletionResponse{}, &streaming.TimeoutError{Kind: streaming.TimeoutTotal}
			}
			return translator.CppCompletionResponse{}, &translator.FrameCorruptError{Cause: readErr}
		}
		decoded, decErr := translator.DecodeCppResponse(tag, payload)
		if decErr != nil {
			return translator.CppCompletionResponse{}, decErr
		}
		out.Completions = append(out.Completions, decoded.Completions...)
	}
	return out, nil
}
