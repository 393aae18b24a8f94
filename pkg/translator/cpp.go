package translator

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/relaygw/relay/pkg/frame"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/wire"
)

// CppCompletionRequest is the client-facing body of POST /v1/cpp/complete
// (§1 "secondary surface for a proprietary code-completion protocol").
type CppCompletionRequest struct {
	Prefix   string `json:"prefix"`
	Suffix   string `json:"suffix"`
	Language string `json:"language"`
}

// CppCompletionChoice is one suggestion in the client-facing response.
type CppCompletionChoice struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

// CppCompletionResponse is the client-facing body POST /v1/cpp/complete
// returns: the vendor's suggestion list translated into OpenAI-adjacent
// shape (no chat roles apply to a single-shot completion, so this is its
// own small envelope rather than forced into ChatCompletionResponse).
type CppCompletionResponse struct {
	Object      string                `json:"object"`
	Completions []CppCompletionChoice `json:"completions"`
}

// BuildCppRequest converts a CppCompletionRequest into the vendor's framed
// CppRequest body, reusing the same framing (§4.1 C1) and session/config
// identity the chat path uses (§4.7 "translated analogously using distinct
// Protobuf messages (same framing)").
func BuildCppRequest(req CppCompletionRequest, token tokenpool.TokenRecord) (BuildResult, error) {
	if req.Prefix == "" && req.Suffix == "" {
		return BuildResult{}, &BadRequestError{Reason: "prefix or suffix must be non-empty"}
	}

	requestID := uuid.NewString()
	cppReq := wire.CppRequest{
		RequestID:     requestID,
		SessionID:     token.SessionID,
		ConfigVersion: token.ConfigVersion,
		Prefix:        req.Prefix,
		Suffix:        req.Suffix,
		Language:      req.Language,
	}

	payload := cppReq.Marshal()
	framed, err := frame.EncodeMessage(payload)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{RequestID: requestID, Frame: framed}, nil
}

// DecodeCppResponse decodes one frame of a Copilot++ response body into the
// client-facing shape, or surfaces a TagError frame as a vendor error (§4.1
// C1: "frames are independent" — the caller decodes and folds in as many
// CppResponse frames as the vendor sends before the body ends).
func DecodeCppResponse(tag byte, payload []byte) (CppCompletionResponse, error) {
	if frame.IsError(tag) {
		var env wire.ErrorEnvelope
		if err := json.Unmarshal(payload, &env); err != nil {
			return CppCompletionResponse{}, &FrameCorruptError{Cause: err}
		}
		return CppCompletionResponse{}, &VendorErrorFrame{Code: env.Code, Message: env.Message, Detail: env.Detail}
	}

	var resp wire.CppResponse
	if err := resp.Unmarshal(payload); err != nil {
		return CppCompletionResponse{}, &FrameCorruptError{Cause: err}
	}

	out := CppCompletionResponse{Object: "cpp.completion"}
	for _, c := range resp.Completions {
		out.Completions = append(out.Completions, CppCompletionChoice{Text: c.Text, Score: c.Score})
	}
	return out, nil
}
