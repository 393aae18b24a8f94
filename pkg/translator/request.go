package translator

import (
	"github.com/google/uuid"

	"github.com/relaygw/relay/pkg/dynamickey"
	"github.com/relaygw/relay/pkg/frame"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/wire"
)

// BuildResult is the outcome of BuildRequest: the framed request body ready
// to POST, plus warnings to fold into telemetry.
type BuildResult struct {
	RequestID string
	Frame     []byte
	// VisionDisabled is set when image parts were stripped because the
	// token's disable_vision override is active (§4.7 step 2).
	VisionDisabled bool
}

// BuildRequest converts a client ChatCompletionRequest into the vendor's
// framed ChatRequest body (§4.7 "Construction of vendor request").
// token is the leased record (overrides already applied by the pool); flags
// carries the dynamic-key overrides that shape vendor-request flags.
func BuildRequest(req ChatCompletionRequest, token tokenpool.TokenRecord, flags wire.ChatRequestFlags, disableVision bool, catalog *Catalog) (BuildResult, error) {
	if len(req.Messages) == 0 {
		return BuildResult{}, &BadRequestError{Reason: "messages must not be empty"}
	}
	if req.Model == "" {
		return BuildResult{}, &BadRequestError{Reason: "model is required"}
	}
	if catalog != nil && !catalog.Allowed(req.Model, nil) {
		return BuildResult{}, &ModelNotAllowedError{Model: req.Model}
	}

	visionDisabled := false
	messages := make([]wire.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role, err := normalizeRole(m.Role)
		if err != nil {
			return BuildResult{}, err
		}
		parts, err := m.Parts()
		if err != nil {
			return BuildResult{}, err
		}
		var wireParts []wire.ContentPart
		for _, p := range parts {
			switch p.Type {
			case "text", "":
				if p.Text != "" {
					wireParts = append(wireParts, wire.ContentPart{Text: p.Text})
				}
			case "image_url":
				if disableVision {
					visionDisabled = true
					continue
				}
				wireParts = append(wireParts, wire.ContentPart{ImageURL: p.ImageURL.URL})
			}
		}
		messages = append(messages, wire.ChatMessage{Role: role, Parts: wireParts})
	}

	requestID := uuid.NewString()
	chatReq := wire.ChatRequest{
		Stream:        req.Stream,
		RequestID:     requestID,
		ModelName:     req.Model,
		SessionID:     token.SessionID,
		ConfigVersion: token.ConfigVersion,
		Messages:      messages,
		Flags:         flags,
	}

	payload := chatReq.Marshal()
	framed, err := frame.EncodeMessage(payload)
	if err != nil {
		return BuildResult{}, err
	}

	return BuildResult{RequestID: requestID, Frame: framed, VisionDisabled: visionDisabled}, nil
}

func normalizeRole(role string) (wire.Role, error) {
	switch role {
	case "system", "developer":
		return wire.RoleSystem, nil
	case "user":
		return wire.RoleUser, nil
	case "assistant":
		return wire.RoleAssistant, nil
	default:
		return wire.RoleUnspecified, &BadRequestError{Reason: "unknown role " + role}
	}
}

// FlagsFromOverrides translates the dynamic-key overrides into the wire
// flags the vendor request carries (§4.7 step 2 "Flags from the
// dynamic-key overrides").
func FlagsFromOverrides(o dynamickey.Overrides) wire.ChatRequestFlags {
	flags := wire.ChatRequestFlags{
		EnableSlowPool:       o.EnableSlowPool,
		IncludeWebReferences: o.IncludeWebReferences,
	}
	if o.UsageCheckModels != nil {
		flags.UsageCheckModels = wire.UsageCheckModels(o.UsageCheckModels.Variant)
		flags.UsageCheckModelsNames = o.UsageCheckModels.Models
	}
	return flags
}
