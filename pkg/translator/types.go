package translator

import "encoding/json"

// ChatCompletionRequest is the OpenAI-shape request body accepted by
// POST /v1/chat/completions (§4.7 "Input (client side)").
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []InputMessage  `json:"messages"`
	Stream         bool            `json:"stream"`
	StreamOptions  *StreamOptions  `json:"stream_options,omitempty"`
}

// StreamOptions mirrors OpenAI's stream_options object.
type StreamOptions struct {
	IncludeUsage bool `json:"include_usage"`
}

// InputMessage is one message of the client request. Content is either a
// bare string or an array of InputContentPart, distinguished at unmarshal
// time by RawContent's leading byte.
type InputMessage struct {
	Role       string          `json:"role"`
	RawContent json.RawMessage `json:"content"`
}

// InputContentPart is one element of an array-form message content.
type InputContentPart struct {
	Type     string `json:"type"` // "text" | "image_url"
	Text     string `json:"text,omitempty"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

// Parts decodes RawContent into a normalized slice of parts, whether the
// wire form was a bare string or an array.
func (m InputMessage) Parts() ([]InputContentPart, error) {
	if len(m.RawContent) == 0 {
		return nil, nil
	}
	trimmed := jsonTrimSpace(m.RawContent)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(m.RawContent, &s); err != nil {
			return nil, &BadRequestError{Reason: "message content is not a valid string: " + err.Error()}
		}
		if s == "" {
			return nil, nil
		}
		return []InputContentPart{{Type: "text", Text: s}}, nil
	}
	var parts []InputContentPart
	if err := json.Unmarshal(m.RawContent, &parts); err != nil {
		return nil, &BadRequestError{Reason: "message content is not a valid array: " + err.Error()}
	}
	return parts, nil
}

func jsonTrimSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return b[i:]
		}
	}
	return nil
}

// ChatCompletionResponse is the non-stream OpenAI-shape JSON response.
type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   *ChatCompletionUsage   `json:"usage,omitempty"`
}

// ChatCompletionChoice is the single choice a non-stream response carries.
type ChatCompletionChoice struct {
	Index        int                     `json:"index"`
	Message      ChatCompletionMessage   `json:"message"`
	FinishReason string                  `json:"finish_reason"`
}

// ChatCompletionMessage is the assembled assistant message.
type ChatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionUsage mirrors OpenAI's usage object.
type ChatCompletionUsage struct {
	PromptTokens     uint32 `json:"prompt_tokens"`
	CompletionTokens uint32 `json:"completion_tokens"`
	TotalTokens      uint32 `json:"total_tokens"`
}

// ChatCompletionChunk is one SSE "data:" payload in stream mode.
type ChatCompletionChunk struct {
	ID      string                      `json:"id"`
	Object  string                      `json:"object"`
	Created int64                       `json:"created"`
	Model   string                      `json:"model"`
	Choices []ChatCompletionChunkChoice `json:"choices"`
	Usage   *ChatCompletionUsage        `json:"usage,omitempty"`
}

// ChatCompletionChunkChoice is the single choice a stream chunk carries.
type ChatCompletionChunkChoice struct {
	Index        int                `json:"index"`
	Delta        ChatCompletionDelta `json:"delta"`
	FinishReason *string            `json:"finish_reason"`
}

// ChatCompletionDelta is the incremental content of a stream chunk. Role is
// only populated on the first chunk; Content is empty on role-only and
// finish-only chunks.
type ChatCompletionDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// ErrorBody is the uniform user-visible failure shape (§7).
type ErrorBody struct {
	Status  string  `json:"status"`
	Code    *int    `json:"code,omitempty"`
	Error   *string `json:"error,omitempty"`
	Message string  `json:"message"`
}

// ModelCatalogEntry is one row of the /v1/models listing.
type ModelCatalogEntry struct {
	ID          string `json:"id"`
	Object      string `json:"object"`
	OwnedBy     string `json:"owned_by"`
	Nightly     bool   `json:"-"`
	LongContext bool   `json:"-"`
}

// ModelListResponse is the /v1/models response body.
type ModelListResponse struct {
	Object string              `json:"object"`
	Data   []ModelCatalogEntry `json:"data"`
}
