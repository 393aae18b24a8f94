package translator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/relaygw/relay/pkg/wire"
)

// DelayRecord is one (label, chars, ms-since-previous) tuple fed into
// LogRecord.chain.delays (§4.7 "Timing").
type DelayRecord struct {
	Label string // "text" | "thinking" | "tool"
	Chars uint32
	MS    uint32
}

func delayLabel(st wire.MessageSubtype) string {
	switch st {
	case wire.SubtypeThinking:
		return "thinking"
	case wire.SubtypeTool:
		return "tool"
	default:
		return "text"
	}
}

// Translator holds the per-request state needed to reassemble the vendor's
// frame stream into either a single JSON response or a sequence of SSE
// chunks (§4.7 "Vendor response handling"). One Translator serves
// exactly one client request; it is not safe for concurrent use.
type Translator struct {
	model     string
	stream    bool
	wantUsage bool
	now       func() time.Time

	buf        strings.Builder
	roleSent   bool
	lastFrame  time.Time
	usage      *wire.Usage
	serverInfo *wire.ServerInfo
	finished   bool
	finishedBy wire.FinishReason
}

// New constructs a Translator for one request. now defaults to time.Now if
// nil (tests supply a deterministic clock per §8 property 6).
func New(model string, stream, wantUsage bool, now func() time.Time) *Translator {
	if now == nil {
		now = time.Now
	}
	return &Translator{model: model, stream: stream, wantUsage: wantUsage, now: now, lastFrame: now()}
}

// Outcome is everything one decoded StreamMessage produces: zero or more
// SSE lines ready to write, and/or a telemetry delay record.
type Outcome struct {
	SSELines []string
	Delay    *DelayRecord
	Done     bool
}

// HandleMessage processes one decoded vendor StreamMessage and returns the
// SSE lines (if in stream mode) and timing record it produces. In
// non-stream mode SSELines is always empty; the caller retrieves the final
// JSON via Result after Done.
func (t *Translator) HandleMessage(msg wire.StreamMessage) Outcome {
	now := t.now()
	elapsed := now.Sub(t.lastFrame)
	t.lastFrame = now

	var out Outcome
	switch msg.Kind {
	case wire.StreamKindTextDelta:
		t.buf.WriteString(msg.TextDelta.Content)
		out.Delay = &DelayRecord{
			Label: delayLabel(msg.TextDelta.Subtype),
			Chars: uint32(len([]rune(msg.TextDelta.Content))),
			MS:    uint32(elapsed.Milliseconds()),
		}
		if t.stream {
			out.SSELines = append(out.SSELines, t.textChunk(msg.TextDelta.Content)...)
		}

	case wire.StreamKindUsage:
		// §9 Open Question 2: the last usage-bearing frame wins.
		u := msg.Usage
		t.usage = &u
		if t.stream && t.wantUsage {
			out.SSELines = append(out.SSELines, t.usageChunk(u)...)
		}

	case wire.StreamKindServerInfo:
		si := msg.ServerInfo
		t.serverInfo = &si

	case wire.StreamKindEndOfTurn:
		t.finished = true
		t.finishedBy = msg.EndOfTurn.FinishReason
		out.Done = true
		if t.stream {
			out.SSELines = append(out.SSELines, t.finalChunk()...)
		}
	}
	return out
}

// textChunk renders one content delta as SSE, prefixing a role-only chunk
// the first time (§4.7 "Stream mode ordering guarantee").
func (t *Translator) textChunk(content string) []string {
	var lines []string
	if !t.roleSent {
		lines = append(lines, t.sseData(ChatCompletionChunk{
			ID: t.chunkID(), Object: "chat.completion.chunk", Created: t.now().Unix(), Model: t.model,
			Choices: []ChatCompletionChunkChoice{{Delta: ChatCompletionDelta{Role: "assistant"}}},
		}))
		t.roleSent = true
	}
	lines = append(lines, t.sseData(ChatCompletionChunk{
		ID: t.chunkID(), Object: "chat.completion.chunk", Created: t.now().Unix(), Model: t.model,
		Choices: []ChatCompletionChunkChoice{{Delta: ChatCompletionDelta{Content: content}}},
	}))
	return lines
}

func (t *Translator) usageChunk(u wire.Usage) []string {
	return []string{t.sseData(ChatCompletionChunk{
		ID: t.chunkID(), Object: "chat.completion.chunk", Created: t.now().Unix(), Model: t.model,
		Choices: []ChatCompletionChunkChoice{},
		Usage:   usageToOpenAI(u),
	})}
}

func (t *Translator) finalChunk() []string {
	reason := finishReasonString(t.finishedBy)
	lines := []string{t.sseData(ChatCompletionChunk{
		ID: t.chunkID(), Object: "chat.completion.chunk", Created: t.now().Unix(), Model: t.model,
		Choices: []ChatCompletionChunkChoice{{Delta: ChatCompletionDelta{}, FinishReason: &reason}},
	})}
	lines = append(lines, "data: [DONE]")
	return lines
}

func (t *Translator) sseData(chunk ChatCompletionChunk) string {
	b, _ := json.Marshal(chunk)
	return "data: " + string(b)
}

func (t *Translator) chunkID() string {
	return "chatcmpl-" + uuid.NewString()
}

// Done reports whether an EndOfTurn frame has been handled.
func (t *Translator) Done() bool { return t.finished }

// Usage returns the last usage frame seen, if any.
func (t *Translator) Usage() *wire.Usage { return t.usage }

// Result renders the accumulated non-stream JSON response. Only valid
// after Done() is true.
func (t *Translator) Result() (ChatCompletionResponse, error) {
	if !t.finished {
		return ChatCompletionResponse{}, fmt.Errorf("translator: Result called before end of turn")
	}
	reason := finishReasonString(t.finishedBy)
	resp := ChatCompletionResponse{
		ID:      t.chunkID(),
		Object:  "chat.completion",
		Created: t.now().Unix(),
		Model:   t.model,
		Choices: []ChatCompletionChoice{{
			Index:        0,
			Message:      ChatCompletionMessage{Role: "assistant", Content: t.buf.String()},
			FinishReason: reason,
		}},
	}
	if t.usage != nil {
		resp.Usage = usageToOpenAI(*t.usage)
	}
	return resp, nil
}

func usageToOpenAI(u wire.Usage) *ChatCompletionUsage {
	return &ChatCompletionUsage{
		PromptTokens:     u.InputTokens,
		CompletionTokens: u.OutputTokens,
		TotalTokens:      u.InputTokens + u.OutputTokens,
	}
}

func finishReasonString(r wire.FinishReason) string {
	if r == wire.FinishLength {
		return "length"
	}
	return "stop"
}

// RenderError renders the uniform error body (§7) either as the body
// of a non-stream HTTP error response or as the two trailing SSE lines of
// a stream response ("data: {...error...}" then "data: [DONE]").
func RenderError(status int, code *int, errName, message string) ErrorBody {
	var errPtr *string
	if errName != "" {
		errPtr = &errName
	}
	return ErrorBody{Status: "error", Code: code, Error: errPtr, Message: message}
}

// SSEError renders an ErrorBody as the SSE lines a stream response emits on
// failure: a single `data: {"error":{...}}` line followed by `data:
// [DONE]` (§7 "Propagation policy").
func SSEError(body ErrorBody) []string {
	payload := map[string]any{"error": body}
	b, _ := json.Marshal(payload)
	return []string{"data: " + string(b), "data: [DONE]"}
}
