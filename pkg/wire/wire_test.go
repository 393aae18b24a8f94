package wire

import (
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestChatRequestRoundTrip(t *testing.T) {
	req := ChatRequest{
		Stream:        true,
		RequestID:     "req-1",
		ModelName:     "gpt-4",
		SessionID:     "sess-1",
		ConfigVersion: "cfg-1",
		Messages: []ChatMessage{
			{Role: RoleSystem, Parts: []ContentPart{{Text: "be terse"}}},
			{Role: RoleUser, Parts: []ContentPart{{Text: "hi"}, {ImageURL: "https://example.com/x.png"}}},
		},
		Flags: ChatRequestFlags{
			EnableSlowPool:        true,
			IncludeWebReferences:  false,
			UsageCheckModels:      UsageCheckCustom,
			UsageCheckModelsNames: []string{"gpt-4", "gpt-4o"},
		},
	}

	encoded := req.Marshal()

	var got ChatRequest
	if err := got.Unmarshal(encoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Stream != req.Stream || got.RequestID != req.RequestID ||
		got.ModelName != req.ModelName || got.SessionID != req.SessionID ||
		got.ConfigVersion != req.ConfigVersion {
		t.Fatalf("scalar fields mismatch: got %+v, want %+v", got, req)
	}
	if !reflect.DeepEqual(got.Messages, req.Messages) {
		t.Fatalf("messages mismatch: got %+v, want %+v", got.Messages, req.Messages)
	}
	if !reflect.DeepEqual(got.Flags, req.Flags) {
		t.Fatalf("flags mismatch: got %+v, want %+v", got.Flags, req.Flags)
	}
}

func TestChatRequestUnknownFieldsPreserved(t *testing.T) {
	base := ChatRequest{RequestID: "req-1"}
	encoded := base.Marshal()

	// Append a field the current schema doesn't define (field 99, varint).
	encoded = appendVarintFieldForTest(encoded, 99, 42)

	var decoded ChatRequest
	if err := decoded.Unmarshal(encoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.RequestID != "req-1" {
		t.Fatalf("request_id = %q, want req-1", decoded.RequestID)
	}

	reencoded := decoded.Marshal()
	var roundTripped ChatRequest
	if err := roundTripped.Unmarshal(reencoded); err != nil {
		t.Fatalf("Unmarshal after re-encode: %v", err)
	}
	if roundTripped.RequestID != "req-1" {
		t.Fatalf("unknown field round trip lost request_id: %+v", roundTripped)
	}
}

func appendVarintFieldForTest(b []byte, num int, v uint64) []byte {
	return appendVarintField(b, protowire.Number(num), v)
}

func TestStreamMessageKinds(t *testing.T) {
	cases := []StreamMessage{
		{Kind: StreamKindTextDelta, TextDelta: TextDelta{Content: "he", Subtype: SubtypeText}},
		{Kind: StreamKindUsage, Usage: Usage{InputTokens: 1, OutputTokens: 2, Truncated: true}},
		{Kind: StreamKindServerInfo, ServerInfo: ServerInfo{ServerRequestID: "srv-1", ModelUsed: "gpt-4"}},
		{Kind: StreamKindEndOfTurn, EndOfTurn: EndOfTurn{FinishReason: FinishStop}},
	}

	for _, want := range cases {
		encoded := want.Marshal()
		var got StreamMessage
		if err := got.Unmarshal(encoded); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if got.Kind != want.Kind {
			t.Fatalf("kind = %v, want %v", got.Kind, want.Kind)
		}
		switch want.Kind {
		case StreamKindTextDelta:
			if got.TextDelta != want.TextDelta {
				t.Fatalf("text delta = %+v, want %+v", got.TextDelta, want.TextDelta)
			}
		case StreamKindUsage:
			if got.Usage != want.Usage {
				t.Fatalf("usage = %+v, want %+v", got.Usage, want.Usage)
			}
		case StreamKindServerInfo:
			if got.ServerInfo != want.ServerInfo {
				t.Fatalf("server info = %+v, want %+v", got.ServerInfo, want.ServerInfo)
			}
		case StreamKindEndOfTurn:
			if got.EndOfTurn != want.EndOfTurn {
				t.Fatalf("end of turn = %+v, want %+v", got.EndOfTurn, want.EndOfTurn)
			}
		}
	}
}

func TestModelListRoundTrip(t *testing.T) {
	list := ModelList{Models: []ModelInfo{
		{Name: "gpt-4", Nightly: false, LongContext: true},
		{Name: "gpt-4-nightly", Nightly: true, LongContext: true},
	}}

	encoded := list.Marshal()
	var got ModelList
	if err := got.Unmarshal(encoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got.Models, list.Models) {
		t.Fatalf("models = %+v, want %+v", got.Models, list.Models)
	}
}

func TestCppRoundTrip(t *testing.T) {
	req := CppRequest{
		RequestID:     "req-2",
		SessionID:     "sess-2",
		ConfigVersion: "cfg-2",
		Prefix:        "func foo(",
		Suffix:        ")",
		Language:      "go",
	}
	encoded := req.Marshal()
	var gotReq CppRequest
	if err := gotReq.Unmarshal(encoded); err != nil {
		t.Fatalf("Unmarshal request: %v", err)
	}
	if gotReq.RequestID != req.RequestID || gotReq.SessionID != req.SessionID ||
		gotReq.ConfigVersion != req.ConfigVersion || gotReq.Prefix != req.Prefix ||
		gotReq.Suffix != req.Suffix || gotReq.Language != req.Language {
		t.Fatalf("request = %+v, want %+v", gotReq, req)
	}

	resp := CppResponse{Completions: []CppCompletion{
		{Text: "a int) int {", Score: 0.92},
		{Text: "a, b int) int {", Score: 0.5},
	}}
	encodedResp := resp.Marshal()
	var gotResp CppResponse
	if err := gotResp.Unmarshal(encodedResp); err != nil {
		t.Fatalf("Unmarshal response: %v", err)
	}
	if !reflect.DeepEqual(gotResp.Completions, resp.Completions) {
		t.Fatalf("completions = %+v, want %+v", gotResp.Completions, resp.Completions)
	}
}
