package translator

import (
	"bytes"
	"testing"

	"github.com/relaygw/relay/pkg/frame"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/wire"
)

func TestBuildCppRequestRejectsEmptyPrefixAndSuffix(t *testing.T) {
	_, err := BuildCppRequest(CppCompletionRequest{}, tokenpool.TokenRecord{})
	if _, ok := err.(*BadRequestError); !ok {
		t.Fatalf("err = %T, want *BadRequestError", err)
	}
}

func TestBuildCppRequestFramesAValidMessage(t *testing.T) {
	token := tokenpool.TokenRecord{SessionID: "sess-1", ConfigVersion: "cfg-1"}
	built, err := BuildCppRequest(CppCompletionRequest{Prefix: "func main() {", Language: "go"}, token)
	if err != nil {
		t.Fatalf("BuildCppRequest: %v", err)
	}

	tag, payload, err := frame.ReadFrame(bytes.NewReader(built.Frame))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.IsError(tag) {
		t.Fatalf("tag marks error, want message")
	}

	var decoded wire.CppRequest
	if err := decoded.Unmarshal(payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Prefix != "func main() {" || decoded.Language != "go" {
		t.Fatalf("decoded = %+v, want prefix/language round-tripped", decoded)
	}
	if decoded.SessionID != "sess-1" || decoded.ConfigVersion != "cfg-1" {
		t.Fatalf("decoded session/config = %q/%q, want token's own", decoded.SessionID, decoded.ConfigVersion)
	}
}

func TestDecodeCppResponseAccumulatesCompletions(t *testing.T) {
	resp := wire.CppResponse{Completions: []wire.CppCompletion{
		{Text: "return 0;", Score: 0.9},
		{Text: "return 1;", Score: 0.1},
	}}
	payload := resp.Marshal()

	out, err := DecodeCppResponse(0x00, payload)
	if err != nil {
		t.Fatalf("DecodeCppResponse: %v", err)
	}
	if len(out.Completions) != 2 || out.Completions[0].Text != "return 0;" {
		t.Fatalf("completions = %+v, want 2 entries starting with %q", out.Completions, "return 0;")
	}
}

func TestDecodeCppResponseSurfacesVendorError(t *testing.T) {
	_, err := DecodeCppResponse(0x01, []byte(`{"code":"unauthenticated","message":"token expired"}`))
	verr, ok := err.(*VendorErrorFrame)
	if !ok {
		t.Fatalf("err = %T, want *VendorErrorFrame", err)
	}
	if !verr.IsTokenExpired() {
		t.Fatalf("IsTokenExpired() = false, want true for code %q", verr.Code)
	}
}
