package translator

import "fmt"

// ModelNotAllowedError is returned when the requested model is absent from
// the catalog and not covered by the token's own cached catalog.
type ModelNotAllowedError struct {
	Model string
}

func (e *ModelNotAllowedError) Error() string {
	return fmt.Sprintf("translator: model %q is not allowed", e.Model)
}

// BadRequestError reports a malformed client request (empty messages,
// unknown role, neither string nor array content).
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return fmt.Sprintf("translator: bad request: %s", e.Reason)
}

// FrameCorruptError wraps a Protobuf decode failure on an inbound frame.
type FrameCorruptError struct {
	Cause error
}

func (e *FrameCorruptError) Error() string {
	return fmt.Sprintf("translator: corrupt frame: %s", e.Cause)
}

func (e *FrameCorruptError) Unwrap() error { return e.Cause }

// VendorErrorFrame is the decoded form of a tag-0x01 error frame, classified
// into the taxonomy §4.7 distinguishes: client-retryable ("token
// expired"/"unauthenticated") versus everything else (surfaced as a 502).
type VendorErrorFrame struct {
	Code    string
	Message string
	Detail  string
}

func (e *VendorErrorFrame) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("translator: vendor error %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("translator: vendor error %s", e.Code)
}

// IsTokenExpired reports whether the vendor error code indicates the
// client's credential should be treated as expired/unauthenticated,
// per §4.7's "status is retryable-at-client" distinction.
func (e *VendorErrorFrame) IsTokenExpired() bool {
	switch e.Code {
	case "unauthenticated", "token-expired", "token_expired":
		return true
	default:
		return false
	}
}

// UpstreamStatusError reports a non-2xx HTTP status from the vendor that
// was not accompanied by a decodable error frame.
type UpstreamStatusError struct {
	Status int
	Detail string
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("translator: upstream status %d: %s", e.Status, e.Detail)
}
