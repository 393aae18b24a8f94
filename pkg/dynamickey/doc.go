// Package dynamickey implements the self-describing bearer key format used
// by callers who don't present the admin or shared token: "sk-" followed by
// a base64url-encoded binary body, plus two alternate textual encodings of
// the same body (a raw base64url form without the prefix, and a decimal
// form) that all decode to an identical payload.
//
// body := numeric (24 bytes, u128_be || u64_be) || overrides?
// overrides := version (0x01) || tlv*
// tlv := code (1 byte) || length (1 byte) || value (length bytes)
package dynamickey
