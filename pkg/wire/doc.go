// Package wire hand-transcribes the vendor's Protobuf message schemas and
// implements their encode/decode logic directly against
// google.golang.org/protobuf/encoding/protowire's low-level varint and
// length-delimited primitives.
//
// The vendor's .proto sources are not available to this implementation (see
// DESIGN.md), so the field layouts here are a documented reconstruction
// sufficient to satisfy the gateway's own contract with itself: every field
// the translator needs to set or read is represented, unknown fields
// encountered on decode are preserved rather than dropped, and messages
// round-trip through Marshal/Unmarshal. There is no protoc-generated code in
// this package; every Marshal/Unmarshal method below is written by hand.
package wire
