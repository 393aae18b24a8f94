// Package frame implements the length-prefixed binary framing layer used on
// the wire to the vendor's Protobuf-over-HTTP endpoints.
//
// Each frame is a 5-byte header (a 1-byte tag followed by a 4-byte
// big-endian length) and a payload of exactly that many bytes. Bit 0 of the
// tag distinguishes an error payload (JSON) from a message payload
// (Protobuf); bit 1 marks the payload as gzip-compressed. The remaining
// bits are reserved and must be zero.
package frame
