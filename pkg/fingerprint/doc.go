// Package fingerprint builds the vendor client fingerprint and checksum
// headers the gateway must fabricate to look like one of the vendor's own
// clients.
//
// The exact byte layout of the upstream checksum prefix is not documented
// anywhere in the retrieval pack available to this implementation (see
// DESIGN.md, Open Question 1): there is no kept original_source/ file and
// none of the example repos touch this vendor's protocol. What follows is a
// concrete, fully-specified, deterministic reconstruction of the documented
// contract — "pure and deterministic in (token.checksum, now_ms)" — rather
// than a guess at the vendor's undocumented exact bytes. Byte-identical
// interop with the real vendor was never reachable without its source.
package fingerprint
