package fingerprint

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
)

const secretHexLen = 64 // 32 raw bytes, hex-encoded

// rollingKey is the fixed obfuscation key the prefix is folded against. Its
// values carry no meaning beyond being a stable, non-trivial byte sequence;
// see the package doc for why an exact vendor-matching key is unreachable.
var rollingKey = [16]byte{
	0x5a, 0x91, 0x3c, 0xf0, 0x67, 0x2e, 0xb8, 0x1d,
	0x44, 0xd2, 0x7f, 0x09, 0xa6, 0x5b, 0x83, 0xc1,
}

// validateSecret reports whether s is exactly 64 lowercase hex characters.
func validateSecret(field, s string) error {
	if len(s) != secretHexLen {
		return &InvalidSecretError{Field: field, Value: s}
	}
	for _, c := range s {
		isLowerHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isLowerHex {
			return &InvalidSecretError{Field: field, Value: s}
		}
	}
	return nil
}

// checksumPrefix derives the 8-byte obfuscated prefix from nowMs by
// XOR-folding its big-endian bytes against rollingKey, starting at an
// offset selected by the timestamp's own low byte so the pattern shifts
// from request to request.
func checksumPrefix(nowMs int64) [8]byte {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(nowMs))

	offset := int(ts[7]) % len(rollingKey)

	var prefix [8]byte
	for i := 0; i < 8; i++ {
		prefix[i] = ts[i] ^ rollingKey[(i+offset)%len(rollingKey)]
	}
	return prefix
}

// BuildChecksumHeader builds the x-cursor-checksum header value:
// "<prefix>/<firstHex><secondHex>", where prefix is the base64url
// (no padding) encoding of checksumPrefix(nowMs) and firstHex/secondHex are
// the token's two 32-byte secrets as lowercase hex.
//
// BuildChecksumHeader is pure and deterministic in (firstHex, secondHex,
// nowMs), matching the §4.3 contract.
func BuildChecksumHeader(firstHex, secondHex string, nowMs int64) (string, error) {
	if err := validateSecret("checksum.first", firstHex); err != nil {
		return "", err
	}
	if err := validateSecret("checksum.second", secondHex); err != nil {
		return "", err
	}

	prefix := checksumPrefix(nowMs)
	encodedPrefix := base64.RawURLEncoding.EncodeToString(prefix[:])

	return encodedPrefix + "/" + firstHex + secondHex, nil
}

// GenerateChecksumSecret produces a fresh 32-byte secret, hex-encoded, for
// use as either half of a new TokenRecord's checksum pair (the /gen-checksum
// and /tokens/add auto-generation paths).
func GenerateChecksumSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// GenerateClientKey produces a fresh 32-byte client key, hex-encoded, for
// the x-cursor-client-key header.
func GenerateClientKey() (string, error) {
	return GenerateChecksumSecret()
}
