package recorder

import (
	"crypto/sha256"
	"encoding/hex"
)

// tokenKeyLen is the number of hex characters of the hash kept as
// LogRecord.TokenKey (§4.9: "the first eight characters of a hash of
// primary_token, not the token itself").
const tokenKeyLen = 8

// TokenKey derives the privacy-preserving identifier stored on a LogRecord
// in place of the actual primary_token.
func TokenKey(primaryToken string) string {
	if primaryToken == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(primaryToken))
	return hex.EncodeToString(sum[:])[:tokenKeyLen]
}
