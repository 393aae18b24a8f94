package dynamickey

import (
	"encoding/base64"
	"math/big"
	"strconv"
	"strings"
)

const skPrefix = "sk-"

// decimalSeparator delimits the explicit body-length tag from the decimal
// digits in the decimal-numeric encoding (see encodeNumericDecimal). This
// is our own representation detail: the three encodings only need to
// round-trip to an identical payload; nothing fixes a byte format for the
// decimal form beyond bounding its length. A leading length tag keeps
// decode lossless even when the body's
// leading bytes are zero, which a bare decimal-of-big-integer encoding
// cannot recover (big.Int.Bytes drops leading zero bytes).
const decimalSeparator = ":"

func encodeBody(p Payload) ([]byte, error) {
	numeric, err := p.NumericBytes()
	if err != nil {
		return nil, err
	}
	overrides, err := encodeOverrides(p.Overrides)
	if err != nil {
		return nil, err
	}

	body := make([]byte, 0, NumericSize+len(overrides))
	body = append(body, numeric[:]...)
	body = append(body, overrides...)

	if len(body) > MaxBodySize {
		return nil, &InvalidKeyError{Format: "payload", Reason: "encoded body exceeds 512 bytes"}
	}
	return body, nil
}

func decodeBody(body []byte) (Payload, error) {
	if len(body) < NumericSize {
		return Payload{}, &InvalidKeyError{Format: "payload", Reason: "body shorter than numeric section"}
	}
	numeric := new(big.Int).SetBytes(body[:NumericSize])
	overrides, err := decodeOverrides(body[NumericSize:])
	if err != nil {
		return Payload{}, err
	}
	return Payload{Numeric: numeric, Overrides: overrides}, nil
}

// Encode produces the textual "sk-" form.
func Encode(p Payload) (string, error) {
	body, err := encodeBody(p)
	if err != nil {
		return "", err
	}
	return skPrefix + base64.RawURLEncoding.EncodeToString(body), nil
}

// EncodeNumericB64 produces the base64url form without the "sk-" prefix.
func EncodeNumericB64(p Payload) (string, error) {
	body, err := encodeBody(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(body), nil
}

// EncodeNumericDecimal produces the decimal form: a decimal-digit length
// tag, decimalSeparator, then the decimal digits of the body interpreted as
// one big-endian unsigned integer.
func EncodeNumericDecimal(p Payload) (string, error) {
	body, err := encodeBody(p)
	if err != nil {
		return "", err
	}
	n := new(big.Int).SetBytes(body)
	return strconv.Itoa(len(body)) + decimalSeparator + n.String(), nil
}

// Decode accepts any of the three representations and returns the decoded
// payload.
func Decode(key string) (Payload, error) {
	switch {
	case strings.HasPrefix(key, skPrefix):
		body, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(key, skPrefix))
		if err != nil {
			return Payload{}, &InvalidKeyError{Format: "sk", Reason: err.Error()}
		}
		return decodeBody(body)

	case strings.Contains(key, decimalSeparator):
		parts := strings.SplitN(key, decimalSeparator, 2)
		if len(parts) != 2 {
			return Payload{}, &InvalidKeyError{Format: "numeric_decimal", Reason: "malformed length tag"}
		}
		length, err := strconv.Atoi(parts[0])
		if err != nil || length <= 0 || length > MaxBodySize {
			return Payload{}, &InvalidKeyError{Format: "numeric_decimal", Reason: "invalid length tag"}
		}
		n, ok := new(big.Int).SetString(parts[1], 10)
		if !ok || n.Sign() < 0 {
			return Payload{}, &InvalidKeyError{Format: "numeric_decimal", Reason: "invalid decimal digits"}
		}
		if (n.BitLen()+7)/8 > length {
			return Payload{}, &InvalidKeyError{Format: "numeric_decimal", Reason: "length tag too small for value"}
		}
		body := make([]byte, length)
		n.FillBytes(body)
		return decodeBody(body)

	default:
		body, err := base64.RawURLEncoding.DecodeString(key)
		if err != nil {
			return Payload{}, &InvalidKeyError{Format: "numeric_b64", Reason: err.Error()}
		}
		return decodeBody(body)
	}
}
