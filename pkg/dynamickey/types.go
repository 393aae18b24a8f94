package dynamickey

import "math/big"

// NumericSize is the fixed byte length of the numeric identifier section of
// a body: 16 bytes (u128) plus 8 bytes (u64).
const NumericSize = 24

// MaxBodySize bounds the total encoded body length (numeric plus
// overrides); longer payloads fail to encode.
const MaxBodySize = 512

// overridesVersion is the single defined version byte of the overrides
// block.
const overridesVersion = 0x01

// GCPPHost selects the regional code-completion backend.
type GCPPHost byte

const (
	GCPPHostAsia GCPPHost = 0
	GCPPHostEU   GCPPHost = 1
	GCPPHostUS   GCPPHost = 2
)

// UsageCheckVariant mirrors the wire-layer UsageCheckModels enum.
type UsageCheckVariant byte

const (
	UsageCheckVariantDefault  UsageCheckVariant = 0
	UsageCheckVariantDisabled UsageCheckVariant = 1
	UsageCheckVariantAll      UsageCheckVariant = 2
	UsageCheckVariantCustom   UsageCheckVariant = 3
)

// UsageCheckModelsOverride is the decoded form of TLV code 0x20.
type UsageCheckModelsOverride struct {
	Variant UsageCheckVariant
	Models  []string // only meaningful when Variant == UsageCheckVariantCustom
}

// Overrides holds the optional per-key values a dynamic key may carry.
// A nil pointer (or, for the boolean flags, false / zero value) means
// "absent — use the token's own value".
type Overrides struct {
	ProxyName            *string
	Timezone             *string
	GCPPHost             *GCPPHost
	DisableVision        bool
	EnableSlowPool       bool
	IncludeWebReferences bool
	UsageCheckModels     *UsageCheckModelsOverride
}

// IsEmpty reports whether no override is set, in which case the overrides
// block is omitted entirely from the encoded body.
func (o Overrides) IsEmpty() bool {
	return o.ProxyName == nil && o.Timezone == nil && o.GCPPHost == nil &&
		!o.DisableVision && !o.EnableSlowPool && !o.IncludeWebReferences &&
		o.UsageCheckModels == nil
}

// Payload is the decoded form of a dynamic key's body.
type Payload struct {
	Numeric   *big.Int
	Overrides Overrides
}

// NumericBytes returns the 24-byte big-endian encoding of Numeric.
func (p Payload) NumericBytes() ([NumericSize]byte, error) {
	var out [NumericSize]byte
	if p.Numeric == nil {
		return out, &InvalidKeyError{Format: "payload", Reason: "numeric is nil"}
	}
	if p.Numeric.Sign() < 0 {
		return out, &InvalidKeyError{Format: "payload", Reason: "numeric is negative"}
	}
	if p.Numeric.BitLen() > NumericSize*8 {
		return out, &InvalidKeyError{Format: "payload", Reason: "numeric exceeds 192 bits"}
	}
	p.Numeric.FillBytes(out[:])
	return out, nil
}
