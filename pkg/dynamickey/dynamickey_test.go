package dynamickey

import (
	"math/big"
	"strings"
	"testing"
)

func samplePayload(t *testing.T) Payload {
	t.Helper()
	numeric := new(big.Int).Lsh(big.NewInt(1), 127)
	numeric.Add(numeric, big.NewInt(3))
	proxy := "p1"
	return Payload{
		Numeric: numeric,
		Overrides: Overrides{
			ProxyName:     &proxy,
			DisableVision: true,
		},
	}
}

func TestRoundTripAllThreeEncodings(t *testing.T) {
	p := samplePayload(t)

	sk, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(sk, "sk-") {
		t.Fatalf("encoded key %q missing sk- prefix", sk)
	}
	b64, err := EncodeNumericB64(p)
	if err != nil {
		t.Fatalf("EncodeNumericB64: %v", err)
	}
	dec, err := EncodeNumericDecimal(p)
	if err != nil {
		t.Fatalf("EncodeNumericDecimal: %v", err)
	}

	for _, key := range []string{sk, b64, dec} {
		got, err := Decode(key)
		if err != nil {
			t.Fatalf("Decode(%q): %v", key, err)
		}
		if got.Numeric.Cmp(p.Numeric) != 0 {
			t.Fatalf("numeric mismatch for %q: got %s, want %s", key, got.Numeric, p.Numeric)
		}
		if got.Overrides.ProxyName == nil || *got.Overrides.ProxyName != *p.Overrides.ProxyName {
			t.Fatalf("proxy_name mismatch for %q: got %+v", key, got.Overrides)
		}
		if got.Overrides.DisableVision != p.Overrides.DisableVision {
			t.Fatalf("disable_vision mismatch for %q: got %+v", key, got.Overrides)
		}
	}
}

func TestEncodeDecodeRoundTripLaw(t *testing.T) {
	p := samplePayload(t)
	sk, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(sk)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Numeric.Cmp(p.Numeric) != 0 {
		t.Fatalf("round-trip numeric mismatch: got %s, want %s", got.Numeric, p.Numeric)
	}
}

func TestDecimalEncodingLengthBoundForNumericOnly(t *testing.T) {
	numeric := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 192), big.NewInt(1))
	p := Payload{Numeric: numeric}

	dec, err := EncodeNumericDecimal(p)
	if err != nil {
		t.Fatalf("EncodeNumericDecimal: %v", err)
	}
	if len(dec) > 116 {
		t.Fatalf("len(decimal) = %d, want <= 116", len(dec))
	}
}

func TestEmptyOverridesOmitted(t *testing.T) {
	p := Payload{Numeric: big.NewInt(42)}
	sk, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(sk)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !got.Overrides.IsEmpty() {
		t.Fatalf("expected empty overrides, got %+v", got.Overrides)
	}
}

func TestUsageCheckModelsCustomList(t *testing.T) {
	p := Payload{
		Numeric: big.NewInt(7),
		Overrides: Overrides{
			UsageCheckModels: &UsageCheckModelsOverride{
				Variant: UsageCheckVariantCustom,
				Models:  []string{"gpt-4", "gpt-4o"},
			},
		},
	}
	sk, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(sk)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Overrides.UsageCheckModels == nil || got.Overrides.UsageCheckModels.Variant != UsageCheckVariantCustom {
		t.Fatalf("usage_check_models not decoded: %+v", got.Overrides.UsageCheckModels)
	}
	if len(got.Overrides.UsageCheckModels.Models) != 2 {
		t.Fatalf("models = %v, want 2 entries", got.Overrides.UsageCheckModels.Models)
	}
}

func TestUnknownTLVCodeIgnored(t *testing.T) {
	p := Payload{Numeric: big.NewInt(1)}
	body, err := encodeBody(p)
	if err != nil {
		t.Fatalf("encodeBody: %v", err)
	}
	// encodeBody writes no overrides block for empty overrides, so append
	// the version byte and then an unknown TLV (code 0x7f).
	body = append(body, overridesVersion, 0x7f, 2, 'h', 'i')

	decoded, err := decodeBody(body)
	if err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	if decoded.Numeric.Int64() != 1 {
		t.Fatalf("numeric = %s, want 1", decoded.Numeric)
	}
}

func TestOversizedBodyRejected(t *testing.T) {
	longName := strings.Repeat("x", 255)
	p := Payload{
		Numeric: big.NewInt(1),
		Overrides: Overrides{
			ProxyName: &longName,
		},
	}
	// Stack enough overrides to exceed 512 bytes total.
	p.Overrides.Timezone = &longName
	_, err := encodeBody(p)
	if err == nil {
		t.Fatalf("expected error for oversized body")
	}
}
