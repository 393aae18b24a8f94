package main

import (
	"math/big"
	"testing"

	"github.com/relaygw/relay/pkg/dynamickey"
)

func TestRunKeysBuildSkFormatWithProxy(t *testing.T) {
	keysBuildFlags = struct {
		numeric              string
		format               string
		proxy                string
		timezone             string
		gcppHost             string
		disableVision        bool
		enableSlowPool       bool
		includeWebReferences bool
	}{
		numeric: "424242",
		format:  "sk",
		proxy:   "eu-west",
	}

	if err := runKeysBuild(nil, nil); err != nil {
		t.Fatalf("runKeysBuild() error = %v", err)
	}
}

func TestRunKeysBuildRejectsNonNumeric(t *testing.T) {
	keysBuildFlags.numeric = "not-a-number"
	keysBuildFlags.format = "sk"
	if err := runKeysBuild(nil, nil); err == nil {
		t.Error("expected an error for a non-numeric --numeric value")
	}
}

func TestRunKeysBuildRejectsUnknownFormat(t *testing.T) {
	keysBuildFlags.numeric = "1"
	keysBuildFlags.format = "bogus"
	if err := runKeysBuild(nil, nil); err == nil {
		t.Error("expected an error for an unknown --format value")
	}
}

func TestRunKeysDecodeRoundTrip(t *testing.T) {
	proxy := "eu-west"
	payload := dynamickey.Payload{
		Numeric:   big.NewInt(999),
		Overrides: dynamickey.Overrides{ProxyName: &proxy},
	}
	key, err := dynamickey.Encode(payload)
	if err != nil {
		t.Fatalf("dynamickey.Encode() error = %v", err)
	}

	if err := runKeysDecode(nil, []string{key}); err != nil {
		t.Fatalf("runKeysDecode() error = %v", err)
	}
}

func TestRunKeysDecodeStructuredOutput(t *testing.T) {
	proxy := "eu-west"
	payload := dynamickey.Payload{
		Numeric:   big.NewInt(999),
		Overrides: dynamickey.Overrides{ProxyName: &proxy, DisableVision: true},
	}
	key, err := dynamickey.Encode(payload)
	if err != nil {
		t.Fatalf("dynamickey.Encode() error = %v", err)
	}

	for _, format := range []string{"json", "csv"} {
		keysDecodeFlags.output = format
		if err := runKeysDecode(nil, []string{key}); err != nil {
			t.Errorf("runKeysDecode() with --output=%s error = %v", format, err)
		}
	}
	keysDecodeFlags.output = "text"

	keysDecodeFlags.output = "bogus"
	if err := runKeysDecode(nil, []string{key}); err == nil {
		t.Error("expected an error for an unknown --output value")
	}
	keysDecodeFlags.output = "text"
}

func TestRunKeysDecodeRejectsGarbage(t *testing.T) {
	if err := runKeysDecode(nil, []string{"not-a-valid-key!!"}); err == nil {
		t.Error("expected an error decoding a malformed key")
	}
}

func TestParseGCPPHost(t *testing.T) {
	cases := map[string]dynamickey.GCPPHost{
		"asia": dynamickey.GCPPHostAsia,
		"eu":   dynamickey.GCPPHostEU,
		"us":   dynamickey.GCPPHostUS,
	}
	for in, want := range cases {
		got, err := parseGCPPHost(in)
		if err != nil {
			t.Fatalf("parseGCPPHost(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("parseGCPPHost(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := parseGCPPHost("mars"); err == nil {
		t.Error("expected an error for an unknown host")
	}
}
