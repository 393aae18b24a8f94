package config

import "testing"

func TestApplyDefaultsIsIdempotent(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	first := cfg
	ApplyDefaults(&cfg)
	if cfg.Server.Port != first.Server.Port || cfg.Vendor.ChatURL != first.Vendor.ChatURL {
		t.Fatalf("ApplyDefaults changed already-defaulted fields on second call")
	}
}

func TestApplyDefaultsDoesNotOverrideExplicitValues(t *testing.T) {
	cfg := Config{}
	cfg.Server.Port = 9999
	cfg.Logs.Capacity = 10
	ApplyDefaults(&cfg)
	if cfg.Server.Port != 9999 {
		t.Fatalf("Server.Port overridden: got %d, want 9999", cfg.Server.Port)
	}
	if cfg.Logs.Capacity != 10 {
		t.Fatalf("Logs.Capacity overridden: got %d, want 10", cfg.Logs.Capacity)
	}
}

func TestApplyDefaultsFillsVendorCppURLs(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)
	for _, host := range []string{"asia", "eu", "us"} {
		if cfg.Vendor.CppURLs[host] == "" {
			t.Fatalf("expected default cpp_urls[%s]", host)
		}
	}
}
