package config

import "testing"

func TestApplyDefaultsThenValidate(t *testing.T) {
	cfg := NewTestConfig().Build()
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected default+admin-token config to validate, got %v", err)
	}
}

func TestConfigStructure(t *testing.T) {
	cfg := NewTestConfig().WithPort(4000).WithSharedToken("shared-abc").Build()
	if cfg.Server.Port != 4000 {
		t.Fatalf("Server.Port = %d, want 4000", cfg.Server.Port)
	}
	if cfg.Auth.SharedToken != "shared-abc" {
		t.Fatalf("Auth.SharedToken = %q, want shared-abc", cfg.Auth.SharedToken)
	}
	if cfg.TokenStore.Path == "" {
		t.Fatalf("TokenStore.Path should have a default")
	}
	if cfg.Logs.Capacity != DefaultLogsCapacity {
		t.Fatalf("Logs.Capacity = %d, want %d", cfg.Logs.Capacity, DefaultLogsCapacity)
	}
}
