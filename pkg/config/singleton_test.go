package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestInitialize(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 3100\nauth:\n  admin_token: test\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := Initialize(configPath); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil {
		t.Fatal("expected non-nil config after initialization")
	}
	if cfg.Server.Port != 3100 {
		t.Errorf("Server.Port = %d, want 3100", cfg.Server.Port)
	}
}

func TestInitializeMultipleCallsIgnored(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	path1 := filepath.Join(t.TempDir(), "config1.yaml")
	path2 := filepath.Join(t.TempDir(), "config2.yaml")
	os.WriteFile(path1, []byte("auth:\n  admin_token: key1\n"), 0o644)
	os.WriteFile(path2, []byte("auth:\n  admin_token: key2\n"), 0o644)

	if err := Initialize(path1); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	first := GetConfig()

	Initialize(path2)
	second := GetConfig()

	if first.Auth.AdminToken != second.Auth.AdminToken {
		t.Error("second Initialize call should be ignored")
	}
}

func TestGetConfigBeforeInitialize(t *testing.T) {
	globalConfig = nil
	if cfg := GetConfig(); cfg != nil {
		t.Error("expected nil config before initialization")
	}
}

func TestSetConfig(t *testing.T) {
	globalConfig = nil
	testCfg := NewTestConfig().WithPort(7070).Build()
	SetConfig(testCfg)

	got := GetConfig()
	if got == nil {
		t.Fatal("expected non-nil config after SetConfig")
	}
	if got.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", got.Server.Port)
	}
}

func TestReloadConfig(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("auth:\n  admin_token: initial\n"), 0o644)

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if GetConfig().Auth.AdminToken != "initial" {
		t.Fatal("initial config not loaded correctly")
	}

	os.WriteFile(path, []byte("auth:\n  admin_token: updated\n"), 0o644)
	if err := ReloadConfig(path); err != nil {
		t.Fatalf("ReloadConfig: %v", err)
	}
	if GetConfig().Auth.AdminToken != "updated" {
		t.Errorf("Auth.AdminToken = %q, want updated", GetConfig().Auth.AdminToken)
	}
}

func TestReloadConfigValidationFailurePreservesOriginal(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("auth:\n  admin_token: valid\n"), 0o644)

	if err := Initialize(path); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	original := GetConfig()

	os.WriteFile(path, []byte("auth:\n  admin_token: \"\"\n"), 0o644)
	if err := ReloadConfig(path); err == nil {
		t.Fatal("expected error reloading invalid config")
	}

	if GetConfig().Auth.AdminToken != original.Auth.AdminToken {
		t.Error("original config should be preserved on reload failure")
	}
}

func TestMustGetConfigPanicsWhenUninitialized(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected MustGetConfig to panic when not initialized")
		}
	}()
	MustGetConfig()
}

func TestMustGetConfigAfterSetConfig(t *testing.T) {
	globalConfig = nil
	initOnce = *new(sync.Once)

	SetConfig(NewTestConfig().Build())

	if cfg := MustGetConfig(); cfg == nil {
		t.Error("expected non-nil config from MustGetConfig")
	}
}
