package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// BenchmarkVersionCommand benchmarks the version command startup time
// Target: < 100ms per iteration
func BenchmarkVersionCommand(b *testing.B) {
	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "version")
		if err := cmd.Run(); err != nil {
			b.Fatalf("version command failed: %v", err)
		}
	}
}

// BenchmarkVersionCommandShort benchmarks the version --short command
// Target: < 50ms per iteration
func BenchmarkVersionCommandShort(b *testing.B) {
	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "version", "--short")
		if err := cmd.Run(); err != nil {
			b.Fatalf("version --short command failed: %v", err)
		}
	}
}

// BenchmarkHelpCommand benchmarks the help command
// Target: < 100ms per iteration
func BenchmarkHelpCommand(b *testing.B) {
	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "--help")
		if err := cmd.Run(); err != nil {
			b.Fatalf("help command failed: %v", err)
		}
	}
}

// BenchmarkRunDryRun benchmarks config validation with --dry-run
// Target: < 1s per iteration
func BenchmarkRunDryRun(b *testing.B) {
	tmpDir := b.TempDir()

	configFile := filepath.Join(tmpDir, "config.yaml")
	createBenchmarkConfig(b, configFile)

	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "run", "--config", configFile, "--dry-run")
		cmd.Dir = tmpDir
		if err := cmd.Run(); err != nil {
			b.Fatalf("run --dry-run failed: %v", err)
		}
	}
}

// BenchmarkKeysBuild benchmarks dynamic-key construction
// Target: < 50ms per iteration
func BenchmarkKeysBuild(b *testing.B) {
	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "keys", "build", "--numeric", "123456789")
		if err := cmd.Run(); err != nil {
			b.Fatalf("keys build failed: %v", err)
		}
	}
}

// BenchmarkKeysDecode benchmarks dynamic-key decoding
// Target: < 50ms per iteration
func BenchmarkKeysDecode(b *testing.B) {
	binaryPath := buildBinary(b)

	out, err := exec.Command(binaryPath, "keys", "build", "--numeric", "123456789").Output()
	if err != nil {
		b.Fatalf("keys build (fixture) failed: %v", err)
	}
	key := firstLine(string(out))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cmd := exec.Command(binaryPath, "keys", "decode", key)
		if err := cmd.Run(); err != nil {
			b.Fatalf("keys decode failed: %v", err)
		}
	}
}

// BenchmarkCertsGenerate benchmarks self-signed certificate generation
// Target: < 500ms per iteration
func BenchmarkCertsGenerate(b *testing.B) {
	binaryPath := buildBinary(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tmpDir := b.TempDir()
		cmd := exec.Command(binaryPath, "certs", "generate",
			"--host", "localhost",
			"--output", tmpDir)

		if err := cmd.Run(); err != nil {
			b.Fatalf("certs generate failed: %v", err)
		}
	}
}

// BenchmarkCompletionGeneration benchmarks shell completion generation
// Target: < 100ms per iteration
func BenchmarkCompletionGeneration(b *testing.B) {
	binaryPath := buildBinary(b)

	shells := []string{"bash", "zsh", "fish", "powershell"}

	for _, shell := range shells {
		b.Run(shell, func(b *testing.B) {
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				cmd := exec.Command(binaryPath, "completion", shell)
				if err := cmd.Run(); err != nil {
					b.Fatalf("completion %s failed: %v", shell, err)
				}
			}
		})
	}
}

// Helper functions

var cachedBinaryPath string

// buildBinary builds the mercator binary once and caches the path
func buildBinary(b *testing.B) string {
	b.Helper()

	if cachedBinaryPath != "" {
		return cachedBinaryPath
	}

	// Check if binary exists in ../../bin/
	binaryPath := "../../bin/mercator"
	if _, err := os.Stat(binaryPath); err == nil {
		cachedBinaryPath = binaryPath
		return binaryPath
	}

	// Build new binary
	tmpBinary := filepath.Join(b.TempDir(), "mercator")
	cmd := exec.Command("go", "build", "-o", tmpBinary, ".")
	if err := cmd.Run(); err != nil {
		b.Fatalf("failed to build mercator: %v", err)
	}

	cachedBinaryPath = tmpBinary
	return tmpBinary
}

// createBenchmarkConfig creates a minimal valid gateway config for benchmarking.
func createBenchmarkConfig(b *testing.B, path string) {
	b.Helper()

	config := `server:
  port: 18080

auth:
  admin_token: "bench-admin-token"

token_store:
  path: "tokens.bin"

proxy_store:
  path: "proxies.bin"

telemetry:
  logging:
    level: "warn"
    format: "json"
  metrics:
    enabled: false
  tracing:
    enabled: false
`

	if err := os.WriteFile(path, []byte(config), 0644); err != nil {
		b.Fatalf("failed to create config file: %v", err)
	}
}

// firstLine trims everything after (and including) the first newline, since
// `keys build` prints the encoded key followed by a trailing newline.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
