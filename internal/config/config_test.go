package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvLogLevel, EnvStoreBackend, EnvStorePath, EnvRedisAddr, EnvRedisPassword, EnvFramebuffer, EnvSeed} {
		t.Setenv(key, "")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":8080" || cfg.Store.Backend != BackendFile || cfg.LogLevel != "info" || cfg.Seed != nil {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Store.Redis.Key != "socialMediaImageSettings" {
		t.Errorf("redis key = %q", cfg.Store.Redis.Key)
	}
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	configFile := filepath.Join(t.TempDir(), "socialcard.yaml")
	configContent := `
listen: "127.0.0.1:9090"
dev: true
log_level: debug
seed: 42
store:
  backend: redis
  redis:
    addr: "redis:6379"
    db: 2
framebuffer:
  device: /dev/fb1
`
	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9090" || !cfg.Dev || cfg.LogLevel != "debug" {
		t.Errorf("top level = %+v", cfg)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.Redis.Addr != "redis:6379" || cfg.Store.Redis.DB != 2 {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.Redis.Key != "socialMediaImageSettings" {
		t.Errorf("unset redis key lost its default: %q", cfg.Store.Redis.Key)
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Errorf("seed = %v", cfg.Seed)
	}
	if cfg.Framebuffer.Device != "/dev/fb1" {
		t.Errorf("framebuffer = %+v", cfg.Framebuffer)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	configFile := filepath.Join(t.TempDir(), "socialcard.yaml")
	if err := os.WriteFile(configFile, []byte("store:\n  backend: memory\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvStoreBackend, "file")
	t.Setenv(EnvStorePath, "/tmp/settings.json")
	t.Setenv(EnvSeed, "7")

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Backend != BackendFile || cfg.Store.Path != "/tmp/settings.json" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Seed == nil || *cfg.Seed != 7 {
		t.Errorf("seed = %v", cfg.Seed)
	}
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "listen: [unterminated"},
		{"bad backend", "store:\n  backend: sqlite\n"},
		{"bad level", "log_level: loud\n"},
		{"redis without addr", "store:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	t.Setenv(EnvSeed, "minus one")
	if _, err := Load(""); err == nil {
		t.Error("expected error for invalid seed")
	}
}
