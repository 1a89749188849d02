package config

import (
	"os"
	"path/filepath"
	"testing"
)

var configKeys = []string{
	"HOTKEY", "FORCE_BGRA", "DIM_FACTOR", "PIN_BORDER", "SAVE_DIR",
	"CAPTURE_BACKEND", "ENABLE_FILE_LOGGING", "LOG_DIR", EnvPathEnvVar,
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("FORCE_BGRA", "1")
	t.Setenv("ENABLE_FILE_LOGGING", "true")
	t.Setenv("HOTKEY", "Ctrl+Shift+T")
	t.Setenv("DIM_FACTOR", "0.25")
	t.Setenv("PIN_BORDER", "3")
	t.Setenv("CAPTURE_BACKEND", "Portal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.ForceBGRA {
		t.Errorf("Expected ForceBGRA to be true")
	}
	if !cfg.EnableFileLogging {
		t.Errorf("Expected EnableFileLogging to be true, got %v", cfg.EnableFileLogging)
	}
	if cfg.Hotkey != "Ctrl+Shift+T" {
		t.Errorf("Expected Hotkey to be 'Ctrl+Shift+T', got '%s'", cfg.Hotkey)
	}
	if cfg.DimFactor != 0.25 {
		t.Errorf("Expected DimFactor 0.25, got %v", cfg.DimFactor)
	}
	if cfg.PinBorder != 3 {
		t.Errorf("Expected PinBorder 3, got %d", cfg.PinBorder)
	}
	if cfg.CaptureBackend != BackendPortal {
		t.Errorf("Expected portal backend, got %q", cfg.CaptureBackend)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Hotkey != DefaultHotkey {
		t.Errorf("Expected default hotkey %q, got %q", DefaultHotkey, cfg.Hotkey)
	}
	if cfg.ForceBGRA {
		t.Error("Expected ForceBGRA off by default")
	}
	if cfg.DimFactor != DefaultDimFactor || cfg.PinBorder != DefaultPinBorder {
		t.Errorf("Unexpected defaults: dim=%v border=%d", cfg.DimFactor, cfg.PinBorder)
	}
	if cfg.SaveDir != "." || cfg.LogDir != "." || cfg.CaptureBackend != BackendAuto {
		t.Errorf("Unexpected defaults: save=%q log=%q backend=%q", cfg.SaveDir, cfg.LogDir, cfg.CaptureBackend)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	tests := []struct {
		dim    string
		border string
	}{
		{"1.5", "0"},
		{"-0.1", "-2"},
		{"abc", "many"},
		{"", "100"},
	}
	for _, tt := range tests {
		if got := resolveDimFactor(tt.dim); got != DefaultDimFactor {
			t.Errorf("resolveDimFactor(%q) = %v", tt.dim, got)
		}
		if got := resolvePinBorder(tt.border); got != DefaultPinBorder {
			t.Errorf("resolvePinBorder(%q) = %d", tt.border, got)
		}
	}
}

func TestLoadWithOptionsEnvFileAndOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, "custom.env")
	content := "HOTKEY=Alt+F9\nSAVE_DIR=/tmp/snips\nDIM_FACTOR=0.5\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("HOTKEY")
		os.Unsetenv("SAVE_DIR")
		os.Unsetenv("DIM_FACTOR")
	})

	cfg, err := LoadWithOptions(LoadOptions{EnvPathOverride: envFile, SaveDirOverride: dir})
	if err != nil {
		t.Fatalf("LoadWithOptions failed: %v", err)
	}
	if cfg.EnvPath != envFile {
		t.Errorf("Expected EnvPath %q, got %q", envFile, cfg.EnvPath)
	}
	if cfg.Hotkey != "Alt+F9" {
		t.Errorf("Expected hotkey from env file, got %q", cfg.Hotkey)
	}
	if cfg.DimFactor != 0.5 {
		t.Errorf("Expected DimFactor 0.5 from env file, got %v", cfg.DimFactor)
	}
	if cfg.SaveDir != dir {
		t.Errorf("Expected SaveDir override %q, got %q", dir, cfg.SaveDir)
	}
}

func TestLoadWithOptionsMissingEnvFile(t *testing.T) {
	clearEnv(t)
	if _, err := LoadWithOptions(LoadOptions{EnvPathOverride: filepath.Join(t.TempDir(), "missing.env")}); err == nil {
		t.Error("Expected error for missing explicit env file")
	}
}
