package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvPathEnvVar = "SNIP_PIN_ENV"

	DefaultHotkey    = "F4"
	DefaultDimFactor = float32(0.6)
	DefaultPinBorder = 2

	BackendAuto   = "auto"
	BackendPortal = "portal"
)

// LoadOptions carry command-line overrides; empty fields leave the environment value.
type LoadOptions struct {
	EnvPathOverride string
	SaveDirOverride string
	HotkeyOverride  string
}

type Config struct {
	Hotkey            string
	ForceBGRA         bool
	DimFactor         float32
	PinBorder         int
	SaveDir           string
	CaptureBackend    string
	EnableFileLogging bool
	LogDir            string
	EnvPath           string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) explicit --env path
	// 2) .env in the application (executable) directory
	// 3) If not found, use SNIP_PIN_ENV env var as a path to a config file
	envPath := strings.TrimSpace(opts.EnvPathOverride)
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Hotkey:            getEnvWithDefault("HOTKEY", DefaultHotkey),
		ForceBGRA:         os.Getenv("FORCE_BGRA") != "",
		DimFactor:         resolveDimFactor(os.Getenv("DIM_FACTOR")),
		PinBorder:         resolvePinBorder(os.Getenv("PIN_BORDER")),
		SaveDir:           getEnvWithDefault("SAVE_DIR", "."),
		CaptureBackend:    resolveBackend(os.Getenv("CAPTURE_BACKEND")),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		LogDir:            getEnvWithDefault("LOG_DIR", "."),
		EnvPath:           envPath,
	}

	if v := strings.TrimSpace(opts.HotkeyOverride); v != "" {
		cfg.Hotkey = v
	}
	if v := strings.TrimSpace(opts.SaveDirOverride); v != "" {
		cfg.SaveDir = v
	}
	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// resolveDimFactor accepts values in [0,1]; anything else keeps the default.
func resolveDimFactor(value string) float32 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 32)
	if err != nil || f < 0 || f > 1 {
		return DefaultDimFactor
	}
	return float32(f)
}

func resolvePinBorder(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 1 || n > 32 {
		return DefaultPinBorder
	}
	return n
}

func resolveBackend(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case BackendPortal:
		return BackendPortal
	default:
		return BackendAuto
	}
}
