package runtimeinit

import (
	"fmt"
	"log"
	"os"

	"snip-pin/src/config"
	"snip-pin/src/screenshot"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(enable bool, dir string)
	// NewBackend overrides the platform capture backend, mainly for tests.
	NewBackend func(cfg *config.Config) screenshot.Backend
}

// Bootstrap loads configuration, configures logging and builds the capture
// engine shared by every entry point.
func Bootstrap(opts Options) (*config.Config, *screenshot.Engine, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging, cfg.LogDir)
	}

	if err := os.MkdirAll(cfg.SaveDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to prepare save dir %s: %w", cfg.SaveDir, err)
	}

	var engine *screenshot.Engine
	if opts.NewBackend != nil {
		engine = screenshot.NewWithBackend(opts.NewBackend(cfg), cfg.ForceBGRA)
	} else {
		engine = screenshot.New(screenshot.Options{ForceBGRA: cfg.ForceBGRA, Backend: cfg.CaptureBackend})
	}
	log.Printf("Runtime initialized: hotkey=%s saveDir=%s", cfg.Hotkey, cfg.SaveDir)

	return cfg, engine, nil
}
