package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// CLIOverrides holds values from command-line flags, the highest-priority
// layer of the override chain. Empty string / zero means "not specified".
type CLIOverrides struct {
	ConfigPath    string
	SourceProject string
	DestProject   string
	BatchSize     int
}

// Load reads and parses a TOML config file and returns the resulting
// Config. Unknown keys are fatal errors with "did you mean?" suggestions —
// silently ignoring a typo in a config file leads to hard-to-debug behavior.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with defaults. Supports the zero-config experience:
// everything required can arrive through the environment.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables -> CLI flags.
// The result is validated for internal consistency but not for required
// credentials; callers that talk to the remote service also call
// ValidateRemote.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{
		SourceProject: cfg.SourceProject,
		DestProject:   cfg.DestProject,
		Session:       cfg.Session,
		BatchSize:     cfg.BatchSize,
		ExcludeMarker: cfg.ExcludeMarker,
		StateDir:      cfg.StateDir,
		LogLevel:      cfg.LogLevel,
		BaseURL:       cfg.BaseURL,
	}

	pause, err := time.ParseDuration(cfg.BatchPause)
	if err != nil {
		return nil, fmt.Errorf("invalid batch_pause %q: %w", cfg.BatchPause, err)
	}

	resolved.BatchPause = pause

	// Environment overrides.
	if env.Session != "" {
		resolved.Session = env.Session
	}

	if env.SourceProject != "" {
		resolved.SourceProject = env.SourceProject
	}

	if env.DestProject != "" {
		resolved.DestProject = env.DestProject
	}

	if env.StateDir != "" {
		resolved.StateDir = env.StateDir
	}

	// CLI overrides (highest priority).
	if cli.SourceProject != "" {
		resolved.SourceProject = cli.SourceProject
	}

	if cli.DestProject != "" {
		resolved.DestProject = cli.DestProject
	}

	if cli.BatchSize != 0 {
		resolved.BatchSize = cli.BatchSize
	}

	if err := Validate(resolved); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return resolved, nil
}
