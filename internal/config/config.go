// Package config loads and resolves scrapsync configuration from the
// override chain: defaults -> config file -> environment -> CLI flags.
package config

import "time"

// Default values for configuration options. These are the "layer 0" of the
// override chain and work without any config file.
const (
	defaultBatchSize     = 100
	defaultBatchPause    = "1s"
	defaultExcludeMarker = "[private.icon]"
	defaultLogLevel      = "info"
)

// Config mirrors the TOML config file. The session credential can also live
// here, but the environment variable is the recommended place for it.
type Config struct {
	SourceProject string `toml:"source_project"`
	DestProject   string `toml:"dest_project"`
	Session       string `toml:"session"`
	BatchSize     int    `toml:"batch_size"`
	BatchPause    string `toml:"batch_pause"`
	ExcludeMarker string `toml:"exclude_marker"`
	StateDir      string `toml:"state_dir"`
	LogLevel      string `toml:"log_level"`
	BaseURL       string `toml:"base_url"`
}

// DefaultConfig returns a Config populated with all default values.
// Used as the starting point for TOML decoding (so unset fields retain
// defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:     defaultBatchSize,
		BatchPause:    defaultBatchPause,
		ExcludeMarker: defaultExcludeMarker,
		LogLevel:      defaultLogLevel,
	}
}

// Resolved is the effective configuration after the full override chain,
// with durations parsed and paths defaulted.
type Resolved struct {
	SourceProject string
	DestProject   string
	Session       string
	BatchSize     int
	BatchPause    time.Duration
	ExcludeMarker string
	StateDir      string
	LogLevel      string
	BaseURL       string
}

// CheckpointPath returns the checkpoint file location within the state dir.
func (r *Resolved) CheckpointPath() string {
	return stateFilePath(r.StateDir, "checkpoint")
}

// HistoryPath returns the run history database location within the state dir.
func (r *Resolved) HistoryPath() string {
	return stateFilePath(r.StateDir, "history.db")
}
