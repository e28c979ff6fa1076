package config

import "os"

// Environment variable names for overrides. The session cookie is a
// credential and normally arrives only through the environment.
const (
	EnvConfig        = "SCRAPSYNC_CONFIG"
	EnvSession       = "SCRAPSYNC_SID"
	EnvSourceProject = "SCRAPSYNC_SOURCE_PROJECT"
	EnvDestProject   = "SCRAPSYNC_DEST_PROJECT"
	EnvStateDir      = "SCRAPSYNC_STATE_DIR"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath    string // SCRAPSYNC_CONFIG: override config file path
	Session       string // SCRAPSYNC_SID: connect.sid session cookie value
	SourceProject string // SCRAPSYNC_SOURCE_PROJECT
	DestProject   string // SCRAPSYNC_DEST_PROJECT
	StateDir      string // SCRAPSYNC_STATE_DIR
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:    os.Getenv(EnvConfig),
		Session:       os.Getenv(EnvSession),
		SourceProject: os.Getenv(EnvSourceProject),
		DestProject:   os.Getenv(EnvDestProject),
		StateDir:      os.Getenv(EnvStateDir),
	}
}
