package config

import (
	"errors"
	"fmt"
)

// Validation sentinels for required remote inputs. Absence of any is a
// fatal startup error before any network activity.
var (
	ErrMissingSession = errors.New("session credential is required (set " + EnvSession + ")")
	ErrMissingSource  = errors.New("source project is required (set " + EnvSourceProject + " or source_project)")
	ErrMissingDest    = errors.New("destination project is required (set " + EnvDestProject + " or dest_project)")
)

// validLogLevels are the accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks the internal consistency of a resolved configuration.
// Remote credentials are checked separately by ValidateRemote because
// local-only commands (status) do not need them.
func Validate(r *Resolved) error {
	if r.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", r.BatchSize)
	}

	if r.BatchPause < 0 {
		return fmt.Errorf("batch_pause must not be negative, got %s", r.BatchPause)
	}

	if r.LogLevel != "" && !validLogLevels[r.LogLevel] {
		return fmt.Errorf("invalid log_level %q (use debug, info, warn, or error)", r.LogLevel)
	}

	return nil
}

// ValidateRemote checks that everything needed to talk to the remote
// service is present: session credential, source project, and destination
// project.
func ValidateRemote(r *Resolved) error {
	if r.Session == "" {
		return ErrMissingSession
	}

	if r.SourceProject == "" {
		return ErrMissingSource
	}

	if r.DestProject == "" {
		return ErrMissingDest
	}

	if r.SourceProject == r.DestProject {
		return fmt.Errorf("source and destination project are both %q; refusing to sync a project onto itself", r.SourceProject)
	}

	return nil
}
