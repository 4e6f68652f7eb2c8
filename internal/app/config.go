package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RunPath string // hcl run file

	LogFormat string
	LogLevel  string

	// WorkersOverride replaces the run file's worker count when > 0.
	WorkersOverride int
	// VerboseOverride forces verbose output regardless of the run file.
	VerboseOverride bool
}

// NewConfig validates and returns the application configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RunPath == "" {
		return nil, errors.New("RunPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
