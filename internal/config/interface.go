package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads a run file from path and translates it into the
	// format-agnostic model, applying defaults and validations.
	Load(ctx context.Context, path string) (*Model, error)
}
