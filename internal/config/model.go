package config

import "fmt"

// Model is the unified, format-agnostic representation of the entire
// application configuration.
type Model struct {
	Run *Run
}

// Run mirrors one `run` block: a single offload decision, executed
// exactly once per process.
type Run struct {
	Name      string
	ArraySize int
	Ratio     float64
	Alpha     float64
	Workers   int
	Verbose   bool
	Device    Device
}

// Device configures the simulated accelerator queue.
type Device struct {
	Lanes int
}

// DefaultRun returns a run populated with the reference defaults:
// sixteen elements, an even offload split, alpha one half, four host
// workers, one device lane.
func DefaultRun(name string) *Run {
	return &Run{
		Name:      name,
		ArraySize: 16,
		Ratio:     0.5,
		Alpha:     0.5,
		Workers:   4,
		Verbose:   false,
		Device:    Device{Lanes: 1},
	}
}

// Validate checks the run's value ranges.
func (r *Run) Validate() error {
	if r.ArraySize < 0 {
		return fmt.Errorf("run %q: array_size must be >= 0, got %d", r.Name, r.ArraySize)
	}
	if r.Ratio < 0 || r.Ratio > 1 {
		return fmt.Errorf("run %q: offload_ratio must be within [0,1], got %g", r.Name, r.Ratio)
	}
	if r.Workers < 1 {
		return fmt.Errorf("run %q: workers must be >= 1, got %d", r.Name, r.Workers)
	}
	if r.Device.Lanes < 1 {
		return fmt.Errorf("run %q: device lanes must be >= 1, got %d", r.Name, r.Device.Lanes)
	}
	return nil
}
