package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/hetgrid/internal/config"
	"github.com/vk/hetgrid/internal/ctxlog"
	"github.com/vk/hetgrid/internal/schema"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses the run file at path and translates it into the
// format-agnostic model. Exactly one `run` block is accepted: a
// process evaluates a single offload decision, so a file naming more
// is a configuration error, not a queue of work.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse run file %s: %w", path, diags)
	}

	var root schema.Root
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode run file %s: %w", path, diags)
	}

	switch len(root.Runs) {
	case 0:
		return nil, fmt.Errorf("run file %s defines no run block", path)
	case 1:
		// single-shot, as required
	default:
		return nil, fmt.Errorf("run file %s defines %d run blocks (%q is extra); exactly one is allowed",
			path, len(root.Runs), root.Runs[1].Name)
	}

	run, err := l.translateRun(ctx, root.Runs[0])
	if err != nil {
		return nil, err
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"run", run.Name, "arraySize", run.ArraySize, "ratio", run.Ratio,
		"alpha", run.Alpha, "workers", run.Workers, "lanes", run.Device.Lanes)
	return &config.Model{Run: run}, nil
}

var _ config.Loader = (*Loader)(nil)
