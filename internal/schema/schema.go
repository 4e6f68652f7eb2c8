// Package schema declares the HCL block shapes accepted in run files.
package schema

import "github.com/hashicorp/hcl/v2"

// Root is the top level of a run file.
type Root struct {
	Runs   []*Run   `hcl:"run,block"`
	Remain hcl.Body `hcl:",remain"`
}

// Run represents a `run` block describing one offload decision. The
// scalar attributes stay in the raw body; the loader evaluates them
// one by one so it can apply defaults and reject unknown names.
type Run struct {
	Name   string   `hcl:"name,label"`
	Device *Device  `hcl:"device,block"`
	Body   hcl.Body `hcl:",remain"`
}

// Device represents the optional `device` block within a run.
type Device struct {
	Body hcl.Body `hcl:",remain"`
}
