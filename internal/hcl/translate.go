package hcl

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/hetgrid/internal/config"
	"github.com/vk/hetgrid/internal/ctxlog"
	"github.com/vk/hetgrid/internal/schema"
)

// translateRun converts the HCL-specific run schema into the agnostic
// model, starting from the defaults and overriding attribute by
// attribute. Unknown attribute names are rejected so typos fail loudly
// instead of silently running the default.
func (l *Loader) translateRun(ctx context.Context, s *schema.Run) (*config.Run, error) {
	logger := ctxlog.FromContext(ctx)
	run := config.DefaultRun(s.Name)

	attrs, diags := s.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("run %q: %w", s.Name, diags)
	}

	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("run %q: attribute %q: %w", s.Name, name, diags)
		}

		var err error
		switch name {
		case "array_size":
			err = decodeValue(val, cty.Number, &run.ArraySize)
		case "offload_ratio":
			err = decodeValue(val, cty.Number, &run.Ratio)
		case "alpha":
			err = decodeValue(val, cty.Number, &run.Alpha)
		case "workers":
			err = decodeValue(val, cty.Number, &run.Workers)
		case "verbose":
			err = decodeValue(val, cty.Bool, &run.Verbose)
		default:
			err = fmt.Errorf("unsupported attribute (expected one of array_size, offload_ratio, alpha, workers, verbose)")
		}
		if err != nil {
			return nil, fmt.Errorf("run %q: attribute %q: %w", s.Name, name, err)
		}
		logger.Debug("Run attribute decoded.", "run", s.Name, "attribute", name)
	}

	if s.Device != nil {
		if err := l.translateDevice(s.Device, run); err != nil {
			return nil, fmt.Errorf("run %q: device block: %w", s.Name, err)
		}
	}
	return run, nil
}

// translateDevice decodes the optional device block into the run model.
func (l *Loader) translateDevice(s *schema.Device, run *config.Run) error {
	attrs, diags := s.Body.JustAttributes()
	if diags.HasErrors() {
		return fmt.Errorf("%w", diags)
	}

	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("attribute %q: %w", name, diags)
		}

		var err error
		switch name {
		case "lanes":
			err = decodeValue(val, cty.Number, &run.Device.Lanes)
		default:
			err = fmt.Errorf("unsupported attribute (expected lanes)")
		}
		if err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	return nil
}

// decodeValue converts an evaluated cty value to the wanted cty type
// and binds it onto the Go target pointer.
func decodeValue(val cty.Value, want cty.Type, target any) error {
	converted, err := convert.Convert(val, want)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w",
			val.Type().FriendlyName(), want.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, target)
}
