package app

import (
	"context"
	"fmt"

	"github.com/vk/hetgrid/internal/ctxlog"
	"github.com/vk/hetgrid/internal/dispatch"
)

// Run executes the single offload decision described by the loaded
// model and renders the outcome. A device or host worker fault aborts
// the run and is returned as an error; a verification mismatch is a
// reported verdict, not an error.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	run := a.model.Run
	a.logger.Debug("App.Run method started.", "run", run.Name)

	a.logger.Info("Starting heterogeneous dispatch.",
		"run", run.Name,
		"arraySize", run.ArraySize,
		"ratio", run.Ratio,
		"alpha", run.Alpha,
		"workers", run.Workers,
		"device", a.queue.Name(),
	)

	d := dispatch.New(a.queue)
	report, err := d.Run(ctx, dispatch.Params{
		ArraySize: run.ArraySize,
		Ratio:     run.Ratio,
		Alpha:     run.Alpha,
		Workers:   run.Workers,
	})
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.report = report
	a.logger.Info("Dispatch finished.", "correct", report.Verdict.Correct)

	a.render(report, run.Verbose)
	a.logger.Debug("App.Run method finished.")
	return nil
}
