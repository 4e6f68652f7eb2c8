// Package dispatch wires the single-shot heterogeneous triad graph
// and drives it to quiescence: one offload decision fans out to a host
// branch and an accelerator branch, their completion tokens are
// joined, and the combined output is verified against a serial
// reference.
package dispatch

import (
	"context"
	"fmt"

	"github.com/vk/hetgrid/internal/ctxlog"
	"github.com/vk/hetgrid/internal/device"
	"github.com/vk/hetgrid/internal/flow"
	"github.com/vk/hetgrid/internal/hostpool"
	"github.com/vk/hetgrid/internal/partition"
	"github.com/vk/hetgrid/internal/triad"
)

// completionToken carries no payload beyond "this branch is done"; the
// join matches tokens by port, never by value.
const completionToken = 1.0

// Params describes one offload decision.
type Params struct {
	ArraySize int
	Ratio     float64
	Alpha     float64
	Workers   int
}

// Report is the observable outcome of one completed run. A run that
// aborts on a fault produces no report at all: an untrusted output is
// never verified.
type Report struct {
	AccelRange partition.Range
	HostRange  partition.Range
	Verdict    triad.Verdict
}

// Dispatcher executes offload decisions against a device queue.
type Dispatcher struct {
	queue device.Queue
}

// New creates a dispatcher bound to the given device queue.
func New(queue device.Queue) *Dispatcher {
	return &Dispatcher{queue: queue}
}

// Run allocates the shared arrays, splits the triad between the host
// pool and the device according to params.Ratio, executes both
// partitions concurrently, and blocks until the graph quiesces.
//
// The partition is computed exactly once, here, and both ranges are
// passed down. The branches write disjoint slices of C, so the
// concurrent writes need no locks.
func (d *Dispatcher) Run(ctx context.Context, params Params) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	arrays := triad.NewArrays(params.ArraySize)
	accelRange, hostRange := partition.Split(params.ArraySize, params.Ratio)
	logger.Info("Partition chosen.",
		"ratio", params.Ratio,
		"accelStart", accelRange.Start, "accelEnd", accelRange.End,
		"hostStart", hostRange.Start, "hostEnd", hostRange.End,
	)

	// One spare slot beyond the worker count, so the async branch's
	// dispatch never contends with the host branch for the pool.
	g := flow.New(ctx, params.Workers+1)

	report := &Report{AccelRange: accelRange, HostRange: hostRange}

	sink := flow.NewSink(g, func(ctx context.Context, pair [2]float64) error {
		ctxlog.FromContext(ctx).Debug("Both branches joined, verifying.", "tokens", pair)
		report.Verdict = triad.Verify(arrays, params.Alpha)
		return nil
	})

	join := flow.NewJoin(g, sink.In())

	accel := flow.NewAsync(g, join.Port0(), func(ctx context.Context, ratio float64, gw *flow.Gateway) {
		gw.ReserveWait()
		// The blocking device wait lives on its own goroutine, outside
		// the graph's pool; only the handoff happens here.
		go d.offload(ctx, gw, arrays, accelRange, params.Alpha)
	})

	host := flow.NewFunction(g, join.Port1(), func(ctx context.Context, ratio float64) (float64, error) {
		ctxlog.FromContext(ctx).Debug("Host branch running.",
			"start", hostRange.Start, "end", hostRange.End, "workers", params.Workers)
		err := hostpool.ParallelFor(params.Workers, hostRange, func(lo, hi int) {
			arrays.Compute(params.Alpha, partition.Range{Start: lo, End: hi})
		})
		if err != nil {
			return 0, fmt.Errorf("host branch: %w", err)
		}
		return completionToken, nil
	})

	src := flow.NewSource(g, singleShot(params.Ratio))
	src.Connect(accel.In())
	src.Connect(host.In())
	src.Activate()

	if err := g.WaitForAll(); err != nil {
		return nil, err
	}
	return report, nil
}

// offload performs the accelerator branch's real work: copy-in of the
// offloaded slices, a blocking submit to the device queue, copy-out,
// then the gateway handshake. A device fault aborts the run; the
// partially written staging buffer is discarded, never copied back.
func (d *Dispatcher) offload(ctx context.Context, gw *flow.Gateway, arrays *triad.Arrays, r partition.Range, alpha float64) {
	defer gw.ReleaseWait()

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Accelerator branch submitting.",
		"start", r.Start, "end", r.End, "device", d.queue.Name())

	n := r.Len()
	aBuf := make([]float32, n)
	bBuf := make([]float32, n)
	cBuf := make([]float32, n)
	copy(aBuf, arrays.A[r.Start:r.End])
	copy(bBuf, arrays.B[r.Start:r.End])

	coeff := float32(alpha)
	err := d.queue.Submit(ctx, n, func(i int) {
		cBuf[i] = aBuf[i] + coeff*bBuf[i]
	})
	if err != nil {
		gw.Fail(fmt.Errorf("accelerator branch: %w", err))
		return
	}

	copy(arrays.C[r.Start:r.End], cBuf)
	logger.Debug("Accelerator branch retired.", "elements", n)
	gw.TryPut(completionToken)
}

// singleShot returns a source body that emits ratio exactly once and
// then reports exhaustion.
func singleShot(ratio float64) func() (float64, bool) {
	emitted := false
	return func() (float64, bool) {
		if emitted {
			return 0, false
		}
		emitted = true
		return ratio, true
	}
}
