// Package device defines the contract for the accelerator's execution
// queue and provides the in-process implementation used by the CLI.
//
// The graph consumes the accelerator strictly through this contract:
// submit a range-parallel kernel, block until the device retires it,
// surface device-side faults to the calling goroutine. Everything
// behind the contract (lane scheduling, buffering, device selection)
// is the queue's own business.
package device

import (
	"context"
	"errors"
)

// ErrDeviceFault marks a device-side failure during kernel execution.
// Once it is returned the numeric output can no longer be trusted;
// callers abort the run rather than continue with partial results.
var ErrDeviceFault = errors.New("device fault")

// Kernel is a range-parallel operation over [0, n). The device invokes
// it once per index, in any order, possibly concurrently across lanes.
type Kernel func(i int)

// Queue is the accelerator's execution queue. Submit schedules kernel
// over [0, n) and blocks the calling goroutine until the device retires
// the work or faults. The queue makes no asynchrony promises of its
// own: callers that must not block park the Submit call on a goroutine
// outside their scheduler.
type Queue interface {
	// Name identifies the queue implementation for logs.
	Name() string

	// Submit runs kernel over [0, n) and blocks until retirement.
	// A returned error is always a fault: either the context was
	// canceled before retirement or the error wraps ErrDeviceFault.
	Submit(ctx context.Context, n int, kernel Kernel) error
}
