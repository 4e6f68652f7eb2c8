package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vk/hetgrid/internal/device"
)

// SlowQueue wraps a device queue, delaying retirement to widen the
// window in which a broken barrier could fire early.
type SlowQueue struct {
	Inner device.Queue
	Delay time.Duration

	// RetiredAt records when the delayed submission finally retired.
	RetiredAt atomic.Int64
}

// Name implements device.Queue.
func (q *SlowQueue) Name() string { return "slow+" + q.Inner.Name() }

// Submit implements device.Queue, sleeping before delegating.
func (q *SlowQueue) Submit(ctx context.Context, n int, kernel device.Kernel) error {
	select {
	case <-time.After(q.Delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	err := q.Inner.Submit(ctx, n, kernel)
	q.RetiredAt.Store(time.Now().UnixNano())
	return err
}

// FaultyQueue fails every submission with the given error without
// executing the kernel.
type FaultyQueue struct {
	Err error
}

// Name implements device.Queue.
func (q *FaultyQueue) Name() string { return "faulty" }

// Submit implements device.Queue.
func (q *FaultyQueue) Submit(ctx context.Context, n int, kernel device.Kernel) error {
	return q.Err
}
