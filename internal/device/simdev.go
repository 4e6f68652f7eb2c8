package device

import (
	"context"
	"fmt"
	"sync"
)

// Sim is an in-process device that executes kernels across a fixed
// number of lanes, each a goroutine striding over the index range. It
// stands in for accelerator hardware while honoring the same queue
// contract: a blocking submit that either retires the whole range or
// reports a fault. A kernel panic on any lane is treated as a device
// fault, never re-raised into the caller.
type Sim struct {
	lanes int
}

// Option configures a Sim.
type Option func(*Sim)

// WithLanes sets the number of concurrent execution lanes.
func WithLanes(n int) Option {
	return func(s *Sim) {
		if n > 0 {
			s.lanes = n
		}
	}
}

// NewSim creates a simulated device queue. The default is a single
// lane: one submission thread's worth of device-side parallelism.
func NewSim(opts ...Option) *Sim {
	s := &Sim{lanes: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Queue.
func (s *Sim) Name() string { return "sim" }

// Submit implements Queue. The calling goroutine blocks until every
// lane has retired its share of the range.
func (s *Sim) Submit(ctx context.Context, n int, kernel Kernel) error {
	if kernel == nil {
		return fmt.Errorf("%w: nil kernel", ErrDeviceFault)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if n <= 0 {
		return nil
	}

	lanes := s.lanes
	if lanes > n {
		lanes = n
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		laneErr error
	)
	for lane := 0; lane < lanes; lane++ {
		wg.Add(1)
		go func(lane int) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					mu.Lock()
					if laneErr == nil {
						laneErr = fmt.Errorf("%w: lane %d: %v", ErrDeviceFault, lane, rec)
					}
					mu.Unlock()
				}
			}()
			for i := lane; i < n; i += lanes {
				kernel(i)
			}
		}(lane)
	}
	wg.Wait()
	return laneErr
}

var _ Queue = (*Sim)(nil)
