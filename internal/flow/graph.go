package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/vk/hetgrid/internal/ctxlog"
)

// Graph tracks every node loop and asynchronous reservation of one
// flow graph and bounds how many node bodies run at once.
type Graph struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup
	slots  chan struct{}
}

// New creates a graph whose node bodies run on at most maxParallel
// slots. Callers size the pool as worker count plus one, keeping a
// spare slot for an async branch that parks while its device work is
// in flight.
func New(ctx context.Context, maxParallel int) *Graph {
	if maxParallel < 1 {
		maxParallel = 1
	}
	runCtx, cancel := context.WithCancelCause(ctx)
	return &Graph{
		ctx:    runCtx,
		cancel: cancel,
		slots:  make(chan struct{}, maxParallel),
	}
}

// Context returns the graph's run context. It is canceled when any
// node fails or the parent context is canceled.
func (g *Graph) Context() context.Context { return g.ctx }

// WaitForAll blocks until every node loop has returned and every
// gateway reservation has been released, then reports the failure that
// aborted the run, if any.
func (g *Graph) WaitForAll() error {
	g.wg.Wait()
	err := context.Cause(g.ctx)
	g.cancel(context.Canceled)
	return err
}

// fail aborts the whole run with cause err. The first cause wins.
func (g *Graph) fail(err error) {
	if err == nil {
		return
	}
	logger := ctxlog.FromContext(g.ctx)
	logger.Error("Graph run aborted.", "error", err)
	g.cancel(err)
}

// track registers a node loop that must return before WaitForAll does.
// A loop error aborts the run unless it is merely the already-recorded
// abort cause draining back out.
func (g *Graph) track(loop func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := loop(g.ctx); err != nil && !errors.Is(err, context.Cause(g.ctx)) {
			g.fail(err)
		}
	}()
}

// run executes one node body on a pool slot, blocking until a slot is
// free. Bodies observe cancellation through the passed context.
func (g *Graph) run(body func(ctx context.Context) error) error {
	select {
	case g.slots <- struct{}{}:
	case <-g.ctx.Done():
		return context.Cause(g.ctx)
	}
	defer func() { <-g.slots }()
	return body(g.ctx)
}

// send delivers a message on an edge, giving up if the run is aborted
// first.
func send[T any](ctx context.Context, edge chan<- T, msg T) error {
	select {
	case edge <- msg:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
