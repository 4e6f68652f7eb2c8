package flow

import (
	"context"

	"github.com/vk/hetgrid/internal/ctxlog"
)

// Gateway is the handshake an AsyncNode body uses to bridge work that
// completes outside the graph's pool back into the graph.
//
// Call order per work item: ReserveWait before the work leaves the
// graph, TryPut with the completion token once the external work has
// retired, then ReleaseWait. The reservation is mandatory: without it
// WaitForAll could return while device work is still in flight. On a
// fault the external worker calls Fail instead of TryPut, and still
// calls ReleaseWait.
type Gateway struct {
	g   *Graph
	out chan<- float64
}

// ReserveWait tells the graph that one asynchronous completion is
// pending, keeping WaitForAll from returning until it is released.
func (gw *Gateway) ReserveWait() {
	gw.g.wg.Add(1)
}

// TryPut delivers the completion token to the node's successor. It
// reports false if the run was aborted before delivery.
func (gw *Gateway) TryPut(token float64) bool {
	return send(gw.g.ctx, gw.out, token) == nil
}

// ReleaseWait retires a reservation made by ReserveWait.
func (gw *Gateway) ReleaseWait() {
	gw.g.wg.Done()
}

// Fail aborts the run: the asynchronous result can no longer be
// trusted and no token will arrive.
func (gw *Gateway) Fail(err error) {
	gw.g.fail(err)
}

// AsyncNode hands each input item to a body that must return without
// blocking. The body schedules its real work on an execution context
// of its own and reports completion later through the Gateway; this
// keeps submission latency on the graph and execution latency off it.
type AsyncNode struct {
	g    *Graph
	in   chan float64
	gw   *Gateway
	body func(ctx context.Context, item float64, gw *Gateway)
}

// NewAsync creates an async node wired to the given successor edge and
// starts its message loop.
func NewAsync(g *Graph, out chan<- float64, body func(ctx context.Context, item float64, gw *Gateway)) *AsyncNode {
	n := &AsyncNode{
		g:    g,
		in:   make(chan float64, 1),
		gw:   &Gateway{g: g, out: out},
		body: body,
	}
	g.track(n.loop)
	return n
}

// In returns the node's input edge for upstream wiring.
func (n *AsyncNode) In() chan<- float64 { return n.in }

func (n *AsyncNode) loop(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for {
		select {
		case item, ok := <-n.in:
			if !ok {
				return nil
			}
			// The body only dispatches, so it holds its slot briefly.
			err := n.g.run(func(ctx context.Context) error {
				n.body(ctx, item, n.gw)
				return nil
			})
			if err != nil {
				return err
			}
			logger.Debug("Async node dispatched item.", "item", item)
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}
