package flow

import (
	"context"

	"github.com/vk/hetgrid/internal/ctxlog"
)

// SourceNode emits work items until its body reports exhaustion. It
// stays inert until Activate is called, so the rest of the graph can
// be wired first.
type SourceNode struct {
	g    *Graph
	body func() (float64, bool)
	outs []chan<- float64
}

// NewSource creates a source node. The body returns the next item and
// true, or false once the stream is exhausted.
func NewSource(g *Graph, body func() (float64, bool)) *SourceNode {
	return &SourceNode{g: g, body: body}
}

// Connect adds a successor edge. Every emitted item is delivered to
// every connected edge. Connect must not be called after Activate.
func (n *SourceNode) Connect(edge chan<- float64) {
	n.outs = append(n.outs, edge)
}

// Activate starts pumping items. Successor edges are closed once the
// body signals exhaustion so downstream loops can quiesce.
func (n *SourceNode) Activate() {
	n.g.track(func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		defer func() {
			for _, out := range n.outs {
				close(out)
			}
		}()
		for {
			item, ok := n.body()
			if !ok {
				logger.Debug("Source exhausted.")
				return nil
			}
			logger.Debug("Source emitting item.", "item", item, "successors", len(n.outs))
			for _, out := range n.outs {
				if err := send(ctx, out, item); err != nil {
					return err
				}
			}
		}
	})
}

// FunctionNode runs a synchronous body for each input item and
// forwards the returned completion token to its successor. The body
// occupies a pool slot while it runs.
type FunctionNode struct {
	g    *Graph
	in   chan float64
	out  chan<- float64
	body func(ctx context.Context, item float64) (float64, error)
}

// NewFunction creates a function node wired to the given successor
// edge and starts its message loop.
func NewFunction(g *Graph, out chan<- float64, body func(ctx context.Context, item float64) (float64, error)) *FunctionNode {
	n := &FunctionNode{
		g:    g,
		in:   make(chan float64, 1),
		out:  out,
		body: body,
	}
	g.track(n.loop)
	return n
}

// In returns the node's input edge for upstream wiring.
func (n *FunctionNode) In() chan<- float64 { return n.in }

func (n *FunctionNode) loop(ctx context.Context) error {
	for {
		select {
		case item, ok := <-n.in:
			if !ok {
				return nil
			}
			err := n.g.run(func(ctx context.Context) error {
				token, err := n.body(ctx, item)
				if err != nil {
					return err
				}
				return send(ctx, n.out, token)
			})
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
}

// SinkNode consumes one joined token pair and runs the terminal body.
// The graph is single-shot, so the sink retires after its first pair.
type SinkNode struct {
	g    *Graph
	in   chan [2]float64
	body func(ctx context.Context, pair [2]float64) error
}

// NewSink creates a sink node and starts its message loop.
func NewSink(g *Graph, body func(ctx context.Context, pair [2]float64) error) *SinkNode {
	n := &SinkNode{
		g:    g,
		in:   make(chan [2]float64, 1),
		body: body,
	}
	g.track(n.loop)
	return n
}

// In returns the sink's input edge for upstream wiring.
func (n *SinkNode) In() chan<- [2]float64 { return n.in }

func (n *SinkNode) loop(ctx context.Context) error {
	select {
	case pair := <-n.in:
		return n.g.run(func(ctx context.Context) error {
			return n.body(ctx, pair)
		})
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}
