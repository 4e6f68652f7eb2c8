package flow

import (
	"context"

	"github.com/vk/hetgrid/internal/ctxlog"
)

// JoinNode pairs one token from each of its two ports and forwards the
// pair downstream exactly once. Tokens are matched structurally by
// port position, never by value, and arrival order is unconstrained:
// the two producers run on independent timelines.
type JoinNode struct {
	g     *Graph
	port0 chan float64
	port1 chan float64
	out   chan<- [2]float64
}

// NewJoin creates a join node wired to the given successor edge and
// starts its message loop.
func NewJoin(g *Graph, out chan<- [2]float64) *JoinNode {
	n := &JoinNode{
		g:     g,
		port0: make(chan float64, 1),
		port1: make(chan float64, 1),
		out:   out,
	}
	g.track(n.loop)
	return n
}

// Port0 is the input edge paired into index 0 of the output tuple.
func (n *JoinNode) Port0() chan<- float64 { return n.port0 }

// Port1 is the input edge paired into index 1 of the output tuple.
func (n *JoinNode) Port1() chan<- float64 { return n.port1 }

func (n *JoinNode) loop(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	var (
		pair         [2]float64
		have0, have1 bool
	)
	// Each port is nilled out after its token arrives: one token per
	// port per cycle, and the pair never fires with a port missing.
	p0, p1 := n.port0, n.port1
	for !(have0 && have1) {
		select {
		case token := <-p0:
			pair[0], have0 = token, true
			p0 = nil
			logger.Debug("Join received token.", "port", 0)
		case token := <-p1:
			pair[1], have1 = token, true
			p1 = nil
			logger.Debug("Join received token.", "port", 1)
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	logger.Debug("Join forwarding completed pair.")
	return send(ctx, n.out, pair)
}
