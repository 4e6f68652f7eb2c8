// Package flow implements a small single-shot dependency flow graph:
// a source, synchronous and asynchronous compute nodes, a two-port
// join, and a sink, scheduled onto a bounded slot pool and driven to
// quiescence.
//
// Nodes are wired bottom-up: each constructor takes its successor edge
// and exposes its own input edge, so a fully connected graph exists by
// the time any message can move. A node's message loop costs no pool
// slot while it waits; only node bodies occupy slots. The graph is
// done when every node loop has returned and every outstanding gateway
// reservation has been released; WaitForAll blocks until then.
//
// Failure is graph-wide: the first node body error (or Gateway.Fail)
// cancels the run context, every loop drains out through it, and
// WaitForAll reports the cause. Nothing is retried.
package flow
