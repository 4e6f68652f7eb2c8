package flow

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPair wires source -> {async, function} -> join -> sink and
// returns the channel the sink reports its pair on.
func buildPair(g *Graph, asyncBody func(ctx context.Context, item float64, gw *Gateway), fnBody func(ctx context.Context, item float64) (float64, error)) <-chan [2]float64 {
	fired := make(chan [2]float64, 1)
	sink := NewSink(g, func(ctx context.Context, pair [2]float64) error {
		fired <- pair
		return nil
	})
	join := NewJoin(g, sink.In())
	async := NewAsync(g, join.Port0(), asyncBody)
	fn := NewFunction(g, join.Port1(), fnBody)

	src := NewSource(g, singleShot(0.5))
	src.Connect(async.In())
	src.Connect(fn.In())
	src.Activate()
	return fired
}

// singleShot emits item exactly once, then reports exhaustion.
func singleShot(item float64) func() (float64, bool) {
	emitted := false
	return func() (float64, bool) {
		if emitted {
			return 0, false
		}
		emitted = true
		return item, true
	}
}

func TestSource_SingleShotFanOut(t *testing.T) {
	t.Parallel()

	g := New(context.Background(), 4)
	edge1 := make(chan float64, 1)
	edge2 := make(chan float64, 1)

	src := NewSource(g, singleShot(0.25))
	src.Connect(edge1)
	src.Connect(edge2)
	src.Activate()

	require.NoError(t, g.WaitForAll())

	v1, ok1 := <-edge1
	v2, ok2 := <-edge2
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, 0.25, v1)
	assert.Equal(t, 0.25, v2)

	// Exhaustion closes the edges so downstream loops can quiesce.
	_, open := <-edge1
	assert.False(t, open)
}

func TestJoin_WaitsForBothTokens(t *testing.T) {
	t.Parallel()

	g := New(context.Background(), 4)

	var slowDone atomic.Bool
	fired := buildPair(g,
		func(ctx context.Context, item float64, gw *Gateway) {
			gw.ReserveWait()
			go func() {
				defer gw.ReleaseWait()
				time.Sleep(80 * time.Millisecond)
				slowDone.Store(true)
				gw.TryPut(2)
			}()
		},
		func(ctx context.Context, item float64) (float64, error) {
			return 1, nil
		},
	)

	require.NoError(t, g.WaitForAll())

	select {
	case pair := <-fired:
		assert.True(t, slowDone.Load(), "join fired before the slow branch reported completion")
		assert.Equal(t, [2]float64{2, 1}, pair, "tokens must be matched by port position")
	default:
		t.Fatal("sink never fired")
	}

	// Single-shot: exactly one pair.
	select {
	case <-fired:
		t.Fatal("join fired twice for one work item")
	default:
	}
}

func TestAsync_DoesNotBlockGraph(t *testing.T) {
	t.Parallel()

	g := New(context.Background(), 2)

	release := make(chan struct{})
	var fnDoneAt, dispatchedAt atomic.Int64

	fired := buildPair(g,
		func(ctx context.Context, item float64, gw *Gateway) {
			gw.ReserveWait()
			dispatchedAt.Store(time.Now().UnixNano())
			go func() {
				defer gw.ReleaseWait()
				<-release
				gw.TryPut(1)
			}()
		},
		func(ctx context.Context, item float64) (float64, error) {
			fnDoneAt.Store(time.Now().UnixNano())
			return 1, nil
		},
	)

	// The synchronous branch must complete while the async work is
	// still parked, proving submission never stalled the pool.
	require.Eventually(t, func() bool { return fnDoneAt.Load() != 0 },
		2*time.Second, time.Millisecond, "function branch stalled behind async submission")
	assert.NotZero(t, dispatchedAt.Load())

	close(release)
	require.NoError(t, g.WaitForAll())
	require.Len(t, fired, 1)
}

func TestWaitForAll_BlocksOnReservation(t *testing.T) {
	t.Parallel()

	g := New(context.Background(), 2)
	out := make(chan float64, 1)
	async := NewAsync(g, out, func(ctx context.Context, item float64, gw *Gateway) {
		gw.ReserveWait()
		go func() {
			defer gw.ReleaseWait()
			time.Sleep(60 * time.Millisecond)
			gw.TryPut(1)
		}()
	})

	src := NewSource(g, singleShot(1))
	src.Connect(async.In())
	src.Activate()

	start := time.Now()
	require.NoError(t, g.WaitForAll())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond,
		"WaitForAll returned while a reservation was outstanding")
	assert.Len(t, out, 1)
}

func TestFunctionError_AbortsRun(t *testing.T) {
	t.Parallel()

	g := New(context.Background(), 4)
	boom := errors.New("branch fault")

	fired := buildPair(g,
		func(ctx context.Context, item float64, gw *Gateway) {
			gw.ReserveWait()
			go func() {
				defer gw.ReleaseWait()
				gw.TryPut(1)
			}()
		},
		func(ctx context.Context, item float64) (float64, error) {
			return 0, boom
		},
	)

	err := g.WaitForAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, fired, "sink must not fire after a branch fault")
}

func TestGatewayFail_AbortsRunWithoutToken(t *testing.T) {
	t.Parallel()

	g := New(context.Background(), 4)
	fault := errors.New("device fault")

	fired := buildPair(g,
		func(ctx context.Context, item float64, gw *Gateway) {
			gw.ReserveWait()
			go func() {
				defer gw.ReleaseWait()
				gw.Fail(fault)
			}()
		},
		func(ctx context.Context, item float64) (float64, error) {
			return 1, nil
		},
	)

	err := g.WaitForAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, fault)
	assert.Empty(t, fired, "no verdict may be produced from an untrusted result")
}

func TestWaitForAll_EmptyGraph(t *testing.T) {
	t.Parallel()

	g := New(context.Background(), 1)
	require.NoError(t, g.WaitForAll())
}

func TestParentCancellation_Propagates(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	g := New(ctx, 2)

	out := make(chan float64, 1)
	async := NewAsync(g, out, func(ctx context.Context, item float64, gw *Gateway) {
		gw.ReserveWait()
		go func() {
			defer gw.ReleaseWait()
			<-ctx.Done()
		}()
	})

	src := NewSource(g, singleShot(1))
	src.Connect(async.In())
	src.Activate()

	cancel()
	err := g.WaitForAll()
	assert.ErrorIs(t, err, context.Canceled)
}
