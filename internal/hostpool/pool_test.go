package hostpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hetgrid/internal/partition"
)

func TestParallelFor_VisitsEveryIndexOnce(t *testing.T) {
	t.Parallel()

	const n = 1000
	counts := make([]int32, n)

	err := ParallelFor(4, partition.Range{Start: 0, End: n}, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&counts[i], 1)
		}
	})
	require.NoError(t, err)

	for i, c := range counts {
		assert.Equal(t, int32(1), c, "index %d visited %d times", i, c)
	}
}

func TestParallelFor_SubRange(t *testing.T) {
	t.Parallel()

	var visited atomic.Int64
	err := ParallelFor(8, partition.Range{Start: 100, End: 356}, func(lo, hi int) {
		require.GreaterOrEqual(t, lo, 100)
		require.LessOrEqual(t, hi, 356)
		visited.Add(int64(hi - lo))
	})
	require.NoError(t, err)
	assert.Equal(t, int64(256), visited.Load())
}

func TestParallelFor_EmptyRangeIsNoop(t *testing.T) {
	t.Parallel()

	called := false
	err := ParallelFor(4, partition.Range{Start: 5, End: 5}, func(lo, hi int) {
		called = true
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestParallelFor_WorkerPanicBecomesError(t *testing.T) {
	t.Parallel()

	err := ParallelFor(2, partition.Range{Start: 0, End: 200}, func(lo, hi int) {
		if lo == 0 {
			panic("boom")
		}
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker panic")
	assert.Contains(t, err.Error(), "boom")
}

func TestParallelFor_ClampsWorkerCount(t *testing.T) {
	t.Parallel()

	var visited atomic.Int64
	err := ParallelFor(0, partition.Range{Start: 0, End: 10}, func(lo, hi int) {
		visited.Add(int64(hi - lo))
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), visited.Load())
}
