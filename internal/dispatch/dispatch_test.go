package dispatch_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/hetgrid/internal/device"
	"github.com/vk/hetgrid/internal/dispatch"
	"github.com/vk/hetgrid/internal/testutil"
)

func run(t *testing.T, q device.Queue, params dispatch.Params) (*dispatch.Report, error) {
	t.Helper()
	return dispatch.New(q).Run(context.Background(), params)
}

func TestRun_SplitsAndVerifies(t *testing.T) {
	t.Parallel()

	report, err := run(t, device.NewSim(device.WithLanes(2)), dispatch.Params{
		ArraySize: 16,
		Ratio:     0.5,
		Alpha:     0.5,
		Workers:   4,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, report.AccelRange.Start)
	assert.Equal(t, 8, report.AccelRange.End)
	assert.Equal(t, 8, report.HostRange.Start)
	assert.Equal(t, 16, report.HostRange.End)

	require.True(t, report.Verdict.Correct)
	// Ramp inputs with alpha 0.5: c[i] = i + 0.5*i = 1.5*i.
	for i, got := range report.Verdict.Output {
		assert.Equal(t, 1.5*float32(i), got, "index %d", i)
	}
}

func TestRun_BoundaryRatios(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		size       int
		ratio      float64
		accelCount int
	}{
		{name: "all_host", size: 16, ratio: 0, accelCount: 0},
		{name: "all_device", size: 16, ratio: 1, accelCount: 16},
		{name: "empty_array", size: 0, ratio: 0.5, accelCount: 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			report, err := run(t, device.NewSim(), dispatch.Params{
				ArraySize: tc.size,
				Ratio:     tc.ratio,
				Alpha:     0.5,
				Workers:   4,
			})
			require.NoError(t, err)

			assert.Equal(t, tc.accelCount, report.AccelRange.Len())
			assert.Equal(t, tc.size-tc.accelCount, report.HostRange.Len())
			assert.True(t, report.Verdict.Correct)
			assert.Len(t, report.Verdict.Output, tc.size)
		})
	}
}

// Re-running with identical inputs must yield a bitwise-identical
// output vector.
func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	params := dispatch.Params{ArraySize: 1024, Ratio: 0.37, Alpha: 2.25, Workers: 8}

	first, err := run(t, device.NewSim(device.WithLanes(4)), params)
	require.NoError(t, err)
	second, err := run(t, device.NewSim(device.WithLanes(4)), params)
	require.NoError(t, err)

	require.True(t, first.Verdict.Correct)
	require.True(t, second.Verdict.Correct)
	assert.Empty(t, cmp.Diff(first.Verdict.Output, second.Verdict.Output))
}

// A slow device must not let the join fire early: the verdict is still
// computed from both completed partitions.
func TestRun_SlowDeviceStillCorrect(t *testing.T) {
	t.Parallel()

	slow := &testutil.SlowQueue{Inner: device.NewSim(), Delay: 80 * time.Millisecond}

	start := time.Now()
	report, err := run(t, slow, dispatch.Params{
		ArraySize: 64,
		Ratio:     0.5,
		Alpha:     0.5,
		Workers:   4,
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond,
		"run returned before the device retired its work")
	assert.NotZero(t, slow.RetiredAt.Load())
	assert.True(t, report.Verdict.Correct,
		"verdict must never be based on a stale or missing device partition")
}

func TestRun_DeviceFaultAbortsWithoutReport(t *testing.T) {
	t.Parallel()

	faulty := &testutil.FaultyQueue{Err: fmt.Errorf("kernel launch: %w", device.ErrDeviceFault)}

	report, err := run(t, faulty, dispatch.Params{
		ArraySize: 16,
		Ratio:     0.5,
		Alpha:     0.5,
		Workers:   4,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, device.ErrDeviceFault)
	assert.Contains(t, err.Error(), "accelerator branch")
	assert.Nil(t, report, "no partial verdict may be emitted after a device fault")
}

func TestRun_LargeArrayAcrossManyChunks(t *testing.T) {
	t.Parallel()

	report, err := run(t, device.NewSim(device.WithLanes(3)), dispatch.Params{
		ArraySize: 100_000,
		Ratio:     0.33,
		Alpha:     1.5,
		Workers:   8,
	})
	require.NoError(t, err)
	require.True(t, report.Verdict.Correct)
}
