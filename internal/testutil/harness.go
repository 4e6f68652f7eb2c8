// Package testutil provides the shared harness and device doubles for
// app-level tests.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/hetgrid/internal/app"
	"github.com/vk/hetgrid/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// RunResult holds the outcomes of a harness run.
type RunResult struct {
	Output string
	Err    error
	App    *app.App
}

// RunTriad provides a standardized harness: it writes hclSrc to a
// temporary run file, builds an App around it with any injected
// options, executes the run, and captures all output.
func RunTriad(t *testing.T, hclSrc string, opts ...app.Option) *RunResult {
	t.Helper()

	tmpDir := t.TempDir()
	runPath := filepath.Join(tmpDir, "run.hcl")
	require.NoError(t, os.WriteFile(runPath, []byte(hclSrc), 0600))

	appConfig, err := app.NewConfig(app.Config{
		RunPath:   runPath,
		LogFormat: "text",
		LogLevel:  "debug",
	})
	require.NoError(t, err)

	out := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(out, appConfig, hcl.NewLoader(), opts...)
	}()

	if panicErr != nil {
		return &RunResult{
			Output: out.String(),
			Err:    fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(context.Background())

	if os.Getenv("HETGRID_TEST_LOGS") == "true" {
		t.Logf("--- Full Output for %s ---\n%s", t.Name(), out.String())
	}

	return &RunResult{
		Output: out.String(),
		Err:    runErr,
		App:    testApp,
	}
}
