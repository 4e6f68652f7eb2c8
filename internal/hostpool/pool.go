// Package hostpool runs a data-parallel loop over an index range on
// the host, fanning out to a bounded set of worker goroutines.
package hostpool

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/vk/hetgrid/internal/partition"
)

// minGrain is the smallest chunk worth handing to a worker; below this
// the goroutine overhead dominates the loop body.
const minGrain = 64

// ParallelFor splits r into contiguous chunks and runs body on each
// concurrently, using at most workers goroutines. It blocks until every
// chunk has finished. Chunk boundaries are an implementation detail;
// callers may only rely on every index in r being visited exactly once.
//
// A panic in any worker is captured and returned as an error. The loop
// is never retried: a worker fault is fatal to the whole run.
func ParallelFor(workers int, r partition.Range, body func(lo, hi int)) error {
	n := r.Len()
	if n == 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (n + workers - 1) / workers
	if chunk < minGrain {
		chunk = minGrain
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		workerErr error
	)
	for lo := r.Start; lo < r.End; lo += chunk {
		hi := lo + chunk
		if hi > r.End {
			hi = r.End
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					mu.Lock()
					if workerErr == nil {
						workerErr = fmt.Errorf("worker panic on chunk [%d,%d): %v\n%s", lo, hi, rec, debug.Stack())
					}
					mu.Unlock()
				}
			}()
			body(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
	return workerErr
}
