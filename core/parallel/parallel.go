// Package parallel provides batch-parallel execution helpers for element-wise
// matrix work. Layers split a batch of rows across CPU cores and run the same
// kernel on each contiguous range.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize splits items across the available CPU cores and calls fn once
// per worker with the half-open range [start, end) it owns. fn must be safe
// to call concurrently on disjoint ranges.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}

	// Ceiling division so every item is covered.
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs fn(0, items) sequentially when the batch is
// small and falls back to Parallelize above the threshold. Spawning
// goroutines for a handful of rows costs more than the loop itself.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		if items > 0 {
			fn(0, items)
		}
		return
	}

	Parallelize(items, fn)
}
