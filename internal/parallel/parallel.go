// Package parallel provides concurrent aggregation utilities for analyzers.
//
// Aggregation never uses shared mutable state: each worker fills a private
// accumulator over a contiguous chunk of the input, and the accumulators are
// merged afterwards. As long as the merge is associative and commutative
// (counter addition keyed by canonical keys), the result is independent of
// worker count and partitioning.
package parallel

import (
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Reduce processes items on up to workers goroutines, each with a private
// accumulator from newAcc, then folds all accumulators with merge.
// workers <= 0 means runtime.NumCPU().
func Reduce[T, A any](items []T, workers int, newAcc func() A, process func(acc A, item T), merge func(dst, src A)) A {
	dst := newAcc()
	if len(items) == 0 {
		return dst
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(items) {
		workers = len(items)
	}

	chunk := (len(items) + workers - 1) / workers

	var mu sync.Mutex
	accs := make([]A, 0, workers)

	p := pool.New().WithMaxGoroutines(workers)
	for start := 0; start < len(items); start += chunk {
		end := start + chunk
		if end > len(items) {
			end = len(items)
		}
		part := items[start:end]
		p.Go(func() {
			acc := newAcc()
			for i := range part {
				process(acc, part[i])
			}
			mu.Lock()
			accs = append(accs, acc)
			mu.Unlock()
		})
	}
	p.Wait()

	for _, acc := range accs {
		merge(dst, acc)
	}
	return dst
}
