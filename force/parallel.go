package force

import (
	"runtime"
	"sync"
)

// parallelFor splits [0, n) into runtime.GOMAXPROCS(0) contiguous chunks and
// runs fn(i) for each index, one goroutine per chunk. fn must only write to
// state indexed by i, matching this stage's per-particle write contract.
func parallelFor(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(i0, i1 int) {
			defer wg.Done()
			for i := i0; i < i1; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
