package batch

import (
	"context"
	"sync"
)

type workItem struct {
	seq  int
	unit Unit
}

type workResult struct {
	seq    int
	result UnitResult
}

// runUnits processes units on a bounded worker pool and returns results in
// input order regardless of completion order.
func (r *Runner) runUnits(ctx context.Context, units []Unit) []UnitResult {
	workers := r.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(units) {
		workers = len(units)
	}

	items := make(chan workItem)
	resultCh := make(chan workResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				resultCh <- workResult{seq: item.seq, result: r.processUnit(ctx, item.unit)}
			}
		}()
	}

	go func() {
		defer close(items)
		for i, u := range units {
			select {
			case items <- workItem{seq: i, unit: u}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	ordered := make([]UnitResult, len(units))
	seen := make([]bool, len(units))
	for res := range resultCh {
		ordered[res.seq] = res.result
		seen[res.seq] = true
	}

	// Units never dispatched because the context was cancelled still get a
	// summary row.
	for i := range ordered {
		if !seen[i] {
			ordered[i] = UnitResult{Unit: units[i], Err: ctx.Err()}
		}
	}
	return ordered
}
