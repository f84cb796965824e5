package engine

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/stratalog-io/welldex/types"
)

// WellResult is the computed pipeline output of one well.
// Exactly one of Err or the four stage outputs is populated.
type WellResult struct {
	// WellID is the owning well.
	WellID string
	// Completion is the resolved interval set.
	Completion *types.WellCompletion
	// Design is the wellbore completion architecture.
	Design *types.WellboreDesign
	// Index is the productivity index computation.
	Index *types.WellIndexResult
	// Control is the solver-facing control record.
	Control *types.WellControlRecord
	// Err is the first stage error, nil on success.
	Err error
}

// WellWorker computes the full pipeline pass for one well.
type WellWorker func(ctx context.Context, well *types.Well) *WellResult

// FanOut executes a worker over every well with bounded parallelism.
// Workers perform pure computation only; record emission happens after
// the pool drains, in well-ID order, so output is deterministic
// regardless of scheduling.
type FanOut struct {
	parallel int
	worker   WellWorker

	succeeded atomic.Int64
	failed    atomic.Int64

	resultsMu sync.Mutex
	results   map[string]*WellResult
}

// NewFanOut creates a fan-out pool. A parallel value below 1 defaults
// to the CPU count.
func NewFanOut(parallel int, worker WellWorker) *FanOut {
	if parallel < 1 {
		parallel = runtime.NumCPU()
	}
	return &FanOut{
		parallel: parallel,
		worker:   worker,
		results:  make(map[string]*WellResult),
	}
}

// Run dispatches every well to the worker pool and blocks until all
// workers finish. Wells dispatched after context cancellation record a
// canceled result instead of running the worker.
func (f *FanOut) Run(ctx context.Context, wells []types.Well) {
	sem := make(chan struct{}, f.parallel)
	var wg sync.WaitGroup

	for i := range wells {
		well := &wells[i]

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			f.record(&WellResult{WellID: well.ID, Err: ctx.Err()})
			continue
		}

		wg.Add(1)
		go func(w *types.Well) {
			defer wg.Done()
			defer func() { <-sem }()
			f.record(f.worker(ctx, w))
		}(well)
	}

	wg.Wait()
}

// record stores one result and updates the success/failure counters.
func (f *FanOut) record(result *WellResult) {
	if result.Err != nil {
		f.failed.Add(1)
	} else {
		f.succeeded.Add(1)
	}

	f.resultsMu.Lock()
	f.results[result.WellID] = result
	f.resultsMu.Unlock()
}

// Results returns all well results ordered by well ID.
func (f *FanOut) Results() []*WellResult {
	f.resultsMu.Lock()
	defer f.resultsMu.Unlock()

	out := make([]*WellResult, 0, len(f.results))
	for _, r := range f.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WellID < out[j].WellID })
	return out
}

// Counts returns the number of succeeded and failed wells.
func (f *FanOut) Counts() (succeeded, failed int64) {
	return f.succeeded.Load(), f.failed.Load()
}
