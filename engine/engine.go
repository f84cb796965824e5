// Package engine orchestrates a single completion run.
//
// A run is one pass over one deck: per-well interval resolution,
// wellbore design, productivity index computation, and control record
// assembly, fanned out over a bounded worker pool, followed by record
// emission through the configured policy into the store sink. Workers
// are pure computation; all persistence happens after the pool drains,
// in well-ID order, so identical inputs always produce identical
// persisted output.
package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/stratalog-io/welldex/adapter"
	"github.com/stratalog-io/welldex/control"
	"github.com/stratalog-io/welldex/deck"
	"github.com/stratalog-io/welldex/design"
	"github.com/stratalog-io/welldex/grid"
	"github.com/stratalog-io/welldex/interval"
	"github.com/stratalog-io/welldex/log"
	"github.com/stratalog-io/welldex/metrics"
	"github.com/stratalog-io/welldex/params"
	"github.com/stratalog-io/welldex/policy"
	"github.com/stratalog-io/welldex/solver"
	"github.com/stratalog-io/welldex/store"
	"github.com/stratalog-io/welldex/types"
	"github.com/stratalog-io/welldex/wellindex"
)

// flushTimeout bounds the best-effort policy flush on all termination paths.
const flushTimeout = 30 * time.Second

// RunConfig configures a single run.
type RunConfig struct {
	// Deck is the validated input deck.
	Deck *deck.Deck
	// Params is the engineering parameter set.
	Params *params.Set
	// RunMeta is the run identity and lineage metadata.
	RunMeta *types.RunMeta
	// Policy is the record-emission policy.
	Policy policy.Policy
	// Parallel is the worker-pool width. Values below 1 default to the
	// CPU count.
	Parallel int
	// Collector is the metrics collector for this run. May be nil; all
	// Collector methods are nil-safe.
	Collector *metrics.Collector
	// Logger overrides the run logger. When nil a logger is built from
	// RunMeta.
	Logger *log.Logger
	// Adapter receives the run-completed event. Nil disables publication.
	Adapter adapter.Adapter
	// SolverOutput receives the framed control stream on success. Nil
	// disables the solver hand-off.
	SolverOutput io.Writer
	// StoragePath is the storage partition path reported in the
	// run-completed event.
	StoragePath string
	// Day is the UTC calendar day partition value.
	Day string
}

// RunResult is the outcome of one run.
type RunResult struct {
	// RunMeta is the run identity and lineage.
	RunMeta *types.RunMeta
	// Outcome is the run outcome.
	Outcome *types.RunOutcome
	// Duration is the total run duration.
	Duration time.Duration
	// PolicyStats is the final policy statistics snapshot.
	PolicyStats policy.Stats
	// WellsCompleted and WellsFailed count per-well pipeline outcomes.
	WellsCompleted int64
	WellsFailed    int64
	// Controls holds the assembled control records, ordered by well ID.
	// Empty when the run aborted before assembly.
	Controls []*types.WellControlRecord
	// Summary is the completion summary, nil when the run aborted on a
	// configuration error.
	Summary *CompletionSummary
}

// Runner orchestrates a single run.
type Runner struct {
	config    *RunConfig
	logger    *log.Logger
	startTime time.Time
}

// NewRunner creates a run orchestrator. Returns an error when run
// metadata is invalid or a required collaborator is absent.
func NewRunner(config *RunConfig) (*Runner, error) {
	if err := config.RunMeta.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run metadata: %w", err)
	}
	if config.Deck == nil {
		return nil, fmt.Errorf("run %s: deck is required", config.RunMeta.RunID)
	}
	if config.Params == nil {
		return nil, fmt.Errorf("run %s: parameter set is required", config.RunMeta.RunID)
	}
	if config.Policy == nil {
		return nil, fmt.Errorf("run %s: policy is required", config.RunMeta.RunID)
	}

	logger := config.Logger
	if logger == nil {
		logger = log.NewLogger(config.RunMeta)
	}

	return &Runner{config: config, logger: logger}, nil
}

// Execute executes the run end-to-end.
//
// Execution flow:
//  1. Build the grid store, layer definitions, and pipeline stages
//  2. Fan out the per-well pipeline over the worker pool
//  3. Emit records through the policy in well-ID order
//  4. Flush the policy
//  5. Determine outcome, publish the run-completed event
func (r *Runner) Execute(ctx context.Context) (*RunResult, error) {
	r.startTime = time.Now()
	d := r.config.Deck

	r.config.Collector.SetWellsPlanned(int64(len(d.Wells)))
	r.logger.Info("starting run", map[string]any{
		"deck":     d.DeckID,
		"layers":   d.Layers,
		"cells":    len(d.Cells),
		"wells":    len(d.Wells),
		"parallel": r.config.Parallel,
	})

	gridStore, err := grid.NewStore(d.Cells)
	if err != nil {
		return r.abort(ctx, ClassifyError(err, ""))
	}

	layers, err := deck.BuildLayers(d.Layers, r.config.Params)
	if err != nil {
		return r.abort(ctx, ClassifyError(err, ""))
	}

	resolver, err := interval.NewResolver(gridStore, r.config.Params, d.Layers, r.logger, r.config.Collector)
	if err != nil {
		return r.abort(ctx, ClassifyError(err, ""))
	}
	designer := design.NewEngine(r.config.Params)
	calculator := wellindex.NewCalculator(gridStore, r.config.Params, r.logger, r.config.Collector)

	worker := func(_ context.Context, well *types.Well) *WellResult {
		return r.computeWell(well, layers, resolver, designer, calculator)
	}

	fan := NewFanOut(r.config.Parallel, worker)
	fan.Run(ctx, d.Wells)
	results := fan.Results()

	fatal := r.reviewResults(results)

	// A missing engineering parameter is global: every well would fail
	// the same way, so abort before emitting any engineering records.
	if fatal != nil && fatal.Status == types.OutcomeConfigError {
		return r.abort(ctx, fatal)
	}

	controls := collectControls(results)
	summary := BuildCompletionSummary(d, results)

	if emitErr := r.emitRecords(ctx, results, summary); emitErr != nil {
		outcome := ClassifyError(emitErr, "")
		if outcome.Status != types.OutcomeStoreFailure {
			outcome = &types.RunOutcome{
				Status:  types.OutcomeStoreFailure,
				Message: fmt.Sprintf("record emission failed: %v", emitErr),
			}
		}
		return r.finish(ctx, outcome, controls, summary)
	}

	if flushErr := r.flush(ctx); flushErr != nil {
		return r.finish(ctx, &types.RunOutcome{
			Status:  types.OutcomeStoreFailure,
			Message: fmt.Sprintf("policy flush failed: %v", flushErr),
		}, controls, summary)
	}

	outcome := fatal
	if outcome == nil {
		outcome = &types.RunOutcome{
			Status:  types.OutcomeSuccess,
			Message: "run completed",
		}
		r.writeSolverStream(controls)
	}

	r.logger.Info("run completed", map[string]any{
		"outcome":  outcome.Status,
		"wells":    len(results),
		"duration": time.Since(r.startTime).String(),
	})

	return r.finish(ctx, outcome, controls, summary)
}

// computeWell runs the four pipeline stages for one well.
func (r *Runner) computeWell(
	well *types.Well,
	layers []types.LayerDefinition,
	resolver *interval.Resolver,
	designer *design.Engine,
	calculator *wellindex.Calculator,
) *WellResult {
	result := &WellResult{WellID: well.ID}

	completion, err := resolver.BuildWellCompletion(well, layers)
	if err != nil {
		result.Err = err
		return result
	}
	result.Completion = completion

	wellDesign, err := designer.Design(well, completion)
	if err != nil {
		result.Err = err
		return result
	}
	result.Design = wellDesign

	index, err := calculator.Compute(well)
	if err != nil {
		result.Err = err
		return result
	}
	result.Index = index

	controlRecord, err := control.Assemble(well, index)
	if err != nil {
		result.Err = err
		return result
	}
	result.Control = controlRecord

	return result
}

// reviewResults records per-well metrics and logs failures. Returns the
// outcome of the first failed well in well-ID order, or nil when every
// well succeeded.
func (r *Runner) reviewResults(results []*WellResult) *types.RunOutcome {
	var fatal *types.RunOutcome
	for _, res := range results {
		if res.Err == nil {
			r.config.Collector.IncWellCompleted()
			continue
		}
		r.config.Collector.IncWellFailed()
		r.logger.Error("well pipeline failed", map[string]any{
			"well":  res.WellID,
			"error": res.Err.Error(),
		})
		if fatal == nil {
			fatal = ClassifyError(res.Err, res.WellID)
		}
	}
	return fatal
}

// emitRecords pushes all per-well records plus diagnostics and the run
// summary through the policy, in well-ID order.
func (r *Runner) emitRecords(ctx context.Context, results []*WellResult, summary *CompletionSummary) error {
	for _, res := range results {
		if res.Err != nil {
			diag := store.DiagnosticRecord(res.WellID, res.Err.Error(), map[string]any{
				"deck": r.config.Deck.DeckID,
			})
			if err := r.config.Policy.Ingest(ctx, diag); err != nil {
				return err
			}
			continue
		}

		for _, rec := range store.IntervalRecords(res.Completion) {
			if err := r.config.Policy.Ingest(ctx, rec); err != nil {
				return err
			}
		}
		if err := r.config.Policy.Ingest(ctx, store.DesignRecord(res.Design)); err != nil {
			return err
		}
		for _, rec := range store.IndexRecords(res.Index) {
			if err := r.config.Policy.Ingest(ctx, rec); err != nil {
				return err
			}
		}
		if err := r.config.Policy.Ingest(ctx, store.ControlRecord(res.Control)); err != nil {
			return err
		}
	}

	return r.config.Policy.Ingest(ctx, summary.Record())
}

// flush flushes the policy with a bounded timeout. Parent cancellation
// is ignored so termination paths still drain the buffer.
func (r *Runner) flush(ctx context.Context) error {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	return r.config.Policy.Flush(flushCtx)
}

// abort flushes best-effort and builds a failed-run result without
// emitting engineering records.
func (r *Runner) abort(ctx context.Context, outcome *types.RunOutcome) (*RunResult, error) {
	if err := r.flush(ctx); err != nil {
		r.logger.Warn("policy flush failed (best effort)", map[string]any{
			"error": err.Error(),
		})
	}
	r.logger.Error("run aborted", map[string]any{
		"outcome": outcome.Status,
		"message": outcome.Message,
	})
	return r.finish(ctx, outcome, nil, nil)
}

// writeSolverStream frames the control records for the flow solver.
// Hand-off failure does not change the run outcome: the records are
// already persisted and the stream can be regenerated from the store.
func (r *Runner) writeSolverStream(controls []*types.WellControlRecord) {
	if r.config.SolverOutput == nil {
		return
	}
	if err := solver.WriteControlStream(r.config.SolverOutput, r.config.RunMeta, controls); err != nil {
		r.logger.Warn("solver control stream write failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// finish assembles the final result, absorbs policy stats into the
// collector, and publishes the run-completed event.
func (r *Runner) finish(ctx context.Context, outcome *types.RunOutcome, controls []*types.WellControlRecord, summary *CompletionSummary) (*RunResult, error) {
	ps := r.config.Policy.Stats()

	result := &RunResult{
		RunMeta:     r.config.RunMeta,
		Outcome:     outcome,
		Duration:    time.Since(r.startTime),
		PolicyStats: ps,
		Controls:    controls,
		Summary:     summary,
	}

	snap := r.config.Collector.Snapshot()
	result.WellsCompleted = snap.WellsCompleted
	result.WellsFailed = snap.WellsFailed

	droppedByTable := make(map[string]int64, len(ps.DroppedByTable))
	for k, v := range ps.DroppedByTable {
		droppedByTable[string(k)] = v
	}
	r.config.Collector.AbsorbPolicyStats(ps.TotalRecords, ps.RecordsPersisted, ps.RecordsDropped, droppedByTable)

	r.publishEvent(ctx, result)
	return result, nil
}

// publishEvent notifies the configured adapter. Best effort: a failed
// publication logs a warning and does not change the run outcome.
func (r *Runner) publishEvent(ctx context.Context, result *RunResult) {
	if r.config.Adapter == nil {
		return
	}

	event := &adapter.RunCompletedEvent{
		SchemaVersion:  types.RecordSchemaVersion,
		EventType:      "run_completed",
		RunID:          result.RunMeta.RunID,
		Deck:           result.RunMeta.DeckID,
		Day:            r.config.Day,
		Outcome:        string(result.Outcome.Status),
		StoragePath:    r.config.StoragePath,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Attempt:        result.RunMeta.Attempt,
		WellsCompleted: result.WellsCompleted,
		WellsFailed:    result.WellsFailed,
		DurationMs:     result.Duration.Milliseconds(),
	}

	if err := r.config.Adapter.Publish(ctx, event); err != nil {
		r.logger.Warn("run-completed event publish failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// collectControls extracts the control records of successful wells,
// preserving well-ID order.
func collectControls(results []*WellResult) []*types.WellControlRecord {
	controls := make([]*types.WellControlRecord, 0, len(results))
	for _, res := range results {
		if res.Control != nil {
			controls = append(controls, res.Control)
		}
	}
	return controls
}
