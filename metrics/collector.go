// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single run. It is a leaf
// package with no internal dependencies. Record-emission counters are
// absorbed from policy.Stats at run completion rather than recorded
// live, avoiding double-counting.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Wells
	WellsPlanned   int64 `json:"wells_planned"`
	WellsCompleted int64 `json:"wells_completed"`
	WellsFailed    int64 `json:"wells_failed"`

	// Interval resolution
	IntervalsResolved int64 `json:"intervals_resolved"`
	IntervalsRefined  int64 `json:"intervals_refined"`
	IntervalsUniform  int64 `json:"intervals_uniform"`
	SearchExpansions  int64 `json:"search_expansions"`

	// Well index
	SegmentsComputed int64 `json:"segments_computed"`
	DegeneracyFloors int64 `json:"degeneracy_floors"`

	// Record emission (absorbed from policy.Stats at run completion)
	RecordsEmitted   int64            `json:"records_emitted"`
	RecordsPersisted int64            `json:"records_persisted"`
	RecordsDropped   int64            `json:"records_dropped"`
	DroppedByTable   map[string]int64 `json:"dropped_by_table,omitempty"`

	// Storage
	StoreWriteSuccess int64 `json:"store_write_success"`
	StoreWriteFailure int64 `json:"store_write_failure"`

	// Dimensions (informational, set at construction)
	Policy         string `json:"policy"`
	StorageBackend string `json:"storage_backend"`
	DeckID         string `json:"deck_id"`
	RunID          string `json:"run_id"`
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	// Wells
	wellsPlanned   int64
	wellsCompleted int64
	wellsFailed    int64

	// Interval resolution
	intervalsResolved int64
	intervalsRefined  int64
	intervalsUniform  int64
	searchExpansions  int64

	// Well index
	segmentsComputed int64
	degeneracyFloors int64

	// Record emission (set once via AbsorbPolicyStats)
	recordsEmitted   int64
	recordsPersisted int64
	recordsDropped   int64
	droppedByTable   map[string]int64

	// Storage
	storeWriteSuccess int64
	storeWriteFailure int64

	// Dimensions
	policy         string
	storageBackend string
	deckID         string
	runID          string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(policy, storageBackend, deckID, runID string) *Collector {
	return &Collector{
		droppedByTable: make(map[string]int64),
		policy:         policy,
		storageBackend: storageBackend,
		deckID:         deckID,
		runID:          runID,
	}
}

// --- Wells ---

// SetWellsPlanned records the well count of the deck.
func (c *Collector) SetWellsPlanned(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.wellsPlanned = n
	c.mu.Unlock()
}

// IncWellCompleted records a well whose derivation chain finished.
func (c *Collector) IncWellCompleted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.wellsCompleted++
	c.mu.Unlock()
}

// IncWellFailed records a well whose derivation chain aborted.
func (c *Collector) IncWellFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.wellsFailed++
	c.mu.Unlock()
}

// --- Interval resolution ---

// IncIntervalRefined records an interval refined to true cell depths.
func (c *Collector) IncIntervalRefined() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.intervalsResolved++
	c.intervalsRefined++
	c.mu.Unlock()
}

// IncIntervalUniform records an interval kept at the uniform band estimate.
func (c *Collector) IncIntervalUniform() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.intervalsResolved++
	c.intervalsUniform++
	c.mu.Unlock()
}

// AddSearchExpansions records radius-doubling retries for one resolution.
func (c *Collector) AddSearchExpansions(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.searchExpansions += n
	c.mu.Unlock()
}

// --- Well index ---

// IncSegmentComputed records one computed completion-segment index.
func (c *Collector) IncSegmentComputed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.segmentsComputed++
	c.mu.Unlock()
}

// IncDegeneracyFloor records a productivity-floor substitution.
func (c *Collector) IncDegeneracyFloor() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.degeneracyFloors++
	c.mu.Unlock()
}

// --- Storage ---
// Store counters are per-call, not per-record. A single WriteRecords
// call with N records counts as 1 success. Per-record granularity is
// tracked separately by policy.Stats.

// IncStoreWriteSuccess records a successful store write operation (per-call).
func (c *Collector) IncStoreWriteSuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeWriteSuccess++
	c.mu.Unlock()
}

// IncStoreWriteFailure records a failed store write operation (per-call).
func (c *Collector) IncStoreWriteFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeWriteFailure++
	c.mu.Unlock()
}

// --- Record emission (absorbed from policy.Stats) ---

// AbsorbPolicyStats copies record-emission counters from policy.Stats.
// Called once after run completion with the final policy stats snapshot.
// The droppedByTable map keys are string-typed table names to keep this
// package free of dependencies on the types package.
func (c *Collector) AbsorbPolicyStats(emitted, persisted, dropped int64, droppedByTable map[string]int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.recordsEmitted = emitted
	c.recordsPersisted = persisted
	c.recordsDropped = dropped
	c.droppedByTable = make(map[string]int64, len(droppedByTable))
	for k, v := range droppedByTable {
		c.droppedByTable[k] = v
	}
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := make(map[string]int64, len(c.droppedByTable))
	for k, v := range c.droppedByTable {
		dropped[k] = v
	}

	return Snapshot{
		WellsPlanned:   c.wellsPlanned,
		WellsCompleted: c.wellsCompleted,
		WellsFailed:    c.wellsFailed,

		IntervalsResolved: c.intervalsResolved,
		IntervalsRefined:  c.intervalsRefined,
		IntervalsUniform:  c.intervalsUniform,
		SearchExpansions:  c.searchExpansions,

		SegmentsComputed: c.segmentsComputed,
		DegeneracyFloors: c.degeneracyFloors,

		RecordsEmitted:   c.recordsEmitted,
		RecordsPersisted: c.recordsPersisted,
		RecordsDropped:   c.recordsDropped,
		DroppedByTable:   dropped,

		StoreWriteSuccess: c.storeWriteSuccess,
		StoreWriteFailure: c.storeWriteFailure,

		Policy:         c.policy,
		StorageBackend: c.storageBackend,
		DeckID:         c.deckID,
		RunID:          c.runID,
	}
}
