// Package policy controls how computed records reach the storage sink.
//
// Policies sit between the run engine and the store. The strict policy
// writes through synchronously; the buffered policy accumulates rows
// and batch-writes on flush. Engineering tables (intervals, designs,
// indices, controls, summary) are never dropped; a policy that cannot
// persist them fails the run. Diagnostics rows may be shed under
// buffer pressure.
package policy

import (
	"context"
	"sync"

	"github.com/stratalog-io/welldex/types"
)

// Policy defines the record-emission policy interface.
type Policy interface {
	// Ingest handles one output record.
	// May drop droppable tables (diagnostics). Must not drop
	// engineering tables; returns an error to terminate the run.
	Ingest(ctx context.Context, record *types.Record) error

	// Flush writes any buffered records to the sink.
	// Called at end of run and before the run summary is written.
	Flush(ctx context.Context) error

	// Close releases policy resources.
	Close() error

	// Stats returns an atomic snapshot of policy counters.
	Stats() Stats
}

// Stats represents policy observability counters.
type Stats struct {
	// TotalRecords is the number of records received.
	TotalRecords int64
	// RecordsPersisted is the number of records written to the sink.
	RecordsPersisted int64
	// RecordsDropped is the number of records shed.
	RecordsDropped int64
	// DroppedByTable maps tables to drop counts.
	DroppedByTable map[types.Table]int64
	// BufferSize is the current estimated buffer size in bytes.
	BufferSize int64
	// FlushCount is the number of flush operations.
	FlushCount int64
	// Errors is the count of sink failures encountered.
	Errors int64
}

// droppableTables holds the tables a policy may shed under pressure.
var droppableTables = map[types.Table]bool{
	types.TableDiagnostics: true,
}

// IsDroppable reports whether records for the table may be dropped.
func IsDroppable(table types.Table) bool {
	return droppableTables[table]
}

// statsRecorder is an internal helper for thread-safe stats management.
// Policies call explicit methods to record mutations.
//
// Lock discipline:
//   - StrictPolicy uses the locking methods (incTotal, snapshot, etc.)
//   - BufferedPolicy uses the Locked methods only while holding its own
//     mu, keeping buffer state and counters atomic with each other.
type statsRecorder struct {
	mu    sync.Mutex
	stats Stats
}

func newStatsRecorder() *statsRecorder {
	return &statsRecorder{
		stats: Stats{
			DroppedByTable: make(map[types.Table]int64),
		},
	}
}

func (r *statsRecorder) incTotal() {
	r.mu.Lock()
	r.stats.TotalRecords++
	r.mu.Unlock()
}

func (r *statsRecorder) incPersisted(n int64) {
	r.mu.Lock()
	r.stats.RecordsPersisted += n
	r.mu.Unlock()
}

func (r *statsRecorder) incErrors() {
	r.mu.Lock()
	r.stats.Errors++
	r.mu.Unlock()
}

func (r *statsRecorder) incFlush() {
	r.mu.Lock()
	r.stats.FlushCount++
	r.mu.Unlock()
}

func (r *statsRecorder) snapshot() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.stats
	s.DroppedByTable = make(map[types.Table]int64, len(r.stats.DroppedByTable))
	for k, v := range r.stats.DroppedByTable {
		s.DroppedByTable[k] = v
	}
	return s
}

// --- Locked methods for BufferedPolicy ---
// Caller must hold BufferedPolicy.mu.

func (r *statsRecorder) incTotalLocked() {
	r.stats.TotalRecords++
}

func (r *statsRecorder) incPersistedLocked(n int64) {
	r.stats.RecordsPersisted += n
}

func (r *statsRecorder) incDroppedLocked(table types.Table) {
	r.stats.RecordsDropped++
	r.stats.DroppedByTable[table]++
}

func (r *statsRecorder) incErrorsLocked() {
	r.stats.Errors++
}

func (r *statsRecorder) incFlushLocked() {
	r.stats.FlushCount++
}

func (r *statsRecorder) setBufferSizeLocked(bytes int64) {
	r.stats.BufferSize = bytes
}

// snapshotLocked returns an atomic snapshot with the given bufferSize.
// Caller must hold BufferedPolicy.mu.
func (r *statsRecorder) snapshotLocked(bufferSize int64) Stats {
	s := r.stats
	s.BufferSize = bufferSize
	s.DroppedByTable = make(map[types.Table]int64, len(r.stats.DroppedByTable))
	for k, v := range r.stats.DroppedByTable {
		s.DroppedByTable[k] = v
	}
	return s
}
