package policy

import (
	"context"

	"github.com/stratalog-io/welldex/types"
)

// NoopPolicy accepts all records without persisting anything. Used by
// dry runs, where the computation is exercised end-to-end but nothing
// reaches storage, and by tests.
//
// Stats keep the droppable/non-droppable semantics: diagnostics rows
// count as dropped, engineering rows as persisted.
type NoopPolicy struct {
	stats *statsRecorder
}

// NewNoopPolicy creates a new no-op policy.
func NewNoopPolicy() *NoopPolicy {
	return &NoopPolicy{stats: newStatsRecorder()}
}

// Ingest accepts the record but does not persist it.
func (p *NoopPolicy) Ingest(_ context.Context, record *types.Record) error {
	p.stats.mu.Lock()
	defer p.stats.mu.Unlock()

	p.stats.incTotalLocked()
	if IsDroppable(record.Table) {
		p.stats.incDroppedLocked(record.Table)
	} else {
		p.stats.incPersistedLocked(1)
	}

	return nil
}

// Flush is a no-op.
func (p *NoopPolicy) Flush(_ context.Context) error {
	p.stats.incFlush()
	return nil
}

// Close is a no-op.
func (p *NoopPolicy) Close() error {
	return nil
}

// Stats returns the policy statistics.
func (p *NoopPolicy) Stats() Stats {
	return p.stats.snapshot()
}
