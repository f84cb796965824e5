package policy

import (
	"context"

	"github.com/stratalog-io/welldex/types"
)

// StrictPolicy implements synchronous, unbuffered persistence.
//
//   - No buffering: each record is written immediately
//   - No drops: every record is persisted, diagnostics included
//   - Backpressure: caller blocks on sink latency
//   - Sink errors fail the run
type StrictPolicy struct {
	sink  Sink
	stats *statsRecorder
}

// NewStrictPolicy creates a strict policy writing to the given sink.
func NewStrictPolicy(sink Sink) *StrictPolicy {
	return &StrictPolicy{
		sink:  sink,
		stats: newStatsRecorder(),
	}
}

// Ingest writes the record immediately to the sink.
// Returns error on sink failure (terminates run).
func (p *StrictPolicy) Ingest(ctx context.Context, record *types.Record) error {
	p.stats.incTotal()

	// Write immediately (batch of 1)
	if err := p.sink.WriteRecords(ctx, []*types.Record{record}); err != nil {
		p.stats.incErrors()
		return err
	}

	p.stats.incPersisted(1)
	return nil
}

// Flush is a no-op for strict policy (nothing is buffered).
func (p *StrictPolicy) Flush(_ context.Context) error {
	p.stats.incFlush()
	return nil
}

// Close closes the underlying sink.
func (p *StrictPolicy) Close() error {
	return p.sink.Close()
}

// Stats returns policy statistics.
func (p *StrictPolicy) Stats() Stats {
	return p.stats.snapshot()
}
