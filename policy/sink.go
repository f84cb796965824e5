package policy

import (
	"context"
	"sync"

	"github.com/stratalog-io/welldex/types"
)

// Sink abstracts persistence for policies.
// Implementations may write to storage, forward to a queue, or stub
// for testing. Writes are batch-oriented to support both strict
// (batch of 1) and buffered policies.
type Sink interface {
	// WriteRecords persists a batch of output records.
	// Must preserve ordering within the batch.
	// Returns error on failure; caller decides whether to retry or fail.
	WriteRecords(ctx context.Context, records []*types.Record) error

	// Close releases any resources held by the sink.
	Close() error
}

// StubSink is a test sink that accepts writes without persisting.
// Tracks write statistics for test assertions.
type StubSink struct {
	mu sync.Mutex

	// RecordsWritten is the total count of records written.
	RecordsWritten int64
	// Batches is the number of WriteRecords calls.
	Batches int64
	// Closed indicates whether Close was called.
	Closed bool

	// Written stores all written records in write order for inspection.
	Written []*types.Record

	// ErrorOnWrite, if non-nil, is returned by WriteRecords.
	ErrorOnWrite error
}

// NewStubSink creates a new stub sink for testing.
func NewStubSink() *StubSink {
	return &StubSink{
		Written: make([]*types.Record, 0),
	}
}

// WriteRecords records the batch without persisting.
func (s *StubSink) WriteRecords(_ context.Context, records []*types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ErrorOnWrite != nil {
		return s.ErrorOnWrite
	}

	s.Batches++
	s.RecordsWritten += int64(len(records))
	s.Written = append(s.Written, records...)

	return nil
}

// Close marks the sink as closed.
func (s *StubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Closed = true
	return nil
}

// ByTable returns the written records destined for one table.
func (s *StubSink) ByTable(table types.Table) []*types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*types.Record
	for _, r := range s.Written {
		if r.Table == table {
			out = append(out, r)
		}
	}
	return out
}
