package store

import (
	"context"

	"github.com/stratalog-io/welldex/metrics"
	"github.com/stratalog-io/welldex/policy"
	"github.com/stratalog-io/welldex/types"
)

// InstrumentedSink wraps a policy.Sink and records write outcomes on
// the metrics collector. Each WriteRecords call increments
// store_write_success or store_write_failure.
type InstrumentedSink struct {
	inner     policy.Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps a sink with metrics instrumentation.
func NewInstrumentedSink(inner policy.Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

// WriteRecords delegates to the inner sink and records success or failure.
func (s *InstrumentedSink) WriteRecords(ctx context.Context, records []*types.Record) error {
	err := s.inner.WriteRecords(ctx, records)
	if err != nil {
		s.collector.IncStoreWriteFailure()
	} else {
		s.collector.IncStoreWriteSuccess()
	}
	return err
}

// Close delegates to the inner sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

// Verify InstrumentedSink implements policy.Sink.
var _ policy.Sink = (*InstrumentedSink)(nil)
