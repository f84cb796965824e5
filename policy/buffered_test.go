package policy

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stratalog-io/welldex/types"
)

func TestBufferedPolicy_InvalidConfig(t *testing.T) {
	_, err := NewBufferedPolicy(NewStubSink(), BufferedConfig{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestBufferedPolicy_BuffersUntilFlush(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, DefaultBufferedConfig())
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := p.Ingest(ctx, intervalRecord(fmt.Sprintf("W-%d", i))); err != nil {
			t.Fatalf("Ingest failed: %v", err)
		}
	}

	if sink.RecordsWritten != 0 {
		t.Errorf("records written before flush = %d, want 0", sink.RecordsWritten)
	}

	if err := p.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if sink.RecordsWritten != 5 {
		t.Errorf("records written = %d, want 5", sink.RecordsWritten)
	}
	if sink.Batches != 1 {
		t.Errorf("batches = %d, want 1 batch write", sink.Batches)
	}

	// Ingest order is preserved
	for i, r := range sink.Written {
		want := fmt.Sprintf("W-%d", i)
		if r.WellID != want {
			t.Errorf("record %d well = %q, want %q", i, r.WellID, want)
		}
	}

	stats := p.Stats()
	if stats.RecordsPersisted != 5 || stats.BufferSize != 0 {
		t.Errorf("post-flush stats = %+v, want 5 persisted, empty buffer", stats)
	}
}

func TestBufferedPolicy_DropsDiagnosticsWhenFull(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 2})
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}

	ctx := context.Background()
	if err := p.Ingest(ctx, intervalRecord("W-1")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := p.Ingest(ctx, intervalRecord("W-2")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// Buffer full, incoming diagnostic is shed silently
	if err := p.Ingest(ctx, diagnosticRecord("W-3")); err != nil {
		t.Fatalf("diagnostic ingest must not fail: %v", err)
	}

	stats := p.Stats()
	if stats.RecordsDropped != 1 {
		t.Errorf("dropped = %d, want 1", stats.RecordsDropped)
	}
	if stats.DroppedByTable[types.TableDiagnostics] != 1 {
		t.Errorf("diagnostics drops = %d, want 1", stats.DroppedByTable[types.TableDiagnostics])
	}
}

func TestBufferedPolicy_EvictsDiagnosticForEngineeringRecord(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 2})
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}

	ctx := context.Background()
	if err := p.Ingest(ctx, diagnosticRecord("W-1")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := p.Ingest(ctx, intervalRecord("W-2")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// Buffer full: the engineering record must evict the diagnostic
	if err := p.Ingest(ctx, intervalRecord("W-3")); err != nil {
		t.Fatalf("engineering ingest must evict a diagnostic, got: %v", err)
	}

	if err := p.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	for _, r := range sink.Written {
		if r.Table == types.TableDiagnostics {
			t.Error("evicted diagnostic still reached the sink")
		}
	}
	if sink.RecordsWritten != 2 {
		t.Errorf("records written = %d, want 2 engineering records", sink.RecordsWritten)
	}
}

func TestBufferedPolicy_FailsOnUnEvictableOverflow(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, BufferedConfig{MaxBufferRecords: 2})
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}

	ctx := context.Background()
	if err := p.Ingest(ctx, intervalRecord("W-1")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := p.Ingest(ctx, intervalRecord("W-2")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	err = p.Ingest(ctx, intervalRecord("W-3"))
	if !errors.Is(err, ErrBufferFull) {
		t.Errorf("expected ErrBufferFull, got %v", err)
	}
}

func TestBufferedPolicy_FailedFlushKeepsBuffer(t *testing.T) {
	sink := NewStubSink()
	p, err := NewBufferedPolicy(sink, DefaultBufferedConfig())
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}

	ctx := context.Background()
	if err := p.Ingest(ctx, intervalRecord("W-1")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	sink.ErrorOnWrite = errors.New("transient")
	if err := p.Flush(ctx); err == nil {
		t.Fatal("expected flush failure")
	}

	// Retry after the sink recovers; nothing was lost
	sink.ErrorOnWrite = nil
	if err := p.Flush(ctx); err != nil {
		t.Fatalf("retried Flush failed: %v", err)
	}
	if sink.RecordsWritten != 1 {
		t.Errorf("records written = %d, want 1", sink.RecordsWritten)
	}
}

// ingestingSink ingests one extra record into the policy during its
// first WriteRecords call, simulating an ingest racing a flush.
type ingestingSink struct {
	StubSink
	policy *BufferedPolicy
	late   *types.Record
	fired  bool
}

func (s *ingestingSink) WriteRecords(ctx context.Context, records []*types.Record) error {
	if !s.fired {
		s.fired = true
		if err := s.policy.Ingest(ctx, s.late); err != nil {
			return err
		}
	}
	return s.StubSink.WriteRecords(ctx, records)
}

func TestBufferedPolicy_FlushKeepsRecordsIngestedMidWrite(t *testing.T) {
	sink := &ingestingSink{late: intervalRecord("W-late")}
	p, err := NewBufferedPolicy(sink, DefaultBufferedConfig())
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}
	sink.policy = p

	ctx := context.Background()
	if err := p.Ingest(ctx, intervalRecord("W-1")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// First flush writes W-1; W-late arrives while the write is in
	// flight and must stay buffered.
	if err := p.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if sink.RecordsWritten != 1 {
		t.Fatalf("records written after first flush = %d, want 1", sink.RecordsWritten)
	}
	if stats := p.Stats(); stats.BufferSize == 0 {
		t.Error("mid-write ingest was discarded by the flush")
	}

	if err := p.Flush(ctx); err != nil {
		t.Fatalf("second Flush failed: %v", err)
	}
	if sink.RecordsWritten != 2 {
		t.Fatalf("records written after second flush = %d, want 2", sink.RecordsWritten)
	}
	if got := sink.Written[1].WellID; got != "W-late" {
		t.Errorf("second flush wrote %q, want W-late", got)
	}
}

func TestBufferedPolicy_MatchesStrictRecordSet(t *testing.T) {
	// Both policies must persist the same engineering record set.
	records := []*types.Record{
		intervalRecord("W-1"),
		intervalRecord("W-2"),
		{Table: types.TableIndices, WellID: "W-1", Fields: map[string]any{"value": 74.2}},
		{Table: types.TableControls, WellID: "W-1", Fields: map[string]any{"mode": "rate"}},
	}

	ctx := context.Background()

	strictSink := NewStubSink()
	strict := NewStrictPolicy(strictSink)
	for _, r := range records {
		if err := strict.Ingest(ctx, r); err != nil {
			t.Fatalf("strict Ingest failed: %v", err)
		}
	}

	bufferedSink := NewStubSink()
	buffered, err := NewBufferedPolicy(bufferedSink, DefaultBufferedConfig())
	if err != nil {
		t.Fatalf("NewBufferedPolicy failed: %v", err)
	}
	for _, r := range records {
		if err := buffered.Ingest(ctx, r); err != nil {
			t.Fatalf("buffered Ingest failed: %v", err)
		}
	}
	if err := buffered.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	if len(strictSink.Written) != len(bufferedSink.Written) {
		t.Fatalf("record counts differ: strict %d, buffered %d",
			len(strictSink.Written), len(bufferedSink.Written))
	}
	for i := range strictSink.Written {
		if strictSink.Written[i] != bufferedSink.Written[i] {
			t.Errorf("record %d differs between policies", i)
		}
	}
}
