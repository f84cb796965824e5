package store

import (
	"errors"
	"testing"

	"github.com/stratalog-io/welldex/metrics"
	"github.com/stratalog-io/welldex/types"
)

func TestInstrumentedSink_RecordsSuccess(t *testing.T) {
	client := NewStubClient()
	collector := metrics.NewCollector("strict", "fs", "block-7", "run-1")
	sink := NewInstrumentedSink(NewSink(testConfig(), client), collector)

	records := []*types.Record{
		{Table: types.TableIntervals, WellID: "PROD-1", Fields: map[string]any{"layer": 1}},
	}
	if err := sink.WriteRecords(t.Context(), records); err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}
	if err := sink.WriteRecords(t.Context(), records); err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}

	snap := collector.Snapshot()
	if snap.StoreWriteSuccess != 2 {
		t.Errorf("success = %d, want 2", snap.StoreWriteSuccess)
	}
	if snap.StoreWriteFailure != 0 {
		t.Errorf("failure = %d, want 0", snap.StoreWriteFailure)
	}
}

func TestInstrumentedSink_RecordsFailure(t *testing.T) {
	client := NewStubClient()
	client.ErrorOnWrite = errors.New("throttled")
	collector := metrics.NewCollector("strict", "fs", "block-7", "run-1")
	sink := NewInstrumentedSink(NewSink(testConfig(), client), collector)

	err := sink.WriteRecords(t.Context(), []*types.Record{
		{Table: types.TableControls, Fields: map[string]any{}},
	})
	if err == nil {
		t.Fatal("expected error")
	}

	snap := collector.Snapshot()
	if snap.StoreWriteFailure != 1 {
		t.Errorf("failure = %d, want 1", snap.StoreWriteFailure)
	}
}

func TestInstrumentedSink_NilCollectorSafe(t *testing.T) {
	client := NewStubClient()
	sink := NewInstrumentedSink(NewSink(testConfig(), client), nil)

	if err := sink.WriteRecords(t.Context(), []*types.Record{
		{Table: types.TableSummary, Fields: map[string]any{}},
	}); err != nil {
		t.Fatalf("WriteRecords failed: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
