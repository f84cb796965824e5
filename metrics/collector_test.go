package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("strict", "fs", "demo-field", "run-001")

	c.SetWellsPlanned(3)
	c.IncWellCompleted()
	c.IncWellCompleted()
	c.IncWellFailed()
	c.IncIntervalRefined()
	c.IncIntervalRefined()
	c.IncIntervalUniform()
	c.AddSearchExpansions(2)
	c.IncSegmentComputed()
	c.IncSegmentComputed()
	c.IncSegmentComputed()
	c.IncDegeneracyFloor()
	c.IncStoreWriteSuccess()
	c.IncStoreWriteSuccess()
	c.IncStoreWriteFailure()

	s := c.Snapshot()

	if s.WellsPlanned != 3 {
		t.Errorf("WellsPlanned = %d, want 3", s.WellsPlanned)
	}
	if s.WellsCompleted != 2 {
		t.Errorf("WellsCompleted = %d, want 2", s.WellsCompleted)
	}
	if s.WellsFailed != 1 {
		t.Errorf("WellsFailed = %d, want 1", s.WellsFailed)
	}
	if s.IntervalsResolved != 3 {
		t.Errorf("IntervalsResolved = %d, want 3", s.IntervalsResolved)
	}
	if s.IntervalsRefined != 2 {
		t.Errorf("IntervalsRefined = %d, want 2", s.IntervalsRefined)
	}
	if s.IntervalsUniform != 1 {
		t.Errorf("IntervalsUniform = %d, want 1", s.IntervalsUniform)
	}
	if s.SearchExpansions != 2 {
		t.Errorf("SearchExpansions = %d, want 2", s.SearchExpansions)
	}
	if s.SegmentsComputed != 3 {
		t.Errorf("SegmentsComputed = %d, want 3", s.SegmentsComputed)
	}
	if s.DegeneracyFloors != 1 {
		t.Errorf("DegeneracyFloors = %d, want 1", s.DegeneracyFloors)
	}
	if s.StoreWriteSuccess != 2 {
		t.Errorf("StoreWriteSuccess = %d, want 2", s.StoreWriteSuccess)
	}
	if s.StoreWriteFailure != 1 {
		t.Errorf("StoreWriteFailure = %d, want 1", s.StoreWriteFailure)
	}

	// Dimensions
	if s.Policy != "strict" || s.StorageBackend != "fs" || s.DeckID != "demo-field" || s.RunID != "run-001" {
		t.Errorf("dimensions = %q/%q/%q/%q", s.Policy, s.StorageBackend, s.DeckID, s.RunID)
	}
}

func TestCollector_AbsorbPolicyStats(t *testing.T) {
	c := NewCollector("buffered", "fs", "demo-field", "run-002")

	c.AbsorbPolicyStats(10, 9, 1, map[string]int64{"trace": 1})

	s := c.Snapshot()
	if s.RecordsEmitted != 10 {
		t.Errorf("RecordsEmitted = %d, want 10", s.RecordsEmitted)
	}
	if s.RecordsPersisted != 9 {
		t.Errorf("RecordsPersisted = %d, want 9", s.RecordsPersisted)
	}
	if s.RecordsDropped != 1 {
		t.Errorf("RecordsDropped = %d, want 1", s.RecordsDropped)
	}
	if s.DroppedByTable["trace"] != 1 {
		t.Errorf("DroppedByTable[trace] = %d, want 1", s.DroppedByTable["trace"])
	}
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	// None of these may panic on a nil receiver
	c.SetWellsPlanned(1)
	c.IncWellCompleted()
	c.IncWellFailed()
	c.IncIntervalRefined()
	c.IncIntervalUniform()
	c.AddSearchExpansions(1)
	c.IncSegmentComputed()
	c.IncDegeneracyFloor()
	c.IncStoreWriteSuccess()
	c.IncStoreWriteFailure()
	c.AbsorbPolicyStats(1, 1, 0, nil)

	s := c.Snapshot()
	if s.WellsCompleted != 0 {
		t.Errorf("nil collector snapshot should be zero, got %+v", s)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("strict", "fs", "demo-field", "run-003")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncWellCompleted()
			c.IncSegmentComputed()
			c.AddSearchExpansions(1)
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.WellsCompleted != 50 || s.SegmentsComputed != 50 || s.SearchExpansions != 50 {
		t.Errorf("concurrent counters = %d/%d/%d, want 50 each",
			s.WellsCompleted, s.SegmentsComputed, s.SearchExpansions)
	}
}
