package policy

import (
	"context"
	"testing"

	"github.com/stratalog-io/welldex/types"
)

func TestNoopPolicy_CountsWithoutPersisting(t *testing.T) {
	p := NewNoopPolicy()
	ctx := context.Background()

	if err := p.Ingest(ctx, intervalRecord("W-1")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := p.Ingest(ctx, diagnosticRecord("W-1")); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if err := p.Flush(ctx); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}

	stats := p.Stats()
	if stats.TotalRecords != 2 {
		t.Errorf("total = %d, want 2", stats.TotalRecords)
	}
	if stats.RecordsPersisted != 1 {
		t.Errorf("persisted = %d, want 1 (engineering row)", stats.RecordsPersisted)
	}
	if stats.DroppedByTable[types.TableDiagnostics] != 1 {
		t.Errorf("diagnostics drops = %d, want 1", stats.DroppedByTable[types.TableDiagnostics])
	}
	if stats.FlushCount != 1 {
		t.Errorf("flushes = %d, want 1", stats.FlushCount)
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
