package control

import (
	"math"
	"testing"

	"github.com/stratalog-io/welldex/types"
)

func producerWell() *types.Well {
	return &types.Well{
		ID:          "PROD-1",
		Role:        types.RoleProducer,
		Trajectory:  types.Vertical(),
		TargetRate:  1500,
		TargetCells: []int{4, 5},
	}
}

func indexFor(well *types.Well, total float64) *types.WellIndexResult {
	share := total / float64(len(well.TargetCells))
	result := &types.WellIndexResult{WellID: well.ID, Total: total}
	for _, cell := range well.TargetCells {
		result.Segments = append(result.Segments, types.SegmentIndex{
			WellID: well.ID,
			Cell:   cell,
			Value:  share,
		})
	}
	return result
}

func TestAssemble_Producer(t *testing.T) {
	well := producerWell()
	record, err := Assemble(well, indexFor(well, 120.0))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if record.WellID != "PROD-1" {
		t.Errorf("well id = %q, want PROD-1", record.WellID)
	}
	if record.Mode != types.ControlModeRate {
		t.Errorf("mode = %q, want rate", record.Mode)
	}
	if record.Value != 1500 {
		t.Errorf("value = %g, want target rate 1500", record.Value)
	}
	if record.Sign != 1 {
		t.Errorf("producer sign = %d, want +1", record.Sign)
	}
}

func TestAssemble_InjectorSign(t *testing.T) {
	well := producerWell()
	well.ID = "INJ-1"
	well.Role = types.RoleInjector

	record, err := Assemble(well, indexFor(well, 80.0))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if record.Sign != -1 {
		t.Errorf("injector sign = %d, want -1", record.Sign)
	}
}

func TestAssemble_WeightsSumToOne(t *testing.T) {
	well := producerWell()
	well.TargetCells = []int{1, 2, 3}

	record, err := Assemble(well, indexFor(well, 93.7))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if len(record.Cells) != 3 {
		t.Fatalf("cells = %d, want 3", len(record.Cells))
	}
	var sum float64
	for i, cw := range record.Cells {
		if cw.Cell != well.TargetCells[i] {
			t.Errorf("cell %d = %d, want %d", i, cw.Cell, well.TargetCells[i])
		}
		sum += cw.Weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %g, want 1", sum)
	}
}

func TestAssemble_FlooredIndexCarriesEvenWeights(t *testing.T) {
	// The floor keeps the index positive, so weights remain defined.
	well := producerWell()
	record, err := Assemble(well, indexFor(well, types.IndexFloor))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	for _, cw := range record.Cells {
		if math.Abs(cw.Weight-0.5) > 1e-9 {
			t.Errorf("weight = %g, want 0.5", cw.Weight)
		}
	}
}

func TestAssemble_MissingInputs(t *testing.T) {
	well := producerWell()

	if _, err := Assemble(nil, indexFor(well, 10)); err == nil {
		t.Error("expected error for nil well")
	}
	if _, err := Assemble(well, nil); err == nil {
		t.Error("expected error for nil index")
	}
	if _, err := Assemble(well, &types.WellIndexResult{WellID: well.ID}); err == nil {
		t.Error("expected error for index without segments")
	}

	other := indexFor(well, 10)
	other.WellID = "OTHER-1"
	if _, err := Assemble(well, other); err == nil {
		t.Error("expected error for mismatched well id")
	}
}
