package store

import (
	"testing"

	"github.com/stratalog-io/welldex/types"
)

func TestIntervalRecords(t *testing.T) {
	wc := &types.WellCompletion{
		WellID: "PROD-1",
		Intervals: []types.CompletionInterval{
			{WellID: "PROD-1", Layer: 1, Band: types.BandUpper, Top: 2400, Bottom: 2450, NetPay: 50, Refined: true},
			{WellID: "PROD-1", Layer: 2, Band: types.BandMiddle, Top: 2450, Bottom: 2500, NetPay: 50},
		},
	}

	records := IntervalRecords(wc)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.Table != types.TableIntervals {
			t.Errorf("table = %s, want intervals", r.Table)
		}
		if r.WellID != "PROD-1" {
			t.Errorf("well = %s, want PROD-1", r.WellID)
		}
	}
	if records[0].Fields["band"] != "upper" || records[0].Fields["refined"] != true {
		t.Errorf("first row fields wrong: %v", records[0].Fields)
	}
	if records[1].Fields["layer"] != 2 {
		t.Errorf("second row layer = %v, want 2", records[1].Fields["layer"])
	}
}

func TestDesignRecord_UniformSchema(t *testing.T) {
	// A vertical design must still carry every column, zero-valued.
	d := &types.WellboreDesign{
		WellID:           "PROD-1",
		Type:             types.CompletionVertical,
		StageCount:       1,
		CompletionLength: 75,
		Perforation:      types.PerforationSpec{Density: 12, Diameter: 0.011, Penetration: 0.46},
		SandControl:      types.SandControlGravelPack,
		Junction:         types.JunctionNone,
	}

	r := DesignRecord(d)
	for _, col := range []string{
		"type", "stage_count", "lateral_1_stages", "lateral_2_stages",
		"stage_length", "lateral_1_length", "lateral_2_length",
		"completion_length", "perforation_density", "perforation_diameter",
		"perforation_penetration", "sand_control", "junction",
	} {
		if _, ok := r.Fields[col]; !ok {
			t.Errorf("column %q missing from design row", col)
		}
	}
	if r.Fields["lateral_1_length"] != 0.0 {
		t.Errorf("vertical lateral_1_length = %v, want zero sentinel", r.Fields["lateral_1_length"])
	}
	if r.Fields["junction"] != "none" {
		t.Errorf("vertical junction = %v, want none", r.Fields["junction"])
	}
}

func TestIndexRecords_CarryTotal(t *testing.T) {
	result := &types.WellIndexResult{
		WellID: "PROD-1",
		Type:   types.TrajectoryHorizontal,
		Total:  100,
		Segments: []types.SegmentIndex{
			{WellID: "PROD-1", Cell: 4, Value: 50, Perm: types.PermTensor{Kx: 200, Ky: 200, Kz: 20}},
			{WellID: "PROD-1", Cell: 5, Value: 50, Perm: types.PermTensor{Kx: 180, Ky: 220, Kz: 18}},
		},
	}

	records := IndexRecords(result)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	for i, r := range records {
		if r.Fields["total_value"] != 100.0 {
			t.Errorf("row %d total_value = %v, want 100", i, r.Fields["total_value"])
		}
		if r.Fields["value"] != 50.0 {
			t.Errorf("row %d value = %v, want 50", i, r.Fields["value"])
		}
		if r.Fields["type"] != string(types.TrajectoryHorizontal) {
			t.Errorf("row %d type = %v, want %s", i, r.Fields["type"], types.TrajectoryHorizontal)
		}
	}
	if records[1].Fields["kx"] != 180.0 {
		t.Errorf("second row kx = %v, want its own cell's 180", records[1].Fields["kx"])
	}
}

func TestControlRecord(t *testing.T) {
	cr := &types.WellControlRecord{
		WellID: "INJ-1",
		Mode:   types.ControlModeRate,
		Value:  900,
		Sign:   -1,
		Cells: []types.CellWeight{
			{Cell: 2, Weight: 0.6},
			{Cell: 3, Weight: 0.4},
		},
	}

	r := ControlRecord(cr)
	if r.Table != types.TableControls || r.WellID != "INJ-1" {
		t.Errorf("row routing wrong: table=%s well=%s", r.Table, r.WellID)
	}
	if r.Fields["mode"] != "rate" || r.Fields["sign"] != -1 {
		t.Errorf("fields wrong: %v", r.Fields)
	}
	cells, ok := r.Fields["cells"].([]map[string]any)
	if !ok || len(cells) != 2 {
		t.Fatalf("cells column = %v, want 2 entries", r.Fields["cells"])
	}
	if cells[0]["cell"] != 2 || cells[0]["weight"] != 0.6 {
		t.Errorf("first cell entry = %v", cells[0])
	}
}

func TestDiagnosticRecord(t *testing.T) {
	r := DiagnosticRecord("PROD-1", "search radius expanded", map[string]any{"radius": 1000.0})
	if r.Table != types.TableDiagnostics {
		t.Errorf("table = %s, want diagnostics", r.Table)
	}
	if r.Fields["message"] != "search radius expanded" || r.Fields["radius"] != 1000.0 {
		t.Errorf("fields wrong: %v", r.Fields)
	}
}
