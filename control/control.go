// Package control assembles solver-facing well control records.
//
// Assembly is a pure projection of the well placement and the computed
// well index: the target rate, the role sign, and the per-cell weight
// list derived from segment index shares. No engineering decisions are
// made here.
package control

import (
	"fmt"

	"github.com/stratalog-io/welldex/types"
)

// Assemble projects a well and its index result into the control
// record consumed by the flow solver. The per-cell weights are the
// segments' shares of the total index and sum to 1.
func Assemble(well *types.Well, index *types.WellIndexResult) (*types.WellControlRecord, error) {
	if well == nil {
		return nil, fmt.Errorf("control record assembly requires a well")
	}
	if index == nil || len(index.Segments) == 0 {
		return nil, fmt.Errorf("well %s: control record assembly requires a computed well index", well.ID)
	}
	if index.WellID != well.ID {
		return nil, fmt.Errorf("well %s: index result belongs to well %s", well.ID, index.WellID)
	}

	record := &types.WellControlRecord{
		WellID: well.ID,
		Mode:   types.ControlModeRate,
		Value:  well.TargetRate,
		Sign:   well.Role.Sign(),
		Cells:  make([]types.CellWeight, 0, len(index.Segments)),
	}

	for _, seg := range index.Segments {
		weight := 0.0
		if index.Total > 0 {
			weight = seg.Value / index.Total
		}
		record.Cells = append(record.Cells, types.CellWeight{Cell: seg.Cell, Weight: weight})
	}

	return record, nil
}
