package store

import "github.com/stratalog-io/welldex/types"

// Row builders projecting domain outputs into table records. Column
// names are stable storage identifiers; the report reader and any
// downstream consumer key on them.

// IntervalRecords builds one intervals-table row per resolved layer.
func IntervalRecords(wc *types.WellCompletion) []*types.Record {
	records := make([]*types.Record, 0, len(wc.Intervals))
	for _, iv := range wc.Intervals {
		records = append(records, &types.Record{
			Table:  types.TableIntervals,
			WellID: iv.WellID,
			Fields: map[string]any{
				"layer":   iv.Layer,
				"band":    string(iv.Band),
				"top":     iv.Top,
				"bottom":  iv.Bottom,
				"net_pay": iv.NetPay,
				"refined": iv.Refined,
			},
		})
	}
	return records
}

// DesignRecord builds the designs-table row for one well.
func DesignRecord(d *types.WellboreDesign) *types.Record {
	return &types.Record{
		Table:  types.TableDesigns,
		WellID: d.WellID,
		Fields: map[string]any{
			"type":                    string(d.Type),
			"stage_count":             d.StageCount,
			"lateral_1_stages":        d.Lateral1Stages,
			"lateral_2_stages":        d.Lateral2Stages,
			"stage_length":            d.StageLength,
			"lateral_1_length":        d.Lateral1Length,
			"lateral_2_length":        d.Lateral2Length,
			"completion_length":       d.CompletionLength,
			"perforation_density":     d.Perforation.Density,
			"perforation_diameter":    d.Perforation.Diameter,
			"perforation_penetration": d.Perforation.Penetration,
			"sand_control":            string(d.SandControl),
			"junction":                string(d.Junction),
		},
	}
}

// IndexRecords builds one indices-table row per completion segment.
// Each row carries the well-level total alongside the segment share so
// the table is self-contained for reporting.
func IndexRecords(result *types.WellIndexResult) []*types.Record {
	records := make([]*types.Record, 0, len(result.Segments))
	for _, seg := range result.Segments {
		records = append(records, &types.Record{
			Table:  types.TableIndices,
			WellID: seg.WellID,
			Fields: map[string]any{
				"type":              string(result.Type),
				"cell":              seg.Cell,
				"value":             seg.Value,
				"total_value":       result.Total,
				"kx":                seg.Perm.Kx,
				"ky":                seg.Perm.Ky,
				"kz":                seg.Perm.Kz,
				"equivalent_radius": seg.EquivalentRadius,
				"wellbore_radius":   seg.WellboreRadius,
				"skin":              seg.Skin,
				"geometric_factor":  seg.GeometricFactor,
				"effective_length":  seg.EffectiveLength,
				"floored":           seg.Floored,
			},
		})
	}
	return records
}

// ControlRecord builds the controls-table row for one well.
func ControlRecord(cr *types.WellControlRecord) *types.Record {
	cells := make([]map[string]any, 0, len(cr.Cells))
	for _, cw := range cr.Cells {
		cells = append(cells, map[string]any{
			"cell":   cw.Cell,
			"weight": cw.Weight,
		})
	}
	return &types.Record{
		Table:  types.TableControls,
		WellID: cr.WellID,
		Fields: map[string]any{
			"mode":  string(cr.Mode),
			"value": cr.Value,
			"sign":  cr.Sign,
			"cells": cells,
		},
	}
}

// DiagnosticRecord builds a diagnostics-table row. Diagnostics are
// advisory and may be shed by a buffered policy under pressure.
func DiagnosticRecord(wellID, message string, context map[string]any) *types.Record {
	fields := map[string]any{"message": message}
	for k, v := range context {
		fields[k] = v
	}
	return &types.Record{
		Table:  types.TableDiagnostics,
		WellID: wellID,
		Fields: fields,
	}
}
