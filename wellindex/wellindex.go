// Package wellindex computes inflow productivity indices.
//
// The well index couples a grid cell to an analytic near-well inflow
// model through the Peaceman equivalent radius. The trajectory tag
// selects the geometric factor and effective length; the final index is
//
//	WI = u · 2π · sqrt(kx·ky) · L · G / (ln(r_eq/r_w) + skin)
//
// where u is the unit-conversion factor (1.0 in a consistent unit
// system). Geometric degeneracy (r_eq <= r_w, zero effective length, or
// a non-positive denominator) is recovered locally with a small
// positive floor and a warning; the index is never zero or negative.
package wellindex

import (
	"fmt"
	"math"

	"github.com/stratalog-io/welldex/grid"
	"github.com/stratalog-io/welldex/log"
	"github.com/stratalog-io/welldex/metrics"
	"github.com/stratalog-io/welldex/params"
	"github.com/stratalog-io/welldex/types"
)

// Trajectory-dependent geometric factors.
const (
	geometricFactorVertical     = 1.0
	geometricFactorHorizontal   = 1.5
	geometricFactorMultiLateral = 2.2
)

// EquivalentRadius computes the Peaceman equivalent radius for an
// anisotropic cell:
//
//	r_eq = 0.28 · sqrt( sqrt(ky/kx)·dx² + sqrt(kx/ky)·dy² ) / ( (ky/kx)^¼ + (kx/ky)^¼ )
//
// For an isotropic 250x250 cell this gives ~49.5.
func EquivalentRadius(kx, ky, dx, dy float64) float64 {
	ratio := ky / kx
	num := math.Sqrt(math.Sqrt(ratio)*dx*dx + math.Sqrt(1/ratio)*dy*dy)
	den := math.Pow(ratio, 0.25) + math.Pow(1/ratio, 0.25)
	return 0.28 * num / den
}

// Calculator computes well indices against a grid store.
type Calculator struct {
	store     *grid.Store
	ps        *params.Set
	logger    *log.Logger
	collector *metrics.Collector
}

// NewCalculator creates a calculator. The collector may be nil.
func NewCalculator(store *grid.Store, ps *params.Set, logger *log.Logger, collector *metrics.Collector) *Calculator {
	return &Calculator{store: store, ps: ps, logger: logger, collector: collector}
}

// geometry returns the (geometric factor, effective length) pair for
// the well's trajectory. Vertical wells use the primary cell height.
func geometry(well *types.Well, primary types.GridCell) (float64, float64) {
	switch well.Trajectory.Kind {
	case types.TrajectoryHorizontal:
		return geometricFactorHorizontal, well.Trajectory.Lateral1
	case types.TrajectoryMultiLateral:
		return geometricFactorMultiLateral, well.Trajectory.TotalLateralLength()
	default:
		return geometricFactorVertical, primary.Dz
	}
}

// Compute derives the productivity index of one well and splits it
// evenly across its completion-segment cells.
//
// The well-level index is computed from the primary (first) target
// cell's rock and geometry. The even split across segments mirrors the
// upstream control model; per-segment entries still record their own
// cell's permeability triple for reporting.
func (c *Calculator) Compute(well *types.Well) (*types.WellIndexResult, error) {
	if len(well.TargetCells) == 0 {
		return nil, fmt.Errorf("well %s: no target cells for well index computation", well.ID)
	}

	primary, err := c.store.Cell(well.TargetCells[0])
	if err != nil {
		return nil, fmt.Errorf("well %s: %w", well.ID, err)
	}
	if !primary.Perm.Valid() {
		return nil, fmt.Errorf("well %s: cell %d carries no usable permeability tensor; rock data is required",
			well.ID, primary.Index)
	}

	rw := well.WellboreRadius
	if rw == 0 {
		rw, err = c.ps.Require(params.KeyStandardWellboreRadius)
		if err != nil {
			return nil, err
		}
	}

	unitFactor, err := c.ps.Require(params.KeyLengthUnitFactor)
	if err != nil {
		return nil, err
	}

	rEq := EquivalentRadius(primary.Perm.Kx, primary.Perm.Ky, primary.Dx, primary.Dy)
	factor, effLength := geometry(well, primary)
	kAvg := math.Sqrt(primary.Perm.Kx * primary.Perm.Ky)

	value := 0.0
	floored := false
	denominator := math.Log(rEq/rw) + well.Skin
	if rEq > rw && effLength > 0 && denominator > 0 {
		value = unitFactor * 2 * math.Pi * kAvg * effLength * factor / denominator
	} else {
		value = types.IndexFloor
		floored = true
		c.collector.IncDegeneracyFloor()
		c.logger.Warn("degenerate well geometry, substituting productivity floor", map[string]any{
			"well":              well.ID,
			"equivalent_radius": rEq,
			"wellbore_radius":   rw,
			"effective_length":  effLength,
		})
	}

	result := &types.WellIndexResult{WellID: well.ID, Type: well.Trajectory.Kind, Total: value}

	// Even split across completion-segment cells.
	share := value / float64(len(well.TargetCells))
	for _, cellIdx := range well.TargetCells {
		cell, err := c.store.Cell(cellIdx)
		if err != nil {
			return nil, fmt.Errorf("well %s: %w", well.ID, err)
		}
		if !cell.Perm.Valid() {
			return nil, fmt.Errorf("well %s: cell %d carries no usable permeability tensor; rock data is required",
				well.ID, cell.Index)
		}

		result.Segments = append(result.Segments, types.SegmentIndex{
			WellID:           well.ID,
			Cell:             cell.Index,
			Value:            share,
			Perm:             cell.Perm,
			EquivalentRadius: rEq,
			WellboreRadius:   rw,
			Skin:             well.Skin,
			GeometricFactor:  factor,
			EffectiveLength:  effLength,
			Floored:          floored,
		})
		c.collector.IncSegmentComputed()
	}

	return result, nil
}
