// Package interval resolves completion intervals.
//
// The resolver maps a geological layer index and a well surface
// location to a depth band: a uniform estimate from the grid's depth
// extent, refined to the true cell depth extent when cells exist inside
// both the search radius and the band. The builder aggregates per-layer
// intervals into per-well completion data.
package interval

import (
	"fmt"

	"github.com/stratalog-io/welldex/grid"
	"github.com/stratalog-io/welldex/log"
	"github.com/stratalog-io/welldex/metrics"
	"github.com/stratalog-io/welldex/params"
	"github.com/stratalog-io/welldex/types"
)

// NoCellsError reports that no grid cells were found near a well even
// at the maximum search radius. Escalation of the bounded search:
// unrecoverable, names the well so the operator can check the grid and
// the well placement.
type NoCellsError struct {
	// Well is the well whose search failed.
	Well string
	// Radius is the final (maximum) radius searched.
	Radius float64
	// Expansions is the number of radius doublings attempted.
	Expansions int
}

func (e *NoCellsError) Error() string {
	return fmt.Sprintf(
		"well %s: no grid cells within radius %g after %d expansions; check grid extent and well surface position",
		e.Well, e.Radius, e.Expansions)
}

// Resolver resolves per-layer depth intervals against a grid store.
type Resolver struct {
	store     *grid.Store
	ps        *params.Set
	layers    int
	logger    *log.Logger
	collector *metrics.Collector
}

// NewResolver creates a resolver for a deck with the given total layer
// count. The collector may be nil.
func NewResolver(store *grid.Store, ps *params.Set, layers int, logger *log.Logger, collector *metrics.Collector) (*Resolver, error) {
	if layers < 1 {
		return nil, types.ErrNoLayers
	}
	return &Resolver{
		store:     store,
		ps:        ps,
		layers:    layers,
		logger:    logger,
		collector: collector,
	}, nil
}

// searchCells finds cell indices near the well surface, doubling the
// radius up to the configured bound. Each expansion logs a warning.
// Returns the hit set and the expansion count, or NoCellsError when the
// bound is exhausted.
func (r *Resolver) searchCells(well *types.Well) ([]int, int, error) {
	radius := r.ps.SearchRadius()
	maxExpansions := r.ps.MaxExpansions()

	hits := r.store.WithinRadius(well.Surface, radius)
	expansions := 0
	for len(hits) == 0 && expansions < maxExpansions {
		radius *= 2
		expansions++
		r.logger.Warn("no cells at search radius, expanding", map[string]any{
			"well":      well.ID,
			"radius":    radius,
			"expansion": expansions,
		})
		hits = r.store.WithinRadius(well.Surface, radius)
	}

	if len(hits) == 0 {
		return nil, expansions, &NoCellsError{Well: well.ID, Radius: radius, Expansions: expansions}
	}
	return hits, expansions, nil
}

// Resolve computes the completion interval of one layer for one well.
//
// The uniform band estimate divides the grid depth extent evenly across
// the deck's layers. When cells exist inside both the search radius and
// the band, the interval is refined to the true min/max centroid depth
// of that subset; otherwise the uniform estimate is kept with a
// warning. The bottom is extended when the resulting net pay falls
// below the configured floor.
func (r *Resolver) Resolve(well *types.Well, def types.LayerDefinition) (types.CompletionInterval, error) {
	if def.Index < 1 || def.Index > r.layers {
		return types.CompletionInterval{}, fmt.Errorf(
			"well %s: layer %d outside deck range [1, %d]", well.ID, def.Index, r.layers)
	}

	hits, expansions, err := r.searchCells(well)
	r.collector.AddSearchExpansions(int64(expansions))
	if err != nil {
		return types.CompletionInterval{}, err
	}

	zMin, zMax := r.store.ZExtent()
	bandHeight := (zMax - zMin) / float64(r.layers)
	top := zMin + float64(def.Index-1)*bandHeight
	bottom := top + bandHeight

	refined := false
	if inBand := r.store.InBand(hits, top, bottom); len(inBand) > 0 {
		top, bottom = r.store.DepthExtent(inBand)
		refined = true
		r.collector.IncIntervalRefined()
	} else {
		r.logger.Warn("no cells inside layer band, keeping uniform estimate", map[string]any{
			"well":   well.ID,
			"layer":  def.Index,
			"top":    top,
			"bottom": bottom,
		})
		r.collector.IncIntervalUniform()
	}

	minPay, err := r.ps.Require(params.KeyMinNetPay)
	if err != nil {
		return types.CompletionInterval{}, err
	}
	if bottom-top < minPay {
		bottom = top + minPay
	}

	return types.CompletionInterval{
		WellID:  well.ID,
		Layer:   def.Index,
		Band:    def.Band,
		Top:     top,
		Bottom:  bottom,
		NetPay:  bottom - top,
		Refined: refined,
	}, nil
}

// BuildWellCompletion resolves every assigned layer of one well and
// aggregates total net pay and per-band stats. Pure given identical
// store, params, and layer definitions.
func (r *Resolver) BuildWellCompletion(well *types.Well, layers []types.LayerDefinition) (*types.WellCompletion, error) {
	byIndex := make(map[int]types.LayerDefinition, len(layers))
	for _, def := range layers {
		byIndex[def.Index] = def
	}

	completion := &types.WellCompletion{
		WellID: well.ID,
		ByBand: make(map[types.Band]types.BandStats),
	}

	for _, layer := range well.CompletionLayers {
		def, ok := byIndex[layer]
		if !ok {
			return nil, fmt.Errorf("well %s: no layer definition for layer %d", well.ID, layer)
		}

		iv, err := r.Resolve(well, def)
		if err != nil {
			return nil, err
		}

		completion.Intervals = append(completion.Intervals, iv)
		completion.TotalNetPay += iv.NetPay

		stats := completion.ByBand[iv.Band]
		stats.Count++
		stats.NetPay += iv.NetPay
		completion.ByBand[iv.Band] = stats
	}

	return completion, nil
}
