// Package grid provides read-only access to the grid/rock field.
//
// The store answers the two queries the interval resolver and the well
// index calculator need: centroids within a horizontal radius of a
// surface location, and individual cells by index. Cells are immutable
// and owned by the deck; the store never copies or mutates them.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/stratalog-io/welldex/types"
)

// ErrCellOutOfRange indicates a cell index outside the grid.
var ErrCellOutOfRange = errors.New("cell index out of range")

// Store is an immutable view over the deck's grid cells.
type Store struct {
	cells      []types.GridCell
	zMin, zMax float64
}

// NewStore builds a store over the given cells.
// The cells must be non-empty and already validated by the deck.
func NewStore(cells []types.GridCell) (*Store, error) {
	if len(cells) == 0 {
		return nil, errors.New("grid store requires at least one cell")
	}

	zMin := math.Inf(1)
	zMax := math.Inf(-1)
	for i := range cells {
		z := cells[i].Centroid.Z
		if z < zMin {
			zMin = z
		}
		if z > zMax {
			zMax = z
		}
	}

	return &Store{cells: cells, zMin: zMin, zMax: zMax}, nil
}

// Len returns the cell count.
func (s *Store) Len() int { return len(s.cells) }

// Cell returns the cell at index i, or ErrCellOutOfRange.
func (s *Store) Cell(i int) (types.GridCell, error) {
	if i < 0 || i >= len(s.cells) {
		return types.GridCell{}, fmt.Errorf("%w: %d (grid holds %d cells)", ErrCellOutOfRange, i, len(s.cells))
	}
	return s.cells[i], nil
}

// ZExtent returns the min and max centroid depth across the grid.
func (s *Store) ZExtent() (zMin, zMax float64) {
	return s.zMin, s.zMax
}

// WithinRadius returns the indices of cells whose centroid lies within
// the given horizontal radius of the surface location.
func (s *Store) WithinRadius(surface types.Surface, radius float64) []int {
	origin := types.Point3{X: surface.X, Y: surface.Y}
	var hits []int
	for i := range s.cells {
		if origin.HorizontalDistance(s.cells[i].Centroid) <= radius {
			hits = append(hits, i)
		}
	}
	return hits
}

// InBand filters cell indices to those whose centroid depth falls
// inside [top, bottom].
func (s *Store) InBand(indices []int, top, bottom float64) []int {
	var hits []int
	for _, i := range indices {
		z := s.cells[i].Centroid.Z
		if z >= top && z <= bottom {
			hits = append(hits, i)
		}
	}
	return hits
}

// DepthExtent returns the min and max centroid depth across the given
// cell indices. The indices must be non-empty and in range.
func (s *Store) DepthExtent(indices []int) (zMin, zMax float64) {
	zMin = math.Inf(1)
	zMax = math.Inf(-1)
	for _, i := range indices {
		z := s.cells[i].Centroid.Z
		if z < zMin {
			zMin = z
		}
		if z > zMax {
			zMax = z
		}
	}
	return zMin, zMax
}
