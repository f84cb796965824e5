package types

import (
	"errors"
	"fmt"
	"math"
)

// Point3 is a point in grid coordinates.
type Point3 struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

// HorizontalDistance returns the distance to other in the xy plane.
func (p Point3) HorizontalDistance(other Point3) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Hypot(dx, dy)
}

// PermTensor is the diagonal permeability tensor of a cell.
type PermTensor struct {
	Kx float64 `yaml:"kx" json:"kx"`
	Ky float64 `yaml:"ky" json:"ky"`
	Kz float64 `yaml:"kz" json:"kz"`
}

// Valid returns true when all components are finite and positive.
func (p PermTensor) Valid() bool {
	for _, k := range [3]float64{p.Kx, p.Ky, p.Kz} {
		if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
			return false
		}
	}
	return true
}

// GridCell is an immutable grid cell from the grid/rock provider.
type GridCell struct {
	// Index is the cell's position in the grid provider's ordering.
	Index int `yaml:"index" json:"index"`
	// Centroid is the cell center.
	Centroid Point3 `yaml:"centroid" json:"centroid"`
	// Dx, Dy, Dz are approximate cell dimensions.
	Dx float64 `yaml:"dx" json:"dx"`
	Dy float64 `yaml:"dy" json:"dy"`
	Dz float64 `yaml:"dz" json:"dz"`
	// Perm is the permeability tensor.
	Perm PermTensor `yaml:"perm" json:"perm"`
}

// Validate checks cell geometry and rock data.
func (c *GridCell) Validate() error {
	if c.Dx <= 0 || c.Dy <= 0 || c.Dz <= 0 {
		return fmt.Errorf("cell %d: dimensions must be > 0, got (%g, %g, %g)", c.Index, c.Dx, c.Dy, c.Dz)
	}
	if !c.Perm.Valid() {
		return fmt.Errorf("cell %d: permeability tensor must be finite and positive, got (%g, %g, %g)",
			c.Index, c.Perm.Kx, c.Perm.Ky, c.Perm.Kz)
	}
	return nil
}

// Band names a geological band group.
type Band string

// Band constants, ordered top-down.
const (
	BandUpper  Band = "upper"
	BandMiddle Band = "middle"
	BandLower  Band = "lower"
)

// Valid returns true for a known band value.
func (b Band) Valid() bool {
	return b == BandUpper || b == BandMiddle || b == BandLower
}

// LayerDefinition maps a geological layer index to its band group and
// representative permeability. Derived once from the rock-type
// configuration and read-only afterwards.
type LayerDefinition struct {
	// Index is the 1-based layer index.
	Index int `yaml:"index" json:"index"`
	// Band is the band group the layer belongs to.
	Band Band `yaml:"band" json:"band"`
	// Permeability is the band's representative permeability.
	Permeability float64 `yaml:"permeability" json:"permeability"`
}

// Validate checks layer definition fields.
func (l *LayerDefinition) Validate() error {
	if l.Index < 1 {
		return fmt.Errorf("layer indices are 1-based, got %d", l.Index)
	}
	if !l.Band.Valid() {
		return fmt.Errorf("layer %d: unknown band %q", l.Index, l.Band)
	}
	if l.Permeability <= 0 {
		return fmt.Errorf("layer %d: representative permeability must be > 0, got %g", l.Index, l.Permeability)
	}
	return nil
}

// ErrNoLayers is returned when a deck defines no layers.
var ErrNoLayers = errors.New("at least one layer definition is required")
