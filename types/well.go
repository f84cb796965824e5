// Package types defines core domain types for the welldex engine.
// Entities are built once per run by successive pipeline stages and are
// never mutated after construction.
//
//nolint:revive // types is a common Go package naming convention
package types

import (
	"errors"
	"fmt"
)

// WellRole distinguishes producers from injectors.
type WellRole string

// Well role constants.
const (
	RoleProducer WellRole = "producer"
	RoleInjector WellRole = "injector"
)

// Sign returns the flow-rate sign convention for the role:
// +1 for producers, -1 for injectors.
func (r WellRole) Sign() int {
	if r == RoleInjector {
		return -1
	}
	return 1
}

// Valid returns true for a known role value.
func (r WellRole) Valid() bool {
	return r == RoleProducer || r == RoleInjector
}

// TrajectoryKind discriminates the trajectory variants.
type TrajectoryKind string

// Trajectory kind constants.
const (
	TrajectoryVertical     TrajectoryKind = "vertical"
	TrajectoryHorizontal   TrajectoryKind = "horizontal"
	TrajectoryMultiLateral TrajectoryKind = "multi_lateral"
)

// Trajectory is a tagged variant describing the well path.
// Unused lateral fields are always zero: vertical wells carry no
// laterals, horizontal wells carry exactly one, multi-lateral wells
// carry exactly two. Construct through the Vertical/Horizontal/
// MultiLateral helpers so the invariant holds by construction.
type Trajectory struct {
	Kind TrajectoryKind `yaml:"kind" json:"kind"`
	// Lateral1 is the first (or only) lateral length. Zero for vertical wells.
	Lateral1 float64 `yaml:"lateral_1" json:"lateral_1"`
	// Lateral2 is the second lateral length. Non-zero only for multi-lateral wells.
	Lateral2 float64 `yaml:"lateral_2" json:"lateral_2"`
}

// Vertical returns a vertical trajectory (no laterals).
func Vertical() Trajectory {
	return Trajectory{Kind: TrajectoryVertical}
}

// Horizontal returns a horizontal trajectory with a single lateral.
func Horizontal(lateral float64) Trajectory {
	return Trajectory{Kind: TrajectoryHorizontal, Lateral1: lateral}
}

// MultiLateral returns a multi-lateral trajectory with two branches.
func MultiLateral(lateral1, lateral2 float64) Trajectory {
	return Trajectory{Kind: TrajectoryMultiLateral, Lateral1: lateral1, Lateral2: lateral2}
}

// TotalLateralLength returns the sum of all lateral lengths.
// Zero for vertical wells.
func (t Trajectory) TotalLateralLength() float64 {
	return t.Lateral1 + t.Lateral2
}

// Validate enforces the zeroed-unused-field invariant.
func (t Trajectory) Validate() error {
	switch t.Kind {
	case TrajectoryVertical:
		if t.Lateral1 != 0 || t.Lateral2 != 0 {
			return errors.New("vertical trajectory must not carry lateral lengths")
		}
	case TrajectoryHorizontal:
		if t.Lateral1 <= 0 {
			return fmt.Errorf("horizontal trajectory requires lateral_1 > 0, got %g", t.Lateral1)
		}
		if t.Lateral2 != 0 {
			return errors.New("horizontal trajectory must not carry lateral_2")
		}
	case TrajectoryMultiLateral:
		if t.Lateral1 <= 0 || t.Lateral2 <= 0 {
			return fmt.Errorf("multi_lateral trajectory requires both laterals > 0, got %g and %g", t.Lateral1, t.Lateral2)
		}
	default:
		return fmt.Errorf("unknown trajectory kind %q", t.Kind)
	}
	return nil
}

// Surface is a well surface location.
type Surface struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Well is a placed well as supplied by the well-placement provider.
// Read-only within this subsystem.
type Well struct {
	// ID is the well name, unique within a deck.
	ID string `yaml:"id" json:"id"`
	// Role is producer or injector.
	Role WellRole `yaml:"role" json:"role"`
	// Trajectory is the tagged trajectory variant.
	Trajectory Trajectory `yaml:"trajectory" json:"trajectory"`
	// Surface is the surface location.
	Surface Surface `yaml:"surface" json:"surface"`
	// TotalDepth is the measured total depth.
	TotalDepth float64 `yaml:"total_depth" json:"total_depth"`
	// WellboreRadius is the wellbore radius r_w. Zero means "not
	// specified"; the engine substitutes the configured standard radius
	// before any computation.
	WellboreRadius float64 `yaml:"wellbore_radius" json:"wellbore_radius"`
	// Skin is the dimensionless skin factor.
	Skin float64 `yaml:"skin" json:"skin"`
	// CompletionLayers lists the geological layers open to flow (1-based).
	CompletionLayers []int `yaml:"completion_layers" json:"completion_layers"`
	// TargetRate is the rate-control target value.
	TargetRate float64 `yaml:"target_rate" json:"target_rate"`
	// TargetCells lists grid cell indices the well is coupled to.
	TargetCells []int `yaml:"target_cells" json:"target_cells"`
}

// Validate checks structural well invariants. Engineering parameters
// (perforation spec, stage lengths) are validated by the params package,
// not here.
func (w *Well) Validate() error {
	if w.ID == "" {
		return errors.New("well id must be non-empty")
	}
	if !w.Role.Valid() {
		return fmt.Errorf("well %s: unknown role %q", w.ID, w.Role)
	}
	if err := w.Trajectory.Validate(); err != nil {
		return fmt.Errorf("well %s: %w", w.ID, err)
	}
	if w.WellboreRadius < 0 {
		return fmt.Errorf("well %s: wellbore radius must not be negative, got %g", w.ID, w.WellboreRadius)
	}
	if len(w.CompletionLayers) == 0 {
		return fmt.Errorf("well %s: at least one completion layer is required", w.ID)
	}
	for _, layer := range w.CompletionLayers {
		if layer < 1 {
			return fmt.Errorf("well %s: completion layer indices are 1-based, got %d", w.ID, layer)
		}
	}
	return nil
}
