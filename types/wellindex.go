package types

// IndexFloor is the positive floor substituted for the well index when
// the geometry degenerates (r_eq <= r_w or zero effective length).
// The index is never zero or negative.
const IndexFloor = 1e-12

// SegmentIndex is the productivity index of one completion segment.
type SegmentIndex struct {
	// WellID is the owning well.
	WellID string `json:"well_id"`
	// Cell is the grid cell index this segment is coupled to.
	Cell int `json:"cell"`
	// Value is the segment's share of the well-level index. Always > 0.
	Value float64 `json:"value"`
	// Perm is the permeability triple of the target cell.
	Perm PermTensor `json:"perm"`
	// EquivalentRadius is the Peaceman equivalent radius r_eq.
	EquivalentRadius float64 `json:"equivalent_radius"`
	// WellboreRadius is r_w.
	WellboreRadius float64 `json:"wellbore_radius"`
	// Skin is the skin factor used.
	Skin float64 `json:"skin"`
	// GeometricFactor is the trajectory-dependent geometric factor.
	GeometricFactor float64 `json:"geometric_factor"`
	// EffectiveLength is the trajectory-dependent effective length.
	EffectiveLength float64 `json:"effective_length"`
	// Floored is true when the degeneracy floor was substituted.
	Floored bool `json:"floored"`
}

// WellIndexResult is the productivity computation of one well.
type WellIndexResult struct {
	// WellID is the owning well.
	WellID string `json:"well_id"`
	// Type is the well's trajectory kind, carried for reporting.
	Type TrajectoryKind `json:"type"`
	// Total is the well-level index before segmentation. Always > 0.
	Total float64 `json:"total"`
	// Segments carries one entry per completion-segment cell, ordered
	// by target-cell position.
	Segments []SegmentIndex `json:"segments"`
}

// ControlMode is the solver control mode of a well.
type ControlMode string

// Control mode constants. This subsystem emits rate control only;
// pressure control belongs to the flow solver's constraint handling.
const (
	ControlModeRate ControlMode = "rate"
)

// CellWeight couples a control record to one grid cell.
type CellWeight struct {
	// Cell is the grid cell index.
	Cell int `json:"cell"`
	// Weight is the cell's share of the well index.
	Weight float64 `json:"weight"`
}

// WellControlRecord is the solver-facing control record of one well.
type WellControlRecord struct {
	// WellID is the referenced well.
	WellID string `json:"well_id"`
	// Mode is the control mode, fixed to rate control here.
	Mode ControlMode `json:"mode"`
	// Value is the target rate.
	Value float64 `json:"value"`
	// Sign is +1 for producers, -1 for injectors.
	Sign int `json:"sign"`
	// Cells couples the record to grid cells with per-cell weights.
	Cells []CellWeight `json:"cells"`
}
