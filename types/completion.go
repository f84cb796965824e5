package types

// CompletionInterval is the resolved depth interval of one completed
// layer for one well. Immutable once computed.
type CompletionInterval struct {
	// WellID is the owning well.
	WellID string `json:"well_id"`
	// Layer is the 1-based geological layer index.
	Layer int `json:"layer"`
	// Band is the band group of the layer.
	Band Band `json:"band"`
	// Top is the interval top depth.
	Top float64 `json:"top"`
	// Bottom is the interval bottom depth. Always >= Top + the net-pay floor.
	Bottom float64 `json:"bottom"`
	// NetPay is Bottom - Top after floor enforcement.
	NetPay float64 `json:"net_pay"`
	// Refined is true when the band was refined to the true cell depth
	// extent rather than the uniform layer estimate.
	Refined bool `json:"refined"`
}

// BandStats aggregates completed intervals per band group.
type BandStats struct {
	// Count is the number of completed intervals in the band.
	Count int `json:"count"`
	// NetPay is the total net pay in the band.
	NetPay float64 `json:"net_pay"`
}

// WellCompletion aggregates the resolved intervals of one well.
type WellCompletion struct {
	// WellID is the owning well.
	WellID string `json:"well_id"`
	// Intervals are the per-layer intervals, ordered by layer index.
	Intervals []CompletionInterval `json:"intervals"`
	// TotalNetPay is the sum of per-interval net pay.
	TotalNetPay float64 `json:"total_net_pay"`
	// ByBand holds per-band aggregate counts and pay totals.
	ByBand map[Band]BandStats `json:"by_band"`
}

// CompletionType tags the completion architecture variant.
type CompletionType string

// Completion type constants.
const (
	CompletionVertical     CompletionType = "cased_perforated"
	CompletionHorizontal   CompletionType = "multistage_horizontal"
	CompletionMultiLateral CompletionType = "multilateral_stacked"
)

// SandControl names the sand-control method of a design.
type SandControl string

// Sand control constants.
const (
	SandControlGravelPack        SandControl = "gravel_pack"
	SandControlPremiumScreens    SandControl = "premium_screens"
	SandControlExpandableScreens SandControl = "expandable_screens"
)

// JunctionType names the lateral junction class of a multi-lateral well.
type JunctionType string

// Junction type constants. Multi-lateral designs use a level-4 cemented
// junction; other trajectories carry the none sentinel.
const (
	JunctionNone          JunctionType = "none"
	JunctionLevel4Cemented JunctionType = "level4_cemented"
)

// PerforationSpec is the perforation specification of a design.
type PerforationSpec struct {
	// Density is shots per length-unit.
	Density float64 `json:"density"`
	// Diameter is the perforation entry-hole diameter.
	Diameter float64 `json:"diameter"`
	// Penetration is the perforation penetration depth.
	Penetration float64 `json:"penetration"`
}

// WellboreDesign is the completion architecture of one well.
//
// The schema is uniform across trajectory variants: fields that do not
// apply to a variant are populated with zero (counts, lengths) or the
// none sentinel (junction), so batch statistics can aggregate designs
// without per-variant branching.
type WellboreDesign struct {
	// WellID is the owning well.
	WellID string `json:"well_id"`
	// Type tags the completion architecture variant.
	Type CompletionType `json:"type"`
	// StageCount is the total number of completion stages.
	StageCount int `json:"stage_count"`
	// Lateral1Stages and Lateral2Stages are per-branch stage counts.
	// Zero when the branch does not exist.
	Lateral1Stages int `json:"lateral_1_stages"`
	Lateral2Stages int `json:"lateral_2_stages"`
	// StageLength is the actual per-stage length after rounding the
	// configured stage length to a whole stage count. Zero for vertical wells.
	StageLength float64 `json:"stage_length"`
	// Lateral1Length and Lateral2Length mirror the trajectory laterals.
	// Zero when not applicable.
	Lateral1Length float64 `json:"lateral_1_length"`
	Lateral2Length float64 `json:"lateral_2_length"`
	// CompletionLength is the total completed length.
	CompletionLength float64 `json:"completion_length"`
	// Perforation is the scaled perforation specification.
	Perforation PerforationSpec `json:"perforation"`
	// SandControl is the selected sand-control method.
	SandControl SandControl `json:"sand_control"`
	// Junction is the lateral junction type, none unless multi-lateral.
	Junction JunctionType `json:"junction"`
}
