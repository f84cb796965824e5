package types

// Table identifies a persisted output table.
type Table string

// Output tables. The engineering tables carry the run's computed
// results and must never be dropped; diagnostics are advisory and may
// be shed under buffer pressure.
const (
	TableIntervals   Table = "intervals"
	TableDesigns     Table = "designs"
	TableIndices     Table = "indices"
	TableControls    Table = "controls"
	TableSummary     Table = "summary"
	TableDiagnostics Table = "diagnostics"
)

// Record is one row destined for an output table. Fields is a flat
// column map; the storage layer serializes it as a JSONL row inside
// the run's partition.
type Record struct {
	// Table is the destination table.
	Table Table `json:"table"`
	// WellID is the owning well, empty for run-level rows.
	WellID string `json:"well_id,omitempty"`
	// Fields holds the row columns.
	Fields map[string]any `json:"fields"`
}
