// Package adapter defines the run-completion notification boundary.
//
// Adapters publish run completion events to downstream schedulers and
// pipeline orchestrators. The engine owns adapter lifecycle; users
// provide configuration only.
package adapter

import "context"

// RunCompletedEvent is the payload published when a run finishes.
type RunCompletedEvent struct {
	SchemaVersion  string `json:"schema_version"`
	EventType      string `json:"event_type"` // always "run_completed"
	RunID          string `json:"run_id"`
	Deck           string `json:"deck"`
	Day            string `json:"day"`
	Outcome        string `json:"outcome"` // success, config_error, input_error, store_failure
	StoragePath    string `json:"storage_path"`
	Timestamp      string `json:"timestamp"` // ISO 8601
	Attempt        int    `json:"attempt"`
	WellsCompleted int64  `json:"wells_completed"`
	WellsFailed    int64  `json:"wells_failed"`
	DurationMs     int64  `json:"duration_ms"`
}

// Adapter publishes run completion events to a downstream system.
// Implementations must be safe for single-use per run.
type Adapter interface {
	// Publish sends a run completion event to the downstream system.
	// Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *RunCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}
