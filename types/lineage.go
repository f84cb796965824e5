package types

import (
	"errors"
	"fmt"
)

// RunMeta contains run identity metadata. Every log entry and every
// persisted record carries these fields.
type RunMeta struct {
	// RunID is the canonical run identifier. Must be globally unique.
	RunID string
	// DeckID identifies the input deck the run was computed from.
	DeckID string
	// ParentRunID links retry runs to their predecessor. Nil for initial runs.
	ParentRunID *string
	// Attempt is the attempt number. Starts at 1 for initial runs.
	Attempt int
}

// Validate validates run lineage rules:
//   - attempt >= 1
//   - attempt == 1 => parent_run_id must be nil (initial run)
//   - attempt > 1 => parent_run_id must be present (retry run)
func (r *RunMeta) Validate() error {
	if r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}

	if r.DeckID == "" {
		return errors.New("deck_id must be non-empty")
	}

	if r.Attempt < 1 {
		return fmt.Errorf("attempt must be >= 1, got %d", r.Attempt)
	}

	if r.Attempt == 1 && r.ParentRunID != nil {
		return errors.New("initial run (attempt=1) must not have parent_run_id")
	}

	if r.Attempt > 1 && r.ParentRunID == nil {
		return fmt.Errorf("retry run (attempt=%d) must have parent_run_id", r.Attempt)
	}

	return nil
}

// OutcomeStatus represents the final status of a run.
type OutcomeStatus string

const (
	// OutcomeSuccess indicates the run completed and all outputs were persisted.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeConfigError indicates a required engineering parameter was missing.
	OutcomeConfigError OutcomeStatus = "config_error"
	// OutcomeInputError indicates grid, rock, or placement data was missing or malformed.
	OutcomeInputError OutcomeStatus = "input_error"
	// OutcomeStoreFailure indicates persistence of computed outputs failed.
	OutcomeStoreFailure OutcomeStatus = "store_failure"
)

// RunOutcome represents the final outcome of a run.
type RunOutcome struct {
	// Status is the outcome classification.
	Status OutcomeStatus
	// Message is a human-readable description.
	Message string
	// Well is the well being processed when the run failed, if any.
	Well string
}
