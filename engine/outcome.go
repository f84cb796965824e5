package engine

import (
	"errors"

	"github.com/stratalog-io/welldex/deck"
	"github.com/stratalog-io/welldex/grid"
	"github.com/stratalog-io/welldex/interval"
	"github.com/stratalog-io/welldex/params"
	"github.com/stratalog-io/welldex/policy"
	"github.com/stratalog-io/welldex/store"
	"github.com/stratalog-io/welldex/types"
)

// Process exit codes.
const (
	ExitCodeSuccess      = 0 // all wells computed, all records persisted
	ExitCodeConfigError  = 1 // required engineering parameter missing
	ExitCodeInputError   = 2 // grid, rock, or placement data missing or malformed
	ExitCodeStoreFailure = 3 // persistence of computed outputs failed
)

// ExitCode maps a run outcome status to the process exit code.
func ExitCode(status types.OutcomeStatus) int {
	switch status {
	case types.OutcomeSuccess:
		return ExitCodeSuccess
	case types.OutcomeConfigError:
		return ExitCodeConfigError
	case types.OutcomeInputError:
		return ExitCodeInputError
	case types.OutcomeStoreFailure:
		return ExitCodeStoreFailure
	default:
		return ExitCodeStoreFailure
	}
}

// ClassifyError maps a pipeline error to a run outcome.
//
// Classification:
//   - missing engineering parameter -> config_error
//   - deck validation, cell search exhaustion, out-of-range cell
//     references -> input_error
//   - storage and policy failures -> store_failure
//
// Errors with no typed classification are treated as input errors: the
// pipeline is pure computation over deck data, so an unclassified
// failure traces back to the inputs.
func ClassifyError(err error, wellID string) *types.RunOutcome {
	var (
		inputErr   *deck.InputError
		noCellsErr *interval.NoCellsError
		storageErr *store.StorageError
	)

	status := types.OutcomeInputError
	switch {
	case params.IsMissing(err):
		status = types.OutcomeConfigError
	case errors.As(err, &inputErr),
		errors.As(err, &noCellsErr),
		errors.Is(err, grid.ErrCellOutOfRange),
		errors.Is(err, types.ErrNoLayers):
		status = types.OutcomeInputError
	case errors.As(err, &storageErr),
		errors.Is(err, policy.ErrBufferFull):
		status = types.OutcomeStoreFailure
	}

	return &types.RunOutcome{
		Status:  status,
		Message: err.Error(),
		Well:    wellID,
	}
}
