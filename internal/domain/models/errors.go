package models

import (
	"errors"
	"fmt"
)

// ErrNoData means the price source returned nothing for the symbol.
var ErrNoData = errors.New("no price data for symbol")

// InsufficientDataError means fewer rows survived dataset construction than
// the statistical floor required for a meaningful split and fit.
type InsufficientDataError struct {
	Horizon Horizon
	Rows    int
	Floor   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s horizon: %d rows, need at least %d", e.Horizon.Name(), e.Rows, e.Floor)
}

// TargetColumnMissingError means labels for a horizon could not be derived.
type TargetColumnMissingError struct {
	Horizon Horizon
}

func (e *TargetColumnMissingError) Error() string {
	return fmt.Sprintf("target labels missing for %s horizon", e.Horizon.Name())
}

// ModelFitError wraps a numerical failure during model fitting.
type ModelFitError struct {
	Stage string // "classifier" or "regressor"
	Err   error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("model fit failed (%s): %v", e.Stage, e.Err)
}

func (e *ModelFitError) Unwrap() error { return e.Err }
