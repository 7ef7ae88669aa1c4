package common

import "errors"

// PreconditionMessage is shown to users when a report is requested too early.
const PreconditionMessage = "Some information has not loaded yet. Please try again once the page has loaded."

var (
	// ErrSourceUnavailable marks a failed call to an external data source.
	// It is logged where it happens and never propagates past the aggregator.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrPreconditionNotMet is returned when a report is requested before
	// every source category has loaded or before the rendered images exist.
	ErrPreconditionNotMet = errors.New("precondition not met")
)
