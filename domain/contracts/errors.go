package contracts

import "errors"

// Common errors for domain contracts
var (
	// ErrRunNotFound occurs when a run id has no history row
	ErrRunNotFound = errors.New("print run not found")

	// ErrRunActive occurs when a second run is requested while one is still in progress
	ErrRunActive = errors.New("a print run is already in progress")
)
