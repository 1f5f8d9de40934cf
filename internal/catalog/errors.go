package catalog

import "errors"

var (
	// ErrRunNotFound is returned when a run ID does not exist.
	ErrRunNotFound = errors.New("run not found")

	// ErrNetworkNotFound is returned when a BSSID has never been observed.
	ErrNetworkNotFound = errors.New("network not found")

	// ErrInvalidRun is returned when a run is missing required fields.
	ErrInvalidRun = errors.New("invalid run")
)
