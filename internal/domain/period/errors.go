package period

import "errors"

// Sentinel kinds for period resolution errors.
var (
	ErrNotFound = errors.New("no matching period")
)
