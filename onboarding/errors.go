package onboarding

import "errors"

var (
	// ErrUnknownOp is returned for unrecognized step operations
	ErrUnknownOp = errors.New("unknown onboarding operation")

	// ErrStoreClosed is returned when a closed store is used
	ErrStoreClosed = errors.New("onboarding store is closed")
)
