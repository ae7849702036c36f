package errs

import (
	"errors"
	"fmt"
)

// ErrConfiguration and everything wrapping it abort a whole evaluation.
var ErrConfiguration = errors.New("invalid test configuration")

var (
	ErrUnknownExpectedOutputSource = fmt.Errorf("%w: unknown expected output source", ErrConfiguration)
	ErrMissingExpectedOutputSource = fmt.Errorf("%w: expected output source is not configured", ErrConfiguration)
	ErrUnknownUltimatePolicy       = fmt.Errorf("%w: unknown ultimate submission policy", ErrConfiguration)
)

var ErrUnknownFeedbackCategory = errors.New("unknown feedback category")

var (
	ErrNotFound = errors.New("not found")

	// ErrOutputUnavailable means captured output could not be read.
	// It is never returned for output that is legitimately empty.
	ErrOutputUnavailable = errors.New("output unavailable")

	ErrNotVisible     = errors.New("not visible under the requested feedback category")
	ErrInvalidReceipt = errors.New("invalid receipt token")
)

var InvalidCredentials = errors.New("invalid credentials")
