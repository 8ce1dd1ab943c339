package testcloud

import "errors"

var (
	// ErrInvalidBooleanInput is returned when the async value is not a recognised boolean token.
	ErrInvalidBooleanInput = errors.New("invalid boolean input")

	// ErrMissingInput is returned when a required input is empty or names a path that does not exist.
	ErrMissingInput = errors.New("missing input")

	// ErrSubmissionFailed is returned when the test-cloud client exits with a non-zero status.
	ErrSubmissionFailed = errors.New("test-cloud submission failed")
)
