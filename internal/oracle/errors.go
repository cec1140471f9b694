package oracle

import "errors"

var (
	// ErrOracleExhausted is returned when every attempt of a call failed.
	// It wraps the last underlying error.
	ErrOracleExhausted = errors.New("oracle retries exhausted")
	ErrInvalidProvider = errors.New("invalid oracle provider")
	ErrNoImages        = errors.New("at least one image required")
	ErrEmptyResponse   = errors.New("empty oracle response")
)
