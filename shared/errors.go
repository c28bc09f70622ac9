package shared

import "errors"

var (
	// ErrInvalidThreshold is returned when a reversal threshold percentage is
	// outside the (0, 100] interval.
	ErrInvalidThreshold = errors.New("invalid threshold")
	// ErrInsufficientData is returned when a candlestick series is too short
	// for pivot detection.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrMalformedSeries is returned when a candlestick series has
	// non-monotonic timestamps or non-finite prices.
	ErrMalformedSeries = errors.New("malformed series")
)
