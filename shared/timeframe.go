package shared

import (
	"fmt"
)

const (
	// DateLayout is the format layout for parsing dates.
	DateLayout = "2006-01-02 15:04:05"
)

// Timeframe represents the market data time period.
type Timeframe int

const (
	Daily Timeframe = iota
	FourHour
	OneHour
)

// String stringifies the provided timeframe.
func (t *Timeframe) String() string {
	switch *t {
	case Daily:
		return "daily"
	case FourHour:
		return "4H"
	case OneHour:
		return "1H"
	default:
		return "unknown"
	}
}

// ParseTimeframe parses a timeframe from its string representation.
func ParseTimeframe(timeframe string) (Timeframe, error) {
	switch timeframe {
	case "daily", "1D", "":
		return Daily, nil
	case "4H", "4h":
		return FourHour, nil
	case "1H", "1h":
		return OneHour, nil
	default:
		return Daily, fmt.Errorf("unknown timeframe provided: %s", timeframe)
	}
}
