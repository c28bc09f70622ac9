package shared

import (
	"encoding/json"
	"time"
)

// Direction represents the direction of a confirmed pivot.
type Direction int

const (
	High Direction = iota
	Low
)

// String stringifies the provided direction.
func (d *Direction) String() string {
	switch *d {
	case High:
		return "high"
	case Low:
		return "low"
	default:
		return "unknown"
	}
}

// MarshalJSON marshals the direction as its string form.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Pivot represents a confirmed swing high or low in a candlestick series.
// Pivots are immutable once emitted and the full sequence strictly alternates
// direction.
type Pivot struct {
	Index     int       `json:"index"`
	Price     float64   `json:"price"`
	Date      time.Time `json:"timestamp"`
	Direction Direction `json:"direction"`
}
