package shared

import (
	"fmt"
	"math"
	"time"
)

// Candlestick represents a unit candlestick for a market.
type Candlestick struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	Date   time.Time

	// Metadata fields.
	Market    string
	Timeframe Timeframe
}

// ValidateSeries asserts the provided candlestick series is well formed for
// analysis: strictly increasing timestamps and finite, positive price values.
func ValidateSeries(candles []Candlestick) error {
	for idx := range candles {
		candle := &candles[idx]

		prices := [4]float64{candle.Open, candle.High, candle.Low, candle.Close}
		for _, price := range prices {
			if math.IsNaN(price) || math.IsInf(price, 0) {
				return fmt.Errorf("%w: non-finite price at index %d", ErrMalformedSeries, idx)
			}
			if price <= 0 {
				return fmt.Errorf("%w: non-positive price at index %d", ErrMalformedSeries, idx)
			}
		}

		if idx > 0 && !candles[idx-1].Date.Before(candle.Date) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d", ErrMalformedSeries, idx)
		}
	}

	return nil
}
