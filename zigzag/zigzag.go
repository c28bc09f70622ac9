// Package zigzag reduces a candlestick series to an alternating sequence of
// confirmed swing highs and lows using a percentage reversal threshold.
package zigzag

import (
	"fmt"

	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
)

// tracker is the running candidate extreme threaded through the detection
// fold. It is local to a call, never shared state.
type tracker struct {
	price     float64
	index     int
	direction shared.Direction
}

// pivot confirms the tracked extreme as a pivot.
func (t *tracker) pivot(candles []shared.Candlestick) shared.Pivot {
	return shared.Pivot{
		Index:     t.index,
		Price:     t.price,
		Date:      candles[t.index].Date,
		Direction: t.direction,
	}
}

// declinePercent is the percentage decline from a tracked high to a price.
func declinePercent(from float64, to float64) float64 {
	return (from - to) / from * 100
}

// rallyPercent is the percentage rally from a tracked low to a price.
func rallyPercent(from float64, to float64) float64 {
	return (to - from) / from * 100
}

// DetectPivots detects zigzag pivots in the provided series. A swing extreme
// only becomes a pivot once price reverses from it by at least pct percent, so
// the output strictly alternates direction by construction. The trailing
// unconfirmed extreme at the end of the series is never emitted.
func DetectPivots(candles []shared.Candlestick, pct float64) ([]shared.Pivot, error) {
	if pct <= 0 || pct > 100 {
		return nil, fmt.Errorf("%w: reversal threshold must be in (0, 100], got %v",
			shared.ErrInvalidThreshold, pct)
	}
	if len(candles) < 2 {
		return nil, fmt.Errorf("%w: at least 2 candles required, got %d",
			shared.ErrInsufficientData, len(candles))
	}

	err := shared.ValidateSeries(candles)
	if err != nil {
		return nil, err
	}

	pivots := make([]shared.Pivot, 0, len(candles)/2)

	// Seed the detection by tracking the running extreme in both directions
	// until price reverses from one of them by the threshold. The extreme that
	// reversed becomes the first confirmed pivot and fixes the initial trend.
	maxHigh := tracker{price: candles[0].High, direction: shared.High}
	minLow := tracker{price: candles[0].Low, direction: shared.Low}

	var cand tracker
	seeded := false
	idx := 1
	for ; idx < len(candles); idx++ {
		candle := &candles[idx]
		if candle.High > maxHigh.price {
			maxHigh.price, maxHigh.index = candle.High, idx
		}
		if candle.Low < minLow.price {
			minLow.price, minLow.index = candle.Low, idx
		}

		declined := declinePercent(maxHigh.price, candle.Low) >= pct
		rallied := rallyPercent(minLow.price, candle.High) >= pct

		// When both extremes reverse on the same bar, confirm the older one.
		if declined && rallied {
			if maxHigh.index <= minLow.index {
				rallied = false
			} else {
				declined = false
			}
		}

		switch {
		case declined:
			pivots = append(pivots, maxHigh.pivot(candles))
			cand = tracker{price: candle.Low, index: idx, direction: shared.Low}
			if minLow.index > maxHigh.index && minLow.price < cand.price {
				cand.price, cand.index = minLow.price, minLow.index
			}
			seeded = true
		case rallied:
			pivots = append(pivots, minLow.pivot(candles))
			cand = tracker{price: candle.High, index: idx, direction: shared.High}
			if maxHigh.index > minLow.index && maxHigh.price > cand.price {
				cand.price, cand.index = maxHigh.price, maxHigh.index
			}
			seeded = true
		}

		if seeded {
			break
		}
	}

	if !seeded {
		// Price never moved the threshold in either direction.
		return pivots, nil
	}

	for i := idx + 1; i < len(candles); i++ {
		candle := &candles[i]

		switch cand.direction {
		case shared.High:
			if candle.High > cand.price {
				cand.price, cand.index = candle.High, i
				continue
			}
			if declinePercent(cand.price, candle.Low) >= pct {
				pivots = append(pivots, cand.pivot(candles))
				cand = tracker{price: candle.Low, index: i, direction: shared.Low}
			}
		case shared.Low:
			if candle.Low < cand.price {
				cand.price, cand.index = candle.Low, i
				continue
			}
			if rallyPercent(cand.price, candle.High) >= pct {
				pivots = append(pivots, cand.pivot(candles))
				cand = tracker{price: candle.High, index: i, direction: shared.High}
			}
		}
	}

	// The trailing candidate extreme is unconfirmed and is never emitted.
	return pivots, nil
}
