package shared

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func sampleCandle(price float64, day int) Candlestick {
	return Candlestick{
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
		Date:      time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Market:    "^GSPC",
		Timeframe: Daily,
	}
}

func TestValidateSeries(t *testing.T) {
	valid := []Candlestick{sampleCandle(100, 1), sampleCandle(102, 2), sampleCandle(104, 3)}

	// Ensure a well formed series validates.
	assert.NoError(t, ValidateSeries(valid))

	// Ensure an empty series validates.
	assert.NoError(t, ValidateSeries([]Candlestick{}))

	// Ensure a non-finite price is flagged.
	nan := []Candlestick{sampleCandle(100, 1), sampleCandle(math.NaN(), 2)}
	err := ValidateSeries(nan)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	inf := []Candlestick{sampleCandle(100, 1), sampleCandle(math.Inf(1), 2)}
	err = ValidateSeries(inf)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	// Ensure a non-positive price is flagged.
	negative := []Candlestick{sampleCandle(100, 1), sampleCandle(-5, 2)}
	err = ValidateSeries(negative)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	zero := []Candlestick{sampleCandle(100, 1), sampleCandle(0, 2)}
	err = ValidateSeries(zero)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	// Ensure out of order timestamps are flagged, not reordered.
	outOfOrder := []Candlestick{sampleCandle(100, 2), sampleCandle(102, 1)}
	err = ValidateSeries(outOfOrder)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	// Ensure duplicate timestamps are flagged.
	duplicate := []Candlestick{sampleCandle(100, 1), sampleCandle(102, 1)}
	err = ValidateSeries(duplicate)
	assert.True(t, errors.Is(err, ErrMalformedSeries))
}
