package zigzag

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
	"github.com/peterldowns/testy/assert"
)

// series builds a flat candlestick series from the provided closing prices,
// one bar per day.
func series(prices ...float64) []shared.Candlestick {
	candles := make([]shared.Candlestick, 0, len(prices))
	for idx, price := range prices {
		candles = append(candles, shared.Candlestick{
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, idx),
			Market:    "^GSPC",
			Timeframe: shared.Daily,
		})
	}

	return candles
}

func TestDetectPivotsInputValidation(t *testing.T) {
	valid := series(100, 104, 100)

	tests := []struct {
		name    string
		candles []shared.Candlestick
		pct     float64
		wantErr error
	}{
		{
			"zero threshold",
			valid,
			0,
			shared.ErrInvalidThreshold,
		},
		{
			"negative threshold",
			valid,
			-4,
			shared.ErrInvalidThreshold,
		},
		{
			"threshold above 100",
			valid,
			101,
			shared.ErrInvalidThreshold,
		},
		{
			"empty series",
			series(),
			4,
			shared.ErrInsufficientData,
		},
		{
			"single candle",
			series(100),
			4,
			shared.ErrInsufficientData,
		},
	}

	for _, test := range tests {
		_, err := DetectPivots(test.candles, test.pct)
		if !errors.Is(err, test.wantErr) {
			t.Errorf("%s: expected %v, got %v", test.name, test.wantErr, err)
		}
	}
}

func TestDetectPivotsMalformedSeries(t *testing.T) {
	// Ensure out of order timestamps fail instead of being silently reordered.
	candles := series(100, 104, 100)
	candles[2].Date = candles[0].Date.AddDate(0, 0, -1)

	_, err := DetectPivots(candles, 4)
	assert.True(t, errors.Is(err, shared.ErrMalformedSeries))

	// Ensure non-positive prices fail.
	candles = series(100, 104, 100)
	candles[1].Low = -1

	_, err = DetectPivots(candles, 4)
	assert.True(t, errors.Is(err, shared.ErrMalformedSeries))
}

func TestDetectPivotsQuietSeries(t *testing.T) {
	// Ensure a flat series oscillating below the threshold yields zero pivots.
	flat := series(100, 101, 100, 101, 100, 101, 100)
	pivots, err := DetectPivots(flat, 4)
	assert.NoError(t, err)
	assert.Equal(t, len(pivots), 0)

	// Ensure a monotonic rise below the threshold yields zero pivots.
	rising := series(100, 100.5, 101, 101.5, 102)
	pivots, err = DetectPivots(rising, 4)
	assert.NoError(t, err)
	assert.Equal(t, len(pivots), 0)
}

func TestDetectPivots(t *testing.T) {
	candles := series(100, 104, 108, 110, 107, 103.82, 108, 112, 116, 119.94,
		117, 113.76, 117, 121, 123.76, 120, 118)

	pivots, err := DetectPivots(candles, 4)
	assert.NoError(t, err)

	want := []shared.Pivot{
		{Index: 0, Price: 100, Date: candles[0].Date, Direction: shared.Low},
		{Index: 3, Price: 110, Date: candles[3].Date, Direction: shared.High},
		{Index: 5, Price: 103.82, Date: candles[5].Date, Direction: shared.Low},
		{Index: 9, Price: 119.94, Date: candles[9].Date, Direction: shared.High},
		{Index: 11, Price: 113.76, Date: candles[11].Date, Direction: shared.Low},
		{Index: 14, Price: 123.76, Date: candles[14].Date, Direction: shared.High},
	}

	if diff := cmp.Diff(want, pivots); diff != "" {
		t.Fatalf("unexpected pivots (-want +got):\n%s", diff)
	}

	// Ensure pivot directions strictly alternate.
	for idx := 1; idx < len(pivots); idx++ {
		if pivots[idx].Direction == pivots[idx-1].Direction {
			t.Errorf("pivots %d and %d share direction %s",
				idx-1, idx, pivots[idx].Direction.String())
		}
	}

	// Ensure detection is deterministic across repeated runs.
	again, err := DetectPivots(candles, 4)
	assert.NoError(t, err)
	if diff := cmp.Diff(pivots, again); diff != "" {
		t.Fatalf("detection not deterministic (-first +second):\n%s", diff)
	}
}

func TestDetectPivotsTrailingExtreme(t *testing.T) {
	// The final low at 95 reverses beyond the threshold but is never itself
	// confirmed, so it must not be emitted.
	candles := series(100, 106, 112, 106, 100, 95)

	pivots, err := DetectPivots(candles, 4)
	assert.NoError(t, err)

	assert.Equal(t, len(pivots), 2)
	assert.Equal(t, pivots[0].Direction, shared.Low)
	assert.Equal(t, pivots[0].Price, float64(100))
	assert.Equal(t, pivots[1].Direction, shared.High)
	assert.Equal(t, pivots[1].Price, float64(112))
}
