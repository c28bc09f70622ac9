package wave

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
	"github.com/peterldowns/testy/assert"
)

// pivotSeq builds an alternating pivot sequence from (index, price) pairs,
// inferring direction from the price path.
func pivotSeq(start shared.Direction, points ...[2]float64) []shared.Pivot {
	pivots := make([]shared.Pivot, 0, len(points))
	direction := start

	for _, point := range points {
		pivots = append(pivots, shared.Pivot{
			Index:     int(point[0]),
			Price:     point[1],
			Date:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(point[0])),
			Direction: direction,
		})

		if direction == shared.Low {
			direction = shared.High
		} else {
			direction = shared.Low
		}
	}

	return pivots
}

// bullishImpulsePivots is a clean 6-pivot bullish impulse.
func bullishImpulsePivots() []shared.Pivot {
	return pivotSeq(shared.Low,
		[2]float64{0, 100}, [2]float64{3, 110}, [2]float64{5, 103.82},
		[2]float64{9, 119.94}, [2]float64{11, 113.76}, [2]float64{14, 123.76})
}

func TestCandidateAccessors(t *testing.T) {
	cand := Candidate{
		Pattern: Impulse,
		Pivots:  bullishImpulsePivots(),
		Bullish: true,
	}

	assert.Equal(t, cand.Start(), 0)
	assert.Equal(t, cand.Span(), 14)
	assert.Equal(t, cand.Terminal().Price, 123.76)

	legs := cand.Legs()
	assert.Equal(t, len(legs), 5)
	assert.True(t, legs[0] > 0)
	assert.True(t, legs[1] < 0)

	magnitudes := cand.Magnitudes()
	for idx := range magnitudes {
		assert.True(t, magnitudes[idx] > 0)
	}

	labels := cand.Labels()
	want := []shared.WaveLabel{
		{Index: 3, Wave: "1"},
		{Index: 5, Wave: "2"},
		{Index: 9, Wave: "3"},
		{Index: 11, Wave: "4"},
		{Index: 14, Wave: "5"},
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("unexpected labels (-want +got):\n%s", diff)
	}
}

func TestEnumerateImpulses(t *testing.T) {
	// Ensure a clean bullish impulse window is accepted.
	candidates := EnumerateImpulses(bullishImpulsePivots())
	assert.Equal(t, len(candidates), 1)
	assert.True(t, candidates[0].Bullish)

	// Ensure the bearish mirror is accepted too.
	bearish := pivotSeq(shared.High,
		[2]float64{0, 123.76}, [2]float64{3, 113.76}, [2]float64{5, 119.94},
		[2]float64{9, 103.82}, [2]float64{11, 110}, [2]float64{14, 100})
	candidates = EnumerateImpulses(bearish)
	assert.Equal(t, len(candidates), 1)
	assert.False(t, candidates[0].Bullish)

	// Ensure short pivot sequences yield no candidates.
	assert.Equal(t, len(EnumerateImpulses(bullishImpulsePivots()[:5])), 0)
	assert.Equal(t, len(EnumerateImpulses(nil)), 0)
}

func TestEnumerateImpulsesHardRules(t *testing.T) {
	tests := []struct {
		name   string
		pivots []shared.Pivot
	}{
		{
			// Wave 2 falls back to 99, beneath Wave 1's origin at 100.
			"wave 2 retraces beyond all of wave 1",
			pivotSeq(shared.Low,
				[2]float64{0, 100}, [2]float64{2, 110}, [2]float64{4, 99},
				[2]float64{6, 120}, [2]float64{8, 112}, [2]float64{10, 130}),
		},
		{
			// Waves 1 and 5 are both 10 while Wave 3 is only 4.
			"wave 3 is the shortest",
			pivotSeq(shared.Low,
				[2]float64{0, 100}, [2]float64{2, 110}, [2]float64{4, 105},
				[2]float64{6, 109}, [2]float64{8, 105.5}, [2]float64{10, 115.5}),
		},
		{
			// Wave 4 bottoms at 108, back inside Wave 1's 100-110 territory.
			"wave 4 enters wave 1 territory",
			pivotSeq(shared.Low,
				[2]float64{0, 100}, [2]float64{2, 110}, [2]float64{4, 104},
				[2]float64{6, 125}, [2]float64{8, 108}, [2]float64{10, 130}),
		},
		{
			// Bearish mirror: Wave 4 tops at 92, inside Wave 1's 100-90 territory.
			"bearish wave 4 enters wave 1 territory",
			pivotSeq(shared.High,
				[2]float64{0, 100}, [2]float64{2, 90}, [2]float64{4, 96},
				[2]float64{6, 75}, [2]float64{8, 92}, [2]float64{10, 70}),
		},
	}

	for _, test := range tests {
		candidates := EnumerateImpulses(test.pivots)
		if len(candidates) != 0 {
			t.Errorf("%s: expected candidate to be discarded, got %d", test.name, len(candidates))
		}
	}
}

func TestEnumerateCorrectives(t *testing.T) {
	pivots := pivotSeq(shared.High,
		[2]float64{0, 120}, [2]float64{3, 108}, [2]float64{5, 114}, [2]float64{8, 102})

	// Ensure a structurally sound A-B-C window survives without rule checks.
	candidates := EnumerateCorrectives(pivots)
	assert.Equal(t, len(candidates), 1)
	assert.Equal(t, candidates[0].Pattern, Corrective)
	assert.False(t, candidates[0].Bullish)

	labels := candidates[0].Labels()
	want := []shared.WaveLabel{
		{Index: 3, Wave: "A"},
		{Index: 5, Wave: "B"},
		{Index: 8, Wave: "C"},
	}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("unexpected labels (-want +got):\n%s", diff)
	}

	// Ensure a longer sequence yields every sliding window.
	longer := pivotSeq(shared.High,
		[2]float64{0, 120}, [2]float64{3, 108}, [2]float64{5, 114},
		[2]float64{8, 102}, [2]float64{10, 109})
	assert.Equal(t, len(EnumerateCorrectives(longer)), 2)

	// Ensure short pivot sequences yield no candidates.
	assert.Equal(t, len(EnumerateCorrectives(pivots[:3])), 0)
}

func TestEnumerateRejectsDegenerateWindows(t *testing.T) {
	// Ensure windows with non-alternating directions are discarded.
	repeated := bullishImpulsePivots()
	repeated[2].Direction = shared.High
	assert.Equal(t, len(EnumerateImpulses(repeated)), 0)

	// Ensure windows with a zero magnitude leg are discarded.
	flatLeg := bullishImpulsePivots()
	flatLeg[2].Price = flatLeg[1].Price
	assert.Equal(t, len(EnumerateImpulses(flatLeg)), 0)
}

func TestPatternTypeString(t *testing.T) {
	impulse := Impulse
	corrective := Corrective
	unknown := PatternType(999)

	assert.Equal(t, impulse.String(), "impulse")
	assert.Equal(t, corrective.String(), "corrective")
	assert.Equal(t, unknown.String(), "unknown")
}
