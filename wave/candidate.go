// Package wave enumerates, scores and selects Elliott Wave counts over a
// pivot sequence.
package wave

import (
	"math"

	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
)

// PatternType identifies the wave template a candidate was built from.
type PatternType int

const (
	Impulse PatternType = iota
	Corrective
)

// String stringifies the provided pattern type.
func (p *PatternType) String() string {
	switch *p {
	case Impulse:
		return "impulse"
	case Corrective:
		return "corrective"
	default:
		return "unknown"
	}
}

const (
	// impulsePivotCount is the window length of the impulse template.
	impulsePivotCount = 6
	// correctivePivotCount is the window length of the corrective template.
	correctivePivotCount = 4
)

var (
	impulseWaveNames    = []string{"1", "2", "3", "4", "5"}
	correctiveWaveNames = []string{"A", "B", "C"}
)

// Candidate is a contiguous pivot window matched against a wave template.
// Candidates are transient: built, scored and discarded within one run.
type Candidate struct {
	Pattern PatternType
	Pivots  []shared.Pivot
	Bullish bool
}

// Legs returns the signed magnitude of each leg of the candidate.
func (c *Candidate) Legs() []float64 {
	legs := make([]float64, 0, len(c.Pivots)-1)
	for idx := 1; idx < len(c.Pivots); idx++ {
		legs = append(legs, c.Pivots[idx].Price-c.Pivots[idx-1].Price)
	}

	return legs
}

// Magnitudes returns the absolute magnitude of each leg of the candidate.
func (c *Candidate) Magnitudes() []float64 {
	legs := c.Legs()
	for idx := range legs {
		legs[idx] = math.Abs(legs[idx])
	}

	return legs
}

// Start returns the index of the candidate's origin pivot.
func (c *Candidate) Start() int {
	return c.Pivots[0].Index
}

// Span returns the bar distance covered by the candidate.
func (c *Candidate) Span() int {
	return c.Pivots[len(c.Pivots)-1].Index - c.Pivots[0].Index
}

// Terminal returns the candidate's final pivot.
func (c *Candidate) Terminal() shared.Pivot {
	return c.Pivots[len(c.Pivots)-1]
}

// WaveNames returns the wave names of the candidate's template, in leg order.
func (c *Candidate) WaveNames() []string {
	if c.Pattern == Impulse {
		return impulseWaveNames
	}

	return correctiveWaveNames
}

// Labels maps each leg-terminating pivot to its wave name.
func (c *Candidate) Labels() []shared.WaveLabel {
	names := c.WaveNames()
	labels := make([]shared.WaveLabel, 0, len(names))
	for idx, name := range names {
		labels = append(labels, shared.WaveLabel{
			Index: c.Pivots[idx+1].Index,
			Wave:  name,
		})
	}

	return labels
}

// alternates reports whether the window's pivot directions strictly alternate.
func alternates(window []shared.Pivot) bool {
	for idx := 1; idx < len(window); idx++ {
		if window[idx].Direction == window[idx-1].Direction {
			return false
		}
	}

	return true
}

// nonZeroLegs reports whether every leg of the window has magnitude.
func nonZeroLegs(window []shared.Pivot) bool {
	for idx := 1; idx < len(window); idx++ {
		if window[idx].Price == window[idx-1].Price {
			return false
		}
	}

	return true
}

// satisfiesImpulseRules applies the hard, non-negotiable impulse rules.
// Candidates violating any are discarded, not scored.
func satisfiesImpulseRules(c *Candidate) bool {
	magnitudes := c.Magnitudes()
	wave1, wave2, wave3, wave5 := magnitudes[0], magnitudes[1], magnitudes[2], magnitudes[4]

	// Wave 2 must retrace strictly less than all of Wave 1.
	if wave2/wave1 >= 1 {
		return false
	}

	// Wave 3 must not be the shortest of Waves 1, 3 and 5.
	if wave3 < wave1 && wave3 < wave5 {
		return false
	}

	// Wave 4 must stay strictly out of Wave 1's price territory.
	wave1End := c.Pivots[1].Price
	wave4End := c.Pivots[4].Price
	if c.Bullish {
		return wave4End > wave1End
	}

	return wave4End < wave1End
}

// EnumerateImpulses slides the 6-pivot impulse template over the pivot
// sequence and returns every window satisfying the hard impulse rules, in
// both orientations. An empty result is a valid outcome.
func EnumerateImpulses(pivots []shared.Pivot) []Candidate {
	candidates := make([]Candidate, 0)

	for i := 0; i+impulsePivotCount <= len(pivots); i++ {
		window := pivots[i : i+impulsePivotCount]
		if !alternates(window) || !nonZeroLegs(window) {
			continue
		}

		cand := Candidate{
			Pattern: Impulse,
			Pivots:  window,
			Bullish: window[0].Direction == shared.Low,
		}
		if satisfiesImpulseRules(&cand) {
			candidates = append(candidates, cand)
		}
	}

	return candidates
}

// EnumerateCorrectives slides the 4-pivot corrective template over the pivot
// sequence. Corrective rules are guideline-level and handled by scoring, so
// every structurally sound window survives.
func EnumerateCorrectives(pivots []shared.Pivot) []Candidate {
	candidates := make([]Candidate, 0)

	for i := 0; i+correctivePivotCount <= len(pivots); i++ {
		window := pivots[i : i+correctivePivotCount]
		if !alternates(window) || !nonZeroLegs(window) {
			continue
		}

		candidates = append(candidates, Candidate{
			Pattern: Corrective,
			Pivots:  window,
			Bullish: window[0].Direction == shared.Low,
		})
	}

	return candidates
}
