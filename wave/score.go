package wave

import (
	"math"

	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
)

// Breakdown itemizes the terms of a candidate's confidence score.
type Breakdown struct {
	MeanFibError      float64
	RulePenalty       float64
	ChannelScore      float64
	ProportionPenalty float64
	Total             float64
}

// clamp bounds v to [lo, hi].
func clamp(v float64, lo float64, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// round1 rounds v to one decimal for presentation.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Score maps a candidate and its mean Fibonacci ratio error to a bounded
// confidence score with a breakdown. It is pure and deterministic, never
// fails, and clamps every term.
func Score(c *Candidate, meanFibError float64, cfg *shared.AnalysisConfig) Breakdown {
	if math.IsNaN(meanFibError) || math.IsInf(meanFibError, 0) {
		meanFibError = 1
	}
	meanFibError = clamp(meanFibError, 0, 1)

	rule := rulePenalty(c, cfg)
	channel := channelScore(c)
	proportion := proportionPenalty(c, cfg)

	weights := cfg.Weights
	total := 100 - (weights.FibError*100*meanFibError +
		weights.Rule*rule +
		weights.Channel*(100-channel) +
		weights.Proportion*proportion)

	return Breakdown{
		MeanFibError:      meanFibError,
		RulePenalty:       rule,
		ChannelScore:      channel,
		ProportionPenalty: proportion,
		Total:             round1(clamp(total, 0, 100)),
	}
}

// rulePenalty accumulates violation points for guideline-level rules. Impulse
// hard rules contribute nothing here because violating candidates were already
// discarded by the enumerator.
func rulePenalty(c *Candidate, cfg *shared.AnalysisConfig) float64 {
	if c.Pattern != Corrective {
		return 0
	}

	magnitudes := c.Magnitudes()
	waveA, waveB, waveC := magnitudes[0], magnitudes[1], magnitudes[2]
	if waveA == 0 {
		return 100
	}

	var penalty float64

	bRetrace := waveB / waveA
	if bRetrace < cfg.WaveBRetraceMin || bRetrace > cfg.WaveBRetraceMax {
		penalty += cfg.WaveBPenalty
	}

	cRatio := waveC / waveA
	if cRatio < cfg.WaveCRatioMin || cRatio > cfg.WaveCRatioMax {
		penalty += cfg.WaveCPenalty
	}

	return clamp(penalty, 0, 100)
}

// channelScore rates how closely the pattern's terminal pivot tracks the
// channel line through earlier leg endpoints, in (index, price) space. For
// impulses the line runs through the ends of Waves 1 and 3 and the distance is
// taken from Wave 5's terminus. The corresponding corrective line through the
// ends of Waves A and C would pass through Wave C's terminus, so correctives
// anchor the line on the ends of Waves A and B instead.
func channelScore(c *Candidate) float64 {
	var anchor1, anchor2, target shared.Pivot
	switch c.Pattern {
	case Impulse:
		anchor1, anchor2, target = c.Pivots[1], c.Pivots[3], c.Pivots[5]
	default:
		anchor1, anchor2, target = c.Pivots[1], c.Pivots[2], c.Pivots[3]
	}

	magnitudes := c.Magnitudes()
	var sum float64
	for idx := range magnitudes {
		sum += magnitudes[idx]
	}
	meanMagnitude := sum / float64(len(magnitudes))
	if meanMagnitude == 0 {
		return 0
	}

	x1, y1 := float64(anchor1.Index), anchor1.Price
	x2, y2 := float64(anchor2.Index), anchor2.Price
	x0, y0 := float64(target.Index), target.Price

	denominator := math.Hypot(y2-y1, x2-x1)
	if denominator == 0 {
		return 0
	}

	distance := math.Abs((y2-y1)*x0-(x2-x1)*y0+x2*y1-y2*x1) / denominator
	normalized := distance / meanMagnitude

	return clamp(100-100*normalized, 0, 100)
}

// proportionPenalty penalizes legs whose magnitude falls outside the
// configured band around the pattern's mean leg magnitude, proportionally to
// the excess.
func proportionPenalty(c *Candidate, cfg *shared.AnalysisConfig) float64 {
	const perLegWeight = 25

	magnitudes := c.Magnitudes()
	var sum float64
	for idx := range magnitudes {
		sum += magnitudes[idx]
	}
	meanMagnitude := sum / float64(len(magnitudes))
	if meanMagnitude == 0 {
		return 100
	}

	var penalty float64
	for idx := range magnitudes {
		ratio := magnitudes[idx] / meanMagnitude

		var excess float64
		switch {
		case ratio == 0:
			penalty += 100
			continue
		case ratio > cfg.ProportionMax:
			excess = ratio / cfg.ProportionMax
		case ratio < cfg.ProportionMin:
			excess = cfg.ProportionMin / ratio
		default:
			continue
		}

		penalty += (excess - 1) * perLegWeight
	}

	return clamp(penalty, 0, 100)
}
