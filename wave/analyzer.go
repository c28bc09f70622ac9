package wave

import (
	"fmt"

	"github.com/m-zayed5722/elliott-wave-analyzer/fib"
	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
	"github.com/m-zayed5722/elliott-wave-analyzer/zigzag"
)

const (
	// noPatternSummary is the summary of an empty primary count.
	noPatternSummary = "No Elliott Wave pattern found in the detected pivots."
	// noAlternateSummary is the summary of an empty alternate count.
	noAlternateSummary = "No alternate wave interpretation found."
)

// scoredCandidate pairs a candidate with its score breakdown.
type scoredCandidate struct {
	candidate Candidate
	breakdown Breakdown
}

// scoreCandidate derives the candidate's Fibonacci ratio error and scores it.
func scoreCandidate(c Candidate, cfg *shared.AnalysisConfig) scoredCandidate {
	magnitudes := c.Magnitudes()

	var meanError float64
	switch c.Pattern {
	case Impulse:
		meanError = fib.ImpulseMeanError(magnitudes[0], magnitudes[1], magnitudes[2],
			magnitudes[3], magnitudes[4], cfg.ImpulseIdeals)
	default:
		meanError = fib.CorrectiveMeanError(magnitudes[0], magnitudes[1], magnitudes[2],
			cfg.CorrectiveIdeals)
	}

	return scoredCandidate{
		candidate: c,
		breakdown: Score(&c, meanError, cfg),
	}
}

// better ranks scored candidates: higher total first, ties broken by lowest
// starting pivot index, then by shortest span.
func better(a *scoredCandidate, b *scoredCandidate) bool {
	if a.breakdown.Total != b.breakdown.Total {
		return a.breakdown.Total > b.breakdown.Total
	}
	if a.candidate.Start() != b.candidate.Start() {
		return a.candidate.Start() < b.candidate.Start()
	}

	return a.candidate.Span() < b.candidate.Span()
}

// selectPrimary returns the best scored candidate.
func selectPrimary(scored []scoredCandidate) *scoredCandidate {
	best := &scored[0]
	for idx := 1; idx < len(scored); idx++ {
		if better(&scored[idx], best) {
			best = &scored[idx]
		}
	}

	return best
}

// selectAlternate returns the best candidate of the other pattern type from
// the primary, falling back to the best same-type candidate with a different
// starting pivot.
func selectAlternate(scored []scoredCandidate, primary *scoredCandidate) *scoredCandidate {
	var otherType, sameType *scoredCandidate

	for idx := range scored {
		cand := &scored[idx]
		if cand == primary {
			continue
		}

		switch {
		case cand.candidate.Pattern != primary.candidate.Pattern:
			if otherType == nil || better(cand, otherType) {
				otherType = cand
			}
		case cand.candidate.Start() != primary.candidate.Start():
			if sameType == nil || better(cand, sameType) {
				sameType = cand
			}
		}
	}

	if otherType != nil {
		return otherType
	}

	return sameType
}

// emptyWaveCount builds an explicit empty count. Fields are empty, never
// absent.
func emptyWaveCount(summary string) shared.WaveCount {
	return shared.WaveCount{
		Labels:          []shared.WaveLabel{},
		FibRetracements: []shared.FibLevel{},
		FibExtensions:   []shared.FibLevel{},
		Summary:         summary,
	}
}

// prefixLabels prepends the owning wave's name to each level label.
func prefixLabels(levels []shared.FibLevel, wave string) []shared.FibLevel {
	for idx := range levels {
		levels[idx].Label = wave + " " + levels[idx].Label
	}

	return levels
}

// invalidation derives the count's invalidation level from the origin pivot of
// the pattern's first leg.
func invalidation(c *Candidate) shared.Invalidation {
	origin := c.Pivots[0]

	word := "above"
	if origin.Direction == shared.Low {
		word = "below"
	}

	originWave := "Wave 1"
	if c.Pattern == Corrective {
		originWave = "Wave A"
	}

	return shared.Invalidation{
		Price:  origin.Price,
		Reason: fmt.Sprintf("Pattern invalidates %s %.2f (%s origin)", word, origin.Price, originWave),
	}
}

// summarize renders the count's deterministic summary sentence.
func summarize(c *Candidate, total float64) string {
	trend := "downward"
	if c.Bullish {
		trend = "upward"
	}

	terminal := c.Terminal()
	if c.Pattern == Impulse {
		return fmt.Sprintf("5-wave %s impulse with Wave 5 at %.2f. Score: %.1f/100.",
			trend, terminal.Price, total)
	}

	return fmt.Sprintf("3-wave %s A-B-C correction with Wave C at %.2f. Score: %.1f/100.",
		trend, terminal.Price, total)
}

// assembleCount builds the output wave count for a scored candidate: labels,
// display Fibonacci levels, invalidation and summary.
func assembleCount(sc *scoredCandidate, cfg *shared.AnalysisConfig) shared.WaveCount {
	c := &sc.candidate
	prices := make([]float64, 0, len(c.Pivots))
	for idx := range c.Pivots {
		prices = append(prices, c.Pivots[idx].Price)
	}

	var retracements, extensions []shared.FibLevel
	switch c.Pattern {
	case Impulse:
		retracements = prefixLabels(fib.RetracementLevels(prices[0], prices[1], cfg.RetracementRatios), "Wave 2")
		retracements = append(retracements,
			prefixLabels(fib.RetracementLevels(prices[2], prices[3], cfg.RetracementRatios), "Wave 4")...)
		extensions = prefixLabels(fib.ExtensionLevels(prices[0], prices[1], prices[2], cfg.ExtensionRatios), "Wave 3")
		extensions = append(extensions,
			prefixLabels(fib.ExtensionLevels(prices[0], prices[1], prices[4], cfg.ExtensionRatios), "Wave 5")...)
	default:
		retracements = prefixLabels(fib.RetracementLevels(prices[0], prices[1], cfg.RetracementRatios), "Wave B")
		extensions = prefixLabels(fib.ExtensionLevels(prices[0], prices[1], prices[2], cfg.ExtensionRatios), "Wave C")
	}

	// Confluence merging is cosmetic and applied to the displayed lists only.
	retracements = fib.MergeConfluent(retracements, cfg.ConfluenceTolerancePercent)
	extensions = fib.MergeConfluent(extensions, cfg.ConfluenceTolerancePercent)

	return shared.WaveCount{
		Labels:          c.Labels(),
		FibRetracements: retracements,
		FibExtensions:   extensions,
		Invalidation:    invalidation(c),
		Score:           sc.breakdown.Total,
		Summary:         summarize(c, sc.breakdown.Total),
	}
}

// Analyze runs the full analysis pipeline over the provided series: pivot
// detection, template enumeration, Fibonacci scoring and count selection. A
// series without any matching pattern yields empty primary and alternate
// counts, not an error.
func Analyze(candles []shared.Candlestick, pct float64, cfg *shared.AnalysisConfig) (*shared.AnalysisResult, error) {
	if cfg == nil {
		cfg = shared.DefaultAnalysisConfig()
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating analysis config: %w", err)
	}

	pivots, err := zigzag.DetectPivots(candles, pct)
	if err != nil {
		return nil, err
	}

	impulses := EnumerateImpulses(pivots)
	correctives := EnumerateCorrectives(pivots)

	scored := make([]scoredCandidate, 0, len(impulses)+len(correctives))
	for idx := range impulses {
		scored = append(scored, scoreCandidate(impulses[idx], cfg))
	}
	for idx := range correctives {
		scored = append(scored, scoreCandidate(correctives[idx], cfg))
	}

	result := &shared.AnalysisResult{Pivots: pivots}

	if len(scored) == 0 {
		result.Primary = emptyWaveCount(noPatternSummary)
		result.Alternate = emptyWaveCount(noAlternateSummary)
		return result, nil
	}

	primary := selectPrimary(scored)
	result.Primary = assembleCount(primary, cfg)

	alternate := selectAlternate(scored, primary)
	if alternate != nil {
		result.Alternate = assembleCount(alternate, cfg)
	} else {
		result.Alternate = emptyWaveCount(noAlternateSummary)
	}

	return result, nil
}
