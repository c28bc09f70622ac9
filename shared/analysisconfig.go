package shared

import (
	"errors"
	"fmt"
)

// ImpulseIdeals are the documented ideal ratio sets for the four rule-bearing
// impulse ratios.
type ImpulseIdeals struct {
	Wave2ToWave1 []float64
	Wave3ToWave1 []float64
	Wave4ToWave3 []float64
	Wave5ToWave1 []float64
}

// CorrectiveIdeals are the documented ideal ratio sets for corrective patterns.
type CorrectiveIdeals struct {
	WaveBToWaveA []float64
	WaveCToWaveA []float64
}

// ScoreWeights are the term weights of the confidence score formula. They are
// expected to sum to 1.
type ScoreWeights struct {
	FibError   float64
	Rule       float64
	Channel    float64
	Proportion float64
}

// AnalysisConfig carries every tunable of an analysis run. A config value is
// passed explicitly into the engine entry points so concurrent runs with
// different settings never interfere.
type AnalysisConfig struct {
	// RetracementRatios are the displayed retracement ratios.
	RetracementRatios []float64
	// ExtensionRatios are the displayed extension ratios.
	ExtensionRatios []float64
	// ImpulseIdeals are the scoring ideal sets for impulse candidates.
	ImpulseIdeals ImpulseIdeals
	// CorrectiveIdeals are the scoring ideal sets for corrective candidates.
	CorrectiveIdeals CorrectiveIdeals
	// Weights are the confidence score term weights.
	Weights ScoreWeights
	// WaveBRetraceMin and WaveBRetraceMax bound the guideline Wave B
	// retracement of Wave A.
	WaveBRetraceMin float64
	WaveBRetraceMax float64
	// WaveBPenalty is the rule penalty for a Wave B retracement outside its
	// guideline band.
	WaveBPenalty float64
	// WaveCRatioMin and WaveCRatioMax bound the guideline Wave C to Wave A
	// ratio.
	WaveCRatioMin float64
	WaveCRatioMax float64
	// WaveCPenalty is the rule penalty for a Wave C ratio outside its
	// guideline band.
	WaveCPenalty float64
	// ProportionMin and ProportionMax bound a leg's magnitude relative to the
	// pattern's mean leg magnitude before proportion penalties accrue.
	ProportionMin float64
	ProportionMax float64
	// ConfluenceTolerancePercent is the display-only tolerance for merging
	// near-identical Fibonacci levels. It never affects scoring.
	ConfluenceTolerancePercent float64
	// DefaultThresholds are the zigzag reversal thresholds used when a request
	// does not specify one.
	DefaultThresholds map[Timeframe]float64
}

// DefaultAnalysisConfig returns the canonical engine configuration.
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		RetracementRatios: []float64{0.236, 0.382, 0.5, 0.618, 0.786},
		ExtensionRatios:   []float64{1.0, 1.272, 1.618, 2.0, 2.618},
		ImpulseIdeals: ImpulseIdeals{
			Wave2ToWave1: []float64{0.382, 0.5, 0.618},
			Wave3ToWave1: []float64{1.0, 1.618, 2.618},
			Wave4ToWave3: []float64{0.236, 0.382, 0.5},
			Wave5ToWave1: []float64{0.618, 1.0, 1.618},
		},
		CorrectiveIdeals: CorrectiveIdeals{
			WaveBToWaveA: []float64{0.382, 0.5, 0.618},
			WaveCToWaveA: []float64{1.0, 1.618},
		},
		Weights: ScoreWeights{
			FibError:   0.4,
			Rule:       0.3,
			Channel:    0.2,
			Proportion: 0.1,
		},
		WaveBRetraceMin:            0.30,
		WaveBRetraceMax:            0.90,
		WaveBPenalty:               20,
		WaveCRatioMin:              0.7,
		WaveCRatioMax:              1.8,
		WaveCPenalty:               15,
		ProportionMin:              0.2,
		ProportionMax:              5,
		ConfluenceTolerancePercent: 2,
		DefaultThresholds: map[Timeframe]float64{
			Daily:    4.0,
			FourHour: 2.0,
			OneHour:  2.0,
		},
	}
}

// Validate asserts the config has sane inputs.
func (cfg *AnalysisConfig) Validate() error {
	var errs error

	if len(cfg.RetracementRatios) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no retracement ratios provided"))
	}
	if len(cfg.ExtensionRatios) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no extension ratios provided"))
	}
	if cfg.WaveBRetraceMin >= cfg.WaveBRetraceMax {
		errs = errors.Join(errs, fmt.Errorf("wave b retracement band is inverted"))
	}
	if cfg.WaveCRatioMin >= cfg.WaveCRatioMax {
		errs = errors.Join(errs, fmt.Errorf("wave c ratio band is inverted"))
	}
	if cfg.ProportionMin <= 0 || cfg.ProportionMin >= cfg.ProportionMax {
		errs = errors.Join(errs, fmt.Errorf("proportion band is inverted or non-positive"))
	}
	if cfg.ConfluenceTolerancePercent < 0 {
		errs = errors.Join(errs, fmt.Errorf("confluence tolerance cannot be negative"))
	}

	weightSum := cfg.Weights.FibError + cfg.Weights.Rule + cfg.Weights.Channel + cfg.Weights.Proportion
	if weightSum <= 0 {
		errs = errors.Join(errs, fmt.Errorf("score weights cannot sum to zero"))
	}

	return errs
}

// Threshold returns the default zigzag reversal threshold for the provided
// timeframe.
func (cfg *AnalysisConfig) Threshold(timeframe Timeframe) float64 {
	pct, ok := cfg.DefaultThresholds[timeframe]
	if !ok {
		return 4.0
	}

	return pct
}
