package shared

import (
	"math"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()

	// Ensure the canonical configuration validates.
	assert.NoError(t, cfg.Validate())

	// Ensure the score weights sum to one.
	weights := cfg.Weights
	sum := weights.FibError + weights.Rule + weights.Channel + weights.Proportion
	assert.True(t, math.Abs(sum-1) < 1e-9)
}

func TestAnalysisConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *AnalysisConfig)
		wantErr string
	}{
		{
			name:    "missing retracement ratios",
			mutate:  func(cfg *AnalysisConfig) { cfg.RetracementRatios = nil },
			wantErr: "no retracement ratios provided",
		},
		{
			name:    "missing extension ratios",
			mutate:  func(cfg *AnalysisConfig) { cfg.ExtensionRatios = nil },
			wantErr: "no extension ratios provided",
		},
		{
			name:    "inverted wave b band",
			mutate:  func(cfg *AnalysisConfig) { cfg.WaveBRetraceMin = cfg.WaveBRetraceMax },
			wantErr: "wave b retracement band is inverted",
		},
		{
			name:    "inverted wave c band",
			mutate:  func(cfg *AnalysisConfig) { cfg.WaveCRatioMin = 2 },
			wantErr: "wave c ratio band is inverted",
		},
		{
			name:    "non-positive proportion band",
			mutate:  func(cfg *AnalysisConfig) { cfg.ProportionMin = 0 },
			wantErr: "proportion band is inverted or non-positive",
		},
		{
			name:    "negative confluence tolerance",
			mutate:  func(cfg *AnalysisConfig) { cfg.ConfluenceTolerancePercent = -1 },
			wantErr: "confluence tolerance cannot be negative",
		},
		{
			name:    "zero score weights",
			mutate:  func(cfg *AnalysisConfig) { cfg.Weights = ScoreWeights{} },
			wantErr: "score weights cannot sum to zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAnalysisConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error to contain %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAnalysisConfigThreshold(t *testing.T) {
	cfg := DefaultAnalysisConfig()

	// Ensure the documented defaults are returned per timeframe.
	assert.Equal(t, cfg.Threshold(Daily), 4.0)
	assert.Equal(t, cfg.Threshold(FourHour), 2.0)
	assert.Equal(t, cfg.Threshold(OneHour), 2.0)

	// Ensure unmapped timeframes fall back to the daily default.
	assert.Equal(t, cfg.Threshold(Timeframe(999)), 4.0)
}
