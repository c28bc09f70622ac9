// Package fib derives Fibonacci retracement and extension price levels and the
// ratio errors used by wave scoring.
package fib

import (
	"fmt"
	"math"

	"github.com/m-zayed5722/elliott-wave-analyzer/shared"
)

// RetracementLevels computes retracement prices for a leg running from start
// to end, oriented to the leg's direction.
func RetracementLevels(start float64, end float64, ratios []float64) []shared.FibLevel {
	levels := make([]shared.FibLevel, 0, len(ratios))

	for _, ratio := range ratios {
		levels = append(levels, shared.FibLevel{
			Level: ratio,
			Price: end - ratio*(end-start),
			Label: fmt.Sprintf("%.1f%% Retracement", ratio*100),
			Kind:  shared.Retracement,
		})
	}

	return levels
}

// ExtensionLevels projects the length of a base leg from the provided origin,
// in the base leg's direction.
func ExtensionLevels(baseStart float64, baseEnd float64, origin float64, ratios []float64) []shared.FibLevel {
	length := math.Abs(baseEnd - baseStart)
	direction := float64(1)
	if baseEnd < baseStart {
		direction = -1
	}

	levels := make([]shared.FibLevel, 0, len(ratios))
	for _, ratio := range ratios {
		levels = append(levels, shared.FibLevel{
			Level: ratio,
			Price: origin + direction*length*ratio,
			Label: fmt.Sprintf("%.3f Extension", ratio),
			Kind:  shared.Extension,
		})
	}

	return levels
}

// RatioError is the distance of an observed ratio from the closest of its
// ideals, normalized by the ideal and clamped to [0, 1].
func RatioError(observed float64, ideals []float64) float64 {
	best := float64(1)

	for _, ideal := range ideals {
		if ideal == 0 {
			continue
		}

		err := math.Abs(observed-ideal) / ideal
		if err < best {
			best = err
		}
	}

	return best
}

// ImpulseMeanError averages the ratio errors of the four rule-bearing impulse
// ratios. Leg arguments are absolute magnitudes.
func ImpulseMeanError(wave1, wave2, wave3, wave4, wave5 float64, ideals shared.ImpulseIdeals) float64 {
	if wave1 == 0 || wave3 == 0 {
		return 1
	}

	sum := RatioError(wave2/wave1, ideals.Wave2ToWave1) +
		RatioError(wave3/wave1, ideals.Wave3ToWave1) +
		RatioError(wave4/wave3, ideals.Wave4ToWave3) +
		RatioError(wave5/wave1, ideals.Wave5ToWave1)

	return sum / 4
}

// CorrectiveMeanError averages the ratio errors of the corrective ratios. Leg
// arguments are absolute magnitudes.
func CorrectiveMeanError(waveA, waveB, waveC float64, ideals shared.CorrectiveIdeals) float64 {
	if waveA == 0 {
		return 1
	}

	sum := RatioError(waveB/waveA, ideals.WaveBToWaveA) +
		RatioError(waveC/waveA, ideals.WaveCToWaveA)

	return sum / 2
}

// MergeConfluent merges displayed levels lying within the provided percentage
// tolerance of each other into a single averaged confluence level. The merge
// is display-only and never affects scoring.
func MergeConfluent(levels []shared.FibLevel, tolerancePct float64) []shared.FibLevel {
	if len(levels) < 2 || tolerancePct <= 0 {
		return levels
	}

	merged := make([]shared.FibLevel, 0, len(levels))
	used := make([]bool, len(levels))

	for i := range levels {
		if used[i] {
			continue
		}

		group := []shared.FibLevel{levels[i]}
		for j := i + 1; j < len(levels); j++ {
			if used[j] || levels[i].Price == 0 {
				continue
			}

			diffPct := math.Abs(levels[i].Price-levels[j].Price) / math.Abs(levels[i].Price) * 100
			if diffPct <= tolerancePct {
				group = append(group, levels[j])
				used[j] = true
			}
		}

		if len(group) == 1 {
			merged = append(merged, levels[i])
			continue
		}

		var sum float64
		for idx := range group {
			sum += group[idx].Price
		}

		merged = append(merged, shared.FibLevel{
			Level: levels[i].Level,
			Price: sum / float64(len(group)),
			Label: fmt.Sprintf("Confluence (%d levels)", len(group)),
			Kind:  levels[i].Kind,
		})
	}

	return merged
}
