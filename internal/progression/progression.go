// Package progression implements the week-by-week dose progression curves.
// ComputeDose is a pure function: no I/O, deterministic, and monotonic in the
// week index for every progressed metric.
package progression

import (
	"math"

	"peakform/fitness-server/internal/domain"
)

// curve describes how one block category progresses across weeks: the
// per-week fractional growth applied to each listed metric. Metrics not
// listed are carried through unchanged.
type curve struct {
	weeklyRate map[string]float64
}

// categoryCurves parameterizes progression per block category. Strength-type
// categories scale the load-side metrics upward; mobility/aerobic/endurance
// extend duration or distance while holding load constant. Categories absent
// from this table progress nothing (identity, still bounds-clamped).
var categoryCurves = map[string]curve{
	domain.CategoryStrength: {weeklyRate: map[string]float64{
		domain.MetricLoadKg:    0.025,
		domain.MetricIntensity: 0.02,
	}},
	domain.CategoryHypertrophy: {weeklyRate: map[string]float64{
		domain.MetricLoadKg: 0.02,
		domain.MetricReps:   0.05,
	}},
	domain.CategoryMobility: {weeklyRate: map[string]float64{
		domain.MetricDurationSec: 0.10,
	}},
	domain.CategoryAerobic: {weeklyRate: map[string]float64{
		domain.MetricDurationSec: 0.08,
		domain.MetricDistanceM:   0.08,
	}},
	domain.CategoryEndurance: {weeklyRate: map[string]float64{
		domain.MetricDurationSec: 0.08,
		domain.MetricDistanceM:   0.08,
		domain.MetricReps:        0.04,
	}},
	domain.CategoryBalance: {weeklyRate: map[string]float64{
		domain.MetricDurationSec: 0.05,
	}},
}

// integerMetrics are floored after scaling so prescriptions stay whole.
// Flooring a non-decreasing value keeps the progression monotonic.
var integerMetrics = map[string]struct{}{
	domain.MetricSets: {},
	domain.MetricReps: {},
}

// ComputeDose maps (week index, block category, base dose) to the dose
// planned for that week. Only keys present in base are transformed; no key is
// ever added or dropped. Values that a curve would push out of their metric's
// declared range are clamped to the nearest bound rather than rejected.
func ComputeDose(weekIndex int, category string, base domain.Dose) domain.Dose {
	if base == nil {
		return nil
	}
	weeks := float64(weekIndex - 1)
	if weeks < 0 {
		weeks = 0
	}
	c := categoryCurves[category]

	out := make(domain.Dose, len(base))
	for key, value := range base {
		progressed := value
		if rate, ok := c.weeklyRate[key]; ok {
			progressed = value * (1 + rate*weeks)
		}
		if _, whole := integerMetrics[key]; whole {
			progressed = math.Floor(progressed)
		}
		out[key] = clamp(key, progressed)
	}
	return out
}

// clamp bounds a metric value into its declared range. Unknown keys are
// returned untouched; ComputeDose never invents or drops keys, and the
// validation layer rejects unknown keys at write time.
func clamp(key string, v float64) float64 {
	bounds, ok := domain.DoseMetricBounds[key]
	if !ok {
		return v
	}
	if v < bounds.Min {
		return bounds.Min
	}
	if v > bounds.Max {
		return bounds.Max
	}
	return v
}
