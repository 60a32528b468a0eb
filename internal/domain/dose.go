package domain

// Dose is a small set of named numeric training parameters prescribed for a
// movement (e.g. reps, load, duration). Keys are restricted to the closed
// metric enumeration below; every value must lie within its metric's bounds.
type Dose map[string]float64

// Known dose metric identifiers.
const (
	MetricSets        = "sets"
	MetricReps        = "reps"
	MetricLoadKg      = "load_kg"
	MetricDurationSec = "duration_sec"
	MetricDistanceM   = "distance_m"
	MetricIntensity   = "intensity"
	MetricRPE         = "rpe"
)

// MetricBounds declares the valid numeric range for a dose metric.
type MetricBounds struct {
	Min float64
	Max float64
}

// DoseMetricBounds maps every known metric to its declared range. A dose
// object carrying any other key is rejected at write time.
var DoseMetricBounds = map[string]MetricBounds{
	MetricSets:        {Min: 1, Max: 10},
	MetricReps:        {Min: 1, Max: 100},
	MetricLoadKg:      {Min: 0, Max: 500},
	MetricDurationSec: {Min: 0, Max: 7200},
	MetricDistanceM:   {Min: 0, Max: 100000},
	MetricIntensity:   {Min: 0, Max: 1},
	MetricRPE:         {Min: 1, Max: 10},
}

// Block category labels used by templates and progression curves.
const (
	CategoryStrength    = "strength"
	CategoryHypertrophy = "hypertrophy"
	CategoryMobility    = "mobility"
	CategoryAerobic     = "aerobic"
	CategoryEndurance   = "endurance"
	CategoryBalance     = "balance"
)

// KnownCategories is the closed set of block category labels. Impact vectors
// on movement library entries are keyed by these as well.
var KnownCategories = map[string]struct{}{
	CategoryStrength:    {},
	CategoryHypertrophy: {},
	CategoryMobility:    {},
	CategoryAerobic:     {},
	CategoryEndurance:   {},
	CategoryBalance:     {},
}

// Clone returns an independent copy of the dose. Instance rows snapshot doses
// at creation time, so shared map references are never stored.
func (d Dose) Clone() Dose {
	if d == nil {
		return nil
	}
	out := make(Dose, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
