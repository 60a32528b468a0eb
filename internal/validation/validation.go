// Package validation holds the write-time guards invoked before any instance
// or catalog row is persisted. All checks are synchronous and side-effect
// free; a failure aborts the enclosing write with no partial persistence.
package validation

import (
	"errors"
	"fmt"
	"sort"

	"peakform/fitness-server/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUnknownReference = errors.New("reference id not present in catalog")
	ErrOutOfRange       = errors.New("value out of declared range")
	ErrUnknownKey       = errors.New("unrecognized key")
)

// NormalizeIDSet canonicalizes a reference-id array before membership checks:
// nil entries are stripped, duplicates removed, and the result sorted
// ascending. A nil or all-nil input yields an empty slice, not nil.
func NormalizeIDSet(ids []*int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id == nil {
			continue
		}
		if _, ok := seen[*id]; ok {
			continue
		}
		seen[*id] = struct{}{}
		out = append(out, *id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateReferences fails with a referential error if any id is absent from
// the catalog set. Callers should normalize ids first via NormalizeIDSet.
func ValidateReferences(ids []int64, catalog map[int64]struct{}) error {
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownReference, id)
		}
	}
	return nil
}

// ValidateMovementRefs checks that every movement id exists in the operational
// catalog set.
func ValidateMovementRefs(ids []primitive.ObjectID, known map[primitive.ObjectID]struct{}) error {
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("%w: movement %s", ErrUnknownReference, id.Hex())
		}
	}
	return nil
}

// ValidateScoreRange fails if any value in scores lies outside [min, max].
func ValidateScoreRange(scores map[string]float64, min, max float64) error {
	for key, v := range scores {
		if v < min || v > max {
			return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, key, v, min, max)
		}
	}
	return nil
}

// ValidateKnownKeys fails if any key of obj is not in the recognized set.
func ValidateKnownKeys(obj map[string]float64, known map[string]struct{}) error {
	for key := range obj {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
	}
	return nil
}

// doseMetricKeys is the closed key set for dose objects, derived once from
// the declared metric bounds.
var doseMetricKeys = func() map[string]struct{} {
	keys := make(map[string]struct{}, len(domain.DoseMetricBounds))
	for k := range domain.DoseMetricBounds {
		keys[k] = struct{}{}
	}
	return keys
}()

// ValidateDose checks a dose object against the closed metric enumeration and
// each metric's declared bounds.
func ValidateDose(d domain.Dose) error {
	if err := ValidateKnownKeys(map[string]float64(d), doseMetricKeys); err != nil {
		return err
	}
	for key, v := range d {
		bounds := domain.DoseMetricBounds[key]
		if v < bounds.Min || v > bounds.Max {
			return fmt.Errorf("%w: %s=%g not in [%g, %g]", ErrOutOfRange, key, v, bounds.Min, bounds.Max)
		}
	}
	return nil
}

// ValidateImpactVector checks a movement impact vector: keys must be known
// category labels, values normalized scores in [0,1].
func ValidateImpactVector(impact map[string]float64) error {
	if err := ValidateKnownKeys(impact, domain.KnownCategories); err != nil {
		return err
	}
	return ValidateScoreRange(impact, 0, 1)
}
