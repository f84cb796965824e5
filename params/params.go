// Package params holds the validated engineering parameter set.
//
// Access is fail-fast: a required parameter that was never supplied
// yields a MissingError naming the key and the engineering document it
// should come from. No numeric defaults are ever substituted for
// engineering scalars. Search tuning (radius, expansion bound) is
// operational, not engineering, and carries documented defaults.
package params

import (
	"errors"
	"fmt"
)

// Key identifies one engineering parameter.
type Key string

// Engineering parameter keys.
const (
	// Completion design basis.
	KeyPerforationDensity         Key = "completion.perforation_density"
	KeyPerforationDiameter        Key = "completion.perforation_diameter"
	KeyPerforationPenetration     Key = "completion.perforation_penetration"
	KeyStageLengthHorizontal      Key = "completion.stage_length_horizontal"
	KeyStageLengthMultiLateral    Key = "completion.stage_length_multilateral"
	KeyHorizontalDensityFactor    Key = "completion.horizontal_density_factor"
	KeyHorizontalDiameterFactor   Key = "completion.horizontal_diameter_factor"
	KeyMultiLateralDensityFactor  Key = "completion.multilateral_density_factor"
	KeyMultiLateralDiameterFactor Key = "completion.multilateral_diameter_factor"
	KeyPerLayerCompletionLength   Key = "completion.per_layer_length"
	KeyStandardWellboreRadius     Key = "completion.standard_wellbore_radius"

	// Grid & units basis.
	KeyMinNetPay        Key = "interval.min_net_pay"
	KeyLengthUnitFactor Key = "units.length_factor"

	// Rock typing basis.
	KeyBandPermeabilityUpper  Key = "rock.band_permeability.upper"
	KeyBandPermeabilityMiddle Key = "rock.band_permeability.middle"
	KeyBandPermeabilityLower  Key = "rock.band_permeability.lower"
)

// Authoritative source documents for parameter values. A MissingError
// names one of these so the operator knows where the number must come from.
const (
	SourceCompletionBasis = "completion design basis"
	SourceGridBasis       = "grid & units basis"
	SourceRockBasis       = "rock typing basis"
)

// sources maps every known key to its authoritative document.
var sources = map[Key]string{
	KeyPerforationDensity:         SourceCompletionBasis,
	KeyPerforationDiameter:        SourceCompletionBasis,
	KeyPerforationPenetration:     SourceCompletionBasis,
	KeyStageLengthHorizontal:      SourceCompletionBasis,
	KeyStageLengthMultiLateral:    SourceCompletionBasis,
	KeyHorizontalDensityFactor:    SourceCompletionBasis,
	KeyHorizontalDiameterFactor:   SourceCompletionBasis,
	KeyMultiLateralDensityFactor:  SourceCompletionBasis,
	KeyMultiLateralDiameterFactor: SourceCompletionBasis,
	KeyPerLayerCompletionLength:   SourceCompletionBasis,
	KeyStandardWellboreRadius:     SourceCompletionBasis,
	KeyMinNetPay:                  SourceGridBasis,
	KeyLengthUnitFactor:           SourceGridBasis,
	KeyBandPermeabilityUpper:      SourceRockBasis,
	KeyBandPermeabilityMiddle:     SourceRockBasis,
	KeyBandPermeabilityLower:      SourceRockBasis,
}

// Source returns the authoritative document for a key, or "engineering
// parameter catalogue" for keys not in the registry.
func Source(key Key) string {
	if s, ok := sources[key]; ok {
		return s
	}
	return "engineering parameter catalogue"
}

// Keys returns every registered engineering parameter key.
// Used by completeness checks and tests.
func Keys() []Key {
	keys := make([]Key, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	return keys
}

// MissingError reports an absent required parameter. Unrecoverable:
// the run aborts with the key name and its source document.
type MissingError struct {
	Key    Key
	Source string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required parameter %q: supply it from the %s", e.Key, e.Source)
}

// IsMissing returns true if err is (or wraps) a MissingError.
func IsMissing(err error) bool {
	var missing *MissingError
	return errors.As(err, &missing)
}

// Default search tuning. Operational knobs, not engineering scalars,
// so defaults are allowed here.
const (
	// DefaultSearchRadius is the initial centroid search radius.
	DefaultSearchRadius = 500.0
	// DefaultMaxExpansions bounds the radius-doubling retries.
	DefaultMaxExpansions = 4
)

// Set is the validated engineering parameter set. Built once at run
// setup and read-only afterwards.
type Set struct {
	scalars map[Key]float64

	searchRadius  float64
	maxExpansions int
}

// New creates an empty Set with default search tuning.
func New() *Set {
	return &Set{
		scalars:       make(map[Key]float64),
		searchRadius:  DefaultSearchRadius,
		maxExpansions: DefaultMaxExpansions,
	}
}

// Put records a supplied parameter value.
func (s *Set) Put(key Key, value float64) {
	s.scalars[key] = value
}

// Lookup returns a parameter value and whether it was supplied.
func (s *Set) Lookup(key Key) (float64, bool) {
	v, ok := s.scalars[key]
	return v, ok
}

// Require returns a parameter value or a MissingError naming the key
// and its source document. Never substitutes a default.
func (s *Set) Require(key Key) (float64, error) {
	v, ok := s.scalars[key]
	if !ok {
		return 0, &MissingError{Key: key, Source: Source(key)}
	}
	return v, nil
}

// SetSearchTuning overrides the search radius and expansion bound.
// Non-positive arguments keep the current values.
func (s *Set) SetSearchTuning(radius float64, maxExpansions int) {
	if radius > 0 {
		s.searchRadius = radius
	}
	if maxExpansions > 0 {
		s.maxExpansions = maxExpansions
	}
}

// SearchRadius returns the initial centroid search radius.
func (s *Set) SearchRadius() float64 { return s.searchRadius }

// MaxExpansions returns the radius-doubling bound.
func (s *Set) MaxExpansions() int { return s.maxExpansions }

// BandPermeability returns the representative permeability for a band.
func (s *Set) BandPermeability(band string) (float64, error) {
	switch band {
	case "upper":
		return s.Require(KeyBandPermeabilityUpper)
	case "middle":
		return s.Require(KeyBandPermeabilityMiddle)
	case "lower":
		return s.Require(KeyBandPermeabilityLower)
	default:
		return 0, fmt.Errorf("unknown band %q", band)
	}
}
