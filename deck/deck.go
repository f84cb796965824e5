// Package deck loads and validates input decks.
//
// A deck is the run's complete input document: the grid/rock field, the
// placed wells, and the layer count. Decks are data, not configuration;
// engineering parameters live in the params set and are supplied
// through the config file.
package deck

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stratalog-io/welldex/params"
	"github.com/stratalog-io/welldex/types"
)

// Sentinel errors for input-data classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrDeckNotFound indicates the deck file does not exist.
	ErrDeckNotFound = errors.New("deck file not found")

	// ErrEmptyGrid indicates the deck carries no grid cells.
	ErrEmptyGrid = errors.New("deck contains no grid cells")

	// ErrNoWells indicates the deck carries no wells.
	ErrNoWells = errors.New("deck contains no wells")
)

// InputError wraps a deck validation failure with the entity it
// concerns. Unrecoverable: the run aborts before any computation.
type InputError struct {
	// Entity names the offending deck entity ("grid", "well PROD-1", ...).
	Entity string
	// Err is the underlying validation error.
	Err error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid deck input (%s): %v", e.Entity, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Deck is a parsed input deck.
type Deck struct {
	// DeckID names the deck. Used as storage partition key and log field.
	DeckID string `yaml:"deck_id"`
	// Layers is the total geological layer count N.
	Layers int `yaml:"layers"`
	// Cells is the grid/rock field.
	Cells []types.GridCell `yaml:"cells"`
	// Wells are the placed wells.
	Wells []types.Well `yaml:"wells"`
}

// Load reads and validates a deck document.
func Load(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, path)
		}
		return nil, fmt.Errorf("cannot read deck file %q: %w", path, err)
	}

	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks deck-level invariants: non-empty grid and well list,
// in-range layer assignments, in-range target cells, valid cell rock data.
func (d *Deck) Validate() error {
	if d.DeckID == "" {
		return &InputError{Entity: "deck", Err: errors.New("deck_id must be non-empty")}
	}
	if d.Layers < 1 {
		return &InputError{Entity: "deck", Err: fmt.Errorf("layers must be >= 1, got %d", d.Layers)}
	}
	if len(d.Cells) == 0 {
		return &InputError{Entity: "grid", Err: ErrEmptyGrid}
	}
	if len(d.Wells) == 0 {
		return &InputError{Entity: "wells", Err: ErrNoWells}
	}

	for i := range d.Cells {
		if err := d.Cells[i].Validate(); err != nil {
			return &InputError{Entity: "grid", Err: err}
		}
	}

	seen := make(map[string]struct{}, len(d.Wells))
	for i := range d.Wells {
		w := &d.Wells[i]
		if err := w.Validate(); err != nil {
			return &InputError{Entity: "wells", Err: err}
		}
		if _, dup := seen[w.ID]; dup {
			return &InputError{Entity: "well " + w.ID, Err: errors.New("duplicate well id")}
		}
		seen[w.ID] = struct{}{}

		for _, layer := range w.CompletionLayers {
			if layer > d.Layers {
				return &InputError{
					Entity: "well " + w.ID,
					Err:    fmt.Errorf("completion layer %d exceeds deck layer count %d", layer, d.Layers),
				}
			}
		}
		for _, cell := range w.TargetCells {
			if cell < 0 || cell >= len(d.Cells) {
				return &InputError{
					Entity: "well " + w.ID,
					Err:    fmt.Errorf("target cell %d out of range [0, %d)", cell, len(d.Cells)),
				}
			}
		}
	}

	return nil
}

// BuildLayers derives the layer definitions for a deck of n layers.
// Layers are grouped top-down into upper/middle/lower thirds (upper
// gets the remainder first), each carrying the band's representative
// permeability from the rock typing basis. Fails fast when a band
// permeability was not supplied.
func BuildLayers(n int, ps *params.Set) ([]types.LayerDefinition, error) {
	if n < 1 {
		return nil, types.ErrNoLayers
	}

	bands := [3]types.Band{types.BandUpper, types.BandMiddle, types.BandLower}
	defs := make([]types.LayerDefinition, 0, n)

	for i := 0; i < n; i++ {
		// Integer band split: layer i of n maps to third i*3/n.
		band := bands[i*3/n]
		perm, err := ps.BandPermeability(string(band))
		if err != nil {
			return nil, err
		}
		defs = append(defs, types.LayerDefinition{
			Index:        i + 1,
			Band:         band,
			Permeability: perm,
		})
	}
	return defs, nil
}
