package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
)

// Layout is the output document: the solved layout of every part, keyed by
// part name.
type Layout map[string]PartLayout

// PartLayout is the padding before the first fixture and the fixtures in
// order along the part.
type PartLayout struct {
	Padding  float64         `json:"padding"`
	Fixtures []PlacedFixture `json:"fixtures"`
}

type PlacedFixture struct {
	Fixture string  `json:"fixture"`
	Width   float64 `json:"width"`
}

// ExportLayout reads the solution attributes of k. Parts without fixtures
// appear with an empty list.
func ExportLayout(k *kitchen.Kitchen) Layout {
	out := make(Layout, len(k.Parts))
	for _, p := range k.Parts {
		pl := PartLayout{Padding: p.Position.Padding, Fixtures: []PlacedFixture{}}
		for _, id := range p.Segments {
			s := k.Segment(id)
			if !s.Occupied() {
				continue
			}
			pl.Fixtures = append(pl.Fixtures, PlacedFixture{Fixture: k.Fixture(s.Fixture).Name, Width: s.Width})
		}
		out[p.Name] = pl
	}
	return out
}

// Apply lays the layout onto k, replacing any previous solution. The n-th
// fixture of a part goes onto its n-th segment.
func (l Layout) Apply(k *kitchen.Kitchen) error {
	byName := make(map[string]kitchen.FixtureID, len(k.Fixtures))
	for _, f := range k.Fixtures {
		byName[f.Name] = f.ID
	}

	k.ResetSolution()
	for name, pl := range l {
		pi, ok := k.PartIndex(name)
		if !ok {
			return errors.New(errors.ErrCodeUnknownReference, "layout part %q is not in the kitchen", name)
		}
		p := &k.Parts[pi]
		if len(pl.Fixtures) > len(p.Segments) {
			return errors.New(errors.ErrCodeInvalidFormat, "part %q: %d fixtures for %d segments", name, len(pl.Fixtures), len(p.Segments))
		}
		p.Position.Padding = pl.Padding
		for i, placed := range pl.Fixtures {
			id, ok := byName[placed.Fixture]
			if !ok {
				return errors.New(errors.ErrCodeUnknownReference, "part %q: fixture %q is not in the kitchen", name, placed.Fixture)
			}
			s := k.Segment(p.Segments[i])
			s.Fixture = id
			s.Width = placed.Width
		}
	}
	return nil
}

// WriteLayout encodes the layout as indented JSON.
func WriteLayout(w io.Writer, l Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// SaveLayout writes the layout to path.
func SaveLayout(path string, l Layout) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(f, l)
}

// ReadLayout decodes a layout document.
func ReadLayout(r io.Reader) (Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return l, nil
}

// LoadLayout reads the layout at path.
func LoadLayout(path string) (Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayout(f)
}
