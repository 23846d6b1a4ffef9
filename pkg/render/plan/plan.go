// Package plan projects a solved kitchen onto a drawing plane.
//
// Two views are supported. [Floor] places every part at its position and
// angle, so L- and U-shaped kitchens appear as built. [Strips] lays the
// parts out as horizontal strips stacked top to bottom, one per part, which
// keeps every fixture label readable regardless of rotation.
//
// Coordinates are in kitchen units with the y axis pointing up; sinks flip
// and scale as their format requires.
package plan

import (
	"fmt"
	"math"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
)

// View selects the projection.
type View string

const (
	Floor  View = "floor"
	Strips View = "strips"
)

// ParseView returns the view for a name; empty means floor.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "", Floor:
		return Floor, nil
	case Strips:
		return Strips, nil
	}
	return "", fmt.Errorf("unknown view %q (want floor or strips)", s)
}

// StripGap separates consecutive parts in the strips view.
const StripGap = 10.0

// Quad is a quadrilateral in drawing order: start-front, end-front,
// end-back, start-back.
type Quad [4]kitchen.Point

// Center returns the mean of the corners.
func (q Quad) Center() kitchen.Point {
	var c kitchen.Point
	for _, p := range q {
		c.X += p.X / 4
		c.Y += p.Y / 4
	}
	return c
}

// Outline is the footprint of a part.
type Outline struct {
	Part    string
	Top     bool
	Width   float64
	Depth   float64
	Padding float64
	Used    float64 // sum of placed fixture widths
	Shape   Quad
}

// Block is one placed fixture.
type Block struct {
	Part    string
	Segment int // 1-based number of the segment in the kitchen
	Fixture string
	Type    string
	Zone    string
	Color   string
	Width   float64
	Top     bool
	Shape   Quad
}

// Label is the text drawn on a block.
func (b Block) Label() string {
	return fmt.Sprintf("%d. %s", b.Segment, b.Fixture)
}

// Swatch is a legend entry.
type Swatch struct {
	Zone  string
	Color string
}

// Plan is a drawable kitchen.
type Plan struct {
	View     View
	Outlines []Outline
	Blocks   []Block
	Legend   []Swatch
	Min, Max kitchen.Point
}

// Width returns the horizontal extent.
func (p Plan) Width() float64 { return p.Max.X - p.Min.X }

// Height returns the vertical extent.
func (p Plan) Height() float64 { return p.Max.Y - p.Min.Y }

// Build projects the solution attributes of k. Unoccupied segments are not
// drawn.
func Build(k *kitchen.Kitchen, view View) Plan {
	p := Plan{View: view}
	colors := zoneColors(k)
	for _, z := range k.Zones {
		p.Legend = append(p.Legend, Swatch{Zone: z.Name, Color: colors[z.Name]})
	}

	y := 0.0
	for pi := range k.Parts {
		part := &k.Parts[pi]
		place := part.Along
		if view == Strips {
			y -= part.Depth
			base := y
			place = func(along, across float64) kitchen.Point {
				return kitchen.Point{X: along, Y: base + across}
			}
			y -= StripGap
		}

		o := Outline{
			Part:    part.Name,
			Top:     part.IsTop,
			Width:   part.Width,
			Depth:   part.Depth,
			Padding: part.Position.Padding,
			Shape:   quad(place, 0, part.Width, part.Depth),
		}

		at := part.Position.Padding
		for _, id := range part.Segments {
			s := k.Segment(id)
			if !s.Occupied() || s.Width <= 0 {
				continue
			}
			f := k.Fixture(s.Fixture)
			color, ok := colors[f.Zone]
			if !ok {
				color = EmptyColor
			}
			p.Blocks = append(p.Blocks, Block{
				Part:    part.Name,
				Segment: id.Number(),
				Fixture: f.Name,
				Type:    f.Type,
				Zone:    f.Zone,
				Color:   color,
				Width:   s.Width,
				Top:     part.IsTop,
				Shape:   quad(place, at, s.Width, part.Depth),
			})
			at += s.Width
			o.Used += s.Width
		}
		p.Outlines = append(p.Outlines, o)
	}
	p.Min, p.Max = bounds(p.Outlines)
	return p
}

func quad(place func(along, across float64) kitchen.Point, start, width, depth float64) Quad {
	return Quad{
		place(start, 0),
		place(start+width, 0),
		place(start+width, depth),
		place(start, depth),
	}
}

func bounds(outlines []Outline) (kitchen.Point, kitchen.Point) {
	if len(outlines) == 0 {
		return kitchen.Point{}, kitchen.Point{}
	}
	lo := kitchen.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi := kitchen.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, o := range outlines {
		for _, c := range o.Shape {
			lo.X, lo.Y = math.Min(lo.X, c.X), math.Min(lo.Y, c.Y)
			hi.X, hi.Y = math.Max(hi.X, c.X), math.Max(hi.Y, c.Y)
		}
	}
	return lo, hi
}
