package kitchen

import "math"

// SegmentID is a handle into [Kitchen.Segments]. It doubles as the global
// segment order across all parts.
type SegmentID int

// Number returns the 1-based global segment number.
func (id SegmentID) Number() int { return int(id) + 1 }

// Segment is one discretised slot along a part.
type Segment struct {
	ID    SegmentID
	Part  int // index into Kitchen.Parts
	Index int // position within the part

	// Solution fields.
	Width   float64
	Fixture FixtureID
}

// Occupied reports whether the solved segment holds a fixture.
func (s *Segment) Occupied() bool { return s.Fixture.Valid() }

// Point is a planar coordinate.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Position places a part in the plane and in its group.
type Position struct {
	X           float64
	Y           float64
	Angle       float64 // degrees, counter-clockwise
	Group       int
	GroupOffset float64

	// Solution field: slack before the first segment.
	Padding float64
}

// Direction returns the unit vector along the part.
func (p Position) Direction() (float64, float64) {
	rad := p.Angle * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}

// Part is a straight run of segments.
type Part struct {
	Name      string
	Width     float64
	Depth     float64
	IsTop     bool
	EdgeStart bool // the start of the run is an open edge
	EdgeEnd   bool // the end of the run is an open edge
	Position  Position
	Segments  []SegmentID
}

// End returns the group offset of the part's trailing edge.
func (p *Part) End() float64 { return p.Position.GroupOffset + p.Width }

// Along maps a distance along the part and a depth across it to plane
// coordinates.
func (p *Part) Along(along, across float64) Point {
	c, s := p.Position.Direction()
	return Point{
		X: p.Position.X + along*c - across*s,
		Y: p.Position.Y + along*s + across*c,
	}
}
