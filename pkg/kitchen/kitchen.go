package kitchen

import (
	"fmt"
	"slices"
)

// Zone groups fixtures for centroid computation.
type Zone struct {
	Name     string
	Optimize bool   // pull members towards their common centroid
	Center   *Point // optional fixed optimal center
	Color    string
}

// Wall bounds a group on the left and right.
type Wall struct {
	Group int
	Left  float64
	Right float64
}

// End names one end of a part.
type End int

const (
	StartEnd End = iota
	FinishEnd
)

func (e End) String() string {
	if e == FinishEnd {
		return "end"
	}
	return "start"
}

// Leg is one side of a corner: a part and the end of it that abuts the joint.
type Leg struct {
	Part int
	End  End
}

// Corner links two parts forming an L-joint. The first leg of corner
// fixtures stands on First, the second leg on Second.
type Corner struct {
	First  Leg
	Second Leg
}

// Constants are the numeric knobs of a layout problem.
type Constants struct {
	MinWidth                float64 // nominal segment width and global minimum fixture width
	MaxWidth                float64 // upper bound of any fixture width
	CanvasSize              float64 // upper bound of any coordinate
	ContinuityTolerance     float64
	SameWidthTolerance      float64
	DifferentWidthTolerance float64
	CloneCount              int // instances of a catalog entry that allows multiples
}

// DefaultConstants returns the constants used when the input omits them.
func DefaultConstants() Constants {
	return Constants{
		MinWidth:                10,
		MaxWidth:                100,
		CanvasSize:              800,
		ContinuityTolerance:     1,
		SameWidthTolerance:      2,
		DifferentWidthTolerance: 10,
		CloneCount:              3,
	}
}

// WithDefaults fills zero values from [DefaultConstants]. A zero tolerance
// is not meaningful to the model, so it also means "use the default".
func (c Constants) WithDefaults() Constants {
	d := DefaultConstants()
	if c.MinWidth == 0 {
		c.MinWidth = d.MinWidth
	}
	if c.MaxWidth == 0 {
		c.MaxWidth = d.MaxWidth
	}
	if c.CanvasSize == 0 {
		c.CanvasSize = d.CanvasSize
	}
	if c.ContinuityTolerance == 0 {
		c.ContinuityTolerance = d.ContinuityTolerance
	}
	if c.SameWidthTolerance == 0 {
		c.SameWidthTolerance = d.SameWidthTolerance
	}
	if c.DifferentWidthTolerance == 0 {
		c.DifferentWidthTolerance = d.DifferentWidthTolerance
	}
	if c.CloneCount == 0 {
		c.CloneCount = d.CloneCount
	}
	return c
}

// Kitchen is the aggregate root of a layout problem.
type Kitchen struct {
	Constants Constants
	Parts     []Part
	Segments  []Segment
	Fixtures  []Fixture
	Zones     []Zone
	Walls     []Wall
	Corners   []Corner
	Rules     []PlacementRule
	Relations RelationRules
}

// Fixture returns the fixture for id, or nil for [NoFixture].
func (k *Kitchen) Fixture(id FixtureID) *Fixture {
	if id < 0 || int(id) >= len(k.Fixtures) {
		return nil
	}
	return &k.Fixtures[id]
}

// Segment returns the segment for id.
func (k *Kitchen) Segment(id SegmentID) *Segment {
	return &k.Segments[id]
}

// PartOf returns the part owning the segment.
func (k *Kitchen) PartOf(id SegmentID) *Part {
	return &k.Parts[k.Segments[id].Part]
}

// AddPart appends a part with count segments and returns its index.
func (k *Kitchen) AddPart(p Part, count int) int {
	idx := len(k.Parts)
	p.Segments = make([]SegmentID, 0, count)
	for i := 0; i < count; i++ {
		id := SegmentID(len(k.Segments))
		k.Segments = append(k.Segments, Segment{ID: id, Part: idx, Index: i, Fixture: NoFixture})
		p.Segments = append(p.Segments, id)
	}
	k.Parts = append(k.Parts, p)
	return idx
}

// Previous returns the segment before id in the same part.
func (k *Kitchen) Previous(id SegmentID) (SegmentID, bool) {
	s := k.Segments[id]
	if s.Index == 0 {
		return 0, false
	}
	return k.Parts[s.Part].Segments[s.Index-1], true
}

// Next returns the segment after id in the same part.
func (k *Kitchen) Next(id SegmentID) (SegmentID, bool) {
	s := k.Segments[id]
	segs := k.Parts[s.Part].Segments
	if s.Index+1 >= len(segs) {
		return 0, false
	}
	return segs[s.Index+1], true
}

// IsFirst reports whether id is the first segment of its part.
func (k *Kitchen) IsFirst(id SegmentID) bool { return k.Segments[id].Index == 0 }

// IsLast reports whether id is the last segment of its part.
func (k *Kitchen) IsLast(id SegmentID) bool {
	_, ok := k.Next(id)
	return !ok
}

// PartIndex returns the index of the part called name.
func (k *Kitchen) PartIndex(name string) (int, bool) {
	for i := range k.Parts {
		if k.Parts[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Zone returns the zone called name.
func (k *Kitchen) Zone(name string) (*Zone, bool) {
	for i := range k.Zones {
		if k.Zones[i].Name == name {
			return &k.Zones[i], true
		}
	}
	return nil, false
}

// Groups returns the distinct group numbers in ascending order.
func (k *Kitchen) Groups() []int {
	var gs []int
	for _, p := range k.Parts {
		if !slices.Contains(gs, p.Position.Group) {
			gs = append(gs, p.Position.Group)
		}
	}
	slices.Sort(gs)
	return gs
}

// PartsInGroup returns the indices of the parts in group g.
func (k *Kitchen) PartsInGroup(g int) []int {
	var out []int
	for i, p := range k.Parts {
		if p.Position.Group == g {
			out = append(out, i)
		}
	}
	return out
}

// SegmentsInGroup returns the segments of every part in group g, in global
// order.
func (k *Kitchen) SegmentsInGroup(g int) []SegmentID {
	var out []SegmentID
	for _, s := range k.Segments {
		if k.Parts[s.Part].Position.Group == g {
			out = append(out, s.ID)
		}
	}
	return out
}

// FixturesOfType returns the fixtures with the given type.
func (k *Kitchen) FixturesOfType(t string) []FixtureID {
	var out []FixtureID
	for _, f := range k.Fixtures {
		if f.Type == t {
			out = append(out, f.ID)
		}
	}
	return out
}

// Matching returns the fixtures a rule applies to.
func (k *Kitchen) Matching(r PlacementRule) []FixtureID {
	var out []FixtureID
	for i := range k.Fixtures {
		if r.Matches(&k.Fixtures[i]) {
			out = append(out, k.Fixtures[i].ID)
		}
	}
	return out
}

// HasCorners reports whether any corner is declared.
func (k *Kitchen) HasCorners() bool { return len(k.Corners) > 0 }

// ResetSolution clears every solution field.
func (k *Kitchen) ResetSolution() {
	for i := range k.Segments {
		k.Segments[i].Width = 0
		k.Segments[i].Fixture = NoFixture
	}
	for i := range k.Parts {
		k.Parts[i].Position.Padding = 0
	}
}

// Validate checks the structural invariants of the arena and the segment
// chains.
func (k *Kitchen) Validate() error {
	for i, f := range k.Fixtures {
		if int(f.ID) != i {
			return fmt.Errorf("fixture %q: handle %d stored at %d", f.Name, f.ID, i)
		}
		if f.Complementary.Valid() {
			c := k.Fixture(f.Complementary)
			if c == nil || c.Complementary != f.ID {
				return fmt.Errorf("fixture %q: complementary relation is not mutual", f.Name)
			}
		}
		if f.SecondCorner.Valid() {
			if f.SecondCorner == f.ID {
				return fmt.Errorf("fixture %q: second corner points to itself", f.Name)
			}
			if k.Fixture(f.SecondCorner) == nil || k.Fixtures[f.SecondCorner].SecondCorner.Valid() {
				return fmt.Errorf("fixture %q: second corner relation is not acyclic", f.Name)
			}
		}
		if f.OlderSibling.Valid() {
			o := k.Fixture(f.OlderSibling)
			if o == nil || o.Catalog != f.Catalog || o.Clone >= f.Clone {
				return fmt.Errorf("fixture %q: older sibling is out of order", f.Name)
			}
		}
	}
	next := 0
	for pi, p := range k.Parts {
		for i, id := range p.Segments {
			if int(id) != next {
				return fmt.Errorf("part %q: segment %d out of global order", p.Name, id)
			}
			s := k.Segments[id]
			if s.Part != pi || s.Index != i || s.ID != id {
				return fmt.Errorf("part %q: segment %d has inconsistent position", p.Name, id)
			}
			next++
		}
	}
	if next != len(k.Segments) {
		return fmt.Errorf("%d segments do not belong to any part", len(k.Segments)-next)
	}
	return nil
}
