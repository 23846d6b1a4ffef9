package compile

import (
	"fmt"
	"math"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// Vars holds the handles of every variable a compiled model declares.
// Fields of families that were not built stay empty.
type Vars struct {
	Pair    [][]milp.Var // [segment][fixture]
	Present []milp.Var   // [fixture]
	Width   []milp.Var   // [segment]
	Padding []milp.Var   // [part]

	SegX      []milp.Var // segment centre
	SegY      []milp.Var
	SegOffset []milp.Var // segment start along its group

	FixWidth  []milp.Var
	FixX      []milp.Var
	FixY      []milp.Var
	FixOffset []milp.Var
	FixNumber []milp.Var // 1-based number of the holding segment, 0 if absent

	InGroup map[int][]milp.Var // group -> [fixture]

	Jumps     []Jump
	Distances []DistanceVars
	Seams     []Seam
	Worktop   *WorktopRun
	TooClose  []milp.Var

	centroids  []centroid
	placements []placementHelper
	orders     []orderHelper
	clearances []clearanceHelper
	sides      []sideHelper
	wide       []wideHelper
	corners    []cornerVars
}

// Jump holds the pattern variables of a segment and its predecessors.
type Jump struct {
	Segment    kitchen.SegmentID
	Diff       milp.Var // |width - previous width|
	Larger     milp.Var
	NotSame    milp.Var // both used and the widths differ by more than the same tolerance
	ReallyDiff milp.Var // both used and the widths differ by at least the different tolerance

	// Against the segment two places back.
	Second   bool
	Diff2    milp.Var
	Larger2  milp.Var
	Similar2 milp.Var
	ABA      milp.Var
}

// DistanceKind tells the reference point of a [DistanceVars].
type DistanceKind int

const (
	ZoneDistance   DistanceKind = iota // to the centroid of the fixture's zone
	TargetDistance                     // to a target point of the fixture's type
	CenterDistance                     // to the fixed centre of the fixture's zone
)

func (k DistanceKind) String() string {
	switch k {
	case ZoneDistance:
		return "zone"
	case TargetDistance:
		return "target"
	case CenterDistance:
		return "center"
	}
	return "unknown"
}

// DistanceVars holds the per-axis absolute distance of a fixture to a
// reference point. Both components are zero when the fixture is absent.
type DistanceVars struct {
	Kind    DistanceKind
	Fixture kitchen.FixtureID
	X, Y    milp.Var
	DirX    milp.Var
	DirY    milp.Var

	ref      kitchen.Point
	centroid int // index into Vars.centroids for ZoneDistance
}

// Seam holds the straddle indicator of a segment and something it may
// overlap in another part of the same group.
type Seam struct {
	Segment  kitchen.SegmentID
	Other    kitchen.SegmentID // NoSegment for a trailing edge seam
	Part     int               // the part whose trailing edge is tested, or -1
	Begins   milp.Var
	Ends     milp.Var
	Straddle milp.Var
}

// NoSegment marks the absence of a segment in a [Seam].
const NoSegment kitchen.SegmentID = -1

// WorktopRun holds the contiguous worktop length variables.
type WorktopRun struct {
	Covered []milp.Var // [segment] width covered by worktop
	Left    []milp.Var // [segment] run length ending at the segment
	Right   []milp.Var // [segment] run length starting at the segment
	Pick    []milp.Var // [segment] selects the segment whose left run is Best
	Best    milp.Var
}

type centroid struct {
	zone    string
	members []kitchen.FixtureID
	x, y    milp.Var
	qx, qy  []milp.Var // per member
}

func newVars(c *compiler) *Vars {
	k, m := c.k, c.m
	v := &Vars{InGroup: map[int][]milp.Var{}}

	v.Present = make([]milp.Var, len(k.Fixtures))
	for i := range k.Fixtures {
		v.Present[i] = m.NewBinary("core", fmt.Sprintf("present_f%d", i))
	}
	v.Pair = make([][]milp.Var, len(k.Segments))
	v.Width = make([]milp.Var, len(k.Segments))
	for s := range k.Segments {
		v.Pair[s] = make([]milp.Var, len(k.Fixtures))
		for f := range k.Fixtures {
			v.Pair[s][f] = m.NewBinary("core", fmt.Sprintf("pair_s%d_f%d", s, f))
		}
		v.Width[s] = m.NewContinuous("core", fmt.Sprintf("width_s%d", s), 0, c.big.Width)
	}
	v.Padding = make([]milp.Var, len(k.Parts))
	for p := range k.Parts {
		v.Padding[p] = m.NewContinuous("core", fmt.Sprintf("padding_p%d", p), 0, k.Parts[p].Width)
	}
	return v
}

// used returns the expression that is 1 when segment s holds a fixture.
func (c *compiler) used(s kitchen.SegmentID) *milp.Expr {
	return milp.Sum(c.v.Pair[s]...)
}

// numbered returns the sum of segment numbers weighted by pair[.,f], which
// is the number of the segment holding f.
func (c *compiler) numbered(f kitchen.FixtureID) *milp.Expr {
	e := milp.NewExpr()
	for s := range c.k.Segments {
		e.AddTerm(c.v.Pair[s][f], float64(kitchen.SegmentID(s).Number()))
	}
	return e
}

func (c *compiler) usedValue(s kitchen.SegmentID) float64 {
	return b2f(c.k.Segments[s].Occupied())
}

func deriveCore(c *compiler, vals []float64) {
	k, v := c.k, c.v
	for _, s := range k.Segments {
		vals[v.Width[s.ID]] = s.Width
		if s.Occupied() {
			vals[v.Pair[s.ID][s.Fixture]] = 1
			vals[v.Present[s.Fixture]] = 1
		}
	}
	for p := range k.Parts {
		vals[v.Padding[p]] = k.Parts[p].Position.Padding
	}
}

// eps separates strict comparisons when deriving indicator values.
const eps = 1e-9

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func abs(x float64) float64 { return math.Abs(x) }
