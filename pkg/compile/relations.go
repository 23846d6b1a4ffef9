package compile

import (
	"fmt"
	"math"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

type orderHelper struct {
	first, second kitchen.FixtureID
	before        milp.Var // first lies before second
}

type clearanceHelper struct {
	wall     kitchen.Wall
	distance float64
	fixture  kitchen.FixtureID
	tooClose milp.Var
}

type sideHelper struct {
	length  float64
	fixture kitchen.FixtureID
	left    milp.Var // the run on the left satisfies the length
}

type wideHelper struct {
	width   float64
	fixture kitchen.FixtureID
	wide    milp.Var
}

// buildRelations compiles the numeric relation rules and the worktop run
// lengths they and the objective read.
func buildRelations(c *compiler) {
	buildWorktopRun(c)
	k := c.k
	for ri, r := range k.Relations.MinDistances {
		buildMinDistance(c, ri, r)
	}
	for ri, r := range k.Relations.WallDistances {
		buildWallDistance(c, ri, r)
	}
	for ri, r := range k.Relations.WorktopLengths {
		buildWorktopLength(c, ri, r)
	}
	for ri, r := range k.Relations.MinOneWide {
		buildMinOneWide(c, ri, r)
	}
}

func (c *compiler) hasWorktop(s kitchen.SegmentID) *milp.Expr {
	e := milp.NewExpr()
	for _, f := range c.k.Fixtures {
		if f.HasWorktop {
			e.Add(c.v.Pair[s][f.ID])
		}
	}
	return e
}

// buildWorktopRun bounds, for every segment, the length of the contiguous
// worktop run ending (Left) and starting (Right) at it. Both are upper
// bounds that the objective or a length rule pushes up to the true run.
// Best picks the longest left run.
func buildWorktopRun(c *compiler) {
	k, v, m := c.k, c.v, c.m
	if len(k.Segments) == 0 {
		return
	}
	fam := string(Relations)
	W, C := c.big.Width, c.big.Canvas
	n := len(k.Segments)
	run := &WorktopRun{
		Covered: make([]milp.Var, n),
		Left:    make([]milp.Var, n),
		Right:   make([]milp.Var, n),
		Pick:    make([]milp.Var, n),
		Best:    m.NewContinuous(fam, "worktop_best", 0, C),
	}
	for s := range k.Segments {
		run.Covered[s] = m.NewContinuous(fam, fmt.Sprintf("worktop_s%d", s), 0, W)
		run.Left[s] = m.NewContinuous(fam, fmt.Sprintf("worktop_left_s%d", s), 0, C)
		run.Right[s] = m.NewContinuous(fam, fmt.Sprintf("worktop_right_s%d", s), 0, C)
		run.Pick[s] = m.NewBinary(fam, fmt.Sprintf("worktop_pick_s%d", s))
	}

	for _, seg := range k.Segments {
		s := seg.ID
		has := c.hasWorktop(s)
		g := m.Group(fam, fmt.Sprintf("worktop_s%d", s), 8)
		g.Le(run.Covered[s], v.Width[s])
		g.Le(run.Covered[s], milp.NewExpr().AddTerm(has, W))
		g.LowerIf(run.Covered[s], v.Width[s], has, W)
		if p, ok := k.Previous(s); ok {
			g.Le(run.Left[s], milp.Sum(run.Left[p], run.Covered[s]))
		} else {
			g.Le(run.Left[s], run.Covered[s])
		}
		g.Le(run.Left[s], milp.NewExpr().AddTerm(has, C))
		if nx, ok := k.Next(s); ok {
			g.Le(run.Right[s], milp.Sum(run.Right[nx], run.Covered[s]))
		} else {
			g.Le(run.Right[s], run.Covered[s])
		}
		g.Le(run.Right[s], milp.NewExpr().AddTerm(has, C))
		g.UpperIf(run.Best, run.Left[s], run.Pick[s], C)
		g.Close()
	}
	m.Eq(fam, milp.Sum(run.Pick...), milp.Constant(1))
	v.Worktop = run
}

// minDistancePairs lists the fixture pairs a min distance rule constrains.
// The halves of one tall unit and the legs of one corner unit share a
// position and are never paired.
func minDistancePairs(k *kitchen.Kitchen, r kitchen.MinDistance) [][2]kitchen.FixtureID {
	var out [][2]kitchen.FixtureID
	for _, a := range k.FixturesOfType(r.First) {
		for _, b := range k.FixturesOfType(r.Second) {
			if a == b || (r.First == r.Second && a > b) {
				continue
			}
			fa, fb := k.Fixture(a), k.Fixture(b)
			if fa.Complementary == b || fa.SecondCorner == b || fb.SecondCorner == a {
				continue
			}
			out = append(out, [2]kitchen.FixtureID{a, b})
		}
	}
	return out
}

// buildMinDistance keeps two fixtures placed in the same group at least
// Distance apart along the group, in either order.
func buildMinDistance(c *compiler, ri int, r kitchen.MinDistance) {
	k, v, m := c.k, c.v, c.m
	fam := string(Relations)
	M := c.big.Canvas + c.big.Width + r.Distance
	groups := k.Groups()
	for _, pair := range minDistancePairs(k, r) {
		a, b := pair[0], pair[1]
		o := m.NewBinary(fam, fmt.Sprintf("before_r%d_f%d_f%d", ri, a, b))
		v.orders = append(v.orders, orderHelper{first: a, second: b, before: o})
		endA := milp.Sum(v.FixOffset[a], v.FixWidth[a]).AddConstant(r.Distance)
		endB := milp.Sum(v.FixOffset[b], v.FixWidth[b]).AddConstant(r.Distance)
		g := m.Group(fam, fmt.Sprintf("apart_r%d_f%d_f%d", ri, a, b), 2*len(groups))
		for _, grp := range groups {
			gp := v.InGroup[grp]
			both := milp.Sum(gp[a], gp[b])
			g.UpperIf(endA, v.FixOffset[b], both.Clone().Add(o).AddConstant(-2), M)
			g.UpperIf(endB, v.FixOffset[a], both.Clone().Sub(o).AddConstant(-1), M)
		}
		g.Close()
	}
}

// buildWallDistance asks fixtures to keep Distance clear of both walls of
// their group. A violation is allowed but sets TooClose, which the
// objective penalises.
func buildWallDistance(c *compiler, ri int, r kitchen.WallDistance) {
	k, v, m := c.k, c.v, c.m
	fam := string(Relations)
	for wi, w := range k.Walls {
		gp, ok := v.InGroup[w.Group]
		if !ok {
			continue
		}
		M := c.big.Canvas + c.big.Width + math.Abs(w.Left) + math.Abs(w.Right) + r.Distance
		for _, f := range k.FixturesOfType(r.Type) {
			tc := m.NewBinary(fam, fmt.Sprintf("tooclose_r%d_w%d_f%d", ri, wi, f))
			gate := milp.Sum(gp[f]).Sub(tc)
			m.Group(fam, fmt.Sprintf("wall_r%d_w%d_f%d", ri, wi, f), 3).
				LowerIf(v.FixOffset[f], milp.Constant(w.Left+r.Distance), gate, M).
				UpperIf(milp.Sum(v.FixOffset[f], v.FixWidth[f]), milp.Constant(w.Right-r.Distance), gate, M).
				Le(tc, gp[f]).
				Close()
			v.TooClose = append(v.TooClose, tc)
			v.clearances = append(v.clearances, clearanceHelper{wall: w, distance: r.Distance, fixture: f, tooClose: tc})
		}
	}
}

// buildWorktopLength requires a worktop run of at least Length directly
// beside every placed fixture of the type, on its left or its right.
func buildWorktopLength(c *compiler, ri int, r kitchen.WorktopLength) {
	k, v, m := c.k, c.v, c.m
	fam := string(Relations)
	run := v.Worktop
	if run == nil {
		return
	}
	for _, f := range k.FixturesOfType(r.Type) {
		side := m.NewBinary(fam, fmt.Sprintf("side_r%d_f%d", ri, f))
		v.sides = append(v.sides, sideHelper{length: r.Length, fixture: f, left: side})
		g := m.Group(fam, fmt.Sprintf("length_r%d_f%d", ri, f), 2*len(k.Segments))
		for _, seg := range k.Segments {
			s := seg.ID
			var left, right milp.Linear = milp.NewExpr(), milp.NewExpr()
			if p, ok := k.Previous(s); ok {
				left = run.Left[p]
			}
			if nx, ok := k.Next(s); ok {
				right = run.Right[nx]
			}
			pair := v.Pair[s][f]
			g.LowerIf(left, milp.Constant(r.Length), milp.Sum(pair, side).AddConstant(-1), r.Length)
			g.LowerIf(right, milp.Constant(r.Length), milp.Sum(pair).Sub(side), r.Length)
		}
		g.Close()
	}
}

// buildMinOneWide requires at least one fixture of the type to be placed
// with at least the given width.
func buildMinOneWide(c *compiler, ri int, r kitchen.MinOneWide) {
	k, v, m := c.k, c.v, c.m
	fam := string(Relations)
	fixtures := k.FixturesOfType(r.Type)
	g := m.Group(fam, fmt.Sprintf("wide_r%d", ri), len(fixtures)+1)
	atLeastOne := milp.NewExpr()
	for _, f := range fixtures {
		w := m.NewBinary(fam, fmt.Sprintf("wide_r%d_f%d", ri, f))
		v.wide = append(v.wide, wideHelper{width: r.Width, fixture: f, wide: w})
		g.Ge(v.FixWidth[f], milp.NewExpr().AddTerm(w, r.Width))
		atLeastOne.Add(w)
	}
	g.Ge(atLeastOne, milp.Constant(1))
	g.Close()
}

// worktopRuns returns the true left and right run lengths of the current
// layout.
func worktopRuns(k *kitchen.Kitchen) (left, right []float64) {
	left = make([]float64, len(k.Segments))
	right = make([]float64, len(k.Segments))
	covered := func(s kitchen.SegmentID) bool {
		f := k.Fixture(k.Segments[s].Fixture)
		return f != nil && f.HasWorktop
	}
	for _, p := range k.Parts {
		run := 0.0
		for _, s := range p.Segments {
			if covered(s) {
				run += k.Segments[s].Width
			} else {
				run = 0
			}
			left[s] = run
		}
		run = 0
		for i := len(p.Segments) - 1; i >= 0; i-- {
			s := p.Segments[i]
			if covered(s) {
				run += k.Segments[s].Width
			} else {
				run = 0
			}
			right[s] = run
		}
	}
	return left, right
}

func deriveRelations(c *compiler, vals []float64) {
	k, v := c.k, c.v
	_, offsets := segmentGeometry(k)
	where := placedAt(k)

	if run := v.Worktop; run != nil {
		left, right := worktopRuns(k)
		best := 0
		for _, s := range k.Segments {
			f := k.Fixture(s.Fixture)
			if f != nil && f.HasWorktop {
				vals[run.Covered[s.ID]] = s.Width
			}
			vals[run.Left[s.ID]] = left[s.ID]
			vals[run.Right[s.ID]] = right[s.ID]
			if left[s.ID] > left[best] {
				best = int(s.ID)
			}
		}
		vals[run.Pick[best]] = 1
		vals[run.Best] = left[best]

		for _, h := range v.sides {
			s, ok := where[h.fixture]
			if !ok {
				continue
			}
			if p, ok := k.Previous(s); ok && left[p] >= h.length-eps {
				vals[h.left] = 1
			}
		}
	}

	span := func(f kitchen.FixtureID) (float64, float64, bool) {
		s, ok := where[f]
		if !ok {
			return 0, 0, false
		}
		return offsets[s], offsets[s] + k.Segments[s].Width, true
	}
	for _, h := range v.orders {
		a, _, _ := span(h.first)
		b, _, _ := span(h.second)
		vals[h.before] = b2f(a <= b)
	}
	for _, h := range v.clearances {
		start, end, ok := span(h.fixture)
		if !ok || k.Parts[k.Segments[where[h.fixture]].Part].Position.Group != h.wall.Group {
			continue
		}
		vals[h.tooClose] = b2f(start < h.wall.Left+h.distance-eps || end > h.wall.Right-h.distance+eps)
	}
	for _, h := range v.wide {
		vals[h.wide] = b2f(vals[v.Present[h.fixture]] > 0.5 && k.Segments[where[h.fixture]].Width >= h.width-eps)
	}
}
