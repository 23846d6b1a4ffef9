package compile

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

type cornerLeg struct {
	leg      kitchen.Leg
	segments []kitchen.SegmentID
	at       []milp.Var // the segment touching the corner
}

type cornerVars struct {
	legs  [2]cornerLeg
	fixed map[kitchen.FixtureID]milp.Var // corner fixture placed at this corner
}

// buildCorner makes the segment touching each corner occupied and places
// corner units there. A leg at the start of its part must hold its first
// segment with no padding. A leg at the end of its part must be filled up
// to its full length so that its last used segment touches the corner.
// Corner units stand with their first leg at the first corner leg and their
// second leg at the second, at the same corner.
func buildCorner(c *compiler) {
	k, v, m := c.k, c.v, c.m
	fam := string(Corner)

	var units []kitchen.FixtureID
	for _, f := range k.Fixtures {
		if f.IsCorner {
			units = append(units, f.ID)
		}
	}

	for ci, corner := range k.Corners {
		cv := cornerVars{fixed: map[kitchen.FixtureID]milp.Var{}}
		for li, leg := range [2]kitchen.Leg{corner.First, corner.Second} {
			cv.legs[li] = buildCornerLeg(c, ci, li, leg)
		}

		for _, f := range units {
			leg := cv.legs[0]
			if k.Fixtures[f].SecondLeg {
				leg = cv.legs[1]
			}
			fixed := m.NewBinary(fam, fmt.Sprintf("corner_c%d_f%d", ci, f))
			g := m.Group(fam, fmt.Sprintf("unit_c%d_f%d", ci, f), 2*len(leg.at))
			for i, at := range leg.at {
				pair := v.Pair[leg.segments[i]][f]
				g.Ge(fixed, milp.Sum(pair, at).AddConstant(-1))
				g.Le(fixed, milp.Sum(pair).Sub(at).AddConstant(1))
			}
			g.Close()
			cv.fixed[f] = fixed
		}
		for _, f := range units {
			if second := k.Fixtures[f].SecondCorner; second.Valid() {
				m.Eq(fam, cv.fixed[f], cv.fixed[second])
			}
		}
		v.corners = append(v.corners, cv)
	}

	for _, f := range units {
		sum := milp.NewExpr()
		for _, cv := range v.corners {
			sum.Add(cv.fixed[f])
		}
		m.Eq(fam, v.Present[f], sum)
	}
}

func buildCornerLeg(c *compiler, ci, li int, leg kitchen.Leg) cornerLeg {
	k, v, m := c.k, c.v, c.m
	fam := string(Corner)
	p := &k.Parts[leg.Part]
	cl := cornerLeg{leg: leg}
	if len(p.Segments) == 0 {
		m.Fail("corner %d: part %q has no segments", ci, p.Name)
		return cl
	}

	if leg.End == kitchen.StartEnd {
		s := p.Segments[0]
		at := m.NewBinary(fam, fmt.Sprintf("at_c%d_l%d_s%d", ci, li, s))
		cl.segments, cl.at = []kitchen.SegmentID{s}, []milp.Var{at}
		m.Group(fam, fmt.Sprintf("leg_c%d_l%d", ci, li), 3).
			Eq(v.Padding[leg.Part], milp.Constant(0)).
			Eq(at, c.used(s)).
			Eq(at, milp.Constant(1)).
			Close()
		return cl
	}

	g := m.Group(fam, fmt.Sprintf("leg_c%d_l%d", ci, li), len(p.Segments)+2)
	filled := milp.Sum(v.Padding[leg.Part])
	for _, s := range p.Segments {
		at := m.NewBinary(fam, fmt.Sprintf("at_c%d_l%d_s%d", ci, li, s))
		cl.segments = append(cl.segments, s)
		cl.at = append(cl.at, at)
		last := c.used(s)
		if next, ok := k.Next(s); ok {
			last.Sub(c.used(next))
		}
		g.Eq(at, last)
		filled.Add(v.Width[s])
	}
	g.Eq(milp.Sum(cl.at...), milp.Constant(1))
	g.Eq(filled, milp.Constant(p.Width))
	g.Close()
	return cl
}

func deriveCorner(c *compiler, vals []float64) {
	k := c.k
	for _, cv := range c.v.corners {
		var holder [2]kitchen.FixtureID
		for li, leg := range cv.legs {
			holder[li] = kitchen.NoFixture
			for i, s := range leg.segments {
				at := c.usedValue(s)
				if next, ok := k.Next(s); ok && leg.leg.End == kitchen.FinishEnd {
					at -= c.usedValue(next)
				}
				vals[leg.at[i]] = at
				if at > 0.5 {
					holder[li] = k.Segments[s].Fixture
				}
			}
		}
		for f, fixed := range cv.fixed {
			li := 0
			if k.Fixtures[f].SecondLeg {
				li = 1
			}
			vals[fixed] = b2f(holder[li] == f)
		}
	}
}
