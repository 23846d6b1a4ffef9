package compile

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// buildGeometry places segment centres in the plane and segment starts
// along their group, then copies the holding segment's geometry onto each
// present fixture. Absent fixtures are pinned to zero.
func buildGeometry(c *compiler) {
	k, v, m := c.k, c.v, c.m
	W, C := c.big.Width, c.big.Canvas
	fam := string(Geometry)

	n := len(k.Segments)
	v.SegX, v.SegY, v.SegOffset = make([]milp.Var, n), make([]milp.Var, n), make([]milp.Var, n)
	for s := range k.Segments {
		v.SegX[s] = m.NewContinuous(fam, fmt.Sprintf("x_s%d", s), -C, C)
		v.SegY[s] = m.NewContinuous(fam, fmt.Sprintf("y_s%d", s), -C, C)
		v.SegOffset[s] = m.NewContinuous(fam, fmt.Sprintf("offset_s%d", s), 0, C)
	}

	for i, p := range k.Parts {
		cos, sin := p.Position.Direction()
		half := p.Depth / 2
		for j, s := range p.Segments {
			g := m.Group(fam, fmt.Sprintf("seg_s%d", s), 3)
			if j == 0 {
				g.Eq(v.SegX[s], milp.Constant(p.Position.X-half*sin).
					AddTerm(v.Padding[i], cos).AddTerm(v.Width[s], cos/2))
				g.Eq(v.SegY[s], milp.Constant(p.Position.Y+half*cos).
					AddTerm(v.Padding[i], sin).AddTerm(v.Width[s], sin/2))
				g.Eq(v.SegOffset[s], milp.Constant(p.Position.GroupOffset).Add(v.Padding[i]))
			} else {
				prev := p.Segments[j-1]
				g.Eq(v.SegX[s], milp.Sum(v.SegX[prev]).
					AddTerm(v.Width[prev], cos/2).AddTerm(v.Width[s], cos/2))
				g.Eq(v.SegY[s], milp.Sum(v.SegY[prev]).
					AddTerm(v.Width[prev], sin/2).AddTerm(v.Width[s], sin/2))
				g.Eq(v.SegOffset[s], milp.Sum(v.SegOffset[prev], v.Width[prev]))
			}
			g.Close()
		}
	}

	nf := len(k.Fixtures)
	v.FixWidth, v.FixX, v.FixY = make([]milp.Var, nf), make([]milp.Var, nf), make([]milp.Var, nf)
	v.FixOffset, v.FixNumber = make([]milp.Var, nf), make([]milp.Var, nf)
	for f := range k.Fixtures {
		v.FixWidth[f] = m.NewContinuous(fam, fmt.Sprintf("fw_f%d", f), 0, W)
		v.FixX[f] = m.NewContinuous(fam, fmt.Sprintf("fx_f%d", f), -C, C)
		v.FixY[f] = m.NewContinuous(fam, fmt.Sprintf("fy_f%d", f), -C, C)
		v.FixOffset[f] = m.NewContinuous(fam, fmt.Sprintf("foff_f%d", f), 0, C)
		v.FixNumber[f] = m.NewContinuous(fam, fmt.Sprintf("fnum_f%d", f), 0, float64(len(k.Segments)))
	}

	for s := range k.Segments {
		for f := range k.Fixtures {
			gate := v.Pair[s][f]
			m.Group(fam, fmt.Sprintf("link_s%d_f%d", s, f), 8).
				EqualIf(v.FixWidth[f], v.Width[s], gate, W).
				EqualIf(v.FixX[f], v.SegX[s], gate, 2*C).
				EqualIf(v.FixY[f], v.SegY[s], gate, 2*C).
				EqualIf(v.FixOffset[f], v.SegOffset[s], gate, C).
				Close()
		}
	}

	for f := range k.Fixtures {
		p := v.Present[f]
		m.Group(fam, fmt.Sprintf("absent_f%d", f), 7).
			Le(v.FixWidth[f], milp.NewExpr().AddTerm(p, W)).
			Le(v.FixX[f], milp.NewExpr().AddTerm(p, C)).
			Ge(v.FixX[f], milp.NewExpr().AddTerm(p, -C)).
			Le(v.FixY[f], milp.NewExpr().AddTerm(p, C)).
			Ge(v.FixY[f], milp.NewExpr().AddTerm(p, -C)).
			Le(v.FixOffset[f], milp.NewExpr().AddTerm(p, C)).
			Eq(v.FixNumber[f], c.numbered(kitchen.FixtureID(f))).
			Close()
	}
}

// segmentGeometry computes the centre and group offset of every segment of
// the kitchen's current layout.
func segmentGeometry(k *kitchen.Kitchen) (centres []kitchen.Point, offsets []float64) {
	centres = make([]kitchen.Point, len(k.Segments))
	offsets = make([]float64, len(k.Segments))
	for i := range k.Parts {
		p := &k.Parts[i]
		along := p.Position.Padding
		for _, s := range p.Segments {
			w := k.Segments[s].Width
			centres[s] = p.Along(along+w/2, p.Depth/2)
			offsets[s] = p.Position.GroupOffset + along
			along += w
		}
	}
	return centres, offsets
}

func deriveGeometry(c *compiler, vals []float64) {
	k, v := c.k, c.v
	centres, offsets := segmentGeometry(k)
	for s := range k.Segments {
		vals[v.SegX[s]] = centres[s].X
		vals[v.SegY[s]] = centres[s].Y
		vals[v.SegOffset[s]] = offsets[s]
	}
	for _, s := range k.Segments {
		if !s.Occupied() {
			continue
		}
		f := s.Fixture
		vals[v.FixWidth[f]] = s.Width
		vals[v.FixX[f]] = centres[s.ID].X
		vals[v.FixY[f]] = centres[s.ID].Y
		vals[v.FixOffset[f]] = offsets[s.ID]
		vals[v.FixNumber[f]] = float64(s.ID.Number())
	}
}

// buildGroup declares one presence binary per group and fixture.
func buildGroup(c *compiler) {
	k, v := c.k, c.v
	for _, g := range k.Groups() {
		segs := k.SegmentsInGroup(g)
		vars := make([]milp.Var, len(k.Fixtures))
		for f := range k.Fixtures {
			vars[f] = c.m.NewBinary(string(Group), fmt.Sprintf("in_g%d_f%d", g, f))
			sum := milp.NewExpr()
			for _, s := range segs {
				sum.Add(v.Pair[s][f])
			}
			c.m.Eq(string(Group), vars[f], sum)
		}
		v.InGroup[g] = vars
	}
}

func deriveGroup(c *compiler, vals []float64) {
	k, v := c.k, c.v
	for _, s := range k.Segments {
		if s.Occupied() {
			vals[v.InGroup[k.Parts[s.Part].Position.Group][s.Fixture]] = 1
		}
	}
}

// buildTall aligns the halves of a tall unit: same group, same offset and
// same width. Each half bounds the other from above, which yields equality.
func buildTall(c *compiler) {
	k, v := c.k, c.v
	groups := k.Groups()
	for _, f := range k.Fixtures {
		o := f.Complementary
		if !o.Valid() {
			continue
		}
		g := c.m.Group(string(Tall), fmt.Sprintf("f%d", f.ID), 2+len(groups))
		g.Le(v.FixOffset[f.ID], v.FixOffset[o])
		g.Le(v.FixWidth[f.ID], v.FixWidth[o])
		for _, grp := range groups {
			g.Le(v.InGroup[grp][f.ID], v.InGroup[grp][o])
		}
		g.Close()
	}
}
