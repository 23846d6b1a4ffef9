package compile

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// buildWidth bounds segment widths by the fixture they hold, forces unused
// segments to zero width and keeps every part within its length.
func buildWidth(c *compiler) {
	k, v := c.k, c.v
	W := c.big.Width
	minWidth := k.Constants.MinWidth

	for _, s := range k.Segments {
		g := c.m.Group(string(Width), fmt.Sprintf("s%d", s.ID), 2*len(k.Fixtures)+2)
		for _, f := range k.Fixtures {
			g.WithinIf(v.Width[s.ID], milp.Constant(f.WidthMin), milp.Constant(f.WidthMax), v.Pair[s.ID][f.ID], W)
		}
		used := c.used(s.ID)
		g.Le(v.Width[s.ID], milp.NewExpr().AddTerm(used, W))
		g.Ge(v.Width[s.ID], milp.NewExpr().AddTerm(used, minWidth))
		g.Close()
	}

	for i, p := range k.Parts {
		total := milp.Sum(v.Padding[i])
		for _, s := range p.Segments {
			total.Add(v.Width[s])
		}
		c.m.Le(string(Width), total, milp.Constant(p.Width))
	}
}

// buildOrientation keeps top fixtures off bottom parts and vice versa.
func buildOrientation(c *compiler) {
	k, v := c.k, c.v
	for _, s := range k.Segments {
		top := k.PartOf(s.ID).IsTop
		for _, f := range k.Fixtures {
			if f.IsTop != top {
				c.m.Eq(string(Orientation), v.Pair[s.ID][f.ID], milp.Constant(0))
			}
		}
	}
}

// buildEdge handles open part ends. An open start must hold a fixture and
// only an edge-capable one. At an open end, the last used segment must hold
// an edge-capable fixture: a segment may hold a non-edge fixture only while
// its successor is used.
func buildEdge(c *compiler) {
	k, v := c.k, c.v
	var inner []kitchen.FixtureID
	for _, f := range k.Fixtures {
		if !f.AllowEdge {
			inner = append(inner, f.ID)
		}
	}

	for i, p := range k.Parts {
		if len(p.Segments) == 0 {
			if p.EdgeStart || p.EdgeEnd {
				c.m.Fail("part %q has an open end but no segments", p.Name)
			}
			continue
		}
		if p.EdgeStart {
			first := p.Segments[0]
			g := c.m.Group(string(Edge), fmt.Sprintf("start_p%d", i), len(inner)+1)
			g.Ge(c.used(first), milp.Constant(1))
			for _, f := range inner {
				g.Eq(v.Pair[first][f], milp.Constant(0))
			}
			g.Close()
		}
		if p.EdgeEnd {
			g := c.m.Group(string(Edge), fmt.Sprintf("end_p%d", i), len(inner)*len(p.Segments))
			for _, s := range p.Segments {
				next, ok := k.Next(s)
				for _, f := range inner {
					if ok {
						g.Le(v.Pair[s][f], c.used(next))
					} else {
						g.Eq(v.Pair[s][f], milp.Constant(0))
					}
				}
			}
			g.Close()
		}
	}
}
