package compile

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// buildContinuity detects seams that do not line up between the parts of a
// group, e.g. a wall unit straddling the joint between two base units.
//
// For segments s and t on different parts of one group, Begins means s ends
// beyond the start of t and Ends means t ends beyond the end of s, both by
// more than the continuity tolerance. When both hold and both segments are
// used, the end of s falls strictly inside t and Straddle is forced to 1.
// The trailing edge of each part is tested the same way against the segments
// of the other parts.
func buildContinuity(c *compiler) {
	k, v, m := c.k, c.v, c.m
	fam := string(Continuity)
	tol := k.Constants.ContinuityTolerance
	M := c.big.Canvas + c.big.Width

	end := func(s kitchen.SegmentID) *milp.Expr { return milp.Sum(v.SegOffset[s], v.Width[s]) }

	for _, grp := range k.Groups() {
		segs := k.SegmentsInGroup(grp)
		index := map[[2]kitchen.SegmentID]int{}
		var pairs [][2]kitchen.SegmentID
		for _, s := range segs {
			for _, t := range segs {
				if k.Segments[s].Part == k.Segments[t].Part {
					continue
				}
				key := [2]kitchen.SegmentID{s, t}
				index[key] = len(v.Seams)
				pairs = append(pairs, key)
				v.Seams = append(v.Seams, Seam{
					Segment:  s,
					Other:    t,
					Part:     -1,
					Begins:   m.NewBinary(fam, fmt.Sprintf("begins_s%d_s%d", s, t)),
					Ends:     m.NewBinary(fam, fmt.Sprintf("ends_s%d_s%d", s, t)),
					Straddle: m.NewBinary(fam, fmt.Sprintf("straddle_s%d_s%d", s, t)),
				})
			}
		}

		for _, key := range pairs {
			s, t := key[0], key[1]
			seam := v.Seams[index[key]]

			// Monotone propagation along both parts.
			var links [][2]milp.Var
			if pt, ok := k.Previous(t); ok {
				links = append(links, [2]milp.Var{v.Seams[index[[2]kitchen.SegmentID{s, pt}]].Begins, seam.Begins})
			}
			if nt, ok := k.Next(t); ok {
				links = append(links, [2]milp.Var{v.Seams[index[[2]kitchen.SegmentID{s, nt}]].Ends, seam.Ends})
			}
			if ns, ok := k.Next(s); ok {
				links = append(links, [2]milp.Var{v.Seams[index[[2]kitchen.SegmentID{ns, t}]].Begins, seam.Begins})
			}
			if ps, ok := k.Previous(s); ok {
				links = append(links, [2]milp.Var{v.Seams[index[[2]kitchen.SegmentID{ps, t}]].Ends, seam.Ends})
			}

			g := m.Group(fam, fmt.Sprintf("s%d_s%d", s, t), 3+len(links))
			g.UpperIf(end(s).AddConstant(-tol).Sub(v.SegOffset[t]), milp.NewExpr(), milp.Not(seam.Begins), M)
			g.UpperIf(end(t).AddConstant(-tol).Sub(end(s)), milp.NewExpr(), milp.Not(seam.Ends), M)
			g.Ge(seam.Straddle, milp.Sum(seam.Begins, seam.Ends).Add(c.used(s)).Add(c.used(t)).AddConstant(-3))
			for _, l := range links {
				g.Ge(l[0], l[1])
			}
			g.Close()
		}

		for _, pi := range k.PartsInGroup(grp) {
			edge := k.Parts[pi].End()
			for _, t := range segs {
				if k.Segments[t].Part == pi {
					continue
				}
				seam := Seam{
					Segment:  t,
					Other:    NoSegment,
					Part:     pi,
					Begins:   m.NewBinary(fam, fmt.Sprintf("edge_begins_p%d_s%d", pi, t)),
					Ends:     m.NewBinary(fam, fmt.Sprintf("edge_ends_p%d_s%d", pi, t)),
					Straddle: m.NewBinary(fam, fmt.Sprintf("edge_straddle_p%d_s%d", pi, t)),
				}
				m.Group(fam, fmt.Sprintf("edge_p%d_s%d", pi, t), 3).
					UpperIf(milp.Constant(edge-tol).Sub(v.SegOffset[t]), milp.NewExpr(), milp.Not(seam.Begins), M).
					UpperIf(end(t).AddConstant(-tol-edge), milp.NewExpr(), milp.Not(seam.Ends), M).
					Ge(seam.Straddle, milp.Sum(seam.Begins, seam.Ends).Add(c.used(t)).AddConstant(-2)).
					Close()
				v.Seams = append(v.Seams, seam)
			}
		}
	}
}

func deriveContinuity(c *compiler, vals []float64) {
	k := c.k
	tol := k.Constants.ContinuityTolerance
	_, offsets := segmentGeometry(k)
	end := func(s kitchen.SegmentID) float64 { return offsets[s] + k.Segments[s].Width }

	for _, seam := range c.v.Seams {
		t := seam.Segment
		var begins, ends, used bool
		if seam.Other == NoSegment {
			edge := k.Parts[seam.Part].End()
			begins = edge-tol-offsets[t] > eps
			ends = end(t)-tol-edge > eps
			used = k.Segments[t].Occupied()
		} else {
			s, o := seam.Segment, seam.Other
			begins = end(s)-tol-offsets[o] > eps
			ends = end(o)-tol-end(s) > eps
			used = k.Segments[s].Occupied() && k.Segments[o].Occupied()
		}
		vals[seam.Begins] = b2f(begins)
		vals[seam.Ends] = b2f(ends)
		vals[seam.Straddle] = b2f(begins && ends && used)
	}
}
