package compile

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// buildPattern measures width jumps between neighbouring segments. NotSame
// flags used neighbours whose widths differ beyond the same-width tolerance;
// ABA flags a segment that matches the one two places back while differing
// markedly from the one in between.
func buildPattern(c *compiler) {
	k, v, m := c.k, c.v, c.m
	fam := string(Pattern)
	W := c.big.Width
	same := k.Constants.SameWidthTolerance
	diff := k.Constants.DifferentWidthTolerance

	for _, s := range k.Segments {
		p, ok := k.Previous(s.ID)
		if !ok {
			continue
		}
		j := Jump{
			Segment:    s.ID,
			Diff:       m.NewContinuous(fam, fmt.Sprintf("diff_s%d", s.ID), 0, W),
			Larger:     m.NewBinary(fam, fmt.Sprintf("larger_s%d", s.ID)),
			NotSame:    m.NewBinary(fam, fmt.Sprintf("notsame_s%d", s.ID)),
			ReallyDiff: m.NewBinary(fam, fmt.Sprintf("reallydiff_s%d", s.ID)),
		}
		usedS, usedP := c.used(s.ID), c.used(p)

		g := m.Group(fam, fmt.Sprintf("jump_s%d", s.ID), 9)
		absDiff(g, j.Diff, j.Larger, v.Width[s.ID], v.Width[p], W)
		g.UpperIf(j.Diff, milp.Constant(same).AddTerm(j.NotSame, W),
			usedS.Clone().Add(usedP).AddConstant(-1), W)
		g.Le(j.NotSame, usedS)
		g.Ge(j.Diff, milp.NewExpr().AddTerm(j.ReallyDiff, diff))
		g.Le(j.ReallyDiff, usedS)
		g.Le(j.ReallyDiff, usedP)
		g.Close()

		if pp, ok := k.Previous(p); ok {
			j.Second = true
			j.Diff2 = m.NewContinuous(fam, fmt.Sprintf("diff2_s%d", s.ID), 0, W)
			j.Larger2 = m.NewBinary(fam, fmt.Sprintf("larger2_s%d", s.ID))
			j.Similar2 = m.NewBinary(fam, fmt.Sprintf("similar2_s%d", s.ID))
			j.ABA = m.NewBinary(fam, fmt.Sprintf("aba_s%d", s.ID))

			g := m.Group(fam, fmt.Sprintf("aba_s%d", s.ID), 9)
			absDiff(g, j.Diff2, j.Larger2, v.Width[s.ID], v.Width[pp], W)
			g.UpperIf(j.Diff2, milp.Constant(same), j.Similar2, W)
			g.Le(j.Similar2, usedS)
			g.Le(j.Similar2, c.used(pp))
			g.Le(j.ABA, j.Similar2)
			g.Le(j.ABA, j.ReallyDiff)
			g.Close()
		}
		v.Jumps = append(v.Jumps, j)
	}
}

// absDiff binds d == |a - b| exactly using a direction binary. It emits
// four clauses.
func absDiff(g *milp.Group, d, larger milp.Var, a, b milp.Var, W float64) {
	g.Ge(d, milp.Sum(a).Sub(b))
	g.Ge(d, milp.Sum(b).Sub(a))
	g.UpperIf(d, milp.Sum(a).Sub(b), larger, 2*W)
	g.UpperIf(d, milp.Sum(b).Sub(a), milp.Not(larger), 2*W)
}

func derivePattern(c *compiler, vals []float64) {
	k := c.k
	same := k.Constants.SameWidthTolerance
	diff := k.Constants.DifferentWidthTolerance
	for _, j := range c.v.Jumps {
		s := j.Segment
		p, _ := k.Previous(s)
		ws, wp := k.Segments[s].Width, k.Segments[p].Width
		both := k.Segments[s].Occupied() && k.Segments[p].Occupied()

		d := abs(ws - wp)
		vals[j.Diff] = d
		vals[j.Larger] = b2f(ws >= wp)
		vals[j.NotSame] = b2f(both && d > same+eps)
		really := both && d >= diff-eps
		vals[j.ReallyDiff] = b2f(really)

		if !j.Second {
			continue
		}
		pp, _ := k.Previous(p)
		wpp := k.Segments[pp].Width
		d2 := abs(ws - wpp)
		vals[j.Diff2] = d2
		vals[j.Larger2] = b2f(ws >= wpp)
		similar := k.Segments[s].Occupied() && k.Segments[pp].Occupied() && d2 <= same+eps
		vals[j.Similar2] = b2f(similar)
		vals[j.ABA] = b2f(similar && really)
	}
}
