package compile

import (
	"fmt"
	"math"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// placementHelper is the per (rule, fixture) binary of a section rule.
type placementHelper struct {
	rule    int
	fixture kitchen.FixtureID
	inside  milp.Var // include: placed within the section; exclude: placed in the group and clear of it
	left    milp.Var // exclude only: clear on the left side
	exclude bool
}

// buildRules compiles group and section placement rules. Kitchen includes
// require any matching fixture to be present; kitchen excludes must have
// been removed before compilation.
func buildRules(c *compiler) {
	k, v, m := c.k, c.v, c.m
	fam := string(Rules)
	M := c.big.Canvas + c.big.Width

	for ri, r := range k.Rules {
		matches := k.Matching(r)
		switch scope := r.Scope.(type) {
		case kitchen.KitchenScope:
			if r.Kind == kitchen.Exclude {
				m.Fail("rule %q must be discharged before compilation", r)
				continue
			}
			sum := milp.NewExpr()
			for _, f := range matches {
				sum.Add(v.Present[f])
			}
			m.Ge(fam, sum, milp.Constant(1))

		case kitchen.GroupScope:
			gp, ok := v.InGroup[scope.Group]
			sum := milp.NewExpr()
			if ok {
				for _, f := range matches {
					sum.Add(gp[f])
				}
			}
			if r.Kind == kitchen.Include {
				m.Ge(fam, sum, milp.Constant(1))
			} else {
				m.Le(fam, sum, milp.Constant(0))
			}

		case kitchen.SectionScope:
			gp, ok := v.InGroup[scope.Group]
			if !ok {
				if r.Kind == kitchen.Include {
					// Nothing can ever be placed in a group without parts.
					m.Ge(fam, milp.NewExpr(), milp.Constant(1))
				}
				continue
			}
			bigM := M + math.Abs(scope.Start) + math.Abs(scope.End)
			if r.Kind == kitchen.Include {
				buildSectionInclude(c, ri, scope, matches, gp, bigM)
			} else {
				buildSectionExclude(c, ri, scope, matches, gp, bigM)
			}
		}
	}
}

func buildSectionInclude(c *compiler, ri int, sec kitchen.SectionScope, matches []kitchen.FixtureID, gp []milp.Var, M float64) {
	v, m := c.v, c.m
	fam := string(Rules)
	sum := milp.NewExpr()
	for _, f := range matches {
		h := m.NewBinary(fam, fmt.Sprintf("inside_r%d_f%d", ri, f))
		v.placements = append(v.placements, placementHelper{rule: ri, fixture: f, inside: h})
		m.Group(fam, fmt.Sprintf("inside_r%d_f%d", ri, f), 3).
			Le(h, gp[f]).
			LowerIf(v.FixOffset[f], milp.Constant(sec.Start), h, M).
			UpperIf(milp.Sum(v.FixOffset[f], v.FixWidth[f]), milp.Constant(sec.End), h, M).
			Close()
		sum.Add(h)
	}
	m.Ge(fam, sum, milp.Constant(1))
}

func buildSectionExclude(c *compiler, ri int, sec kitchen.SectionScope, matches []kitchen.FixtureID, gp []milp.Var, M float64) {
	v, m := c.v, c.m
	fam := string(Rules)
	for _, f := range matches {
		h := m.NewBinary(fam, fmt.Sprintf("clear_r%d_f%d", ri, f))
		l := m.NewBinary(fam, fmt.Sprintf("left_r%d_f%d", ri, f))
		v.placements = append(v.placements, placementHelper{rule: ri, fixture: f, inside: h, left: l, exclude: true})
		m.Group(fam, fmt.Sprintf("clear_r%d_f%d", ri, f), 4).
			Le(h, gp[f]).
			Ge(h, gp[f]).
			UpperIf(milp.Sum(v.FixOffset[f], v.FixWidth[f]), milp.Constant(sec.Start),
				milp.Sum(h, l).AddConstant(-1), M).
			LowerIf(v.FixOffset[f], milp.Constant(sec.End), milp.Sum(h).Sub(l), M).
			Close()
	}
}

func deriveRules(c *compiler, vals []float64) {
	k, v := c.k, c.v
	_, offsets := segmentGeometry(k)
	where := placedAt(k)
	for _, h := range v.placements {
		sec := k.Rules[h.rule].Scope.(kitchen.SectionScope)
		s, ok := where[h.fixture]
		if !ok || k.Parts[k.Segments[s].Part].Position.Group != sec.Group {
			continue
		}
		start := offsets[s]
		end := start + k.Segments[s].Width
		if !h.exclude {
			vals[h.inside] = b2f(start >= sec.Start-eps && end <= sec.End+eps)
			continue
		}
		vals[h.inside] = 1
		vals[h.left] = b2f(end <= sec.Start+eps)
	}
}

// placedAt maps every placed fixture to its segment.
func placedAt(k *kitchen.Kitchen) map[kitchen.FixtureID]kitchen.SegmentID {
	out := map[kitchen.FixtureID]kitchen.SegmentID{}
	for _, s := range k.Segments {
		if s.Occupied() {
			out[s.Fixture] = s.ID
		}
	}
	return out
}
