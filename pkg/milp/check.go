package milp

import (
	"fmt"
	"math"
)

// Violation describes one unsatisfied bound or constraint.
type Violation struct {
	Family string
	Name   string
	LHS    float64
	Sense  Sense
	RHS    float64
}

func (v Violation) String() string {
	return fmt.Sprintf("%s (%s): %g %s %g", v.Name, v.Family, v.LHS, v.Sense, v.RHS)
}

// Check evaluates an assignment against every bound, integrality
// requirement and constraint, returning the violations beyond tol.
func (m *Model) Check(values []float64, tol float64) []Violation {
	var out []Violation
	for i, v := range m.vars {
		x := values[i]
		if x < v.Lower-tol {
			out = append(out, Violation{Family: v.Family, Name: v.Name, LHS: x, Sense: GreaterEqual, RHS: v.Lower})
		}
		if x > v.Upper+tol {
			out = append(out, Violation{Family: v.Family, Name: v.Name, LHS: x, Sense: LessEqual, RHS: v.Upper})
		}
		if v.Kind != Continuous && math.Abs(x-math.Round(x)) > tol {
			out = append(out, Violation{Family: v.Family, Name: v.Name, LHS: x, Sense: Equal, RHS: math.Round(x)})
		}
	}
	for _, c := range m.cons {
		lhs := 0.0
		for _, t := range c.Terms {
			lhs += t.Coef * values[t.Var]
		}
		bad := false
		switch c.Sense {
		case LessEqual:
			bad = lhs > c.RHS+tol
		case GreaterEqual:
			bad = lhs < c.RHS-tol
		case Equal:
			bad = math.Abs(lhs-c.RHS) > tol
		}
		if bad {
			out = append(out, Violation{Family: c.Family, Name: c.Name, LHS: lhs, Sense: c.Sense, RHS: c.RHS})
		}
	}
	return out
}

// ViolatedFamilies returns the distinct constraint families among violations.
func ViolatedFamilies(vs []Violation) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range vs {
		if !seen[v.Family] {
			seen[v.Family] = true
			out = append(out, v.Family)
		}
	}
	return out
}
