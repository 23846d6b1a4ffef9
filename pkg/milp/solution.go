package milp

import "math"

// Status is the outcome reported by an engine.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible" // stopped early with an incumbent
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusUnknown    Status = "unknown"
)

// HasValues reports whether the status carries a usable assignment.
func (s Status) HasValues() bool {
	return s == StatusOptimal || s == StatusFeasible
}

// Solution is an engine's answer for a model. Values are keyed by variable
// name; a variable without an entry was not reported by the engine.
type Solution struct {
	Status    Status             `json:"status"`
	Objective float64            `json:"objective"`
	Values    map[string]float64 `json:"values"`
}

// Value returns the solved value of v.
func (m *Model) Value(s *Solution, v Var) (float64, bool) {
	if s == nil || s.Values == nil {
		return 0, false
	}
	x, ok := s.Values[m.vars[v].Name]
	return x, ok
}

// ValueOr returns the solved value of v, or def when it is missing.
func (m *Model) ValueOr(s *Solution, v Var, def float64) float64 {
	if x, ok := m.Value(s, v); ok {
		return x
	}
	return def
}

// Assignment returns the solution as a dense slice indexed by [Var], with
// missing values set to zero.
func (m *Model) Assignment(s *Solution) []float64 {
	out := make([]float64, len(m.vars))
	for i := range m.vars {
		out[i] = m.ValueOr(s, Var(i), 0)
	}
	return out
}

// Solution builds a solution from a dense assignment. Values are rounded to
// integers for integral variables.
func (m *Model) Solution(status Status, values []float64) *Solution {
	s := &Solution{Status: status, Values: make(map[string]float64, len(values))}
	for i, x := range values {
		if m.vars[i].Kind != Continuous {
			x = math.Round(x)
		}
		s.Values[m.vars[i].Name] = x
	}
	s.Objective = m.objective.Eval(values)
	return s
}

// ObjectiveValue evaluates the objective for a solution, treating missing
// values as zero.
func (m *Model) ObjectiveValue(s *Solution) float64 {
	return m.objective.Eval(m.Assignment(s))
}
