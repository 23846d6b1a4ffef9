package milp

import "slices"

// FamilyStructure summarizes one constraint family: how many rows it has and
// which variable families its rows reference.
type FamilyStructure struct {
	Family      string
	Constraints int
	Variables   []string
}

// Stats counts the columns of a model by kind.
type Stats struct {
	Variables   int
	Binaries    int
	Integers    int
	Continuous  int
	Constraints int
	Nonzeros    int
}

// Stats returns column and row counts.
func (m *Model) Stats() Stats {
	s := Stats{Variables: len(m.vars), Constraints: len(m.cons)}
	for _, v := range m.vars {
		switch v.Kind {
		case Binary:
			s.Binaries++
		case Integer:
			s.Integers++
		default:
			s.Continuous++
		}
	}
	for _, c := range m.cons {
		s.Nonzeros += len(c.Terms)
	}
	return s
}

// Structure returns, for every constraint family and the objective, the
// variable families it references. The objective is reported under the
// family name "objective".
func (m *Model) Structure() []FamilyStructure {
	refs := make(map[string]map[string]bool)
	for _, c := range m.cons {
		set := refs[c.Family]
		if set == nil {
			set = make(map[string]bool)
			refs[c.Family] = set
		}
		for _, t := range c.Terms {
			set[m.vars[t.Var].Family] = true
		}
	}

	out := make([]FamilyStructure, 0, len(m.families)+1)
	for _, f := range m.families {
		out = append(out, FamilyStructure{Family: f, Constraints: m.counts[f], Variables: sortedKeys(refs[f])})
	}

	obj := make(map[string]bool)
	for _, t := range m.objective.Terms() {
		obj[m.vars[t.Var].Family] = true
	}
	if len(obj) > 0 {
		out = append(out, FamilyStructure{Family: "objective", Variables: sortedKeys(obj)})
	}
	return out
}

// VariableFamilies returns the distinct variable families in order of first
// use.
func (m *Model) VariableFamilies() []string {
	var out []string
	for _, v := range m.vars {
		if !slices.Contains(out, v.Family) {
			out = append(out, v.Family)
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
