package milp

import "math"

// dominanceSlack absorbs floating point noise in big-M checks.
const dominanceSlack = 1e-7

// Group emits a fixed number of clauses belonging to one constraint family.
type Group struct {
	m      *Model
	family string
	label  string
	want   int
	got    int
	closed bool
}

// Group starts a clause group that must emit exactly arity clauses before
// [Group.Close].
func (m *Model) Group(family, label string, arity int) *Group {
	g := &Group{m: m, family: family, label: label, want: arity}
	m.groups = append(m.groups, g)
	return g
}

// Le adds lhs <= rhs.
func (g *Group) Le(lhs, rhs Linear) *Group {
	g.emit(lhs, LessEqual, rhs)
	return g
}

// Ge adds lhs >= rhs.
func (g *Group) Ge(lhs, rhs Linear) *Group {
	g.emit(lhs, GreaterEqual, rhs)
	return g
}

// Eq adds lhs == rhs.
func (g *Group) Eq(lhs, rhs Linear) *Group {
	g.emit(lhs, Equal, rhs)
	return g
}

// UpperIf adds lhs <= rhs + M(1 - gate). The clause binds when gate is 1 and
// is released otherwise. M must dominate lhs - rhs over the variable bounds.
func (g *Group) UpperIf(lhs, rhs, gate Linear, M float64) *Group {
	diff := asExpr(lhs).Sub(rhs)
	if _, hi := g.m.Range(diff); hi > M+dominanceSlack || math.IsInf(hi, 0) {
		g.m.Fail("%s/%s: big-M %g does not dominate upper range %g", g.family, g.label, M, hi)
	}
	g.emit(asExpr(lhs), LessEqual, asExpr(rhs).AddConstant(M).AddTerm(gate, -M))
	return g
}

// LowerIf adds lhs >= rhs - M(1 - gate). M must dominate rhs - lhs over the
// variable bounds.
func (g *Group) LowerIf(lhs, rhs, gate Linear, M float64) *Group {
	diff := asExpr(rhs).Sub(lhs)
	if _, hi := g.m.Range(diff); hi > M+dominanceSlack || math.IsInf(hi, 0) {
		g.m.Fail("%s/%s: big-M %g does not dominate lower range %g", g.family, g.label, M, hi)
	}
	g.emit(asExpr(lhs), GreaterEqual, asExpr(rhs).AddConstant(-M).AddTerm(gate, M))
	return g
}

// EqualIf binds lhs == rhs when gate is 1. It emits two clauses.
func (g *Group) EqualIf(lhs, rhs, gate Linear, M float64) *Group {
	g.LowerIf(lhs, rhs, gate, M)
	g.UpperIf(lhs, rhs, gate, M)
	return g
}

// WithinIf binds lo <= x <= hi when gate is 1. It emits two clauses.
func (g *Group) WithinIf(x, lo, hi, gate Linear, M float64) *Group {
	g.LowerIf(x, lo, gate, M)
	g.UpperIf(x, hi, gate, M)
	return g
}

// Close checks the clause count against the declared arity.
func (g *Group) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if g.got != g.want {
		g.m.Fail("%s/%s: emitted %d clauses, declared %d", g.family, g.label, g.got, g.want)
	}
}

func (g *Group) emit(lhs Linear, sense Sense, rhs Linear) {
	if g.closed {
		g.m.Fail("%s/%s: clause added after close", g.family, g.label)
		return
	}
	g.got++
	g.m.add(g.family, lhs, sense, rhs)
}
