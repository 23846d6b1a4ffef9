package milp

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
)

// Kind is the domain of a variable.
type Kind int

const (
	Continuous Kind = iota
	Binary
	Integer
)

func (k Kind) String() string {
	switch k {
	case Binary:
		return "binary"
	case Integer:
		return "integer"
	}
	return "continuous"
}

// Variable describes one column of the model.
type Variable struct {
	Name   string
	Family string
	Kind   Kind
	Lower  float64
	Upper  float64
}

// Sense is the relation of a constraint.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	}
	return "<="
}

// Constraint is a normalized row: Σ Terms (Sense) RHS.
type Constraint struct {
	Name   string
	Family string
	Terms  []Term
	Sense  Sense
	RHS    float64
}

// Model is a mixed-integer linear program under construction.
type Model struct {
	Name string

	vars     []Variable
	names    map[string]Var
	cons     []Constraint
	counts   map[string]int
	families []string
	groups   []*Group

	objective *Expr
	maximize  bool

	// The first error is kept and reported by Err.
	err error
}

// New creates an empty model.
func New(name string) *Model {
	return &Model{
		Name:      name,
		names:     make(map[string]Var),
		counts:    make(map[string]int),
		objective: NewExpr(),
	}
}

// Err returns the first invariant violation recorded while building, or an
// error naming a group that was never closed.
func (m *Model) Err() error {
	if m.err != nil {
		return m.err
	}
	for _, g := range m.groups {
		if !g.closed {
			return errors.New(errors.ErrCodeModelInvariant, "clause group %s/%s was never closed", g.family, g.label)
		}
	}
	return nil
}

// Fail records an invariant violation. Only the first one is kept.
func (m *Model) Fail(format string, args ...any) {
	if m.err == nil {
		m.err = errors.New(errors.ErrCodeModelInvariant, format, args...)
	}
}

// NewBinary adds a 0/1 variable.
func (m *Model) NewBinary(family, name string) Var {
	return m.addVar(Variable{Name: name, Family: family, Kind: Binary, Lower: 0, Upper: 1})
}

// NewContinuous adds a bounded continuous variable.
func (m *Model) NewContinuous(family, name string, lower, upper float64) Var {
	return m.addVar(Variable{Name: name, Family: family, Kind: Continuous, Lower: lower, Upper: upper})
}

// NewInteger adds a bounded integer variable.
func (m *Model) NewInteger(family, name string, lower, upper float64) Var {
	return m.addVar(Variable{Name: name, Family: family, Kind: Integer, Lower: lower, Upper: upper})
}

func (m *Model) addVar(v Variable) Var {
	v.Name = Sanitize(v.Name)
	if _, dup := m.names[v.Name]; dup {
		m.Fail("duplicate variable %q", v.Name)
	}
	if v.Lower > v.Upper {
		m.Fail("variable %q: lower bound %g exceeds upper bound %g", v.Name, v.Lower, v.Upper)
	}
	id := Var(len(m.vars))
	m.vars = append(m.vars, v)
	m.names[v.Name] = id
	return id
}

// Sanitize maps a name to the character set accepted by LP and MPS readers.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if s == "" || (s[0] >= '0' && s[0] <= '9') {
		s = "v" + s
	}
	return s
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of constraints.
func (m *Model) NumConstraints() int { return len(m.cons) }

// Variable returns the description of v.
func (m *Model) Variable(v Var) Variable { return m.vars[v] }

// Variables returns all variables in creation order.
func (m *Model) Variables() []Variable { return m.vars }

// Constraints returns all constraints in creation order.
func (m *Model) Constraints() []Constraint { return m.cons }

// Lookup returns the variable with the given (sanitized) name.
func (m *Model) Lookup(name string) (Var, bool) {
	v, ok := m.names[name]
	return v, ok
}

// Families returns the constraint families in order of first use.
func (m *Model) Families() []string { return m.families }

// Count returns the number of constraints emitted for a family.
func (m *Model) Count(family string) int { return m.counts[family] }

// Range returns the smallest and largest value of l over the variable
// bounds.
func (m *Model) Range(l Linear) (float64, float64) {
	e := asExpr(l)
	lo, hi := e.constant, e.constant
	for _, t := range e.Terms() {
		v := m.vars[t.Var]
		if t.Coef > 0 {
			lo += t.Coef * v.Lower
			hi += t.Coef * v.Upper
		} else {
			lo += t.Coef * v.Upper
			hi += t.Coef * v.Lower
		}
	}
	return lo, hi
}

// Le adds lhs <= rhs as a single-clause group.
func (m *Model) Le(family string, lhs, rhs Linear) {
	m.add(family, lhs, LessEqual, rhs)
}

// Ge adds lhs >= rhs as a single-clause group.
func (m *Model) Ge(family string, lhs, rhs Linear) {
	m.add(family, lhs, GreaterEqual, rhs)
}

// Eq adds lhs == rhs as a single-clause group.
func (m *Model) Eq(family string, lhs, rhs Linear) {
	m.add(family, lhs, Equal, rhs)
}

func (m *Model) add(family string, lhs Linear, sense Sense, rhs Linear) {
	e := asExpr(lhs)
	rhs.addTo(e, -1)
	for _, t := range e.terms {
		if int(t.Var) < 0 || int(t.Var) >= len(m.vars) {
			m.Fail("%s: constraint references unknown variable %d", family, t.Var)
			return
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			m.Fail("%s: non-finite coefficient on %s", family, m.vars[t.Var].Name)
			return
		}
	}
	if _, seen := m.counts[family]; !seen {
		m.families = append(m.families, family)
	}
	m.counts[family]++
	m.cons = append(m.cons, Constraint{
		Name:   fmt.Sprintf("%s_%d", Sanitize(family), m.counts[family]),
		Family: family,
		Terms:  e.Terms(),
		Sense:  sense,
		RHS:    -e.constant,
	})
}

// Maximize sets the objective to maximize l.
func (m *Model) Maximize(l Linear) {
	m.objective = asExpr(l)
	m.maximize = true
}

// Minimize sets the objective to minimize l.
func (m *Model) Minimize(l Linear) {
	m.objective = asExpr(l)
	m.maximize = false
}

// Objective returns the objective expression and whether it is maximized.
func (m *Model) Objective() (*Expr, bool) { return m.objective, m.maximize }
