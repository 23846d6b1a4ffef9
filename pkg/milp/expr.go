package milp

import (
	"math"
	"slices"
)

// Var is a handle to a variable of a [Model].
type Var int

// Linear is implemented by values that can be added to an [Expr].
type Linear interface {
	addTo(e *Expr, c float64)
}

func (v Var) addTo(e *Expr, c float64) {
	e.terms = append(e.terms, Term{Var: v, Coef: c})
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is a linear expression: a sum of terms plus a constant.
type Expr struct {
	terms    []Term
	constant float64
}

// NewExpr creates an empty expression.
func NewExpr() *Expr {
	return &Expr{}
}

// Constant creates an expression holding only c.
func Constant(c float64) *Expr {
	return &Expr{constant: c}
}

// Sum creates an expression adding all arguments.
func Sum[L Linear](args ...L) *Expr {
	e := NewExpr()
	for _, a := range args {
		a.addTo(e, 1)
	}
	return e
}

// Not returns 1 - v, the complement of a binary.
func Not(v Var) *Expr {
	return Constant(1).AddTerm(v, -1)
}

// Add adds l to the expression and returns it.
func (e *Expr) Add(l Linear) *Expr {
	l.addTo(e, 1)
	return e
}

// Sub subtracts l from the expression and returns it.
func (e *Expr) Sub(l Linear) *Expr {
	l.addTo(e, -1)
	return e
}

// AddTerm adds c*l to the expression and returns it.
func (e *Expr) AddTerm(l Linear, c float64) *Expr {
	l.addTo(e, c)
	return e
}

// AddConstant adds c to the expression and returns it.
func (e *Expr) AddConstant(c float64) *Expr {
	e.constant += c
	return e
}

func (e *Expr) addTo(o *Expr, c float64) {
	for _, t := range e.terms {
		o.terms = append(o.terms, Term{Var: t.Var, Coef: t.Coef * c})
	}
	o.constant += e.constant * c
}

// Clone returns an independent copy.
func (e *Expr) Clone() *Expr {
	return &Expr{terms: slices.Clone(e.terms), constant: e.constant}
}

// Offset returns the constant part.
func (e *Expr) Offset() float64 { return e.constant }

// Terms returns the merged terms ordered by variable, dropping zero
// coefficients.
func (e *Expr) Terms() []Term {
	if len(e.terms) == 0 {
		return nil
	}
	ts := slices.Clone(e.terms)
	slices.SortStableFunc(ts, func(a, b Term) int { return int(a.Var) - int(b.Var) })
	out := ts[:0]
	for _, t := range ts {
		if n := len(out); n > 0 && out[n-1].Var == t.Var {
			out[n-1].Coef += t.Coef
			continue
		}
		out = append(out, t)
	}
	return slices.DeleteFunc(out, func(t Term) bool { return math.Abs(t.Coef) < 1e-12 })
}

// Eval evaluates the expression for the given values, indexed by [Var].
func (e *Expr) Eval(values []float64) float64 {
	sum := e.constant
	for _, t := range e.terms {
		sum += t.Coef * values[t.Var]
	}
	return sum
}

func asExpr(l Linear) *Expr {
	e := NewExpr()
	l.addTo(e, 1)
	return e
}
