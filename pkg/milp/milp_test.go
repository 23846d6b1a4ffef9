package milp

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
)

func TestExprTermsMerge(t *testing.T) {
	m := New("t")
	x := m.NewContinuous("x", "x", 0, 10)
	y := m.NewContinuous("y", "y", 0, 10)

	e := NewExpr().AddTerm(y, 2).Add(x).AddTerm(y, -2).AddTerm(x, 3).AddConstant(4)

	assert.Equal(t, []Term{{Var: x, Coef: 4}}, e.Terms())
	assert.Equal(t, 4.0, e.Offset())
	assert.InDelta(t, 12.0, e.Eval([]float64{2, 7}), 1e-9)
}

func TestNotAndSum(t *testing.T) {
	m := New("t")
	a := m.NewBinary("b", "a")
	b := m.NewBinary("b", "b")

	assert.InDelta(t, 0.0, Not(a).Eval([]float64{1, 0}), 1e-9)
	assert.InDelta(t, 1.0, Not(a).Eval([]float64{0, 0}), 1e-9)
	assert.InDelta(t, 2.0, Sum(a, b).Eval([]float64{1, 1}), 1e-9)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pair_s3_f12", "pair_s3_f12"},
		{"tall (top)", "tall__top_"},
		{"3d", "v3d"},
		{"", "v"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestConstraintNormalization(t *testing.T) {
	m := New("t")
	x := m.NewContinuous("x", "x", 0, 10)
	y := m.NewContinuous("y", "y", 0, 10)

	// x + 3 <= y + 5  ->  x - y <= 2
	m.Le("f", NewExpr().Add(x).AddConstant(3), NewExpr().Add(y).AddConstant(5))

	require.Len(t, m.Constraints(), 1)
	c := m.Constraints()[0]
	assert.Equal(t, "f_1", c.Name)
	assert.Equal(t, LessEqual, c.Sense)
	assert.Equal(t, 2.0, c.RHS)
	assert.Equal(t, []Term{{Var: x, Coef: 1}, {Var: y, Coef: -1}}, c.Terms)
	assert.Equal(t, []string{"f"}, m.Families())
	assert.Equal(t, 1, m.Count("f"))
}

func TestGroupArity(t *testing.T) {
	t.Run("matching count", func(t *testing.T) {
		m := New("t")
		x := m.NewContinuous("x", "x", 0, 10)
		g := m.Group("fam", "ok", 2)
		g.Le(x, Constant(5)).Ge(x, Constant(1))
		g.Close()
		assert.NoError(t, m.Err())
	})

	t.Run("missing clause", func(t *testing.T) {
		m := New("t")
		x := m.NewContinuous("x", "x", 0, 10)
		g := m.Group("fam", "short", 2)
		g.Le(x, Constant(5))
		g.Close()
		err := m.Err()
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeModelInvariant))
		assert.Contains(t, err.Error(), "emitted 1 clauses, declared 2")
	})

	t.Run("never closed", func(t *testing.T) {
		m := New("t")
		x := m.NewContinuous("x", "x", 0, 10)
		m.Group("fam", "open", 1).Le(x, Constant(5))
		assert.True(t, errors.Is(m.Err(), errors.ErrCodeModelInvariant))
	})

	t.Run("clause after close", func(t *testing.T) {
		m := New("t")
		x := m.NewContinuous("x", "x", 0, 10)
		g := m.Group("fam", "late", 1)
		g.Le(x, Constant(5))
		g.Close()
		g.Le(x, Constant(6))
		assert.Error(t, m.Err())
	})
}

func TestBigMDominance(t *testing.T) {
	t.Run("dominating constant", func(t *testing.T) {
		m := New("t")
		w := m.NewContinuous("width", "w", 0, 100)
		p := m.NewBinary("pair", "p")
		g := m.Group("width", "s0", 2)
		g.WithinIf(w, Constant(40), Constant(60), p, 100)
		g.Close()
		assert.NoError(t, m.Err())
	})

	t.Run("too small constant", func(t *testing.T) {
		m := New("t")
		w := m.NewContinuous("width", "w", 0, 100)
		p := m.NewBinary("pair", "p")
		g := m.Group("width", "s0", 1)
		// w - 60 reaches 40 when released, so M = 30 under-constrains.
		g.UpperIf(w, Constant(60), p, 30)
		g.Close()
		err := m.Err()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not dominate")
	})

	t.Run("unbounded variable", func(t *testing.T) {
		m := New("t")
		w := m.NewContinuous("width", "w", 0, math.Inf(1))
		p := m.NewBinary("pair", "p")
		g := m.Group("width", "s0", 1)
		g.UpperIf(w, Constant(60), p, 1e6)
		g.Close()
		assert.Error(t, m.Err())
	})
}

func TestBigMSemantics(t *testing.T) {
	m := New("t")
	w := m.NewContinuous("width", "w", 0, 100)
	p := m.NewBinary("pair", "p")
	g := m.Group("width", "s0", 2)
	g.WithinIf(w, Constant(40), Constant(60), p, 100)
	g.Close()
	require.NoError(t, m.Err())

	tests := []struct {
		name string
		w, p float64
		ok   bool
	}{
		{"gated inside", 50, 1, true},
		{"gated below", 30, 1, false},
		{"gated above", 70, 1, false},
		{"released low", 0, 0, true},
		{"released high", 100, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs := m.Check([]float64{tt.w, tt.p}, 1e-6)
			assert.Equal(t, tt.ok, len(vs) == 0, "violations: %v", vs)
		})
	}
}

func TestCheckBoundsAndIntegrality(t *testing.T) {
	m := New("t")
	b := m.NewBinary("b", "b")
	x := m.NewContinuous("x", "x", 0, 5)
	m.Eq("link", x, NewExpr().AddTerm(b, 5))

	assert.Empty(t, m.Check([]float64{1, 5}, 1e-6))

	vs := m.Check([]float64{0.5, 2.5}, 1e-6)
	require.Len(t, vs, 1)
	assert.Equal(t, "b", vs[0].Name)

	vs = m.Check([]float64{0, 6}, 1e-6)
	assert.Equal(t, []string{"x", "link"}, ViolatedFamilies(vs))
}

func TestRange(t *testing.T) {
	m := New("t")
	x := m.NewContinuous("x", "x", -5, 10)
	y := m.NewContinuous("y", "y", 0, 3)

	lo, hi := m.Range(NewExpr().Add(x).AddTerm(y, -2).AddConstant(1))
	assert.Equal(t, -10.0, lo)
	assert.Equal(t, 11.0, hi)
}

func TestDuplicateVariable(t *testing.T) {
	m := New("t")
	m.NewBinary("b", "pair_s0_f0")
	m.NewBinary("b", "pair_s0_f0")
	assert.Error(t, m.Err())
}

func TestWriteLP(t *testing.T) {
	m := New("kitchen")
	p := m.NewBinary("pair", "pair_s0_f0")
	w := m.NewContinuous("width", "width_s0", 0, 100)
	n := m.NewInteger("number", "number_f0", 0, 3)
	m.Le("width", NewExpr().Add(w).AddTerm(p, -100), Constant(0))
	m.Ge("empty", NewExpr(), Constant(0))
	m.Maximize(NewExpr().Add(p).AddTerm(w, 0.1).AddConstant(-3))
	_ = n

	var buf bytes.Buffer
	require.NoError(t, m.WriteLP(&buf))
	out := buf.String()

	assert.Contains(t, out, "Maximize\n obj: + 1 pair_s0_f0 + 0.1 width_s0\n")
	assert.Contains(t, out, " width_1: - 100 pair_s0_f0 + 1 width_s0 <= 0\n")
	assert.Contains(t, out, " empty_1: 0 pair_s0_f0 >= 0\n")
	assert.Contains(t, out, " 0 <= width_s0 <= 100\n")
	assert.Contains(t, out, "Generals\n number_f0\n")
	assert.Contains(t, out, "Binaries\n pair_s0_f0\n")
	assert.True(t, strings.HasSuffix(out, "End\n"))
}

func TestWriteLPWrapsLongRows(t *testing.T) {
	m := New("wide")
	e := NewExpr()
	for i := 0; i < 40; i++ {
		e.Add(m.NewBinary("b", "b"+strings.Repeat("x", i)))
	}
	m.Le("sum", e, Constant(1))

	var buf bytes.Buffer
	require.NoError(t, m.WriteLP(&buf))
	for _, line := range strings.Split(buf.String(), "\n") {
		assert.Less(t, len(line), 560)
	}
}

func TestWriteMPS(t *testing.T) {
	m := New("kitchen")
	p := m.NewBinary("pair", "p")
	w := m.NewContinuous("width", "w", -5, 100)
	m.Le("width", NewExpr().Add(w).AddTerm(p, -100), Constant(3))
	m.Maximize(NewExpr().Add(p).AddTerm(w, 0.5))

	var buf bytes.Buffer
	require.NoError(t, m.WriteMPS(&buf))
	out := buf.String()

	assert.Contains(t, out, "ROWS\n N obj\n L width_1\n")
	assert.Contains(t, out, " M1 'MARKER' 'INTORG'\n p obj -1\n p width_1 -100\n M2 'MARKER' 'INTEND'\n")
	assert.Contains(t, out, " w obj -0.5\n w width_1 1\n")
	assert.Contains(t, out, "RHS\n RHS width_1 3\n")
	assert.Contains(t, out, " BV BND p\n")
	assert.Contains(t, out, " LO BND w -5\n UP BND w 100\n")
	assert.True(t, strings.HasSuffix(out, "ENDATA\n"))
}

func TestSolutionValues(t *testing.T) {
	m := New("t")
	b := m.NewBinary("b", "b")
	x := m.NewContinuous("x", "x", 0, 5)
	m.Maximize(NewExpr().Add(b).AddTerm(x, 2))

	sol := &Solution{Status: StatusOptimal, Values: map[string]float64{"x": 2.5}}

	_, ok := m.Value(sol, b)
	assert.False(t, ok)
	assert.Equal(t, 7.0, m.ValueOr(sol, b, 7))
	assert.Equal(t, []float64{0, 2.5}, m.Assignment(sol))
	assert.InDelta(t, 5.0, m.ObjectiveValue(sol), 1e-9)

	built := m.Solution(StatusFeasible, []float64{0.9999999, 1})
	assert.Equal(t, 1.0, built.Values["b"])
	assert.InDelta(t, 3.0, built.Objective, 1e-6)
	assert.True(t, built.Status.HasValues())
	assert.False(t, StatusInfeasible.HasValues())
}

func TestStructure(t *testing.T) {
	m := New("t")
	p := m.NewBinary("pair", "p")
	pr := m.NewBinary("present", "pr")
	w := m.NewContinuous("width", "w", 0, 100)
	m.Eq("assignment", pr, p)
	m.Le("width", w, NewExpr().AddTerm(p, 100))
	m.Le("width", w, Constant(90))
	m.Maximize(Sum(pr))

	s := m.Structure()
	require.Len(t, s, 3)
	assert.Equal(t, FamilyStructure{Family: "assignment", Constraints: 1, Variables: []string{"pair", "present"}}, s[0])
	assert.Equal(t, FamilyStructure{Family: "width", Constraints: 2, Variables: []string{"pair", "width"}}, s[1])
	assert.Equal(t, "objective", s[2].Family)

	st := m.Stats()
	assert.Equal(t, Stats{Variables: 3, Binaries: 2, Continuous: 1, Constraints: 3, Nonzeros: 5}, st)
	assert.Equal(t, []string{"pair", "present", "width"}, m.VariableFamilies())
}
