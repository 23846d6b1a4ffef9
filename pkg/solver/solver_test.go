package solver

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// small is max x + y subject to x + y <= 3, x binary, y in [0, 5].
func small() (*milp.Model, milp.Var, milp.Var) {
	m := milp.New("small")
	x := m.NewBinary("t", "x")
	y := m.NewContinuous("t", "y", 0, 5)
	m.Le("cap", milp.Sum(x, y), milp.Constant(3))
	m.Maximize(milp.Sum(x, y))
	return m, x, y
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "glpk", Resolve("", nil))
	assert.Equal(t, "highs", Resolve("highs", nil))
	assert.Equal(t, Default, Resolve("gurobi", nil))
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		assert.Equal(t, name, New(name, nil).Name())
	}
	assert.Equal(t, Default, New("cplex", nil).Name())
}

func TestParseGLPK(t *testing.T) {
	m, x, y := small()
	status, values, err := parseGLPK(strings.NewReader(`c Problem:    small
c Rows:       1
c Columns:    2 (1 integer, 1 binary)
c
s mip 1 2 o 3
i 1 3
j 1 1
j 2 2
e o f
`), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusOptimal, status)
	assert.Equal(t, 1.0, values[x])
	assert.Equal(t, 2.0, values[y])
}

func TestParseGLPKStatuses(t *testing.T) {
	m, _, _ := small()
	tests := []struct {
		line string
		want milp.Status
	}{
		{"s mip 1 2 f 3", milp.StatusFeasible},
		{"s mip 1 2 n 0", milp.StatusInfeasible},
		{"s mip 1 2 u 0", milp.StatusUnknown},
		{"s bas 1 2 f f 3", milp.StatusOptimal},
		{"s bas 1 2 n f 0", milp.StatusInfeasible},
		{"s bas 1 2 f n 0", milp.StatusUnbounded},
	}
	for _, tt := range tests {
		status, _, err := parseGLPK(strings.NewReader(tt.line+"\n"), m)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, status, tt.line)
	}

	_, _, err := parseGLPK(strings.NewReader("s mip 1 2 o 3\nj 9 1\n"), m)
	assert.Error(t, err, "column out of range")
}

func TestParseGLPKBasic(t *testing.T) {
	m, x, y := small()
	_, values, err := parseGLPK(strings.NewReader("s bas 1 2 f f 3\nj 1 b 1 0\nj 2 b 2 0\n"), m)
	require.NoError(t, err)
	assert.Equal(t, 1.0, values[x])
	assert.Equal(t, 2.0, values[y])
}

func TestParseCBC(t *testing.T) {
	m, x, y := small()
	status, values, err := parseCBC(strings.NewReader(`Optimal - objective value 3.00000000
      0 x                        1                       0
      1 y                        2                       0
`), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusOptimal, status)
	assert.Equal(t, 1.0, values[x])
	assert.Equal(t, 2.0, values[y])

	status, _, err = parseCBC(strings.NewReader("Infeasible - objective value 0.00000000\n"), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusInfeasible, status)

	status, values, err = parseCBC(strings.NewReader("Stopped on time - objective value 1.00000000\n**    0 x   1   0\n"), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusFeasible, status)
	assert.Equal(t, 1.0, values[x])
}

func TestParseHiGHS(t *testing.T) {
	m, x, y := small()
	status, values, err := parseHiGHS(strings.NewReader(`Model status
Optimal

# Primal solution values
Feasible
Objective 3
# Columns 2
x 1
y 2
# Rows 1
cap_1 3

# Dual solution values
Feasible
# Columns 2
x 7
y 7
# Rows 1
cap_1 1
`), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusOptimal, status)
	assert.Equal(t, 1.0, values[x])
	assert.Equal(t, 2.0, values[y])

	status, _, err = parseHiGHS(strings.NewReader("Model status\nInfeasible\n"), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusInfeasible, status)
}

func TestParseSCIP(t *testing.T) {
	m, x, y := small()
	status, values, err := parseSCIP(strings.NewReader(`solution status: optimal solution found
objective value:                                    3
x                                                   1 	(obj:1)
y                                                   2 	(obj:1)
`), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusOptimal, status)
	assert.Equal(t, 1.0, values[x])
	assert.Equal(t, 2.0, values[y])

	status, _, err = parseSCIP(strings.NewReader("solution status: infeasible\nno solution available\n"), m)
	require.NoError(t, err)
	assert.Equal(t, milp.StatusInfeasible, status)
}

type fakeEngine struct {
	status milp.Status
}

func (f fakeEngine) Name() string { return "fake" }

func (f fakeEngine) Solve(_ context.Context, m *milp.Model, _ Options) (*milp.Solution, error) {
	if !f.status.HasValues() {
		return &milp.Solution{Status: f.status}, nil
	}
	return m.Solution(f.status, make([]float64, m.NumVars())), nil
}

func TestSolveOutcomes(t *testing.T) {
	m, _, _ := small()
	tests := []struct {
		status milp.Status
		code   errors.Code
	}{
		{milp.StatusOptimal, ""},
		{milp.StatusFeasible, ""},
		{milp.StatusInfeasible, errors.ErrCodeInfeasible},
		{milp.StatusUnbounded, errors.ErrCodeUnbounded},
		{milp.StatusUnknown, errors.ErrCodeSolverFailed},
	}
	for _, tt := range tests {
		sol, err := Solve(context.Background(), fakeEngine{tt.status}, m, Options{})
		require.NotNil(t, sol, tt.status)
		if tt.code == "" {
			assert.NoError(t, err, tt.status)
			continue
		}
		assert.True(t, errors.Is(err, tt.code), "%s: %v", tt.status, err)
	}
}

// fakeBinary installs an executable shell script named name in front of
// PATH.
func fakeBinary(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+script), 0o755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestProcessSolve(t *testing.T) {
	fakeBinary(t, "glpsol", `
while [ $# -gt 0 ]; do
  if [ "$1" = "-w" ]; then shift; out="$1"; fi
  shift
done
printf 's mip 1 2 o 3\nj 1 1\nj 2 2\n' > "$out"
`)
	m, x, y := small()
	work := t.TempDir()
	sol, err := Solve(context.Background(), New("glpk", nil), m, Options{WorkDir: work, TimeLimit: time.Minute})
	require.NoError(t, err)

	assert.Equal(t, milp.StatusOptimal, sol.Status)
	assert.Equal(t, 3.0, sol.Objective)
	assert.Equal(t, 1.0, m.ValueOr(sol, x, -1))
	assert.Equal(t, 2.0, m.ValueOr(sol, y, -1))
	assert.FileExists(t, filepath.Join(work, "model.mps"))
}

func TestProcessInfeasibleFromLog(t *testing.T) {
	fakeBinary(t, "cbc", "echo 'Problem is infeasible - 0.01 seconds'\n")
	m, _, _ := small()
	_, err := Solve(context.Background(), New("cbc", nil), m, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInfeasible), "%v", err)
}

func TestProcessTimeout(t *testing.T) {
	fakeBinary(t, "highs", "exec sleep 5\n")
	m, _, _ := small()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := Solve(ctx, New("highs", nil), m, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeTimeout), "%v", err)
}

func TestProcessNotFound(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	assert.False(t, Available("scip"))
	m, _, _ := small()
	_, err := Solve(context.Background(), New("scip", nil), m, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeSolverNotFound), "%v", err)
}
