// Package solver runs compiled models through external MILP engines.
//
// Engines are selected by name from a fixed allow-list. An unrecognised
// name falls back to [Default] with a warning rather than an error, so a
// typo in a settings file never blocks a solve.
//
// Every engine is an external binary: the model is written to a scratch
// directory in a format the engine reads, the binary is run under the
// caller's context, and the solution file it writes is parsed back into a
// [milp.Solution]. Objective values are recomputed from the parsed values,
// so sign conventions of the individual engines do not matter.
package solver

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// Default is the engine used when none or an unknown one is requested.
const Default = "glpk"

// Names lists the supported engines.
var Names = []string{"glpk", "cbc", "highs", "scip"}

// Options configures a solve.
type Options struct {
	// TimeLimit is passed to the engine. Zero means no limit.
	TimeLimit time.Duration
	// WorkDir receives the model and solution files. Empty means a fresh
	// temporary directory.
	WorkDir string
	// KeepFiles keeps the temporary directory after the solve.
	KeepFiles bool
	Logger    *log.Logger
}

// Engine solves a model.
type Engine interface {
	Name() string
	Solve(ctx context.Context, m *milp.Model, opts Options) (*milp.Solution, error)
}

// Resolve validates an engine name, falling back to [Default].
func Resolve(name string, logger *log.Logger) string {
	if name == "" {
		return Default
	}
	if slices.Contains(Names, name) {
		return name
	}
	if logger != nil {
		logger.Warn("unknown solver, using default", "solver", name, "default", Default)
	}
	return Default
}

// New returns the engine for a name, resolved with [Resolve].
func New(name string, logger *log.Logger) Engine {
	switch Resolve(name, logger) {
	case "cbc":
		return cbc
	case "highs":
		return highs
	case "scip":
		return scip
	default:
		return glpk
	}
}

// Available reports whether the engine's binary is on PATH.
func Available(name string) bool {
	p, ok := engines[name]
	return ok && p.available()
}

var engines = map[string]*process{
	"glpk":  glpk,
	"cbc":   cbc,
	"highs": highs,
	"scip":  scip,
}

// Solve runs the model through e and converts non-success outcomes into
// coded errors: infeasible and unbounded models get their own codes, any
// other status without values is a solver failure.
func Solve(ctx context.Context, e Engine, m *milp.Model, opts Options) (*milp.Solution, error) {
	sol, err := e.Solve(ctx, m, opts)
	if err != nil {
		return nil, err
	}
	switch {
	case sol.Status.HasValues():
		return sol, nil
	case sol.Status == milp.StatusInfeasible:
		return sol, errors.New(errors.ErrCodeInfeasible, "%s: model is infeasible", e.Name())
	case sol.Status == milp.StatusUnbounded:
		return sol, errors.New(errors.ErrCodeUnbounded, "%s: model is unbounded", e.Name())
	default:
		return sol, errors.New(errors.ErrCodeSolverFailed, "%s: no solution (status %s)", e.Name(), sol.Status)
	}
}
