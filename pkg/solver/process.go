package solver

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

type modelFormat int

const (
	formatLP modelFormat = iota
	formatMPS
)

func (f modelFormat) ext() string {
	if f == formatMPS {
		return ".mps"
	}
	return ".lp"
}

// killGrace lets an engine write its incumbent after its own time limit
// before the context kills it.
const killGrace = 30 * time.Second

// process is an engine driven through its command line.
type process struct {
	name   string
	binary string
	format modelFormat
	args   func(model, solution string, limit time.Duration) []string
	parse  func(r io.Reader, m *milp.Model) (milp.Status, []float64, error)
}

func (p *process) Name() string { return p.name }

func (p *process) available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

func (p *process) Solve(ctx context.Context, m *milp.Model, opts Options) (*milp.Solution, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	bin, err := exec.LookPath(p.binary)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSolverNotFound, err, "%s: %s not found on PATH", p.name, p.binary)
	}

	dir := opts.WorkDir
	if dir == "" {
		dir, err = os.MkdirTemp("", "kitchendesigner-"+p.name+"-")
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "create work dir")
		}
		if !opts.KeepFiles {
			defer os.RemoveAll(dir)
		}
	}
	modelPath := filepath.Join(dir, "model"+p.format.ext())
	solPath := filepath.Join(dir, "solution.txt")
	if err := p.writeModel(m, modelPath); err != nil {
		return nil, err
	}

	if opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.TimeLimit+killGrace)
		defer cancel()
	}

	args := p.args(modelPath, solPath, opts.TimeLimit)
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.WaitDelay = time.Second
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	logger.Debug("running solver", "solver", p.name, "args", strings.Join(args, " "), "dir", dir)
	runErr := cmd.Run()
	logger.Debug("solver finished", "solver", p.name, "duration", time.Since(start).Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "%s: exceeded time limit %s", p.name, opts.TimeLimit)
		}
		return nil, err
	}

	f, err := os.Open(solPath)
	if err != nil {
		if st := statusFromLog(out.String()); st != milp.StatusUnknown {
			return &milp.Solution{Status: st}, nil
		}
		return nil, errors.New(errors.ErrCodeSolverFailed, "%s: no solution file (%v): %s", p.name, runErr, tail(out.String(), 5))
	}
	defer f.Close()

	status, values, err := p.parse(f, m)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSolverFailed, err, "%s: parse solution", p.name)
	}
	if !status.HasValues() {
		return &milp.Solution{Status: status}, nil
	}
	return m.Solution(status, values), nil
}

func (p *process) writeModel(m *milp.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create model file")
	}
	if p.format == formatMPS {
		err = m.WriteMPS(f)
	} else {
		err = m.WriteLP(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write model")
	}
	return nil
}

// statusFromLog recognises outcomes that some engines only print.
func statusFromLog(s string) milp.Status {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "unbounded"):
		return milp.StatusUnbounded
	case strings.Contains(s, "infeasible"), strings.Contains(s, "no primal feasible"),
		strings.Contains(s, "no integer feasible"):
		return milp.StatusInfeasible
	}
	return milp.StatusUnknown
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%d", int(d.Seconds()+0.5))
}

// byName fills a dense assignment from name/value pairs. Unknown names are
// ignored, missing ones stay zero.
type byName struct {
	m      *milp.Model
	values []float64
}

func newByName(m *milp.Model) *byName {
	return &byName{m: m, values: make([]float64, m.NumVars())}
}

func (b *byName) set(name, value string) error {
	v, ok := b.m.Lookup(name)
	if !ok {
		return nil
	}
	x, err := parseFloat(value)
	if err != nil {
		return fmt.Errorf("value of %s: %w", name, err)
	}
	b.values[v] = x
	return nil
}
