package solver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

var glpk = &process{
	name:   "glpk",
	binary: "glpsol",
	format: formatMPS,
	args: func(model, solution string, limit time.Duration) []string {
		args := []string{"--freemps", model, "-w", solution}
		if limit > 0 {
			args = append(args, "--tmlim", seconds(limit))
		}
		return args
	},
	parse: parseGLPK,
}

var cbc = &process{
	name:   "cbc",
	binary: "cbc",
	format: formatLP,
	args: func(model, solution string, limit time.Duration) []string {
		args := []string{model}
		if limit > 0 {
			args = append(args, "sec", seconds(limit))
		}
		return append(args, "solve", "solu", solution)
	},
	parse: parseCBC,
}

var highs = &process{
	name:   "highs",
	binary: "highs",
	format: formatLP,
	args: func(model, solution string, limit time.Duration) []string {
		args := []string{"--model_file", model, "--solution_file", solution}
		if limit > 0 {
			args = append(args, "--time_limit", seconds(limit))
		}
		return args
	},
	parse: parseHiGHS,
}

var scip = &process{
	name:   "scip",
	binary: "scip",
	format: formatLP,
	args: func(model, solution string, limit time.Duration) []string {
		args := []string{"-c", "read " + model}
		if limit > 0 {
			args = append(args, "-c", "set limits time "+seconds(limit))
		}
		return append(args, "-c", "optimize", "-c", "write solution "+solution, "-c", "quit")
	},
	parse: parseSCIP,
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// parseGLPK reads the output of glpsol -w. Columns are reported by 1-based
// index in model order:
//
//	s mip <rows> <cols> <o|f|n|u> <obj>
//	j <col> <value>
//
// A model without integer variables is reported as a basic solution:
//
//	s bas <rows> <cols> <primal> <dual> <obj>
//	j <col> <status> <value> <dual value>
func parseGLPK(r io.Reader, m *milp.Model) (milp.Status, []float64, error) {
	values := make([]float64, m.NumVars())
	status := milp.StatusUnknown
	mip := true
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		switch f[0] {
		case "s":
			if len(f) < 5 {
				return "", nil, fmt.Errorf("malformed status line %q", sc.Text())
			}
			mip = f[1] == "mip"
			status = glpkStatus(f[1:])
		case "j":
			idx := 2
			if !mip {
				idx = 3
			}
			if len(f) <= idx {
				return "", nil, fmt.Errorf("malformed column line %q", sc.Text())
			}
			col, err := strconv.Atoi(f[1])
			if err != nil || col < 1 || col > len(values) {
				return "", nil, fmt.Errorf("bad column %q", f[1])
			}
			x, err := parseFloat(f[idx])
			if err != nil {
				return "", nil, err
			}
			values[col-1] = x
		}
	}
	return status, values, sc.Err()
}

func glpkStatus(f []string) milp.Status {
	if f[0] == "mip" {
		switch f[3] {
		case "o":
			return milp.StatusOptimal
		case "f":
			return milp.StatusFeasible
		case "n":
			return milp.StatusInfeasible
		}
		return milp.StatusUnknown
	}
	if len(f) < 5 {
		return milp.StatusUnknown
	}
	primal, dual := f[3], f[4]
	switch {
	case primal == "f" && dual == "f":
		return milp.StatusOptimal
	case primal == "n":
		return milp.StatusInfeasible
	case primal == "f" && dual == "n":
		return milp.StatusUnbounded
	case primal == "f":
		return milp.StatusFeasible
	}
	return milp.StatusUnknown
}

// parseCBC reads the solution file written by cbc's solu command: a status
// line followed by "<index> <name> <value> <reduced cost>" for every
// nonzero column. Lines flagged "**" violate a bound and are read as is.
func parseCBC(r io.Reader, m *milp.Model) (milp.Status, []float64, error) {
	sc := bufio.NewScanner(r)
	if !sc.Scan() {
		return "", nil, fmt.Errorf("empty solution file")
	}
	head := strings.ToLower(sc.Text())
	var status milp.Status
	switch {
	case strings.HasPrefix(head, "optimal"):
		status = milp.StatusOptimal
	case strings.Contains(head, "infeasible"):
		status = milp.StatusInfeasible
	case strings.Contains(head, "unbounded"):
		status = milp.StatusUnbounded
	case strings.HasPrefix(head, "stopped"):
		status = milp.StatusFeasible
	default:
		status = milp.StatusUnknown
	}

	vals := newByName(m)
	for sc.Scan() {
		f := strings.Fields(strings.ReplaceAll(sc.Text(), "**", ""))
		if len(f) < 3 {
			continue
		}
		if err := vals.set(f[1], f[2]); err != nil {
			return "", nil, err
		}
	}
	if status == milp.StatusFeasible && !strings.Contains(head, "objective value") {
		status = milp.StatusUnknown
	}
	return status, vals.values, sc.Err()
}

// parseHiGHS reads a HiGHS solution file:
//
//	Model status
//	Optimal
//
//	# Primal solution values
//	Feasible
//	Objective 12.5
//	# Columns <n>
//	<name> <value>
//
// Dual values follow in a section of the same shape and are skipped.
func parseHiGHS(r io.Reader, m *milp.Model) (milp.Status, []float64, error) {
	sc := bufio.NewScanner(r)
	status := milp.StatusUnknown
	vals := newByName(m)
	columns := 0
	primal := false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "# Primal solution values"):
			primal = true
		case strings.HasPrefix(line, "# Dual solution values"):
			primal = false
			columns = 0
		case line == "Model status":
			for sc.Scan() {
				if s := strings.TrimSpace(sc.Text()); s != "" {
					status = highsStatus(s)
					break
				}
			}
		case primal && strings.HasPrefix(line, "# Columns"):
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Columns")))
			if err != nil {
				return "", nil, fmt.Errorf("bad column count %q", line)
			}
			columns = n
		case columns > 0:
			f := strings.Fields(line)
			if len(f) < 2 {
				return "", nil, fmt.Errorf("malformed column line %q", line)
			}
			if err := vals.set(f[0], f[1]); err != nil {
				return "", nil, err
			}
			columns--
		}
	}
	return status, vals.values, sc.Err()
}

func highsStatus(s string) milp.Status {
	s = strings.ToLower(s)
	switch {
	case s == "optimal":
		return milp.StatusOptimal
	case strings.Contains(s, "infeasible"):
		return milp.StatusInfeasible
	case strings.Contains(s, "unbounded"):
		return milp.StatusUnbounded
	case strings.Contains(s, "time limit"), strings.Contains(s, "iteration limit"),
		strings.Contains(s, "solution limit"), strings.Contains(s, "interrupt"):
		return milp.StatusFeasible
	}
	return milp.StatusUnknown
}

// parseSCIP reads the output of SCIP's write solution command:
//
//	solution status: optimal solution found
//	objective value: 12.5
//	<name> <value> (obj:<coef>)
//
// Zero-valued variables are omitted.
func parseSCIP(r io.Reader, m *milp.Model) (milp.Status, []float64, error) {
	sc := bufio.NewScanner(r)
	status := milp.StatusUnknown
	values := false
	vals := newByName(m)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "solution status:"):
			status = scipStatus(strings.TrimSpace(strings.TrimPrefix(line, "solution status:")))
		case strings.HasPrefix(line, "objective value:"):
			values = true
		case strings.HasPrefix(line, "no solution available"):
			values = false
		case line == "":
		default:
			f := strings.Fields(line)
			if len(f) < 2 {
				continue
			}
			if err := vals.set(f[0], f[1]); err != nil {
				return "", nil, err
			}
		}
	}
	if status == milp.StatusFeasible && !values {
		status = milp.StatusUnknown
	}
	return status, vals.values, sc.Err()
}

func scipStatus(s string) milp.Status {
	s = strings.ToLower(s)
	switch {
	case strings.HasPrefix(s, "optimal"):
		return milp.StatusOptimal
	case strings.Contains(s, "infeasible"):
		return milp.StatusInfeasible
	case strings.Contains(s, "unbounded"):
		return milp.StatusUnbounded
	case strings.Contains(s, "limit"), strings.Contains(s, "interrupt"):
		return milp.StatusFeasible
	}
	return milp.StatusUnknown
}
