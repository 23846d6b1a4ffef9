package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// WriteMPS writes the model in free MPS format. MPS has no portable
// objective sense, so maximization models are written with a negated
// objective; callers reading an engine's objective value must negate it back.
func (m *Model) WriteMPS(w io.Writer) error {
	if len(m.vars) == 0 {
		return fmt.Errorf("model %q has no variables", m.Name)
	}
	bw := bufio.NewWriter(w)

	sign := 1.0
	if m.maximize {
		sign = -1
		bw.WriteString("* objective negated: maximization written as minimization\n")
	}
	fmt.Fprintf(bw, "NAME %s\n", Sanitize(m.Name))

	bw.WriteString("ROWS\n N obj\n")
	for _, c := range m.cons {
		fmt.Fprintf(bw, " %s %s\n", mpsSense(c.Sense), c.Name)
	}

	// Column-major view of the rows.
	type entry struct {
		row  string
		coef float64
	}
	cols := make([][]entry, len(m.vars))
	for _, t := range m.objective.Terms() {
		cols[t.Var] = append(cols[t.Var], entry{"obj", sign * t.Coef})
	}
	for _, c := range m.cons {
		for _, t := range c.Terms {
			cols[t.Var] = append(cols[t.Var], entry{c.Name, t.Coef})
		}
	}

	bw.WriteString("COLUMNS\n")
	inInt := false
	for i, v := range m.vars {
		integral := v.Kind != Continuous
		if integral && !inInt {
			bw.WriteString(" M1 'MARKER' 'INTORG'\n")
			inInt = true
		} else if !integral && inInt {
			bw.WriteString(" M2 'MARKER' 'INTEND'\n")
			inInt = false
		}
		if len(cols[i]) == 0 {
			fmt.Fprintf(bw, " %s obj 0\n", v.Name)
			continue
		}
		for _, e := range cols[i] {
			fmt.Fprintf(bw, " %s %s %s\n", v.Name, e.row, formatNum(e.coef))
		}
	}
	if inInt {
		bw.WriteString(" M2 'MARKER' 'INTEND'\n")
	}

	bw.WriteString("RHS\n")
	for _, c := range m.cons {
		if c.RHS != 0 {
			fmt.Fprintf(bw, " RHS %s %s\n", c.Name, formatNum(c.RHS))
		}
	}

	bw.WriteString("BOUNDS\n")
	for _, v := range m.vars {
		switch {
		case v.Kind == Binary:
			fmt.Fprintf(bw, " BV BND %s\n", v.Name)
		case math.IsInf(v.Lower, -1) && math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " FR BND %s\n", v.Name)
		default:
			if math.IsInf(v.Lower, -1) {
				fmt.Fprintf(bw, " MI BND %s\n", v.Name)
			} else if v.Lower != 0 {
				fmt.Fprintf(bw, " LO BND %s %s\n", v.Name, formatNum(v.Lower))
			}
			if !math.IsInf(v.Upper, 1) {
				fmt.Fprintf(bw, " UP BND %s %s\n", v.Name, formatNum(v.Upper))
			}
		}
	}
	bw.WriteString("ENDATA\n")
	return bw.Flush()
}

func mpsSense(s Sense) string {
	switch s {
	case GreaterEqual:
		return "G"
	case Equal:
		return "E"
	}
	return "L"
}
