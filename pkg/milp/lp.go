package milp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// termsPerLine keeps LP lines well below the 255 character limit of older
// readers.
const termsPerLine = 6

// WriteLP writes the model in CPLEX LP format. The objective constant is
// not written; engines report the objective without it.
func (m *Model) WriteLP(w io.Writer) error {
	if len(m.vars) == 0 {
		return fmt.Errorf("model %q has no variables", m.Name)
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\\ Model %s\n", m.Name)
	fmt.Fprintf(bw, "\\ %d variables, %d constraints\n", len(m.vars), len(m.cons))
	if m.maximize {
		bw.WriteString("Maximize\n")
	} else {
		bw.WriteString("Minimize\n")
	}
	m.writeLPRow(bw, " obj:", m.objective.Terms())
	bw.WriteString("\n")

	bw.WriteString("Subject To\n")
	for _, c := range m.cons {
		m.writeLPRow(bw, " "+c.Name+":", c.Terms)
		fmt.Fprintf(bw, " %s %s\n", lpSense(c.Sense), formatNum(c.RHS))
	}

	bw.WriteString("Bounds\n")
	for _, v := range m.vars {
		if v.Kind == Binary {
			continue
		}
		switch {
		case math.IsInf(v.Lower, -1) && math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s free\n", v.Name)
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", lpBound(v.Lower), v.Name, lpBound(v.Upper))
		}
	}

	var ints, bins []string
	for _, v := range m.vars {
		switch v.Kind {
		case Integer:
			ints = append(ints, v.Name)
		case Binary:
			bins = append(bins, v.Name)
		}
	}
	writeNameList(bw, "Generals", ints)
	writeNameList(bw, "Binaries", bins)
	bw.WriteString("End\n")
	return bw.Flush()
}

func (m *Model) writeLPRow(bw *bufio.Writer, prefix string, terms []Term) {
	bw.WriteString(prefix)
	if len(terms) == 0 {
		// Readers reject empty rows; a zero coefficient keeps them valid.
		fmt.Fprintf(bw, " 0 %s", m.vars[0].Name)
		return
	}
	for i, t := range terms {
		if i > 0 && i%termsPerLine == 0 {
			bw.WriteString("\n  ")
		}
		sign := "+"
		coef := t.Coef
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		fmt.Fprintf(bw, " %s %s %s", sign, formatNum(coef), m.vars[t.Var].Name)
	}
}

func writeNameList(bw *bufio.Writer, header string, names []string) {
	if len(names) == 0 {
		return
	}
	bw.WriteString(header + "\n")
	for i := 0; i < len(names); i += termsPerLine * 2 {
		end := min(i+termsPerLine*2, len(names))
		bw.WriteString(" " + strings.Join(names[i:end], " ") + "\n")
	}
}

func lpSense(s Sense) string {
	switch s {
	case GreaterEqual:
		return ">="
	case Equal:
		return "="
	}
	return "<="
}

func lpBound(b float64) string {
	switch {
	case math.IsInf(b, -1):
		return "-inf"
	case math.IsInf(b, 1):
		return "+inf"
	}
	return formatNum(b)
}

func formatNum(x float64) string {
	if x == 0 {
		return "0"
	}
	return strconv.FormatFloat(x, 'g', 12, 64)
}
