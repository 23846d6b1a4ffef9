// Package structure describes the shape of a compiled model: which
// constraint families exist, how many rows each emitted and which variable
// families they couple.
//
// [WriteText] prints a table for terminals. [ToDOT] produces a bipartite
// Graphviz graph with constraint families as boxes and variable families as
// ellipses, and [RenderSVG] lays it out with the embedded Graphviz.
package structure

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// Options configures structure output.
type Options struct {
	// Detailed lists the variable names of each variable family.
	Detailed bool
	// MaxNames caps the names listed per family when Detailed is set.
	// Zero means 8.
	MaxNames int
}

func (o Options) maxNames() int {
	if o.MaxNames <= 0 {
		return 8
	}
	return o.MaxNames
}

// VariableFamily groups the columns sharing a family name.
type VariableFamily struct {
	Family string
	Kind   milp.Kind
	Count  int
	Names  []string
}

// Variables returns the variable families of m in order of first use.
func Variables(m *milp.Model) []VariableFamily {
	idx := make(map[string]int)
	var out []VariableFamily
	for _, v := range m.Variables() {
		i, ok := idx[v.Family]
		if !ok {
			i = len(out)
			idx[v.Family] = i
			out = append(out, VariableFamily{Family: v.Family, Kind: v.Kind})
		}
		out[i].Count++
		out[i].Names = append(out[i].Names, v.Name)
	}
	return out
}

// WriteText prints the model statistics followed by one line per
// constraint family.
func WriteText(w io.Writer, m *milp.Model, opts Options) error {
	s := m.Stats()
	fmt.Fprintf(w, "model %s: %d variables (%d binary, %d integer, %d continuous), %d constraints, %d nonzeros\n\n",
		m.Name, s.Variables, s.Binaries, s.Integers, s.Continuous, s.Constraints, s.Nonzeros)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CONSTRAINTS\tROWS\tVARIABLES")
	for _, f := range m.Structure() {
		rows := fmt.Sprint(f.Constraints)
		if f.Family == "objective" {
			rows = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Family, rows, strings.Join(f.Variables, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLES\tKIND\tCOUNT")
	for _, v := range Variables(m) {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", v.Family, v.Kind, v.Count)
		if opts.Detailed {
			fmt.Fprintf(tw, "\t\t%s\n", names(v.Names, opts.maxNames()))
		}
	}
	return tw.Flush()
}

func names(all []string, max int) string {
	if len(all) <= max {
		return strings.Join(all, " ")
	}
	return fmt.Sprintf("%s ... (%d more)", strings.Join(all[:max], " "), len(all)-max)
}
