package structure

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// ToDOT converts the model structure to Graphviz DOT. Each constraint
// family points at the variable families its rows reference; the objective
// is drawn as a filled box.
func ToDOT(m *milp.Model, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	structure := m.Structure()
	for _, f := range structure {
		label := fmt.Sprintf("%s\\n%d rows", f.Family, f.Constraints)
		style := `shape=box, style="rounded"`
		if f.Family == "objective" {
			label = f.Family
			style = `shape=box, style="rounded,filled", fillcolor=lightgrey`
		}
		fmt.Fprintf(&buf, "  %q [label=\"%s\", %s];\n", "c:"+f.Family, label, style)
	}

	buf.WriteString("\n")
	for _, v := range Variables(m) {
		label := fmt.Sprintf("%s\\n%d %s", v.Family, v.Count, v.Kind)
		if opts.Detailed {
			label += "\\n" + names(v.Names, opts.maxNames())
		}
		fmt.Fprintf(&buf, "  %q [label=\"%s\", shape=ellipse];\n", "v:"+v.Family, label)
	}

	buf.WriteString("\n")
	for _, f := range structure {
		for _, v := range f.Variables {
			fmt.Fprintf(&buf, "  %q -> %q;\n", "c:"+f.Family, "v:"+v)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the Graphviz root element, whose width and
// height are in points, with one sized from its viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
