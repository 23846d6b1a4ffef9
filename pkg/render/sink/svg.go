package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/render/plan"
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale    float64
	margin   float64
	fontSize float64
	legend   bool
	title    string
}

func WithSVGScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }
func WithMargin(m float64) SVGOption   { return func(r *svgRenderer) { r.margin = m } }
func WithFontSize(s float64) SVGOption { return func(r *svgRenderer) { r.fontSize = s } }
func WithoutLegend() SVGOption         { return func(r *svgRenderer) { r.legend = false } }
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

const legendRow = 16.0

// RenderSVG draws the plan. Parts are outlined in red, top parts dashed;
// fixtures are filled with their zone colour.
func RenderSVG(p plan.Plan, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 2, margin: 20, fontSize: 10, legend: true}
	for _, opt := range opts {
		opt(&r)
	}

	width := p.Width()*r.scale + 2*r.margin
	height := p.Height()*r.scale + 2*r.margin
	top := r.margin
	if r.title != "" {
		top += r.fontSize * 2
		height += r.fontSize * 2
	}
	legendTop := height
	if r.legend && len(p.Legend) > 0 {
		height += legendRow*float64(len(p.Legend)) + r.margin/2
	}

	// Plan coordinates point up; SVG coordinates point down.
	tr := func(pt kitchen.Point) (float64, float64) {
		return (pt.X-p.Min.X)*r.scale + r.margin, (p.Max.Y-pt.Y)*r.scale + top
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="white"/>`+"\n")
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" font-weight="bold">%s</text>`+"\n",
			r.margin, r.margin+r.fontSize, r.fontSize*1.4, escape(r.title))
	}

	buf.WriteString(`  <g id="fixtures">` + "\n")
	for _, b := range p.Blocks {
		fmt.Fprintf(&buf, `    <polygon class="fixture" data-part="%s" points="%s" fill="%s" fill-opacity="0.2" stroke="%s" stroke-opacity="0.47"/>`+"\n",
			escape(b.Part), points(b.Shape, tr), b.Color, b.Color)
		cx, cy := tr(b.Shape.Center())
		fmt.Fprintf(&buf, `    <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			cx, cy, r.fontSize, escape(b.Label()))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g id="parts" fill="none" stroke="red">` + "\n")
	for _, o := range p.Outlines {
		dash := ""
		if o.Top {
			dash = ` stroke-dasharray="6 3"`
		}
		fmt.Fprintf(&buf, `    <polygon class="part" data-part="%s" points="%s"%s/>`+"\n",
			escape(o.Part), points(o.Shape, tr), dash)
	}
	buf.WriteString("  </g>\n")

	if r.legend && len(p.Legend) > 0 {
		buf.WriteString(`  <g id="legend" font-family="sans-serif">` + "\n")
		for i, s := range p.Legend {
			y := legendTop + float64(i)*legendRow
			fmt.Fprintf(&buf, `    <rect x="%.1f" y="%.1f" width="12" height="12" fill="%s"/>`+"\n", r.margin, y, s.Color)
			fmt.Fprintf(&buf, `    <text x="%.1f" y="%.1f" font-size="%.1f">%s</text>`+"\n",
				r.margin+18, y+10, r.fontSize, escape(s.Zone))
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func points(q plan.Quad, tr func(kitchen.Point) (float64, float64)) string {
	parts := make([]string, len(q))
	for i, pt := range q {
		x, y := tr(pt)
		parts[i] = fmt.Sprintf("%.1f,%.1f", x, y)
	}
	return strings.Join(parts, " ")
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
