package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/render/plan"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	title string
}

// WithPDFTitle sets the page heading.
func WithPDFTitle(title string) PDFOption {
	return func(r *pdfRenderer) { r.title = title }
}

// RenderPDF draws the plan on a single A4 landscape page, scaled to fit.
func RenderPDF(p plan.Plan, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{title: "Kitchen layout"}
	for _, opt := range opts {
		opt(&r)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(r.title, true)
	pdf.SetCreator("kitchendesigner", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, r.title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Parts: %d | Fixtures: %d | Extent: %.0f x %.0f", len(p.Outlines), len(p.Blocks), p.Width(), p.Height())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := 1.0
	if p.Width() > 0 && p.Height() > 0 {
		scale = math.Min(drawWidth/p.Width(), drawHeight/p.Height())
	}
	offsetX := marginLeft + (drawWidth-p.Width()*scale)/2
	offsetY := drawAreaTop

	tr := func(pt kitchen.Point) fpdf.PointType {
		return fpdf.PointType{X: offsetX + (pt.X-p.Min.X)*scale, Y: offsetY + (p.Max.Y-pt.Y)*scale}
	}
	poly := func(q plan.Quad) []fpdf.PointType {
		out := make([]fpdf.PointType, len(q))
		for i, pt := range q {
			out[i] = tr(pt)
		}
		return out
	}

	for _, b := range p.Blocks {
		cr, cg, cb := plan.RGB(b.Color)
		fr, fg, fb := tint(cr, cg, cb)
		pdf.SetFillColor(fr, fg, fb)
		pdf.SetDrawColor(cr, cg, cb)
		pdf.SetLineWidth(0.3)
		pdf.Polygon(poly(b.Shape), "FD")

		label := b.Label()
		size := math.Max(4, math.Min(9, b.Width*scale/3))
		pdf.SetFont("Helvetica", "", size)
		pdf.SetTextColor(0, 0, 0)
		c := tr(b.Shape.Center())
		w := pdf.GetStringWidth(label)
		pdf.SetXY(c.X-w/2, c.Y-2)
		pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
	}

	pdf.SetDrawColor(255, 0, 0)
	pdf.SetLineWidth(0.5)
	for _, o := range p.Outlines {
		if o.Top {
			pdf.SetDashPattern([]float64{2, 1}, 0)
		}
		pdf.Polygon(poly(o.Shape), "D")
		pdf.SetDashPattern(nil, 0)
	}

	drawLegend(pdf, p.Legend, pageHeight-marginBottom-legendHeight+4)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawLegend renders one swatch per zone along the bottom of the page.
func drawLegend(pdf *fpdf.Fpdf, legend []plan.Swatch, y float64) {
	x := marginLeft
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetLineWidth(0.2)
	for _, s := range legend {
		r, g, b := plan.RGB(s.Color)
		pdf.SetFillColor(r, g, b)
		pdf.SetDrawColor(30, 30, 30)
		pdf.Rect(x, y, 4, 4, "FD")
		w := pdf.GetStringWidth(s.Zone)
		pdf.SetXY(x+5, y)
		pdf.CellFormat(w+1, 4, s.Zone, "", 0, "L", false, 0, "")
		x += w + 12
		if x > pageWidth-marginRight-20 {
			break
		}
	}
}

// tint mixes a colour with white at 80%.
func tint(r, g, b int) (int, int, int) {
	mix := func(c int) int { return c + (255-c)*4/5 }
	return mix(r), mix(g), mix(b)
}
