// Package sink renders a [plan.Plan] into output formats.
//
//   - SVG: vector drawing with zone colours and fixture labels
//   - PDF: single A4 landscape page drawn with fpdf
//   - DXF: CAD drawing with parts, fixtures and labels on separate layers
//   - XLSX: fixture schedule and part summary workbook
//   - PNG: raster image via SVG conversion (requires rsvg-convert)
//
// [Render] dispatches on a format name:
//
//	data, err := sink.Render(ctx, p, sink.FormatPDF)
package sink
