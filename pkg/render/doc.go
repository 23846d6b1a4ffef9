// Package render draws solved kitchens and compiled models.
//
// Subpackages:
//
//   - [plan]: projects a solved kitchen onto the page (part outlines and
//     fixture blocks with zone colours)
//   - [sink]: writes a plan as SVG, PDF, DXF, PNG or an XLSX fixture
//     schedule
//   - [structure]: the constraint-family to variable-family graph of a
//     compiled model, as text, DOT or SVG
//
// [ToPNG] rasterises any SVG with the external rsvg-convert tool.
//
// [plan]: github.com/matzehuels/kitchendesigner/pkg/render/plan
// [sink]: github.com/matzehuels/kitchendesigner/pkg/render/sink
// [structure]: github.com/matzehuels/kitchendesigner/pkg/render/structure
package render
