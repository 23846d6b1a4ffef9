package sink

import (
	"context"
	"slices"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/render/plan"
)

// Drawing formats.
const (
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
	FormatDXF  = "dxf"
	FormatXLSX = "xlsx"
	FormatPNG  = "png"
)

// Formats lists every format [Render] understands.
var Formats = []string{FormatSVG, FormatPDF, FormatDXF, FormatXLSX, FormatPNG}

// Supported reports whether format is a drawing format.
func Supported(format string) bool { return slices.Contains(Formats, format) }

// Render draws p in the given format.
func Render(ctx context.Context, p plan.Plan, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(p), nil
	case FormatPDF:
		return RenderPDF(p)
	case FormatDXF:
		return RenderDXF(p)
	case FormatXLSX:
		return RenderXLSX(p)
	case FormatPNG:
		return RenderPNG(ctx, p)
	}
	return nil, errors.New(errors.ErrCodeInvalidSettings, "unknown output format %q", format)
}
