package sink

import (
	"bytes"
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"

	"github.com/matzehuels/kitchendesigner/pkg/render/plan"
)

// DXF layer names.
const (
	LayerParts    = "PARTS"
	LayerTopParts = "TOP_PARTS"
	LayerFixtures = "FIXTURES"
	LayerLabels   = "LABELS"
)

// RenderDXF writes the plan as a DXF drawing in kitchen units. Part
// outlines, fixtures and labels sit on their own layers.
func RenderDXF(p plan.Plan) ([]byte, error) {
	d := dxf.NewDrawing()
	layers := []struct {
		name  string
		color color.ColorNumber
	}{
		{LayerParts, color.Red},
		{LayerTopParts, color.Magenta},
		{LayerFixtures, color.Blue},
		{LayerLabels, color.White},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.color, table.LT_CONTINUOUS, false); err != nil {
			return nil, fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	for _, o := range p.Outlines {
		layer := LayerParts
		if o.Top {
			layer = LayerTopParts
		}
		if err := polyline(d, layer, o.Shape); err != nil {
			return nil, err
		}
	}
	for _, b := range p.Blocks {
		if err := polyline(d, LayerFixtures, b.Shape); err != nil {
			return nil, err
		}
		if err := d.ChangeLayer(LayerLabels); err != nil {
			return nil, err
		}
		c := b.Shape.Center()
		if _, err := d.Text(b.Label(), c.X, c.Y, 0, 4); err != nil {
			return nil, fmt.Errorf("label %s: %w", b.Fixture, err)
		}
	}

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write dxf: %w", err)
	}
	return buf.Bytes(), nil
}

func polyline(d *drawing.Drawing, layer string, q plan.Quad) error {
	if err := d.ChangeLayer(layer); err != nil {
		return err
	}
	vs := make([][]float64, len(q))
	for i, pt := range q {
		vs[i] = []float64{pt.X, pt.Y}
	}
	_, err := d.LwPolyline(true, vs...)
	return err
}
