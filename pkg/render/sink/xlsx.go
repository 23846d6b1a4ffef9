package sink

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/kitchendesigner/pkg/render/plan"
)

// Workbook sheet names.
const (
	SheetFixtures = "Fixtures"
	SheetParts    = "Parts"
)

var (
	fixtureHeader = []any{"Part", "Segment", "Fixture", "Type", "Zone", "Width"}
	partHeader    = []any{"Part", "Top", "Width", "Depth", "Padding", "Used", "Free"}
)

// RenderXLSX writes a fixture schedule and a part summary. Zone cells are
// filled with the zone colour.
func RenderXLSX(p plan.Plan) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetFixtures); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetParts); err != nil {
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(p.Blocks))
	for _, b := range p.Blocks {
		rows = append(rows, []any{b.Part, b.Segment, b.Fixture, b.Type, b.Zone, b.Width})
	}
	if err := writeSheet(f, SheetFixtures, fixtureHeader, rows, header); err != nil {
		return nil, err
	}

	zones := make(map[string]int)
	for i, b := range p.Blocks {
		if b.Zone == "" {
			continue
		}
		style, ok := zones[b.Color]
		if !ok {
			style, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{strings.TrimPrefix(b.Color, "#")}},
			})
			if err != nil {
				return nil, err
			}
			zones[b.Color] = style
		}
		cell, err := excelize.CoordinatesToCellName(5, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(SheetFixtures, cell, cell, style); err != nil {
			return nil, err
		}
	}

	rows = rows[:0]
	for _, o := range p.Outlines {
		rows = append(rows, []any{o.Part, o.Top, o.Width, o.Depth, o.Padding, o.Used, o.Width - o.Padding - o.Used})
	}
	if err := writeSheet(f, SheetParts, partHeader, rows, header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "G", 14)
}
