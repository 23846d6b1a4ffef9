package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
)

func load(t *testing.T, name string) *Document {
	t.Helper()
	doc, err := Load(filepath.Join("testdata", name))
	require.NoError(t, err)
	return doc
}

func TestLoadJSON(t *testing.T) {
	doc := load(t, "galley.json")
	require.Len(t, doc.Parts, 2)
	assert.Equal(t, "upper", doc.Parts[1].Name)
	assert.True(t, doc.Parts[1].IsTop)
	require.Len(t, doc.Zones, 2)
	require.NotNil(t, doc.Zones[1].Center)
	assert.Equal(t, kitchen.Point{X: 200, Y: 30}, *doc.Zones[1].Center)
	assert.Equal(t, true, doc.PlacementRules[2].AttributeValue)

	in, err := doc.Input()
	require.NoError(t, err)
	assert.Len(t, in.Catalog, 5)
	assert.True(t, in.Catalog[2].Top)
	assert.True(t, in.Catalog[2].Bottom)
	require.Len(t, in.Rules, 3)
	assert.Equal(t, kitchen.KitchenScope{}, in.Rules[0].Scope)
	assert.Equal(t, kitchen.Exclude, in.Rules[1].Kind)
	assert.Equal(t, kitchen.SectionScope{Group: 1, Start: 0, End: 60}, in.Rules[1].Scope)
	assert.Equal(t, kitchen.Match{Attribute: "is_top", Value: "true"}, in.Rules[2].Match)
	assert.Equal(t, 5, in.Relations.Len())
	assert.Equal(t, kitchen.Target{Type: "sink", Point: kitchen.Point{X: 100}}, in.Relations.Targets[0])
	assert.Equal(t, 80.0, in.Relations.MinOneWide[0].Width)

	k, _, err := preprocess.Run(in, preprocess.Options{})
	require.NoError(t, err)
	assert.Len(t, k.Segments, 12)
}

func TestLoadTOML(t *testing.T) {
	doc := load(t, "galley.toml")
	in, err := doc.Input()
	require.NoError(t, err)

	require.Len(t, in.Parts, 2)
	assert.Equal(t, 90.0, in.Parts[1].Position.Angle)
	assert.Equal(t, 2, in.Parts[1].Position.Group)
	require.Len(t, in.Corners, 1)
	assert.Equal(t, kitchen.Corner{
		First:  kitchen.Leg{Part: 1, End: kitchen.StartEnd},
		Second: kitchen.Leg{Part: 0, End: kitchen.StartEnd},
	}, in.Corners[0])
	assert.True(t, in.Catalog[1].Corner)
	assert.Equal(t, 60.0, in.Catalog[1].CornerWidthMin)
	assert.Equal(t, kitchen.Match{Attribute: "has_worktop", Value: "false"}, in.Rules[0].Match)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "nope.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestReadRejectsUnknownKeys(t *testing.T) {
	_, err := Read(strings.NewReader(`{"kitchen_parts": [], "fixtures": []}`), FormatJSON)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestExplicitZeroTolerance(t *testing.T) {
	src := `{
		"constants": {"continuity_tolerance": 0},
		"kitchen_parts": [{"name": "base", "width": 100, "depth": 60}],
		"available_fixtures": [{"name": "sink", "type": "sink", "width_min": 40, "width_max": 60, "position_bottom": true}]
	}`
	d, err := Read(strings.NewReader(src), FormatJSON)
	require.NoError(t, err)
	require.NotNil(t, d.Constants.ContinuityTolerance)
	assert.Nil(t, d.Constants.SameWidthTolerance)

	_, err = d.Input()
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
	assert.True(t, errors.IsInput(err))
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatOf("a/b.TOML"))
	assert.Equal(t, FormatJSON, FormatOf("a/b.json"))
	assert.Equal(t, FormatJSON, FormatOf("kitchen"))
}

func minimal() *Document {
	return &Document{
		Parts:    []Part{{Name: "base", Width: 100, Depth: 60, Position: Position{Group: 1}}},
		Fixtures: []Fixture{{Name: "sink", Type: "sink", WidthMin: 40, WidthMax: 60, PositionBottom: true}},
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
		code   errors.Code
		msg    string
	}{
		{"valid", func(d *Document) {}, "", ""},
		{"no parts", func(d *Document) { d.Parts = nil }, errors.ErrCodeInvalidConfig, "no kitchen parts"},
		{"empty part name", func(d *Document) { d.Parts[0].Name = " " }, errors.ErrCodeInvalidConfig, "name cannot be empty"},
		{"duplicate part", func(d *Document) { d.Parts = append(d.Parts, d.Parts[0]) }, errors.ErrCodeInvalidConfig, "declared twice"},
		{"zero depth", func(d *Document) { d.Parts[0].Depth = 0 }, errors.ErrCodeInvalidConfig, "depth must be positive"},
		{"width range", func(d *Document) { d.Fixtures[0].WidthMin = 70 }, errors.ErrCodeInvalidConfig, "exceeds maximum"},
		{"no orientation", func(d *Document) { d.Fixtures[0].PositionBottom = false }, errors.ErrCodeInvalidConfig, "neither top nor bottom"},
		{"duplicate zone", func(d *Document) { d.Zones = []Zone{{Name: "wet"}, {Name: "wet"}} }, errors.ErrCodeInvalidConfig, "zone \"wet\" declared twice"},
		{"corner end", func(d *Document) {
			d.Corners = []Corner{{First: "base", FirstEnd: "middle", Second: "side", SecondEnd: "start"}}
		}, errors.ErrCodeInvalidConfig, "unknown end"},
		{"rule type", func(d *Document) {
			d.PlacementRules = []PlacementRule{{Type: "require", Area: "kitchen", AttributeName: "type", AttributeValue: "sink"}}
		}, errors.ErrCodeInvalidConfig, "unknown type"},
		{"rule attribute", func(d *Document) {
			d.PlacementRules = []PlacementRule{{Type: "include", Area: "kitchen", AttributeName: "colour", AttributeValue: "red"}}
		}, errors.ErrCodeInvalidConfig, "unknown attribute"},
		{"rule area", func(d *Document) {
			d.PlacementRules = []PlacementRule{{Type: "include", Area: "room", AttributeName: "type", AttributeValue: "sink"}}
		}, errors.ErrCodeInvalidConfig, "unknown area"},
		{"empty section", func(d *Document) {
			d.PlacementRules = []PlacementRule{{Type: "exclude", Area: "group_section", AttributeName: "type",
				AttributeValue: "sink", Group: ptr(1), SectionStart: ptr(60.0), SectionEnd: ptr(60.0)}}
		}, errors.ErrCodeInvalidConfig, "must be greater than start"},
		{"relation type", func(d *Document) {
			d.RelationRules = []RelationRule{{RuleType: "near", FixtureType: "sink"}}
		}, errors.ErrCodeInvalidConfig, "unknown rule type"},
		{"zero tolerance", func(d *Document) { d.Constants.SameWidthTolerance = ptr(0.0) }, errors.ErrCodeInvalidConfig, "same_width_tolerance must be positive"},
		{"positive tolerance", func(d *Document) { d.Constants.ContinuityTolerance = ptr(0.5) }, "", ""},
		{"narrow open part", func(d *Document) {
			d.Parts[0].Width = 5
			d.Parts[0].EdgeEnd = true
		}, errors.ErrCodeInvalidConfig, "narrower than min_width 10"},
		{"narrow closed part", func(d *Document) { d.Parts[0].Width = 5 }, "", ""},
		{"narrow corner leg", func(d *Document) {
			d.Constants.MinWidth = 40
			d.Parts = append(d.Parts, Part{Name: "side", Width: 30, Depth: 60, Position: Position{Group: 1}})
			d.Corners = []Corner{{First: "base", FirstEnd: "end", Second: "side", SecondEnd: "start"}}
		}, errors.ErrCodeInvalidConfig, "\"side\" is narrower than min_width 40"},
		{"undeclared zone", func(d *Document) { d.Fixtures[0].Zone = "wet" }, errors.ErrCodeUnknownReference, "zone \"wet\" is not declared"},
		{"rule group", func(d *Document) {
			d.PlacementRules = []PlacementRule{{Type: "include", Area: "group", AttributeName: "type", AttributeValue: "sink", Group: ptr(7)}}
		}, errors.ErrCodeUnknownReference, "group 7 has no kitchen parts"},
		{"corner part", func(d *Document) {
			d.Corners = []Corner{{First: "base", FirstEnd: "end", Second: "side", SecondEnd: "start"}}
		}, errors.ErrCodeUnknownReference, "\"side\" is not declared"},
		{"relation fixture type", func(d *Document) {
			d.RelationRules = []RelationRule{{RuleType: "wall_distance", FixtureType: "stove", Distance: 20}}
		}, errors.ErrCodeUnknownReference, "type \"stove\""},
		{"wall group", func(d *Document) { d.Walls = []Wall{{Group: 3, Left: 0, Right: 10}} }, errors.ErrCodeUnknownReference, "group 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := minimal()
			tt.mutate(d)
			err := d.Validate()
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestValidateReportsConfigBeforeReferences(t *testing.T) {
	d := minimal()
	d.Fixtures[0].Zone = "wet"
	d.Parts[0].Width = -1
	d.Fixtures[0].WidthMax = 0

	err := d.Validate()
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.GetCode(err))
	assert.Contains(t, err.Error(), "(and 2 more)")
}

func solved(t *testing.T) *kitchen.Kitchen {
	t.Helper()
	d := minimal()
	d.Parts[0].Width = 200
	d.Fixtures = append(d.Fixtures, Fixture{Name: "drawer", Type: "drawer", WidthMin: 40, WidthMax: 80, PositionBottom: true, Multiple: true})
	d.Constants.MinWidth = 40
	d.Constants.CloneCount = 2
	in, err := d.Input()
	require.NoError(t, err)
	k, _, err := preprocess.Run(in, preprocess.Options{})
	require.NoError(t, err)
	return k
}

func TestLayoutRoundTrip(t *testing.T) {
	k := solved(t)
	want := Layout{
		"base": {Padding: 5, Fixtures: []PlacedFixture{
			{Fixture: "drawer #1", Width: 80},
			{Fixture: "sink", Width: 55},
			{Fixture: "drawer #2", Width: 60},
		}},
	}
	require.NoError(t, want.Apply(k))
	assert.Equal(t, 5.0, k.Parts[0].Position.Padding)
	assert.True(t, k.Segments[2].Occupied())
	assert.False(t, k.Segments[3].Occupied())

	got := ExportLayout(k)
	assert.Equal(t, want, got)

	var buf bytes.Buffer
	require.NoError(t, WriteLayout(&buf, got))
	assert.Contains(t, buf.String(), `"fixture": "sink"`)
	read, err := ReadLayout(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, read)
}

func TestLayoutApplyErrors(t *testing.T) {
	k := solved(t)

	err := Layout{"island": {}}.Apply(k)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownReference))

	err = Layout{"base": {Fixtures: []PlacedFixture{{Fixture: "oven", Width: 60}}}}.Apply(k)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownReference))

	many := make([]PlacedFixture, 6)
	for i := range many {
		many[i] = PlacedFixture{Fixture: "sink", Width: 40}
	}
	err = Layout{"base": {Fixtures: many}}.Apply(k)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestExportEmptyPart(t *testing.T) {
	k := solved(t)
	l := ExportLayout(k)
	require.Contains(t, l, "base")
	assert.Empty(t, l["base"].Fixtures)
	assert.NotNil(t, l["base"].Fixtures)
}

func TestSaveAndLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	l := Layout{"base": {Padding: 0, Fixtures: []PlacedFixture{{Fixture: "sink", Width: 50}}}}
	require.NoError(t, SaveLayout(path, l))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"))

	got, err := LoadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, l, got)
}

func TestDocumentWriteTOML(t *testing.T) {
	doc := load(t, "galley.json")
	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf, FormatTOML))

	again, err := Read(&buf, FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, doc.Parts, again.Parts)
	assert.Equal(t, doc.Fixtures, again.Fixtures)
	assert.NoError(t, again.Validate())
}
