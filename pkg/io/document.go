package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
)

// Document is the declared kitchen as read from disk.
type Document struct {
	Constants      Constants       `json:"constants" toml:"constants"`
	Parts          []Part          `json:"kitchen_parts" toml:"kitchen_parts"`
	Fixtures       []Fixture       `json:"available_fixtures" toml:"available_fixtures"`
	Zones          []Zone          `json:"zones,omitempty" toml:"zones"`
	Walls          []Wall          `json:"walls,omitempty" toml:"walls"`
	Corners        []Corner        `json:"corners,omitempty" toml:"corners"`
	PlacementRules []PlacementRule `json:"placement_rules,omitempty" toml:"placement_rules"`
	RelationRules  []RelationRule  `json:"relation_rules,omitempty" toml:"relation_rules"`
}

// Constants are optional; zero values take the defaults. The tolerances
// are pointers so that an explicit 0 is seen and rejected rather than
// replaced by the default.
type Constants struct {
	MinWidth                float64  `json:"min_width,omitempty" toml:"min_width"`
	MaxWidth                float64  `json:"max_width,omitempty" toml:"max_width"`
	CanvasSize              float64  `json:"canvas_size,omitempty" toml:"canvas_size"`
	ContinuityTolerance     *float64 `json:"continuity_tolerance,omitempty" toml:"continuity_tolerance,omitempty"`
	SameWidthTolerance      *float64 `json:"same_width_tolerance,omitempty" toml:"same_width_tolerance,omitempty"`
	DifferentWidthTolerance *float64 `json:"different_width_tolerance,omitempty" toml:"different_width_tolerance,omitempty"`
	CloneCount              int      `json:"clone_count,omitempty" toml:"clone_count"`
}

type Part struct {
	Name      string   `json:"name" toml:"name"`
	Width     float64  `json:"width" toml:"width"`
	Depth     float64  `json:"depth" toml:"depth"`
	IsTop     bool     `json:"is_top,omitempty" toml:"is_top"`
	EdgeStart bool     `json:"edge_start,omitempty" toml:"edge_start"`
	EdgeEnd   bool     `json:"edge_end,omitempty" toml:"edge_end"`
	Position  Position `json:"position" toml:"position"`
}

type Position struct {
	X           float64 `json:"x" toml:"x"`
	Y           float64 `json:"y" toml:"y"`
	Angle       float64 `json:"angle" toml:"angle"`
	Group       int     `json:"group" toml:"group"`
	GroupOffset float64 `json:"group_offset,omitempty" toml:"group_offset"`
}

type Fixture struct {
	Name           string  `json:"name" toml:"name"`
	Type           string  `json:"type" toml:"type"`
	Zone           string  `json:"zone,omitempty" toml:"zone"`
	WidthMin       float64 `json:"width_min" toml:"width_min"`
	WidthMax       float64 `json:"width_max" toml:"width_max"`
	CornerWidthMin float64 `json:"corner_width_min,omitempty" toml:"corner_width_min"`
	CornerWidthMax float64 `json:"corner_width_max,omitempty" toml:"corner_width_max"`
	PositionTop    bool    `json:"position_top,omitempty" toml:"position_top"`
	PositionBottom bool    `json:"position_bottom,omitempty" toml:"position_bottom"`
	Worktop        bool    `json:"worktop,omitempty" toml:"worktop"`
	AllowEdge      bool    `json:"allow_edge,omitempty" toml:"allow_edge"`
	Multiple       bool    `json:"multiple,omitempty" toml:"multiple"`
	Corner         bool    `json:"corner,omitempty" toml:"corner"`
	Storage        float64 `json:"storage,omitempty" toml:"storage"`
}

type Zone struct {
	Name     string         `json:"name" toml:"name"`
	Optimize bool           `json:"optimize,omitempty" toml:"optimize"`
	Center   *kitchen.Point `json:"center,omitempty" toml:"center"`
	Color    string         `json:"color,omitempty" toml:"color"`
}

type Wall struct {
	Group int     `json:"group" toml:"group"`
	Left  float64 `json:"left" toml:"left"`
	Right float64 `json:"right" toml:"right"`
}

// Corner names the two parts meeting at a corner and the end of each that
// touches it: "start" or "end".
type Corner struct {
	First     string `json:"first" toml:"first"`
	FirstEnd  string `json:"first_end" toml:"first_end"`
	Second    string `json:"second" toml:"second"`
	SecondEnd string `json:"second_end" toml:"second_end"`
}

// PlacementRule includes or excludes fixtures by attribute. Area is
// "kitchen", "group" or "group_section". The attribute value may be a
// string or a boolean.
type PlacementRule struct {
	Type           string   `json:"type" toml:"type"`
	Area           string   `json:"area" toml:"area"`
	AttributeName  string   `json:"attribute_name" toml:"attribute_name"`
	AttributeValue any      `json:"attribute_value" toml:"attribute_value"`
	Group          *int     `json:"group,omitempty" toml:"group"`
	SectionStart   *float64 `json:"section_start,omitempty" toml:"section_start"`
	SectionEnd     *float64 `json:"section_end,omitempty" toml:"section_end"`
}

// RelationRule is a numeric relation between fixture types. RuleType
// selects which of the other fields apply.
type RelationRule struct {
	RuleType    string  `json:"rule_type" toml:"rule_type"`
	FixtureType string  `json:"fixture_type,omitempty" toml:"fixture_type"`
	FirstType   string  `json:"first_type,omitempty" toml:"first_type"`
	SecondType  string  `json:"second_type,omitempty" toml:"second_type"`
	X           float64 `json:"x,omitempty" toml:"x"`
	Y           float64 `json:"y,omitempty" toml:"y"`
	Distance    float64 `json:"distance,omitempty" toml:"distance"`
	Length      float64 `json:"length,omitempty" toml:"length"`
	Width       float64 `json:"width,omitempty" toml:"width"`
}

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks the encoding from a file name. Anything but .toml is JSON.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatJSON
}

// Read decodes a document. It does not validate it.
func Read(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode toml")
		}
	default:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
		}
	}
	return &doc, nil
}

// Load reads and validates the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Write encodes the document.
func (d *Document) Write(w io.Writer, format Format) error {
	if format == FormatTOML {
		return toml.NewEncoder(w).Encode(d)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// attributeString renders a rule value the way fixtures render attributes.
func attributeString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
