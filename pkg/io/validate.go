package io

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
)

const (
	ruleInclude = "include"
	ruleExclude = "exclude"

	areaKitchen = "kitchen"
	areaGroup   = "group"
	areaSection = "group_section"

	relTarget        = "target"
	relMinDistance   = "min_distance"
	relWallDistance  = "wall_distance"
	relWorktopLength = "worktop_length"
	relMinOneWide    = "min_one_wide"

	endStart = "start"
	endEnd   = "end"
)

// Validate checks the document in two passes. Malformed values are
// reported as INVALID_CONFIG; only when there are none are names resolved,
// and dangling ones reported as UNKNOWN_REFERENCE.
func (d *Document) Validate() error {
	if err := d.validateConfig(); err != nil {
		return err
	}
	return d.validateReferences()
}

func (d *Document) validateConfig() error {
	v := errors.Violations{Code: errors.ErrCodeInvalidConfig}
	check := func(err error) {
		if err != nil {
			v.Add("%s", errors.UserMessage(err))
		}
	}

	c := d.Constants
	check(errors.ValidateNonNegative("min_width", c.MinWidth))
	check(errors.ValidateNonNegative("max_width", c.MaxWidth))
	check(errors.ValidateNonNegative("canvas_size", c.CanvasSize))
	for _, tol := range []struct {
		name  string
		value *float64
	}{
		{"continuity_tolerance", c.ContinuityTolerance},
		{"same_width_tolerance", c.SameWidthTolerance},
		{"different_width_tolerance", c.DifferentWidthTolerance},
	} {
		if tol.value != nil {
			check(errors.ValidatePositive(tol.name, *tol.value))
		}
	}
	check(errors.ValidateNonNegative("clone_count", float64(c.CloneCount)))

	if len(d.Parts) == 0 {
		v.Add("no kitchen parts declared")
	}
	minWidth := c.MinWidth
	if minWidth == 0 {
		minWidth = kitchen.DefaultConstants().MinWidth
	}
	// unsegmented holds parts too narrow for a single segment.
	unsegmented := map[string]bool{}
	parts := map[string]bool{}
	for i, p := range d.Parts {
		check(errors.ValidateName("kitchen part", p.Name))
		if p.Name != "" && parts[p.Name] {
			v.Add("kitchen part %q declared twice", p.Name)
		}
		parts[p.Name] = true
		check(errors.ValidatePositive(field("kitchen_parts", i, "width"), p.Width))
		check(errors.ValidatePositive(field("kitchen_parts", i, "depth"), p.Depth))
		check(errors.ValidateNonNegative(field("kitchen_parts", i, "position.group_offset"), p.Position.GroupOffset))
		if p.Width > 0 && preprocess.SegmentCount(p.Width, minWidth) == 0 {
			unsegmented[p.Name] = true
			if p.EdgeStart || p.EdgeEnd {
				v.Add("kitchen part %q: has an open end but is narrower than min_width %g", p.Name, minWidth)
			}
		}
	}

	fixtures := map[string]bool{}
	for i, f := range d.Fixtures {
		check(errors.ValidateName("fixture", f.Name))
		if f.Name != "" && fixtures[f.Name] {
			v.Add("fixture %q declared twice", f.Name)
		}
		fixtures[f.Name] = true
		if f.Type == "" {
			v.Add("fixture %q: type is required", f.Name)
		}
		check(errors.ValidatePositive(field("available_fixtures", i, "width_min"), f.WidthMin))
		check(errors.ValidatePositive(field("available_fixtures", i, "width_max"), f.WidthMax))
		check(errors.ValidateRange(field("available_fixtures", i, "width"), f.WidthMin, f.WidthMax))
		check(errors.ValidateNonNegative(field("available_fixtures", i, "storage"), f.Storage))
		if !f.PositionTop && !f.PositionBottom {
			v.Add("fixture %q: allowed in neither top nor bottom position", f.Name)
		}
		if f.Corner && (f.CornerWidthMin != 0 || f.CornerWidthMax != 0) {
			check(errors.ValidatePositive(field("available_fixtures", i, "corner_width_min"), f.CornerWidthMin))
			check(errors.ValidateRange(field("available_fixtures", i, "corner_width"), f.CornerWidthMin, f.CornerWidthMax))
		}
	}

	zones := map[string]bool{}
	for _, z := range d.Zones {
		check(errors.ValidateName("zone", z.Name))
		if z.Name != "" && zones[z.Name] {
			v.Add("zone %q declared twice", z.Name)
		}
		zones[z.Name] = true
	}

	for i, w := range d.Walls {
		check(errors.ValidateRange(field("walls", i, "left/right"), w.Left, w.Right))
	}

	for i, c := range d.Corners {
		if c.First == "" || c.Second == "" {
			v.Add("corners[%d]: both parts are required", i)
		}
		if c.First != "" && c.First == c.Second {
			v.Add("corners[%d]: part %q meets itself", i, c.First)
		}
		for _, name := range []string{c.First, c.Second} {
			if unsegmented[name] {
				v.Add("corners[%d]: kitchen part %q is narrower than min_width %g", i, name, minWidth)
			}
		}
		for _, e := range []string{c.FirstEnd, c.SecondEnd} {
			if e != endStart && e != endEnd {
				v.Add("corners[%d]: unknown end %q (want start or end)", i, e)
			}
		}
	}

	for i, r := range d.PlacementRules {
		if r.Type != ruleInclude && r.Type != ruleExclude {
			v.Add("placement_rules[%d]: unknown type %q", i, r.Type)
		}
		if !knownAttribute(r.AttributeName) {
			v.Add("placement_rules[%d]: unknown attribute %q", i, r.AttributeName)
		}
		switch r.AttributeValue.(type) {
		case string, bool:
		default:
			v.Add("placement_rules[%d]: attribute_value must be a string or boolean", i)
		}
		switch r.Area {
		case areaKitchen:
		case areaGroup:
			if r.Group == nil {
				v.Add("placement_rules[%d]: group is required for area %q", i, r.Area)
			}
		case areaSection:
			if r.Group == nil {
				v.Add("placement_rules[%d]: group is required for area %q", i, r.Area)
			}
			if r.SectionStart == nil || r.SectionEnd == nil {
				v.Add("placement_rules[%d]: section_start and section_end are required", i)
			} else if *r.SectionEnd <= *r.SectionStart {
				v.Add("placement_rules[%d]: section end %g must be greater than start %g", i, *r.SectionEnd, *r.SectionStart)
			}
		default:
			v.Add("placement_rules[%d]: unknown area %q", i, r.Area)
		}
	}

	for i, r := range d.RelationRules {
		switch r.RuleType {
		case relTarget:
			requireType(&v, i, r.FixtureType)
		case relMinDistance:
			if r.FirstType == "" || r.SecondType == "" {
				v.Add("relation_rules[%d]: first_type and second_type are required", i)
			}
			check(errors.ValidateNonNegative(field("relation_rules", i, "distance"), r.Distance))
		case relWallDistance:
			requireType(&v, i, r.FixtureType)
			check(errors.ValidateNonNegative(field("relation_rules", i, "distance"), r.Distance))
		case relWorktopLength:
			requireType(&v, i, r.FixtureType)
			check(errors.ValidatePositive(field("relation_rules", i, "length"), r.Length))
		case relMinOneWide:
			requireType(&v, i, r.FixtureType)
			check(errors.ValidatePositive(field("relation_rules", i, "width"), r.Width))
		default:
			v.Add("relation_rules[%d]: unknown rule type %q", i, r.RuleType)
		}
	}
	return v.Err()
}

func (d *Document) validateReferences() error {
	v := errors.Violations{Code: errors.ErrCodeUnknownReference}

	parts := map[string]bool{}
	groups := map[int]bool{}
	for _, p := range d.Parts {
		parts[p.Name] = true
		groups[p.Position.Group] = true
	}
	zones := map[string]bool{}
	for _, z := range d.Zones {
		zones[z.Name] = true
	}
	types := map[string]bool{}
	for _, f := range d.Fixtures {
		types[f.Type] = true
		if f.Zone != "" && !zones[f.Zone] {
			v.Add("fixture %q: zone %q is not declared", f.Name, f.Zone)
		}
	}

	for i, r := range d.PlacementRules {
		if r.Group != nil && r.Area != areaKitchen && !groups[*r.Group] {
			v.Add("placement_rules[%d]: group %d has no kitchen parts", i, *r.Group)
		}
	}
	for i, w := range d.Walls {
		if !groups[w.Group] {
			v.Add("walls[%d]: group %d has no kitchen parts", i, w.Group)
		}
	}
	for i, c := range d.Corners {
		for _, name := range []string{c.First, c.Second} {
			if !parts[name] {
				v.Add("corners[%d]: kitchen part %q is not declared", i, name)
			}
		}
	}
	for i, r := range d.RelationRules {
		for _, t := range []string{r.FixtureType, r.FirstType, r.SecondType} {
			if t != "" && !types[t] {
				v.Add("relation_rules[%d]: no fixture of type %q in the catalog", i, t)
			}
		}
	}
	return v.Err()
}

func knownAttribute(name string) bool {
	for _, a := range kitchen.Attributes {
		if a == name {
			return true
		}
	}
	return false
}

func requireType(v *errors.Violations, i int, t string) {
	if t == "" {
		v.Add("relation_rules[%d]: fixture_type is required", i)
	}
}

func field(list string, i int, name string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, name)
}
