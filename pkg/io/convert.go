package io

import (
	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
)

// Input converts a validated document into preprocessing input. Validation
// runs again so a hand-built document cannot slip through.
func (d *Document) Input() (preprocess.Input, error) {
	if err := d.Validate(); err != nil {
		return preprocess.Input{}, err
	}

	in := preprocess.Input{
		Constants: kitchen.Constants{
			MinWidth:                d.Constants.MinWidth,
			MaxWidth:                d.Constants.MaxWidth,
			CanvasSize:              d.Constants.CanvasSize,
			ContinuityTolerance:     deref(d.Constants.ContinuityTolerance),
			SameWidthTolerance:      deref(d.Constants.SameWidthTolerance),
			DifferentWidthTolerance: deref(d.Constants.DifferentWidthTolerance),
			CloneCount:              d.Constants.CloneCount,
		},
	}

	index := make(map[string]int, len(d.Parts))
	for i, p := range d.Parts {
		index[p.Name] = i
		in.Parts = append(in.Parts, kitchen.Part{
			Name:      p.Name,
			Width:     p.Width,
			Depth:     p.Depth,
			IsTop:     p.IsTop,
			EdgeStart: p.EdgeStart,
			EdgeEnd:   p.EdgeEnd,
			Position: kitchen.Position{
				X:           p.Position.X,
				Y:           p.Position.Y,
				Angle:       p.Position.Angle,
				Group:       p.Position.Group,
				GroupOffset: p.Position.GroupOffset,
			},
		})
	}

	for _, f := range d.Fixtures {
		in.Catalog = append(in.Catalog, kitchen.CatalogEntry{
			Name:           f.Name,
			Type:           f.Type,
			Zone:           f.Zone,
			WidthMin:       f.WidthMin,
			WidthMax:       f.WidthMax,
			CornerWidthMin: f.CornerWidthMin,
			CornerWidthMax: f.CornerWidthMax,
			Top:            f.PositionTop,
			Bottom:         f.PositionBottom,
			Worktop:        f.Worktop,
			AllowEdge:      f.AllowEdge,
			Multiple:       f.Multiple,
			Corner:         f.Corner,
			Storage:        f.Storage,
		})
	}

	for _, z := range d.Zones {
		in.Zones = append(in.Zones, kitchen.Zone{Name: z.Name, Optimize: z.Optimize, Center: z.Center, Color: z.Color})
	}
	for _, w := range d.Walls {
		in.Walls = append(in.Walls, kitchen.Wall{Group: w.Group, Left: w.Left, Right: w.Right})
	}
	for _, c := range d.Corners {
		in.Corners = append(in.Corners, kitchen.Corner{
			First:  kitchen.Leg{Part: index[c.First], End: end(c.FirstEnd)},
			Second: kitchen.Leg{Part: index[c.Second], End: end(c.SecondEnd)},
		})
	}

	for _, r := range d.PlacementRules {
		in.Rules = append(in.Rules, placementRule(r))
	}

	for _, r := range d.RelationRules {
		rel := &in.Relations
		switch r.RuleType {
		case relTarget:
			rel.Targets = append(rel.Targets, kitchen.Target{Type: r.FixtureType, Point: kitchen.Point{X: r.X, Y: r.Y}})
		case relMinDistance:
			rel.MinDistances = append(rel.MinDistances, kitchen.MinDistance{First: r.FirstType, Second: r.SecondType, Distance: r.Distance})
		case relWallDistance:
			rel.WallDistances = append(rel.WallDistances, kitchen.WallDistance{Type: r.FixtureType, Distance: r.Distance})
		case relWorktopLength:
			rel.WorktopLengths = append(rel.WorktopLengths, kitchen.WorktopLength{Type: r.FixtureType, Length: r.Length})
		case relMinOneWide:
			rel.MinOneWide = append(rel.MinOneWide, kitchen.MinOneWide{Type: r.FixtureType, Width: r.Width})
		default:
			return preprocess.Input{}, errors.New(errors.ErrCodeInvalidConfig, "unknown relation rule type %q", r.RuleType)
		}
	}
	return in, nil
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func end(s string) kitchen.End {
	if s == endStart {
		return kitchen.StartEnd
	}
	return kitchen.FinishEnd
}

func placementRule(r PlacementRule) kitchen.PlacementRule {
	out := kitchen.PlacementRule{
		Kind:  kitchen.Include,
		Match: kitchen.Match{Attribute: r.AttributeName, Value: attributeString(r.AttributeValue)},
	}
	if r.Type == ruleExclude {
		out.Kind = kitchen.Exclude
	}
	switch r.Area {
	case areaGroup:
		out.Scope = kitchen.GroupScope{Group: *r.Group}
	case areaSection:
		out.Scope = kitchen.SectionScope{Group: *r.Group, Start: *r.SectionStart, End: *r.SectionEnd}
	default:
		out.Scope = kitchen.KitchenScope{}
	}
	return out
}
