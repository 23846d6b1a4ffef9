package compile

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
)

const tol = 1e-6

type slot struct {
	name  string
	width float64
}

func fixtureNamed(t *testing.T, k *kitchen.Kitchen, name string) kitchen.FixtureID {
	t.Helper()
	for _, f := range k.Fixtures {
		if f.Name == name {
			return f.ID
		}
	}
	t.Fatalf("no fixture %q", name)
	return kitchen.NoFixture
}

// place lays fixtures out on a part from its start, after the padding.
func place(t *testing.T, k *kitchen.Kitchen, part int, padding float64, slots ...slot) {
	t.Helper()
	p := &k.Parts[part]
	require.LessOrEqual(t, len(slots), len(p.Segments))
	p.Position.Padding = padding
	for i, s := range p.Segments {
		k.Segments[s].Width = 0
		k.Segments[s].Fixture = kitchen.NoFixture
		if i < len(slots) {
			k.Segments[s].Width = slots[i].width
			k.Segments[s].Fixture = fixtureNamed(t, k, slots[i].name)
		}
	}
}

func violations(vs []milp.Violation) []string {
	var out []string
	for _, v := range vs {
		out = append(out, v.String())
	}
	return out
}

func rule(kind kitchen.RuleKind, scope kitchen.Scope, value string) kitchen.PlacementRule {
	return kitchen.PlacementRule{Kind: kind, Scope: scope, Match: kitchen.Match{Attribute: kitchen.AttrType, Value: value}}
}

// galley is a single group with a base run and a wall run above it.
func galley(t *testing.T) *kitchen.Kitchen {
	t.Helper()
	k, _, err := preprocess.Run(preprocess.Input{
		Constants: kitchen.Constants{
			MinWidth: 50, MaxWidth: 120, CanvasSize: 1000,
			ContinuityTolerance: 1, SameWidthTolerance: 2, DifferentWidthTolerance: 10, CloneCount: 2,
		},
		Catalog: []kitchen.CatalogEntry{
			{Name: "sink", Type: "sink", Zone: "wet", WidthMin: 50, WidthMax: 80, Bottom: true, Worktop: true},
			{Name: "stove", Type: "stove", Zone: "cook", WidthMin: 60, WidthMax: 60, Bottom: true, Worktop: true},
			{Name: "tall", Type: "tall", WidthMin: 60, WidthMax: 60, Top: true, Bottom: true, AllowEdge: true, Storage: 5},
			{Name: "drawer", Type: "drawer", WidthMin: 50, WidthMax: 100, Bottom: true, Worktop: true, AllowEdge: true, Multiple: true, Storage: 2},
			{Name: "wall", Type: "wall", WidthMin: 50, WidthMax: 100, Top: true, AllowEdge: true, Multiple: true, Storage: 1},
		},
		Parts: []kitchen.Part{
			{Name: "base", Width: 300, Depth: 60, EdgeStart: true, EdgeEnd: true},
			{Name: "upper", Width: 300, Depth: 35, IsTop: true},
		},
		Zones: []kitchen.Zone{
			{Name: "wet", Optimize: true},
			{Name: "cook", Center: &kitchen.Point{X: 200, Y: 30}},
		},
		Walls: []kitchen.Wall{{Group: 0, Left: 0, Right: 300}},
		Rules: []kitchen.PlacementRule{
			rule(kitchen.Include, kitchen.KitchenScope{}, "sink"),
			rule(kitchen.Include, kitchen.GroupScope{Group: 0}, "stove"),
			rule(kitchen.Exclude, kitchen.SectionScope{Group: 0, Start: 200, End: 300}, "sink"),
			rule(kitchen.Include, kitchen.SectionScope{Group: 0, Start: 100, End: 200}, "drawer"),
		},
		Relations: kitchen.RelationRules{
			Targets:        []kitchen.Target{{Type: "sink", Point: kitchen.Point{X: 100}}},
			MinDistances:   []kitchen.MinDistance{{First: "sink", Second: "stove", Distance: 50}},
			WallDistances:  []kitchen.WallDistance{{Type: "stove", Distance: 10}},
			WorktopLengths: []kitchen.WorktopLength{{Type: "stove", Length: 60}},
			MinOneWide:     []kitchen.MinOneWide{{Type: "drawer", Width: 60}},
		},
	}, preprocess.Options{})
	require.NoError(t, err)
	return k
}

func galleyLayout(t *testing.T, k *kitchen.Kitchen) {
	t.Helper()
	place(t, k, 0, 0,
		slot{"tall (bottom)", 60}, slot{"sink", 60}, slot{"drawer #1", 60}, slot{"stove", 60}, slot{"drawer #2", 60})
	place(t, k, 1, 0,
		slot{"tall (top)", 60}, slot{"wall #1", 60}, slot{"wall #2", 60})
}

func compileAll(t *testing.T, k *kitchen.Kitchen) *Result {
	t.Helper()
	res, err := Compile(k, Options{})
	require.NoError(t, err)
	return res
}

func TestResolve(t *testing.T) {
	assert.Equal(t, AllFamilies, Resolve(nil))
	assert.Equal(t, []Family{Width, Geometry, Group, Tall}, Resolve([]Family{Tall}))
	assert.Equal(t, []Family{Assignment, Width, Geometry, Distance}, Resolve([]Family{Distance, Assignment}))
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily("corner")
	require.NoError(t, err)
	assert.Equal(t, Corner, f)

	_, err = ParseFamily("gravity")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSettings))
}

func TestDeriveBigM(t *testing.T) {
	k := galley(t)
	big := DeriveBigM(k)
	assert.Equal(t, 120.0, big.Width)
	assert.Equal(t, 1000.0, big.Canvas)

	k.Parts[0].Position.X = 2000
	assert.Equal(t, 2360.0, DeriveBigM(k).Canvas)
}

func TestFeasibleLayout(t *testing.T) {
	k := galley(t)
	galleyLayout(t, k)
	res := compileAll(t, k)

	assert.Empty(t, violations(res.Check(tol)))
	assert.Equal(t, AllFamilies, res.Families)
	assert.Same(t, k, res.Kitchen())
}

func TestSinglePartFillsEverySegment(t *testing.T) {
	k, _, err := preprocess.Run(preprocess.Input{
		Constants: kitchen.Constants{MinWidth: 10, MaxWidth: 100, CanvasSize: 100, CloneCount: 3},
		Catalog: []kitchen.CatalogEntry{
			{Name: "cabinet", Type: "cabinet", WidthMin: 10, WidthMax: 100, Bottom: true, AllowEdge: true, Multiple: true},
		},
		Parts: []kitchen.Part{{Name: "run", Width: 30, Depth: 60}},
	}, preprocess.Options{})
	require.NoError(t, err)
	require.Len(t, k.Parts[0].Segments, 3)
	require.Len(t, k.Fixtures, 3)

	place(t, k, 0, 0, slot{"cabinet #1", 10}, slot{"cabinet #2", 10}, slot{"cabinet #3", 10})
	res := compileAll(t, k)
	assert.Empty(t, violations(res.Check(tol)))
}

func TestGroupExcludeKeepsMatchesOut(t *testing.T) {
	k := galley(t)
	k.Rules = append(k.Rules, rule(kitchen.Exclude, kitchen.GroupScope{Group: 0}, "wall"))

	galleyLayout(t, k)
	res := compileAll(t, k)
	assert.Contains(t, milp.ViolatedFamilies(res.Check(tol)), string(Rules))

	place(t, k, 1, 0, slot{"tall (top)", 60})
	res = compileAll(t, k)
	vals := res.Derive()
	require.Empty(t, violations(res.Model.Check(vals, tol)))

	var present float64
	for _, f := range k.FixturesOfType("wall") {
		present += vals[res.Vars.InGroup[0][f]]
	}
	assert.Zero(t, present)
}

func TestFamiliesAreSelectable(t *testing.T) {
	k := galley(t)
	res, err := Compile(k, Options{Families: []Family{Assignment, Width}})
	require.NoError(t, err)

	assert.True(t, res.Has(Width))
	assert.False(t, res.Has(Geometry))
	assert.Nil(t, res.Vars.FixX)
	assert.Zero(t, res.Model.Count(string(Pattern)))
	assert.Positive(t, res.Model.Count(string(Assignment)))
}

func TestViolationsByFamily(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, k *kitchen.Kitchen)
		family Family
	}{
		{"clone order", func(t *testing.T, k *kitchen.Kitchen) {
			place(t, k, 0, 0,
				slot{"tall (bottom)", 60}, slot{"sink", 60}, slot{"drawer #2", 60}, slot{"stove", 60}, slot{"drawer #1", 60})
		}, Symmetry},
		{"gap before a used segment", func(t *testing.T, k *kitchen.Kitchen) {
			k.Segments[k.Parts[1].Segments[1]].Fixture = kitchen.NoFixture
			k.Segments[k.Parts[1].Segments[1]].Width = 0
		}, Symmetry},
		{"too wide", func(t *testing.T, k *kitchen.Kitchen) {
			place(t, k, 0, 0,
				slot{"tall (bottom)", 60}, slot{"sink", 60}, slot{"drawer #1", 60}, slot{"stove", 70}, slot{"drawer #2", 50})
		}, Width},
		{"over length", func(t *testing.T, k *kitchen.Kitchen) {
			k.Parts[0].Position.Padding = 10
		}, Width},
		{"wrong orientation", func(t *testing.T, k *kitchen.Kitchen) {
			place(t, k, 1, 0, slot{"tall (top)", 60}, slot{"wall #1", 60}, slot{"drawer #2", 60})
			place(t, k, 0, 0, slot{"tall (bottom)", 60}, slot{"sink", 60}, slot{"drawer #1", 60}, slot{"stove", 60}, slot{"wall #2", 60})
		}, Orientation},
		{"inner fixture at open end", func(t *testing.T, k *kitchen.Kitchen) {
			place(t, k, 0, 0,
				slot{"tall (bottom)", 60}, slot{"drawer #1", 60}, slot{"drawer #2", 60}, slot{"sink", 60}, slot{"stove", 60})
		}, Edge},
		{"tall halves apart", func(t *testing.T, k *kitchen.Kitchen) {
			place(t, k, 1, 0, slot{"wall #1", 60}, slot{"tall (top)", 60}, slot{"wall #2", 60})
		}, Tall},
		{"sink in excluded section", func(t *testing.T, k *kitchen.Kitchen) {
			place(t, k, 0, 0,
				slot{"tall (bottom)", 60}, slot{"stove", 60}, slot{"drawer #1", 60}, slot{"drawer #2", 60}, slot{"sink", 60})
		}, Rules},
		{"sink beside stove", func(t *testing.T, k *kitchen.Kitchen) {
			place(t, k, 0, 0,
				slot{"tall (bottom)", 60}, slot{"drawer #1", 60}, slot{"sink", 60}, slot{"stove", 60}, slot{"drawer #2", 60})
		}, Relations},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := galley(t)
			galleyLayout(t, k)
			tt.mutate(t, k)
			res := compileAll(t, k)
			families := milp.ViolatedFamilies(res.Check(tol))
			assert.Contains(t, families, string(tt.family), "violated: %v", families)
		})
	}
}

func TestSoftIndicators(t *testing.T) {
	k := galley(t)
	galleyLayout(t, k)
	place(t, k, 1, 0, slot{"tall (top)", 60}, slot{"wall #1", 90}, slot{"wall #2", 60})
	res := compileAll(t, k)
	vals := res.Derive()
	require.Empty(t, violations(res.Model.Check(vals, tol)))

	upper := k.Parts[1].Segments
	base := k.Parts[0].Segments

	var aba, notSame float64
	for _, j := range res.Vars.Jumps {
		if j.Segment == upper[2] {
			aba = vals[j.ABA]
			notSame = vals[j.NotSame]
		}
	}
	assert.Equal(t, 1.0, aba, "60 90 60 is an ABA pattern")
	assert.Equal(t, 1.0, notSame)

	// wall #1 spans 60..150 across the base seam at 120
	var straddles []kitchen.SegmentID
	for _, s := range res.Vars.Seams {
		if vals[s.Straddle] > 0.5 && s.Other != NoSegment {
			straddles = append(straddles, s.Segment)
		}
	}
	assert.Contains(t, straddles, base[1])
	assert.Contains(t, straddles, upper[1])

	// sink, drawer #1, stove and drawer #2 form one worktop run
	assert.Equal(t, 240.0, vals[res.Vars.Worktop.Best])
}

func TestDistances(t *testing.T) {
	k := galley(t)
	galleyLayout(t, k)
	res := compileAll(t, k)
	vals := res.Derive()

	sink := fixtureNamed(t, k, "sink")
	stove := fixtureNamed(t, k, "stove")
	got := map[DistanceKind][2]float64{}
	for _, d := range res.Vars.Distances {
		if d.Fixture == sink || d.Fixture == stove {
			got[d.Kind] = [2]float64{vals[d.X], vals[d.Y]}
		}
	}
	// sink centre (90, 30): alone in its zone, target at (100, 0)
	assert.InDelta(t, 0, got[ZoneDistance][0], tol)
	assert.InDelta(t, 10, got[TargetDistance][0], tol)
	assert.InDelta(t, 30, got[TargetDistance][1], tol)
	// stove centre (210, 30), zone centre (200, 30)
	assert.InDelta(t, 10, got[CenterDistance][0], tol)
	assert.InDelta(t, 0, got[CenterDistance][1], tol)
}

func TestAbsentFixturesAreZeroed(t *testing.T) {
	k := galley(t)
	galleyLayout(t, k)
	place(t, k, 1, 0, slot{"tall (top)", 60}, slot{"wall #1", 60})
	res := compileAll(t, k)
	vals := res.Derive()
	require.Empty(t, violations(res.Model.Check(vals, tol)))

	wall2 := fixtureNamed(t, k, "wall #2")
	assert.Zero(t, vals[res.Vars.Present[wall2]])
	assert.Zero(t, vals[res.Vars.FixX[wall2]])
	assert.Zero(t, vals[res.Vars.FixNumber[wall2]])
}

func cornerKitchen(t *testing.T) *kitchen.Kitchen {
	t.Helper()
	k, _, err := preprocess.Run(preprocess.Input{
		Constants: kitchen.Constants{MinWidth: 50, MaxWidth: 120, CanvasSize: 1000, CloneCount: 2},
		Catalog: []kitchen.CatalogEntry{
			{Name: "corner", Type: "corner", WidthMin: 60, WidthMax: 60, CornerWidthMin: 90, CornerWidthMax: 90, Bottom: true, Corner: true},
			{Name: "drawer", Type: "drawer", WidthMin: 50, WidthMax: 100, Bottom: true, Multiple: true},
		},
		Parts: []kitchen.Part{
			{Name: "left", Width: 200, Depth: 60},
			{Name: "right", Width: 200, Depth: 60, Position: kitchen.Position{X: 200, Angle: 90, Group: 1}},
		},
		Corners: []kitchen.Corner{{
			First:  kitchen.Leg{Part: 0, End: kitchen.FinishEnd},
			Second: kitchen.Leg{Part: 1, End: kitchen.StartEnd},
		}},
	}, preprocess.Options{})
	require.NoError(t, err)
	return k
}

func TestCornerLayout(t *testing.T) {
	k := cornerKitchen(t)
	place(t, k, 0, 0, slot{"drawer #1", 70}, slot{"drawer #2", 70}, slot{"corner", 60})
	place(t, k, 1, 0, slot{"corner (leg 2)", 90})
	res := compileAll(t, k)
	assert.Empty(t, violations(res.Check(tol)))
}

func TestCornerViolations(t *testing.T) {
	tests := []struct {
		name string
		left []slot
		pad  float64
	}{
		{"unit away from the corner", []slot{{"corner", 60}, {"drawer #1", 70}, {"drawer #2", 70}}, 0},
		{"leg not filled", []slot{{"drawer #1", 70}, {"drawer #2", 60}, {"corner", 60}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := cornerKitchen(t)
			place(t, k, 0, tt.pad, tt.left...)
			place(t, k, 1, 0, slot{"corner (leg 2)", 90})
			res := compileAll(t, k)
			assert.Contains(t, milp.ViolatedFamilies(res.Check(tol)), string(Corner))
		})
	}
}

// plainCornerKitchen declares a corner but no corner-capable fixture.
func plainCornerKitchen(t *testing.T) *kitchen.Kitchen {
	t.Helper()
	k, _, err := preprocess.Run(preprocess.Input{
		Constants: kitchen.Constants{MinWidth: 50, MaxWidth: 120, CanvasSize: 1000, CloneCount: 3},
		Catalog: []kitchen.CatalogEntry{
			{Name: "drawer", Type: "drawer", WidthMin: 50, WidthMax: 100, Bottom: true, Multiple: true},
		},
		Parts: []kitchen.Part{
			{Name: "left", Width: 200, Depth: 60},
			{Name: "right", Width: 200, Depth: 60, Position: kitchen.Position{X: 200, Angle: 90, Group: 1}},
		},
		Corners: []kitchen.Corner{{
			First:  kitchen.Leg{Part: 0, End: kitchen.FinishEnd},
			Second: kitchen.Leg{Part: 1, End: kitchen.StartEnd},
		}},
	}, preprocess.Options{})
	require.NoError(t, err)
	return k
}

func TestCornerFilledByOrdinaryFixtures(t *testing.T) {
	tests := []struct {
		name   string
		left   []slot
		broken bool
	}{
		{"leg filled", []slot{{"drawer #1", 100}, {"drawer #2", 100}}, false},
		{"gap at the corner", []slot{{"drawer #1", 70}, {"drawer #2", 70}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := plainCornerKitchen(t)
			for _, f := range k.Fixtures {
				require.False(t, f.IsCorner)
			}
			place(t, k, 0, 0, tt.left...)
			place(t, k, 1, 0, slot{"drawer #3", 100})
			res := compileAll(t, k)
			families := milp.ViolatedFamilies(res.Check(tol))
			if tt.broken {
				assert.Contains(t, families, string(Corner))
			} else {
				assert.Empty(t, families)
			}
		})
	}
}

func TestCornerLegMustStartAtJoint(t *testing.T) {
	k := cornerKitchen(t)
	place(t, k, 0, 0, slot{"drawer #1", 70}, slot{"drawer #2", 70}, slot{"corner", 60})
	place(t, k, 1, 10, slot{"corner (leg 2)", 90})
	res := compileAll(t, k)
	assert.Contains(t, milp.ViolatedFamilies(res.Check(tol)), string(Corner))
}

func TestKitchenExcludeMustBeDischarged(t *testing.T) {
	k := galley(t)
	k.Rules = append(k.Rules, rule(kitchen.Exclude, kitchen.KitchenScope{}, "stove"))
	_, err := Compile(k, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeModelInvariant))
}

func TestModelIsDeterministic(t *testing.T) {
	a := compileAll(t, galley(t))
	b := compileAll(t, galley(t))
	require.Equal(t, a.Model.NumVars(), b.Model.NumVars())
	assert.Equal(t, a.Model.Variables(), b.Model.Variables())
	assert.Equal(t, a.Model.Constraints(), b.Model.Constraints())
}

func TestEveryFamilyEmitsClauses(t *testing.T) {
	res := compileAll(t, galley(t))
	for _, f := range AllFamilies {
		if f == Corner {
			continue
		}
		assert.Positive(t, res.Model.Count(string(f)), f)
	}
	assert.True(t, slices.Contains(res.Model.Families(), string(Geometry)))
}
