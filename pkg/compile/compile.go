package compile

import (
	"fmt"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// Family names a group of constraints.
type Family string

const (
	Assignment  Family = "assignment"
	Symmetry    Family = "symmetry"
	Width       Family = "width"
	Orientation Family = "orientation"
	Edge        Family = "edge"
	Geometry    Family = "geometry"
	Group       Family = "group"
	Tall        Family = "tall"
	Rules       Family = "rules"
	Pattern     Family = "pattern"
	Distance    Family = "distance"
	Continuity  Family = "continuity"
	Relations   Family = "relations"
	Corner      Family = "corner"
)

// AllFamilies lists every family in build order. A family only reads
// variables of families listed before it.
var AllFamilies = []Family{
	Assignment, Symmetry, Width, Orientation, Edge, Geometry, Group,
	Tall, Rules, Pattern, Distance, Continuity, Relations, Corner,
}

var dependencies = map[Family][]Family{
	Geometry:   {Width},
	Tall:       {Geometry, Group},
	Rules:      {Geometry, Group},
	Distance:   {Geometry},
	Continuity: {Geometry},
	Relations:  {Geometry, Group},
}

// ParseFamily validates a family name.
func ParseFamily(s string) (Family, error) {
	f := Family(s)
	if slices.Contains(AllFamilies, f) {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidSettings, "unknown constraint family %q", s)
}

// Resolve returns the families to build for a selection, dependencies
// included, in build order. An empty selection means every family.
func Resolve(selected []Family) []Family {
	if len(selected) == 0 {
		return slices.Clone(AllFamilies)
	}
	want := map[Family]bool{}
	var visit func(Family)
	visit = func(f Family) {
		if want[f] {
			return
		}
		want[f] = true
		for _, d := range dependencies[f] {
			visit(d)
		}
	}
	for _, f := range selected {
		visit(f)
	}
	var out []Family
	for _, f := range AllFamilies {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}

// BigM holds the constants used to release gated clauses.
type BigM struct {
	Width  float64 // bounds any segment or fixture width
	Canvas float64 // bounds any coordinate, offset or running length
}

// DeriveBigM computes constants that dominate every physical quantity the
// kitchen can produce.
func DeriveBigM(k *kitchen.Kitchen) BigM {
	w := k.Constants.MaxWidth
	for _, f := range k.Fixtures {
		w = math.Max(w, f.WidthMax)
	}
	w = math.Max(w, k.Constants.MinWidth)

	c := k.Constants.CanvasSize
	grow := func(vs ...float64) {
		for _, v := range vs {
			c = math.Max(c, math.Abs(v))
		}
	}
	for _, p := range k.Parts {
		grow(math.Abs(p.Position.X)+math.Abs(p.Position.Y)+p.Width+p.Depth, p.End())
	}
	for _, z := range k.Zones {
		if z.Center != nil {
			grow(z.Center.X, z.Center.Y)
		}
	}
	for _, t := range k.Relations.Targets {
		grow(t.Point.X, t.Point.Y)
	}
	for _, wl := range k.Walls {
		grow(wl.Left, wl.Right)
	}
	for _, r := range k.Rules {
		if s, ok := r.Scope.(kitchen.SectionScope); ok {
			grow(s.Start, s.End)
		}
	}
	return BigM{Width: w, Canvas: c}
}

// Options configures compilation.
type Options struct {
	// Families to build. Empty means all.
	Families []Family
	Logger   *log.Logger
}

// Result is a compiled model and the handles of its variables.
type Result struct {
	Model    *milp.Model
	Vars     *Vars
	BigM     BigM
	Families []Family

	kitchen *kitchen.Kitchen
}

// Has reports whether a family was built.
func (r *Result) Has(f Family) bool { return slices.Contains(r.Families, f) }

// Kitchen returns the kitchen the model was compiled from.
func (r *Result) Kitchen() *kitchen.Kitchen { return r.kitchen }

type compiler struct {
	k   *kitchen.Kitchen
	m   *milp.Model
	v   *Vars
	big BigM
}

type family struct {
	build  func(*compiler)
	derive func(*compiler, []float64)
}

var families = map[Family]family{
	Assignment:  {buildAssignment, nil},
	Symmetry:    {buildSymmetry, nil},
	Width:       {buildWidth, nil},
	Orientation: {buildOrientation, nil},
	Edge:        {buildEdge, nil},
	Geometry:    {buildGeometry, deriveGeometry},
	Group:       {buildGroup, deriveGroup},
	Tall:        {buildTall, nil},
	Rules:       {buildRules, deriveRules},
	Pattern:     {buildPattern, derivePattern},
	Distance:    {buildDistance, deriveDistance},
	Continuity:  {buildContinuity, deriveContinuity},
	Relations:   {buildRelations, deriveRelations},
	Corner:      {buildCorner, deriveCorner},
}

// Compile builds the model for k. Kitchen-wide exclude rules must have been
// discharged by preprocessing; finding one is a model invariant error.
func Compile(k *kitchen.Kitchen, opts Options) (*Result, error) {
	c := &compiler{
		k:   k,
		m:   milp.New("kitchen"),
		big: DeriveBigM(k),
	}
	c.v = newVars(c)

	fams := Resolve(opts.Families)
	for _, f := range fams {
		families[f].build(c)
		if err := c.m.Err(); err != nil {
			return nil, fmt.Errorf("compile %s: %w", f, err)
		}
	}

	if opts.Logger != nil {
		st := c.m.Stats()
		opts.Logger.Debug("compiled model",
			"families", len(fams), "variables", st.Variables, "binaries", st.Binaries,
			"constraints", st.Constraints, "nonzeros", st.Nonzeros)
	}
	return &Result{Model: c.m, Vars: c.v, BigM: c.big, Families: fams, kitchen: k}, nil
}

// Derive computes a value for every variable from the kitchen's solution
// fields.
func (r *Result) Derive() []float64 {
	c := &compiler{k: r.kitchen, m: r.Model, v: r.Vars, big: r.BigM}
	values := make([]float64, r.Model.NumVars())
	deriveCore(c, values)
	for _, f := range r.Families {
		if d := families[f].derive; d != nil {
			d(c, values)
		}
	}
	return values
}

// Check derives the assignment of the kitchen's current layout and returns
// the constraints it violates.
func (r *Result) Check(tol float64) []milp.Violation {
	return r.Model.Check(r.Derive(), tol)
}
