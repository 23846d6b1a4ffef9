// Package objective builds the weighted objective a layout is optimised for.
//
// The objective is maximised. Rewards (present fixtures, used width, storage,
// worktop) carry positive weights; penalties (width jumps, distances,
// straddled seams, walls too close) carry negative ones. Terms whose
// variables were not compiled are left out.
package objective

import (
	"math"

	"github.com/matzehuels/kitchendesigner/pkg/compile"
	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// Weights scale the objective terms.
type Weights struct {
	Present        float64 `toml:"present" json:"present"`
	Width          float64 `toml:"width" json:"width"`
	Storage        float64 `toml:"storage" json:"storage"`
	Worktop        float64 `toml:"worktop" json:"worktop"`
	WorktopLength  float64 `toml:"worktop_length" json:"worktop_length"`
	Pattern        float64 `toml:"pattern" json:"pattern"`
	ABA            float64 `toml:"aba" json:"aba"`
	ZoneDistance   float64 `toml:"zone_distance" json:"zone_distance"`
	TargetDistance float64 `toml:"target_distance" json:"target_distance"`
	CenterDistance float64 `toml:"center_distance" json:"center_distance"`
	Straddle       float64 `toml:"straddle" json:"straddle"`
	WallClose      float64 `toml:"wall_close" json:"wall_close"`
}

// DefaultWeights returns the weights used when settings omit them.
func DefaultWeights() Weights {
	return Weights{
		Present:        1,
		Width:          0.1,
		Storage:        0.1,
		Worktop:        0.1,
		WorktopLength:  0.05,
		Pattern:        -0.5,
		ABA:            0.2,
		ZoneDistance:   -0.02,
		TargetDistance: -0.02,
		CenterDistance: -0.02,
		Straddle:       -0.5,
		WallClose:      -0.5,
	}
}

// Validate checks that every weight is finite and that penalties are not
// turned into rewards.
func (w Weights) Validate() error {
	v := errors.Violations{Code: errors.ErrCodeInvalidSettings}
	for _, t := range w.table() {
		switch {
		case math.IsNaN(t.weight) || math.IsInf(t.weight, 0):
			v.Add("objective weight %s is not finite", t.name)
		case t.penalty && t.weight > 0:
			v.Add("objective weight %s must not be positive, got %g", t.name, t.weight)
		case !t.penalty && t.weight < 0:
			v.Add("objective weight %s must not be negative, got %g", t.name, t.weight)
		}
	}
	return v.Err()
}

type weight struct {
	name    string
	weight  float64
	penalty bool
}

func (w Weights) table() []weight {
	return []weight{
		{"present", w.Present, false},
		{"width", w.Width, false},
		{"storage", w.Storage, false},
		{"worktop", w.Worktop, false},
		{"worktop_length", w.WorktopLength, false},
		{"pattern", w.Pattern, true},
		{"aba", w.ABA, false},
		{"zone_distance", w.ZoneDistance, true},
		{"target_distance", w.TargetDistance, true},
		{"center_distance", w.CenterDistance, true},
		{"straddle", w.Straddle, true},
		{"wall_close", w.WallClose, true},
	}
}

// Term is one weighted component of the objective.
type Term struct {
	Name   string
	Weight float64
	Expr   *milp.Expr
}

// Objective is the weighted sum of its terms.
type Objective struct {
	Terms []Term
}

// Contribution is the value of a term under an assignment.
type Contribution struct {
	Name     string  `json:"name"`
	Raw      float64 `json:"raw"`
	Weighted float64 `json:"weighted"`
}

// Build assembles the objective for a compiled model and installs it as the
// model's maximisation target.
func Build(res *compile.Result, w Weights) (*Objective, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	k, v := res.Kitchen(), res.Vars
	o := &Objective{}
	add := func(name string, weight float64, e *milp.Expr) {
		if weight == 0 || len(e.Terms()) == 0 {
			return
		}
		o.Terms = append(o.Terms, Term{Name: name, Weight: weight, Expr: e})
	}

	present, storage, worktop := milp.NewExpr(), milp.NewExpr(), milp.NewExpr()
	for _, f := range k.Fixtures {
		present.Add(v.Present[f.ID])
		if f.Storage != 0 {
			storage.AddTerm(v.Present[f.ID], f.Storage)
		}
		if f.HasWorktop {
			worktop.Add(v.Present[f.ID])
		}
	}
	add("present", w.Present, present)
	add("width", w.Width, milp.Sum(v.Width...))
	add("storage", w.Storage, storage)
	add("worktop", w.Worktop, worktop)

	if v.Worktop != nil {
		add("worktop_length", w.WorktopLength, milp.Sum(v.Worktop.Best))
	}

	if res.Has(compile.Pattern) {
		notSame, aba := milp.NewExpr(), milp.NewExpr()
		for _, j := range v.Jumps {
			notSame.Add(j.NotSame)
			if j.Second {
				aba.Add(j.ABA)
			}
		}
		add("pattern", w.Pattern, notSame)
		add("aba", w.ABA, aba)
	}

	if res.Has(compile.Distance) {
		byKind := map[compile.DistanceKind]*milp.Expr{}
		for _, d := range v.Distances {
			e, ok := byKind[d.Kind]
			if !ok {
				e = milp.NewExpr()
				byKind[d.Kind] = e
			}
			e.Add(d.X).Add(d.Y)
		}
		for _, kw := range []struct {
			kind   compile.DistanceKind
			weight float64
		}{
			{compile.ZoneDistance, w.ZoneDistance},
			{compile.TargetDistance, w.TargetDistance},
			{compile.CenterDistance, w.CenterDistance},
		} {
			if e, ok := byKind[kw.kind]; ok {
				add(kw.kind.String()+"_distance", kw.weight, e)
			}
		}
	}

	if res.Has(compile.Continuity) {
		straddle := milp.NewExpr()
		for _, s := range v.Seams {
			straddle.Add(s.Straddle)
		}
		add("straddle", w.Straddle, straddle)
	}

	add("wall_close", w.WallClose, milp.Sum(v.TooClose...))

	res.Model.Maximize(o.Expr())
	return o, nil
}

// Expr returns the weighted sum of all terms.
func (o *Objective) Expr() *milp.Expr {
	e := milp.NewExpr()
	for _, t := range o.Terms {
		e.AddTerm(t.Expr, t.Weight)
	}
	return e
}

// Breakdown evaluates every term under an assignment.
func (o *Objective) Breakdown(values []float64) []Contribution {
	out := make([]Contribution, 0, len(o.Terms))
	for _, t := range o.Terms {
		raw := t.Expr.Eval(values)
		out = append(out, Contribution{Name: t.Name, Raw: raw, Weighted: raw * t.Weight})
	}
	return out
}
