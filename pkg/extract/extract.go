// Package extract writes a solver's answer back onto the kitchen.
package extract

import (
	"math"

	"github.com/matzehuels/kitchendesigner/pkg/compile"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// Report describes what extraction found.
type Report struct {
	Placed int
	// Segments where more than one pairing variable solved true. The last
	// fixture in catalog order wins.
	Ambiguous []kitchen.SegmentID
	// Values the engine did not report; they are read as zero.
	Missing int
}

// scale sets the rounding of solved lengths to 1e-6.
const scale = 1e6

func round(x float64) float64 {
	x = math.Round(x*scale) / scale
	if x == 0 {
		return 0 // no negative zero
	}
	return x
}

// Apply resets the solution fields of the compiled kitchen and fills them
// from sol. Applying the same solution twice gives the same kitchen.
func Apply(res *compile.Result, sol *milp.Solution) Report {
	k, v, m := res.Kitchen(), res.Vars, res.Model
	k.ResetSolution()

	var rep Report
	value := func(x milp.Var) float64 {
		val, ok := m.Value(sol, x)
		if !ok {
			rep.Missing++
		}
		return val
	}

	for i := range k.Segments {
		s := &k.Segments[i]
		s.Width = round(value(v.Width[i]))
		hits := 0
		for f := range k.Fixtures {
			if value(v.Pair[i][f]) > 0.5 {
				s.Fixture = kitchen.FixtureID(f)
				hits++
			}
		}
		if hits > 1 {
			rep.Ambiguous = append(rep.Ambiguous, s.ID)
		}
		if hits > 0 {
			rep.Placed++
		}
	}
	for i := range k.Parts {
		k.Parts[i].Position.Padding = round(value(v.Padding[i]))
	}
	return rep
}
