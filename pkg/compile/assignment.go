package compile

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// buildAssignment ties presence to placement: a fixture is present iff
// exactly one segment holds it, and a segment holds at most one fixture.
func buildAssignment(c *compiler) {
	k, v := c.k, c.v
	for f := range k.Fixtures {
		col := make([]milp.Var, len(k.Segments))
		for s := range k.Segments {
			col[s] = v.Pair[s][f]
		}
		c.m.Eq(string(Assignment), v.Present[f], milp.Sum(col...))
	}
	for s := range k.Segments {
		c.m.Le(string(Assignment), c.used(kitchen.SegmentID(s)), milp.Constant(1))
	}
}

// buildSymmetry removes equivalent solutions. Segments fill from the start
// of each part, and clones of one catalog entry are placed in clone order:
// a younger clone is present only if its older sibling is, and it then sits
// on a higher segment number.
func buildSymmetry(c *compiler) {
	k, v := c.k, c.v
	for _, s := range k.Segments {
		if next, ok := k.Next(s.ID); ok {
			c.m.Le(string(Symmetry), c.used(next), c.used(s.ID))
		}
	}

	n := float64(len(k.Segments))
	// Range of a numbered sum over independent binaries.
	bigM := n*(n+1)/2 + 1
	for _, f := range k.Fixtures {
		if !f.OlderSibling.Valid() {
			continue
		}
		older := f.OlderSibling
		c.m.Group(string(Symmetry), fmt.Sprintf("clone_f%d", f.ID), 2).
			Le(v.Present[f.ID], v.Present[older]).
			UpperIf(c.numbered(older).AddConstant(1), c.numbered(f.ID), v.Present[f.ID], bigM).
			Close()
	}
}
