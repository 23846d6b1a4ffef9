package compile

import (
	"fmt"

	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
)

// buildDistance measures how far fixtures sit from their zone's centroid,
// from the targets of their type and from their zone's fixed centre.
//
// The centroid of an optimised zone is the mean position of its present
// members: with q the centroid gated by presence, the sum of q over the
// members equals the sum of member positions.
func buildDistance(c *compiler) {
	k, v, m := c.k, c.v, c.m
	fam := string(Distance)
	C := c.big.Canvas

	for _, z := range k.Zones {
		if !z.Optimize {
			continue
		}
		var members []kitchen.FixtureID
		for _, f := range k.Fixtures {
			if f.Zone == z.Name {
				members = append(members, f.ID)
			}
		}
		if len(members) == 0 {
			continue
		}
		ci := len(v.centroids)
		cen := centroid{
			zone:    z.Name,
			members: members,
			x:       m.NewContinuous(fam, fmt.Sprintf("cx_z%d", ci), -C, C),
			y:       m.NewContinuous(fam, fmt.Sprintf("cy_z%d", ci), -C, C),
		}
		sumQX, sumQY := milp.NewExpr(), milp.NewExpr()
		sumX, sumY := milp.NewExpr(), milp.NewExpr()
		for _, f := range members {
			qx := m.NewContinuous(fam, fmt.Sprintf("qx_z%d_f%d", ci, f), -C, C)
			qy := m.NewContinuous(fam, fmt.Sprintf("qy_z%d_f%d", ci, f), -C, C)
			p := v.Present[f]
			m.Group(fam, fmt.Sprintf("q_z%d_f%d", ci, f), 8).
				Le(qx, milp.NewExpr().AddTerm(p, C)).
				Ge(qx, milp.NewExpr().AddTerm(p, -C)).
				EqualIf(qx, cen.x, p, 2*C).
				Le(qy, milp.NewExpr().AddTerm(p, C)).
				Ge(qy, milp.NewExpr().AddTerm(p, -C)).
				EqualIf(qy, cen.y, p, 2*C).
				Close()
			cen.qx = append(cen.qx, qx)
			cen.qy = append(cen.qy, qy)
			sumQX.Add(qx)
			sumQY.Add(qy)
			sumX.Add(v.FixX[f])
			sumY.Add(v.FixY[f])
		}
		m.Eq(fam, sumQX, sumX)
		m.Eq(fam, sumQY, sumY)
		v.centroids = append(v.centroids, cen)

		for _, f := range members {
			c.addDistance(DistanceVars{Kind: ZoneDistance, Fixture: f, centroid: ci}, cen.x, cen.y)
		}
	}

	for _, t := range k.Relations.Targets {
		for _, f := range k.FixturesOfType(t.Type) {
			c.addDistance(DistanceVars{Kind: TargetDistance, Fixture: f, ref: t.Point, centroid: -1},
				milp.Constant(t.Point.X), milp.Constant(t.Point.Y))
		}
	}

	for _, f := range k.Fixtures {
		z, ok := k.Zone(f.Zone)
		if !ok || z.Center == nil {
			continue
		}
		c.addDistance(DistanceVars{Kind: CenterDistance, Fixture: f.ID, ref: *z.Center, centroid: -1},
			milp.Constant(z.Center.X), milp.Constant(z.Center.Y))
	}
}

// addDistance declares the per-axis absolute distance of d.Fixture to the
// reference (rx, ry). Each axis is exact while the fixture is present and
// zero otherwise.
func (c *compiler) addDistance(d DistanceVars, rx, ry milp.Linear) {
	v, m := c.v, c.m
	fam := string(Distance)
	C := c.big.Canvas
	i := len(v.Distances)
	d.X = m.NewContinuous(fam, fmt.Sprintf("dx_%s%d_f%d", d.Kind, i, d.Fixture), 0, 2*C)
	d.Y = m.NewContinuous(fam, fmt.Sprintf("dy_%s%d_f%d", d.Kind, i, d.Fixture), 0, 2*C)
	d.DirX = m.NewBinary(fam, fmt.Sprintf("dirx_%s%d_f%d", d.Kind, i, d.Fixture))
	d.DirY = m.NewBinary(fam, fmt.Sprintf("diry_%s%d_f%d", d.Kind, i, d.Fixture))

	p := v.Present[d.Fixture]
	g := m.Group(fam, fmt.Sprintf("%s%d_f%d", d.Kind, i, d.Fixture), 10)
	axisDistance(g, d.X, d.DirX, milp.Sum(v.FixX[d.Fixture]).Sub(rx), p, C)
	axisDistance(g, d.Y, d.DirY, milp.Sum(v.FixY[d.Fixture]).Sub(ry), p, C)
	g.Close()
	v.Distances = append(v.Distances, d)
}

// axisDistance binds dist == |delta| when present is 1 and dist == 0
// otherwise. delta ranges over [-2C, 2C]. It emits five clauses.
func axisDistance(g *milp.Group, dist, dir milp.Var, delta *milp.Expr, present milp.Var, C float64) {
	neg := milp.NewExpr().AddTerm(delta, -1)
	g.LowerIf(dist, delta, present, 2*C)
	g.LowerIf(dist, neg, present, 2*C)
	g.UpperIf(dist, delta, dir, 4*C)
	g.UpperIf(dist, neg, milp.Not(dir), 4*C)
	g.Le(dist, milp.NewExpr().AddTerm(present, 2*C))
}

func deriveDistance(c *compiler, vals []float64) {
	v := c.v
	for _, cen := range v.centroids {
		var sx, sy float64
		n := 0
		for _, f := range cen.members {
			if vals[v.Present[f]] > 0.5 {
				sx += vals[v.FixX[f]]
				sy += vals[v.FixY[f]]
				n++
			}
		}
		if n > 0 {
			vals[cen.x], vals[cen.y] = sx/float64(n), sy/float64(n)
		}
		for i, f := range cen.members {
			if vals[v.Present[f]] > 0.5 {
				vals[cen.qx[i]], vals[cen.qy[i]] = vals[cen.x], vals[cen.y]
			}
		}
	}
	for _, d := range v.Distances {
		rx, ry := d.ref.X, d.ref.Y
		if d.Kind == ZoneDistance {
			cen := v.centroids[d.centroid]
			rx, ry = vals[cen.x], vals[cen.y]
		}
		dx, dy := vals[v.FixX[d.Fixture]]-rx, vals[v.FixY[d.Fixture]]-ry
		vals[d.DirX], vals[d.DirY] = b2f(dx >= 0), b2f(dy >= 0)
		if vals[v.Present[d.Fixture]] > 0.5 {
			vals[d.X], vals[d.Y] = abs(dx), abs(dy)
		}
	}
}
