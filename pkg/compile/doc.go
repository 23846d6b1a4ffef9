// Package compile translates an instantiated kitchen into a mixed-integer
// linear program.
//
// # Decision Variables
//
// The core variables exist in every model:
//
//   - pair[s,f]: binary, segment s holds fixture f
//   - present[f]: binary, fixture f is placed somewhere
//   - width[s]: continuous in [0, W], the solved segment width
//   - padding[p]: continuous in [0, part width], slack before the first segment
//
// Every other variable belongs to the constraint family that needs it.
//
// # Constraint Families
//
// Families are independently selectable through [Options.Families]. Selecting
// a family also selects the families it reads variables from, e.g. "tall"
// pulls in "geometry" and "group". The families are:
//
//	assignment   presence and segment capacity
//	symmetry     packing to the front, clone ordering
//	width        fixture width bounds, global minimum, part capacity
//	orientation  top fixtures on top parts, bottom fixtures on bottom parts
//	edge         only edge-capable fixtures at open part ends
//	geometry     segment centres and offsets, fixture position linking
//	group        per-group fixture presence
//	tall         top/bottom halves of a tall unit stay aligned
//	rules        group and section placement rules
//	pattern      neighbour width jumps and ABA patterns
//	distance     zone centroid, target and fixed-centre distances
//	continuity   seams between runs of one group
//	relations    minimum distance, wall clearance, worktop runs, minimum width
//	corner       corner occupancy and corner units
//
// # Big-M Constants
//
// All gated clauses take their constant from [BigM], which is derived from
// the instantiated kitchen's declared maxima. The milp helpers verify that
// each constant dominates the gated expression's range.
//
// # Deriving Assignments
//
// [Result.Derive] computes a value for every variable from the solution
// fields of the kitchen (segment widths, fixtures and part padding). A layout
// that satisfies the placement semantics yields an assignment with no
// violations under [milp.Model.Check]. This evaluates hand-made layouts
// against the model and verifies solver output.
package compile
