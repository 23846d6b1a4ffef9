// Package milp is a small mixed-integer linear program builder.
//
// # Overview
//
// A [Model] holds variables, linear constraints and a linear objective. It
// does not solve anything: models are written in CPLEX LP or free MPS
// format with [Model.WriteLP] and [Model.WriteMPS] and handed to an external
// engine. Engines report values by variable name, collected in a [Solution].
//
// # Expressions
//
// Variables are handles ([Var]) into the model. Linear expressions are built
// with [Expr]:
//
//	e := milp.NewExpr().AddTerm(width, 1).AddTerm(used, -100)
//	m.Le("width", e, milp.Constant(0))
//
// Both [Var] and *[Expr] implement [Linear], so either can appear on each side
// of a constraint.
//
// # Clause Groups
//
// Constraints are emitted through a [Group] that declares how many clauses it
// will produce. Closing a group with a different count records a model
// invariant error, so a branch that silently stops emitting a clause is caught
// before the model reaches a solver:
//
//	g := m.Group("width", "s3_f2", 2)
//	g.LowerIf(width, milp.Constant(40), pair, bigM)
//	g.UpperIf(width, milp.Constant(60), pair, bigM)
//	g.Close()
//
// # Big-M Helpers
//
// [Group.UpperIf] and [Group.LowerIf] emit a constraint that only binds when a
// gate expression is 1. They check that the constant M dominates the range of
// the gated expression computed from the variable bounds. A constant that is
// too small is reported as a model invariant error instead of silently
// cutting off feasible solutions.
//
// Errors are sticky: the first one is kept and returned by [Model.Err].
package milp
