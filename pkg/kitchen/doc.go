// Package kitchen defines the domain model of a kitchen layout problem.
//
// # Overview
//
// A [Kitchen] is the aggregate root. It owns straight wall runs ([Part]),
// the fixed-width slots they are discretised into ([Segment]), the concrete
// fixture instances that may be placed ([Fixture]), and the auxiliary
// geometry and rules that constrain placement ([Zone], [Wall], [Corner],
// [PlacementRule], [RelationRules]).
//
// The model is built once by the preprocessor and then only read by the
// model compiler. After a successful solve the extractor writes the solution
// fields: [Segment.Width], [Segment.Fixture] and [Position.Padding]. Those
// fields are reset before every extraction, so a kitchen can be solved again.
//
// # Fixture Arena
//
// Fixtures live in a single slice indexed by [FixtureID]. Relations between
// fixtures are stored as handles into the same slice:
//
//   - Complementary: the other half of a tall (top and bottom) unit. The
//     relation is mutual.
//   - SecondCorner: the second leg of an L-shaped corner unit. Set once on
//     the first leg, never on the second.
//   - OlderSibling: the previous clone of the same catalog entry. Clones are
//     ordered by clone index and the relation is used for symmetry breaking.
//
// [NoFixture] marks an absent relation.
//
// # Segments
//
// Segments are stored in one global slice in creation order, so a segment's
// index is its global number used for cross-part ordering. Each part keeps
// the ordered list of its own segment handles. [Kitchen.Previous] and
// [Kitchen.Next] are index lookups that never cross a part boundary.
//
// # Rules
//
// Placement rules are a closed variant of [RuleKind] and [Scope]. Code that
// evaluates rules switches over the scope types exhaustively:
//
//	switch s := rule.Scope.(type) {
//	case kitchen.KitchenScope:
//	case kitchen.GroupScope:
//	case kitchen.SectionScope:
//	}
package kitchen
