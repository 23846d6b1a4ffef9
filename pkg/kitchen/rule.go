package kitchen

import "fmt"

// RuleKind tells whether a placement rule requires or forbids fixtures.
type RuleKind int

const (
	Include RuleKind = iota
	Exclude
)

func (k RuleKind) String() string {
	if k == Exclude {
		return "exclude"
	}
	return "include"
}

// Scope is where a placement rule applies. It is one of [KitchenScope],
// [GroupScope] or [SectionScope].
type Scope interface {
	scope()
	String() string
}

// KitchenScope applies a rule to the whole kitchen.
type KitchenScope struct{}

// GroupScope applies a rule to every part of a group.
type GroupScope struct {
	Group int
}

// SectionScope applies a rule to the offset interval [Start, End] of a group.
type SectionScope struct {
	Group int
	Start float64
	End   float64
}

func (KitchenScope) scope() {}
func (GroupScope) scope()   {}
func (SectionScope) scope() {}

func (KitchenScope) String() string { return "kitchen" }
func (s GroupScope) String() string { return fmt.Sprintf("group %d", s.Group) }
func (s SectionScope) String() string {
	return fmt.Sprintf("group %d [%g, %g]", s.Group, s.Start, s.End)
}

// Match selects fixtures whose attribute equals a value.
type Match struct {
	Attribute string
	Value     string
}

// PlacementRule includes or excludes matching fixtures within a scope.
type PlacementRule struct {
	Kind  RuleKind
	Scope Scope
	Match Match
}

// Matches reports whether the rule applies to f.
func (r PlacementRule) Matches(f *Fixture) bool {
	v, ok := f.Attribute(r.Match.Attribute)
	return ok && v == r.Match.Value
}

// KitchenWide reports whether the rule has kitchen scope.
func (r PlacementRule) KitchenWide() bool {
	_, ok := r.Scope.(KitchenScope)
	return ok
}

func (r PlacementRule) String() string {
	return fmt.Sprintf("%s %s=%s in %s", r.Kind, r.Match.Attribute, r.Match.Value, r.Scope)
}

// Target pulls fixtures of a type towards a fixed point, e.g. a plumbing stub.
type Target struct {
	Type  string
	Point Point
}

// MinDistance keeps fixtures of two types apart within a group.
type MinDistance struct {
	First    string
	Second   string
	Distance float64
}

// WallDistance asks fixtures of a type to keep clear of a group's walls.
type WallDistance struct {
	Type     string
	Distance float64
}

// WorktopLength requires a contiguous worktop run next to fixtures of a type.
type WorktopLength struct {
	Type   string
	Length float64
}

// MinOneWide requires at least one fixture of a type to be at least Width wide.
type MinOneWide struct {
	Type  string
	Width float64
}

// RelationRules holds the catalog-wide numeric relations. Slices keep the
// declaration order so compiled models are deterministic.
type RelationRules struct {
	Targets        []Target
	MinDistances   []MinDistance
	WallDistances  []WallDistance
	WorktopLengths []WorktopLength
	MinOneWide     []MinOneWide
}

// Len returns the total number of relation rules.
func (r RelationRules) Len() int {
	return len(r.Targets) + len(r.MinDistances) + len(r.WallDistances) + len(r.WorktopLengths) + len(r.MinOneWide)
}

// Types returns every fixture type referenced by a relation, in order of
// first appearance.
func (r RelationRules) Types() []string {
	var out []string
	seen := map[string]bool{}
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	for _, t := range r.Targets {
		add(t.Type)
	}
	for _, d := range r.MinDistances {
		add(d.First)
		add(d.Second)
	}
	for _, w := range r.WallDistances {
		add(w.Type)
	}
	for _, w := range r.WorktopLengths {
		add(w.Type)
	}
	for _, w := range r.MinOneWide {
		add(w.Type)
	}
	return out
}
