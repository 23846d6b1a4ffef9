package kitchen

import "strconv"

// FixtureID is a handle into [Kitchen.Fixtures].
type FixtureID int

// NoFixture marks an unset fixture relation or an empty segment.
const NoFixture FixtureID = -1

// Valid reports whether id refers to a fixture.
func (id FixtureID) Valid() bool { return id >= 0 }

// Fixture is one placeable instance of a catalog entry: a single
// orientation, clone and corner leg.
type Fixture struct {
	ID         FixtureID
	Name       string // unique instance name
	Catalog    string // catalog entry the instance was created from
	Clone      int    // 1-based clone index
	Type       string
	Zone       string
	WidthMin   float64
	WidthMax   float64
	IsTop      bool
	HasWorktop bool
	AllowEdge  bool
	Storage    float64
	IsCorner   bool
	SecondLeg  bool // synthesized second leg of a corner unit

	Complementary FixtureID
	SecondCorner  FixtureID
	OlderSibling  FixtureID
}

// Attribute names understood by placement rules.
const (
	AttrName       = "name"
	AttrType       = "type"
	AttrZone       = "zone"
	AttrIsTop      = "is_top"
	AttrHasWorktop = "has_worktop"
	AttrAllowEdge  = "allow_edge"
	AttrIsCorner   = "is_corner"
)

// Attributes lists every attribute a rule can match on.
var Attributes = []string{AttrName, AttrType, AttrZone, AttrIsTop, AttrHasWorktop, AttrAllowEdge, AttrIsCorner}

// Attribute returns the string form of a rule attribute. The name attribute
// is the catalog name, so a rule on "name" matches every instance of an
// entry. Boolean attributes render as "true" or "false".
func (f *Fixture) Attribute(name string) (string, bool) {
	switch name {
	case AttrName:
		return f.Catalog, true
	case AttrType:
		return f.Type, true
	case AttrZone:
		return f.Zone, true
	case AttrIsTop:
		return strconv.FormatBool(f.IsTop), true
	case AttrHasWorktop:
		return strconv.FormatBool(f.HasWorktop), true
	case AttrAllowEdge:
		return strconv.FormatBool(f.AllowEdge), true
	case AttrIsCorner:
		return strconv.FormatBool(f.IsCorner), true
	}
	return "", false
}

// IsTall reports whether the fixture is one half of a top/bottom unit.
func (f *Fixture) IsTall() bool { return f.Complementary.Valid() }

func (f Fixture) String() string { return f.Name }

// CatalogEntry is a fixture as declared by the user, before it is
// instantiated per orientation, clone and corner leg.
type CatalogEntry struct {
	Name           string
	Type           string
	Zone           string
	WidthMin       float64
	WidthMax       float64
	CornerWidthMin float64 // second leg bounds; zero means same as WidthMin
	CornerWidthMax float64
	Top            bool
	Bottom         bool
	Worktop        bool
	AllowEdge      bool
	Multiple       bool
	Corner         bool
	Storage        float64
}

// SecondLegBounds returns the width bounds of the synthesized corner leg.
func (e CatalogEntry) SecondLegBounds() (float64, float64) {
	lo, hi := e.WidthMin, e.WidthMax
	if e.CornerWidthMin > 0 {
		lo = e.CornerWidthMin
	}
	if e.CornerWidthMax > 0 {
		hi = e.CornerWidthMax
	}
	return lo, hi
}
