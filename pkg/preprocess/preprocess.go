// Package preprocess turns a declared kitchen into the instantiated domain
// model the compiler works on.
//
// Catalog entries are expanded into one fixture per allowed orientation,
// clone and corner leg. Rules that exclude fixtures from the whole kitchen
// are applied here by dropping the matching fixtures, and are removed from
// the rule set afterwards. Corner-capable fixtures are dropped when the
// kitchen declares no corners. Finally every part is discretised into
// segments of the nominal minimum width.
package preprocess

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
)

// Input is the declared problem before instantiation.
type Input struct {
	Constants kitchen.Constants
	Catalog   []kitchen.CatalogEntry
	Parts     []kitchen.Part
	Zones     []kitchen.Zone
	Walls     []kitchen.Wall
	Corners   []kitchen.Corner
	Rules     []kitchen.PlacementRule
	Relations kitchen.RelationRules
}

// Report summarizes what preprocessing did.
type Report struct {
	Instantiated    int // fixtures created from the catalog
	Excluded        int // fixtures removed by kitchen-wide exclude rules
	DroppedCorners  int // corner fixtures removed because no corner exists
	DischargedRules int
	Segments        int
}

// Options configures preprocessing.
type Options struct {
	Logger *log.Logger
}

// Run instantiates the catalog and builds the kitchen.
func Run(in Input, opts Options) (*kitchen.Kitchen, Report, error) {
	var rep Report
	consts := in.Constants.WithDefaults()

	fixtures := instantiate(in.Catalog, consts.CloneCount)
	rep.Instantiated = len(fixtures)

	var kept []kitchen.PlacementRule
	for _, r := range in.Rules {
		if r.Kind == kitchen.Exclude && r.KitchenWide() {
			before := len(fixtures)
			fixtures = filter(fixtures, func(f *kitchen.Fixture) bool { return !r.Matches(f) })
			rep.Excluded += before - len(fixtures)
			rep.DischargedRules++
			continue
		}
		kept = append(kept, r)
	}

	if len(in.Corners) == 0 {
		before := len(fixtures)
		fixtures = filter(fixtures, func(f *kitchen.Fixture) bool { return !f.IsCorner })
		rep.DroppedCorners = before - len(fixtures)
	}

	k := &kitchen.Kitchen{
		Constants: consts,
		Fixtures:  fixtures,
		Zones:     in.Zones,
		Walls:     in.Walls,
		Corners:   in.Corners,
		Rules:     kept,
		Relations: in.Relations,
	}
	for _, p := range in.Parts {
		k.AddPart(p, SegmentCount(p.Width, consts.MinWidth))
	}
	rep.Segments = len(k.Segments)

	if err := k.Validate(); err != nil {
		return nil, rep, errors.Wrap(errors.ErrCodeModelInvariant, err, "instantiated kitchen is inconsistent")
	}

	if opts.Logger != nil {
		opts.Logger.Debug("preprocessed kitchen",
			"fixtures", len(k.Fixtures), "excluded", rep.Excluded,
			"dropped_corners", rep.DroppedCorners, "segments", rep.Segments)
	}
	return k, rep, nil
}

// SegmentCount returns how many nominal segments fit in a part.
func SegmentCount(width, minWidth float64) int {
	if minWidth <= 0 || width <= 0 {
		return 0
	}
	return int(math.Floor(width/minWidth + 1e-9))
}

// instantiate expands catalog entries. For every entry, clones are created in
// ascending clone order; within a clone the bottom half precedes the top
// half, and a corner entry's second legs follow its first legs.
func instantiate(catalog []kitchen.CatalogEntry, cloneCount int) []kitchen.Fixture {
	var out []kitchen.Fixture
	add := func(f kitchen.Fixture) kitchen.FixtureID {
		f.ID = kitchen.FixtureID(len(out))
		out = append(out, f)
		return f.ID
	}

	for _, e := range catalog {
		clones := 1
		if e.Multiple {
			clones = max(cloneCount, 1)
		}
		both := e.Top && e.Bottom

		// previous clone per (orientation, leg) for the older-sibling chain
		older := map[[2]bool]kitchen.FixtureID{}

		for c := 1; c <= clones; c++ {
			var orient []bool
			if e.Bottom {
				orient = append(orient, false)
			}
			if e.Top {
				orient = append(orient, true)
			}

			firsts := map[bool]kitchen.FixtureID{}
			for _, top := range orient {
				f := base(e, c, top, false, both, clones > 1)
				f.OlderSibling = lookup(older, [2]bool{top, false})
				if both && top {
					// storage is counted once per tall unit, on the bottom half
					f.Storage = 0
				}
				id := add(f)
				older[[2]bool{top, false}] = id
				firsts[top] = id
			}
			linkComplementary(out, firsts, both)

			if !e.Corner {
				continue
			}
			seconds := map[bool]kitchen.FixtureID{}
			for _, top := range orient {
				f := base(e, c, top, true, both, clones > 1)
				f.WidthMin, f.WidthMax = e.SecondLegBounds()
				f.Storage = 0
				f.OlderSibling = lookup(older, [2]bool{top, true})
				id := add(f)
				older[[2]bool{top, true}] = id
				seconds[top] = id
				out[firsts[top]].SecondCorner = id
			}
			linkComplementary(out, seconds, both)
		}
	}
	return out
}

func base(e kitchen.CatalogEntry, clone int, top, secondLeg, both, cloned bool) kitchen.Fixture {
	return kitchen.Fixture{
		Name:          instanceName(e.Name, clone, top, secondLeg, both, cloned),
		Catalog:       e.Name,
		Clone:         clone,
		Type:          e.Type,
		Zone:          e.Zone,
		WidthMin:      e.WidthMin,
		WidthMax:      e.WidthMax,
		IsTop:         top,
		HasWorktop:    e.Worktop,
		AllowEdge:     e.AllowEdge,
		Storage:       e.Storage,
		IsCorner:      e.Corner,
		SecondLeg:     secondLeg,
		Complementary: kitchen.NoFixture,
		SecondCorner:  kitchen.NoFixture,
		OlderSibling:  kitchen.NoFixture,
	}
}

func instanceName(name string, clone int, top, secondLeg, both, cloned bool) string {
	var tags []string
	if both {
		if top {
			tags = append(tags, "top")
		} else {
			tags = append(tags, "bottom")
		}
	}
	if secondLeg {
		tags = append(tags, "leg 2")
	}
	if len(tags) > 0 {
		name = fmt.Sprintf("%s (%s)", name, strings.Join(tags, ", "))
	}
	if cloned {
		name = fmt.Sprintf("%s #%d", name, clone)
	}
	return name
}

func lookup(m map[[2]bool]kitchen.FixtureID, k [2]bool) kitchen.FixtureID {
	if id, ok := m[k]; ok {
		return id
	}
	return kitchen.NoFixture
}

func linkComplementary(fs []kitchen.Fixture, byOrient map[bool]kitchen.FixtureID, both bool) {
	if !both {
		return
	}
	bottom, top := byOrient[false], byOrient[true]
	fs[bottom].Complementary = top
	fs[top].Complementary = bottom
}

// filter keeps the fixtures for which keep returns true and rebuilds the
// arena: handles are renumbered and relations to removed fixtures become
// NoFixture.
func filter(fs []kitchen.Fixture, keep func(*kitchen.Fixture) bool) []kitchen.Fixture {
	remap := make([]kitchen.FixtureID, len(fs))
	out := make([]kitchen.Fixture, 0, len(fs))
	for i := range fs {
		if !keep(&fs[i]) {
			remap[i] = kitchen.NoFixture
			continue
		}
		remap[i] = kitchen.FixtureID(len(out))
		out = append(out, fs[i])
	}
	rel := func(id kitchen.FixtureID) kitchen.FixtureID {
		if !id.Valid() {
			return kitchen.NoFixture
		}
		return remap[id]
	}
	for i := range out {
		f := &out[i]
		f.ID = kitchen.FixtureID(i)
		f.Complementary = rel(f.Complementary)
		f.SecondCorner = rel(f.SecondCorner)
		f.OlderSibling = rel(f.OlderSibling)
	}
	return out
}
