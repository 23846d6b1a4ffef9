package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kitchendesigner/pkg/compile"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/milp"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
)

func compiled(t *testing.T) *compile.Result {
	t.Helper()
	k, _, err := preprocess.Run(preprocess.Input{
		Constants: kitchen.Constants{MinWidth: 50, MaxWidth: 100, CloneCount: 2},
		Catalog: []kitchen.CatalogEntry{
			{Name: "sink", Type: "sink", WidthMin: 50, WidthMax: 80, Bottom: true},
			{Name: "drawer", Type: "drawer", WidthMin: 50, WidthMax: 100, Bottom: true, Multiple: true},
		},
		Parts: []kitchen.Part{{Name: "base", Width: 200, Depth: 60}},
	}, preprocess.Options{})
	require.NoError(t, err)
	res, err := compile.Compile(k, compile.Options{})
	require.NoError(t, err)
	return res
}

type solved struct {
	width   float64
	fixture kitchen.FixtureID
}

func layout(k *kitchen.Kitchen, padding float64, segs ...solved) {
	k.ResetSolution()
	k.Parts[0].Position.Padding = padding
	for i, s := range segs {
		k.Segments[i].Width = s.width
		k.Segments[i].Fixture = s.fixture
	}
}

func snapshot(k *kitchen.Kitchen) ([]kitchen.Segment, float64) {
	return append([]kitchen.Segment(nil), k.Segments...), k.Parts[0].Position.Padding
}

func TestRoundTrip(t *testing.T) {
	res := compiled(t)
	k := res.Kitchen()
	layout(k, 4.5, solved{70, 1}, solved{60, 0}, solved{65.5, 2})
	wantSegs, wantPad := snapshot(k)

	sol := res.Model.Solution(milp.StatusOptimal, res.Derive())
	k.ResetSolution()

	rep := Apply(res, sol)
	gotSegs, gotPad := snapshot(k)
	assert.Equal(t, wantSegs, gotSegs)
	assert.Equal(t, wantPad, gotPad)
	assert.Equal(t, 3, rep.Placed)
	assert.Empty(t, rep.Ambiguous)
	assert.Zero(t, rep.Missing)

	// idempotent
	Apply(res, sol)
	gotSegs, _ = snapshot(k)
	assert.Equal(t, wantSegs, gotSegs)
}

func TestMissingValuesReadAsZero(t *testing.T) {
	res := compiled(t)
	k := res.Kitchen()
	layout(k, 0, solved{70, 1})

	rep := Apply(res, &milp.Solution{Status: milp.StatusFeasible, Values: map[string]float64{}})
	assert.Equal(t, 0.0, k.Segments[0].Width)
	assert.Equal(t, kitchen.NoFixture, k.Segments[0].Fixture)
	assert.Zero(t, rep.Placed)
	assert.Positive(t, rep.Missing)
}

func TestAmbiguousLastWins(t *testing.T) {
	res := compiled(t)
	m, v := res.Model, res.Vars
	values := make([]float64, m.NumVars())
	values[v.Width[0]] = 60.0000004
	values[v.Pair[0][0]] = 1
	values[v.Pair[0][2]] = 1
	values[v.Padding[0]] = -1e-9

	rep := Apply(res, m.Solution(milp.StatusFeasible, values))
	k := res.Kitchen()
	assert.Equal(t, []kitchen.SegmentID{0}, rep.Ambiguous)
	assert.Equal(t, kitchen.FixtureID(2), k.Segments[0].Fixture)
	assert.Equal(t, 60.0, k.Segments[0].Width)
	assert.Equal(t, 0.0, k.Parts[0].Position.Padding)
}
