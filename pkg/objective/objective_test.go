package objective

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/kitchendesigner/pkg/compile"
	"github.com/matzehuels/kitchendesigner/pkg/errors"
	"github.com/matzehuels/kitchendesigner/pkg/kitchen"
	"github.com/matzehuels/kitchendesigner/pkg/preprocess"
)

func run(t *testing.T) *kitchen.Kitchen {
	t.Helper()
	k, _, err := preprocess.Run(preprocess.Input{
		Constants: kitchen.Constants{MinWidth: 50, MaxWidth: 100, CanvasSize: 500, CloneCount: 2},
		Catalog: []kitchen.CatalogEntry{
			{Name: "sink", Type: "sink", WidthMin: 50, WidthMax: 80, Bottom: true, Worktop: true},
			{Name: "drawer", Type: "drawer", WidthMin: 50, WidthMax: 100, Bottom: true, Worktop: true, Multiple: true, Storage: 2},
		},
		Parts: []kitchen.Part{{Name: "base", Width: 200, Depth: 60}},
	}, preprocess.Options{})
	require.NoError(t, err)

	widths := []float64{60, 60, 60}
	for i, s := range k.Parts[0].Segments[:3] {
		k.Segments[s].Width = widths[i]
		k.Segments[s].Fixture = kitchen.FixtureID(i)
	}
	return k
}

func names(o *Objective) []string {
	var out []string
	for _, t := range o.Terms {
		out = append(out, t.Name)
	}
	return out
}

func TestDefaultWeightsAreValid(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
}

func TestValidateSigns(t *testing.T) {
	w := DefaultWeights()
	w.Pattern = 0.5
	w.Present = -1
	err := w.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSettings))
	assert.Contains(t, err.Error(), "present")
	assert.Contains(t, err.Error(), "and 1 more")
}

func TestBuildCoreOnly(t *testing.T) {
	k := run(t)
	res, err := compile.Compile(k, compile.Options{Families: []compile.Family{compile.Assignment, compile.Width}})
	require.NoError(t, err)

	o, err := Build(res, DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, []string{"present", "width", "storage", "worktop"}, names(o))

	got := map[string]float64{}
	for _, c := range o.Breakdown(res.Derive()) {
		got[c.Name] = c.Raw
	}
	assert.Equal(t, 3.0, got["present"])
	assert.Equal(t, 180.0, got["width"])
	assert.Equal(t, 4.0, got["storage"])
	assert.Equal(t, 3.0, got["worktop"])
}

func TestBuildAllFamilies(t *testing.T) {
	k := run(t)
	res, err := compile.Compile(k, compile.Options{})
	require.NoError(t, err)

	o, err := Build(res, DefaultWeights())
	require.NoError(t, err)
	assert.Contains(t, names(o), "worktop_length")
	assert.Contains(t, names(o), "pattern")
	assert.NotContains(t, names(o), "zone_distance", "no zones declared")

	values := res.Derive()
	require.Empty(t, res.Model.Check(values, 1e-6))

	obj, maximize := res.Model.Objective()
	assert.True(t, maximize)
	total := 0.0
	for _, c := range o.Breakdown(values) {
		total += c.Weighted
	}
	assert.InDelta(t, total, obj.Eval(values), 1e-9)
	// 3 present + 18 width + 0.4 storage + 0.3 worktop + 9 worktop run
	assert.InDelta(t, 30.7, total, 1e-9)
}

func TestZeroWeightDropsTerm(t *testing.T) {
	k := run(t)
	res, err := compile.Compile(k, compile.Options{Families: []compile.Family{compile.Width}})
	require.NoError(t, err)

	w := DefaultWeights()
	w.Storage = 0
	o, err := Build(res, w)
	require.NoError(t, err)
	assert.NotContains(t, names(o), "storage")
}
