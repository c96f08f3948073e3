package layout

import (
	"bytes"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stacked(n int, size float64) []Object {
	origin := Vec3{}
	objs := make([]Object, n)
	for i := range objs {
		objs[i] = Object{
			Name:   fmt.Sprintf("crate-%02d", i),
			Size:   Vec3{X: size, Y: size, Z: size},
			Preset: &origin,
		}
	}
	return objs
}

func customOptions(seed uint64) Options {
	opts := DefaultOptions()
	opts.Strategy = Custom{}
	opts.Seed = seed
	return opts
}

func anyPairWithin(objs []PlacedObject, margin float64) (string, bool) {
	for i := range objs {
		for j := i + 1; j < len(objs); j++ {
			if objs[i].BoundingBox.Intersects(objs[j].BoundingBox, margin) {
				return objs[i].Name + "/" + objs[j].Name, true
			}
		}
	}
	return "", false
}

func TestAlignGridScene(t *testing.T) {
	res := Align(furniture(), DefaultOptions())

	require.Len(t, res.Objects, 3)
	assert.Empty(t, res.Warnings)
	assert.InDelta(t, 0.6, res.Objects[0].Position.X, eps)
	assert.InDelta(t, 1.95, res.Objects[1].Position.X, eps, "grid spacing already clears the margin")

	for _, o := range res.Objects {
		assert.Equal(t, BoxAt(o.Position, o.Size), o.BoundingBox, "%s box derived from position", o.Name)
		require.NotNil(t, o.Hierarchy)
		assert.Equal(t, o.Category+GroupSuffix, o.Hierarchy.Parent)
		assert.Equal(t, 1, o.Hierarchy.Level)
		assert.Empty(t, o.Hierarchy.Children)
	}
	require.Len(t, res.Groups, 2)
	assert.Equal(t, []string{"table", "chair"}, res.Groups[0].Members)
	assert.Equal(t, "lighting_group", res.Groups[1].Name)
}

func TestAlignEmpty(t *testing.T) {
	res := Align(nil, DefaultOptions())
	assert.Empty(t, res.Objects)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Groups)
}

func TestAlignSkipsInvalidObjects(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = log.New(&buf)

	objs := []Object{
		{Name: "ok", Size: Vec3{X: 1, Y: 1, Z: 1}},
		{Name: "flat", Size: Vec3{X: 1, Y: 0, Z: 1}},
		{Name: "", Size: Vec3{X: 1, Y: 1, Z: 1}},
		{Name: "ok", Size: Vec3{X: 2, Y: 2, Z: 2}},
		{Name: "nan", Size: Vec3{X: math.NaN(), Y: 1, Z: 1}},
	}
	res := Align(objs, opts)

	require.Len(t, res.Objects, 1)
	assert.Equal(t, "ok", res.Objects[0].Name)
	assert.Equal(t, 4, res.Stats.Skipped)
	for _, w := range res.Warnings {
		assert.Equal(t, WarningSkipped, w.Kind)
	}
	assert.Contains(t, buf.String(), "skipping object")
}

func TestAlignDefaultsCategory(t *testing.T) {
	res := Align([]Object{{Name: "thing", Size: Vec3{X: 1, Y: 1, Z: 1}}}, DefaultOptions())
	require.Len(t, res.Objects, 1)
	assert.Equal(t, DefaultCategory, res.Objects[0].Category)
	assert.Equal(t, "generic_group", res.Objects[0].Hierarchy.Parent)
}

func TestAlignResolvesStackedObjects(t *testing.T) {
	const trials = 100
	clean := 0
	for seed := uint64(1); seed <= trials; seed++ {
		res := Align(stacked(8, 0.4), customOptions(seed))
		require.Len(t, res.Objects, 8)

		if _, hit := anyPairWithin(res.Objects, DefaultCollisionMargin); !hit {
			clean++
		}
		if len(res.Unresolved()) == 0 {
			assert.Empty(t, CheckCollisions(res.Objects, 0), "seed %d: audit disagrees with resolver", seed)
			pair, hit := anyPairWithin(res.Objects, DefaultCollisionMargin)
			assert.False(t, hit, "seed %d: %s within margin", seed, pair)
		}
		for _, o := range res.Objects {
			assert.InDelta(t, 0.0, o.Position.Y, eps, "jitter keeps Y fixed")
		}
	}
	assert.GreaterOrEqual(t, clean, trials*99/100)
}

func TestAlignFirstObjectNeverMoves(t *testing.T) {
	res := Align(stacked(5, 1), customOptions(3))
	assert.Equal(t, Vec3{}, res.Objects[0].Position, "later objects are deflected, never earlier ones")
}

func TestAlignReproducibleWithSeed(t *testing.T) {
	a := Align(stacked(6, 0.5), customOptions(11))
	b := Align(stacked(6, 0.5), customOptions(11))
	c := Align(stacked(6, 0.5), customOptions(12))

	assert.Equal(t, positions(a), positions(b))
	assert.NotEqual(t, positions(a), positions(c))
}

func TestAlignInjectedRand(t *testing.T) {
	opts := customOptions(0)
	opts.Rand = NewRand(99)
	a := Align(stacked(4, 0.5), opts)

	opts.Rand = NewRand(99)
	b := Align(stacked(4, 0.5), opts)
	assert.Equal(t, positions(a), positions(b))
}

func TestAlignRecomputesFromScratch(t *testing.T) {
	objs := stacked(4, 0.5)
	first := Align(objs, customOptions(8))

	for i := range objs {
		assert.Equal(t, Vec3{}, *objs[i].Preset, "input presets are never written back")
	}
	second := Align(objs, customOptions(8))
	assert.Equal(t, positions(first), positions(second))
}

func TestAlignUnresolvedIsBestEffort(t *testing.T) {
	opts := customOptions(5)
	opts.MaxAttempts = 1
	opts.JitterRange = 1e-6

	res := Align(stacked(3, 1), opts)
	require.Len(t, res.Objects, 3, "unresolved objects are still placed")
	assert.Len(t, res.Unresolved(), 2)
	assert.Equal(t, 2, res.Stats.Unresolved)

	opts.Audit = true
	res = Align(stacked(3, 1), opts)
	assert.NotEmpty(t, res.Collisions)
	for _, r := range res.Collisions {
		assert.Equal(t, SeverityOverlap, r.Severity)
	}
}

func TestAlignRadialIsClear(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = Radial{Radius: 3}
	opts.Audit = true
	res := Align(furniture(), opts)

	assert.Empty(t, res.Unresolved())
	assert.Empty(t, res.Collisions)
}

func positions(r Result) []Vec3 {
	out := make([]Vec3, len(r.Objects))
	for i, o := range r.Objects {
		out[i] = o.Position
	}
	return out
}

func TestAlignSeedZeroIsASeed(t *testing.T) {
	a := Align(stacked(6, 0.5), customOptions(0))
	b := Align(stacked(6, 0.5), customOptions(0))
	c := Align(stacked(6, 0.5), customOptions(DefaultSeed))

	assert.Equal(t, positions(a), positions(b))
	assert.NotEqual(t, positions(a), positions(c), "seed 0 is not replaced by the default")
}

func TestAlignZeroOverlapThreshold(t *testing.T) {
	opts := customOptions(5)
	opts.MaxAttempts = 1
	opts.JitterRange = 1e-6
	opts.Audit = true
	opts.MaxOverlapVolume = 0

	objs := []Object{
		{Name: "a", Size: Vec3{X: 1, Y: 1, Z: 1}, Preset: &Vec3{}},
		{Name: "b", Size: Vec3{X: 1, Y: 1, Z: 1}, Preset: &Vec3{X: 0.95, Y: 0.95, Z: 0.95}},
	}
	res := Align(objs, opts)
	require.Len(t, res.Collisions, 1, "0.000125 m³ is reported at threshold 0")

	opts.MaxOverlapVolume = -1
	assert.Empty(t, Align(objs, opts).Collisions, "negative threshold selects the default")
}

func TestAlignFarAwayPresets(t *testing.T) {
	far := Vec3{X: 2*math.MaxInt32 + 1}
	objs := []Object{
		{Name: "a", Size: Vec3{X: 1, Y: 1, Z: 1}, Preset: &far},
		{Name: "b", Size: Vec3{X: 1, Y: 1, Z: 1}, Preset: &far},
		{Name: "c", Size: Vec3{X: 1, Y: 1, Z: 1}, Preset: &Vec3{X: -1e15}},
	}

	done := make(chan Result, 1)
	go func() { done <- Align(objs, customOptions(1)) }()
	select {
	case res := <-done:
		require.Len(t, res.Objects, 3)
		assert.Equal(t, far, res.Objects[0].Position)
	case <-time.After(5 * time.Second):
		t.Fatal("Align did not return for far-away presets")
	}
}

func TestAlignTinyCells(t *testing.T) {
	opts := customOptions(1)
	opts.CellSize = 0.005
	res := Align(stacked(2, 1), opts)

	require.Len(t, res.Objects, 2)
	assert.LessOrEqual(t, res.Stats.Cells, MaxCellsPerBox)
	if len(res.Unresolved()) == 0 {
		pair, hit := anyPairWithin(res.Objects, 0)
		assert.False(t, hit, "%s overlap", pair)
	}
}
