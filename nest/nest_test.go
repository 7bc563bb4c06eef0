package nest_test

import (
	"math"
	"testing"

	"github.com/soypat/digistone"
	"github.com/soypat/digistone/mesh"
	"github.com/soypat/digistone/nest"
	"github.com/soypat/digistone/poly"
	"github.com/soypat/digistone/section"
	"github.com/soypat/digistone/stone"
	"github.com/soypat/digistone/stonegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func circle(radius float64, n int) section.Boundary {
	b := make(section.Boundary, n)
	for i := range b {
		theta := 2 * math.Pi * float64(i) / float64(n)
		b[i] = r2.Vec{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	return b
}

func ring(outer, inner float64, thickness float64) section.Layer {
	// inner is the boundary the hole is inset from by 1.
	return section.NewJoint(circle(outer, 72), circle(inner+1, 72), thickness, 0, 1, digistone.OffsetCircumcircle)
}

func TestNestTwoLayers(t *testing.T) {
	// Bounding areas 100 and 25.
	big := ring(5, 4, 10)
	small := section.NewCap(circle(2.5, 72), 10, 10)
	s, err := stone.FromLayers(stone.Options{Name: "pair"}, big, small)
	require.NoError(t, err)

	res, err := nest.New(nest.Settings{Production: 1}).Nest([]*stone.Stone{s})
	require.NoError(t, err)
	require.Len(t, res.Bins, 1)
	assert.Empty(t, res.UnableToFit)
	assert.Len(t, res.Bins[0].Items, 2)
	assert.Equal(t, 0, res.Bins[0].Items[0].Ref.Layer)
	assert.Equal(t, 1, res.Bins[0].Items[1].Ref.Layer)
	assert.Equal(t, 1, res.TotalSheets())
	assert.Equal(t, 2, res.Requested)
	assert.Greater(t, res.VolumeEfficiency(), 0.0)
	assert.Equal(t, 2.0, res.CompactizationFactor())
	assert.InDelta(t, res.Bins[0].Items[1].Area()*10, res.UsefulVolume, 1e-9)
	require.Len(t, res.Stock, 1)
	assert.InDelta(t, 100, res.Stock[0].MaxArea, 1e-9)
	assert.InDelta(t, 100*10, res.StockVolume(), 1e-9)
}

func TestNestNothingFits(t *testing.T) {
	// Caps have no hole and equal sizes cannot nest.
	a := section.NewCap(circle(5, 36), 10, 0)
	b := section.NewCap(circle(5, 36), 10, 10)
	c := section.NewCap(circle(5, 36), 10, 20)
	s, err := stone.FromLayers(stone.Options{}, a, b, c)
	require.NoError(t, err)

	res, err := nest.New(nest.Settings{Production: 2}).Nest([]*stone.Stone{s})
	require.NoError(t, err)
	assert.Empty(t, res.Bins)
	assert.Len(t, res.UnableToFit, 6)
	assert.Equal(t, 6, res.Requested)
	assert.Equal(t, 6, res.TotalSheets())
	assert.Equal(t, 1.0, res.CompactizationFactor())
	assert.Zero(t, res.VolumeEfficiency())
	for i, p := range res.UnableToFit {
		assert.Equal(t, float64(i)*10, p.Elevation)
	}
}

func TestNestChain(t *testing.T) {
	layers := []section.Layer{
		ring(40, 35, 5),
		ring(30, 25, 5),
		ring(20, 15, 5),
		section.NewCap(circle(10, 72), 5, 0),
	}
	s, err := stone.FromLayers(stone.Options{}, layers...)
	require.NoError(t, err)
	res, err := nest.New(nest.Settings{Production: 1, ToolDiameter: 1}).Nest([]*stone.Stone{s})
	require.NoError(t, err)
	require.Len(t, res.Bins, 1)
	assert.Len(t, res.Bins[0].Items, 4)
	assert.Empty(t, res.UnableToFit)
	assert.Equal(t, 4.0, res.CompactizationFactor())
}

func TestNestGroupsByThickness(t *testing.T) {
	thick := ring(20, 15, 10)
	thin := section.NewCap(circle(5, 72), 5, 0)
	s, err := stone.FromLayers(stone.Options{}, thick, thin)
	require.NoError(t, err)
	res, err := nest.New(nest.Settings{Production: 1}).Nest([]*stone.Stone{s})
	require.NoError(t, err)
	assert.Empty(t, res.Bins)
	assert.Len(t, res.UnableToFit, 2)
	require.Len(t, res.Stock, 2)
	assert.Equal(t, 5.0, res.Stock[0].Thickness)
	assert.Equal(t, 10.0, res.Stock[1].Thickness)
}

func TestNestPartition(t *testing.T) {
	b, err := mesh.NewBIH(stonegen.Frustum(60, 30, 12, 180), 0, nil)
	require.NoError(t, err)
	cfg := digistone.DefaultConfig()
	cfg.SheetThickness = 5
	cfg.Overlap = 2
	cfg.AngleStep = 2
	s1, err := stone.New(b, cfg, stone.Options{Name: "a", ID: 0})
	require.NoError(t, err)
	s2, err := stone.New(b, cfg, stone.Options{Name: "b", ID: 1})
	require.NoError(t, err)

	res, err := nest.New(nest.Settings{Production: 3, ToolDiameter: 0.5}).Nest([]*stone.Stone{s1, s2})
	require.NoError(t, err)
	want := 3 * (s1.Len() + s2.Len())
	assert.Equal(t, want, res.Requested)
	seen := 0
	for _, bin := range res.Bins {
		assert.GreaterOrEqual(t, len(bin.Items), 2)
		seen += len(bin.Items)
		for i := 1; i < len(bin.Items); i++ {
			prev := poly.Bounds(bin.Items[i-1].Outer).Area()
			assert.LessOrEqual(t, poly.Bounds(bin.Items[i].Outer).Area(), prev+1e-9)
		}
	}
	seen += len(res.UnableToFit)
	assert.Equal(t, want, seen)
	assert.Equal(t, len(res.Bins)+len(res.UnableToFit), res.TotalSheets())
	assert.GreaterOrEqual(t, res.CompactizationFactor(), 1.0)
	assert.LessOrEqual(t, res.VolumeEfficiency(), 1.0)
}

func TestNestInvalidSettings(t *testing.T) {
	s, err := stone.FromLayers(stone.Options{}, section.NewCap(circle(5, 36), 10, 0))
	require.NoError(t, err)
	_, err = nest.New(nest.Settings{Production: 0}).Nest([]*stone.Stone{s})
	assert.Error(t, err)
	_, err = nest.New(nest.Settings{Production: 1, ToolDiameter: -1}).Nest([]*stone.Stone{s})
	assert.Error(t, err)
	_, err = nest.New(nest.Settings{Production: 1}).Nest(nil)
	assert.Error(t, err)
}

func TestShiftFit(t *testing.T) {
	hole := circle(10, 72)
	shift, ok := nest.ShiftFit(hole, hole, 0)
	assert.True(t, ok, "identical concentric candidate must fit")
	assert.Equal(t, r2.Vec{}, shift)

	_, ok = nest.ShiftFit(circle(10.5, 72), hole, 0)
	assert.False(t, ok, "larger candidate must not fit")

	// A sliver poking out of the hole is pulled back inside.
	sliver := []r2.Vec{{X: 7, Y: -0.5}, {X: 11, Y: 0}, {X: 7, Y: 0.5}}
	shift, ok = nest.ShiftFit(sliver, hole, 0)
	require.True(t, ok)
	assert.InDelta(t, -1, shift.X, 1e-9)
	assert.InDelta(t, 0, shift.Y, 1e-9)
	for _, v := range sliver {
		assert.LessOrEqual(t, r2.Norm(r2.Add(v, shift)), 10+1e-6)
	}

	// Clearance leaves no room for the identical candidate.
	_, ok = nest.ShiftFit(hole, hole, 0.5)
	assert.False(t, ok)
}
