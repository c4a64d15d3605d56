package pivot

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/meshpivot/internal/config"
	"github.com/banshee-data/meshpivot/internal/mesh"
	"github.com/banshee-data/meshpivot/internal/mesh/geom"
	"github.com/banshee-data/meshpivot/internal/mesh/wire"
	"github.com/banshee-data/meshpivot/internal/resultcache"
	"github.com/banshee-data/meshpivot/internal/testutil"
)

// assertQuarterTurn checks that got undoes a rotation of theta up to a
// multiple of 90 degrees.
func assertQuarterTurn(t *testing.T, theta, got float64) {
	t.Helper()
	k := (got + theta) / (math.Pi / 2)
	assert.InDelta(t, math.Round(k), k, 1e-6, "angle %.6f does not undo %.6f", got, theta)
}

func TestStandardize_UnitSquare(t *testing.T) {
	r, err := Standardize(testutil.Square(), DefaultParams(), Options{})
	require.NoError(t, err)

	assert.Len(t, r.Hull, 4)
	assert.InDelta(t, 1, r.Hull.Area(), 1e-12)
	assert.InDelta(t, 1, r.Rect.Area, 1e-12)
	assert.InDelta(t, 0, r.Rotation.Z, 1e-12)
	assert.Equal(t, geom.Point3{}, r.Translation)
	assert.Equal(t, 0, r.WireCount)
	assert.Len(t, r.Mask, 4)
}

func TestStandardize_RotatedSquare(t *testing.T) {
	theta := math.Pi / 6
	r, err := Standardize(testutil.RotateZ(testutil.Square(), theta), DefaultParams(), Options{})
	require.NoError(t, err)

	assert.InDelta(t, 1, r.Rect.Area, 1e-9)
	assertQuarterTurn(t, theta, r.Angle())
	assert.Zero(t, r.Rotation.X)
	assert.Zero(t, r.Rotation.Y)
}

func TestStandardize_Degenerate(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		r, err := Standardize(mesh.View{}, DefaultParams(), Options{})
		require.NoError(t, err)
		assert.Equal(t, geom.Point3{}, r.Rotation)
		assert.Equal(t, geom.Point3{}, r.Translation)
		assert.False(t, r.Rect.Valid())
	})

	t.Run("single vertex", func(t *testing.T) {
		v := testutil.PointsView([]geom.Point3{{X: 2, Y: 3, Z: 5}})
		r, err := Standardize(v, DefaultParams(), Options{})
		require.NoError(t, err)
		assert.Equal(t, geom.Point3{}, r.Rotation)
		assert.Equal(t, geom.Point3{X: 2, Y: 3, Z: 5}, r.Translation)
	})

	t.Run("non-finite", func(t *testing.T) {
		v := testutil.Square()
		v.Vertices = append([]geom.Point3(nil), v.Vertices...)
		v.Vertices[2].X = math.NaN()
		r, err := Standardize(v, DefaultParams(), Options{})
		require.NoError(t, err)
		assert.Equal(t, geom.Point3{}, r.Rotation)
		assert.Equal(t, geom.Point3{}, r.Translation)
		assert.Nil(t, r.Mask)
	})

	t.Run("collinear", func(t *testing.T) {
		v := testutil.PointsView([]geom.Point3{{X: 0}, {X: 1}, {X: 2}})
		r, err := Standardize(v, DefaultParams(), Options{})
		require.NoError(t, err)
		assert.Empty(t, r.Hull)
		assert.False(t, r.Rect.Valid())
		assert.Equal(t, geom.Point3{}, r.Rotation)
	})
}

func TestStandardize_ContractViolation(t *testing.T) {
	v := testutil.Square()
	v.Edges = append(append([]mesh.Edge(nil), v.Edges...), mesh.Edge{0, 9})

	_, err := Standardize(v, DefaultParams(), Options{})
	var ce *mesh.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "edges", ce.Op)
	assert.Equal(t, 9, ce.Value)
	assert.Equal(t, 4, ce.Limit)
}

// slantedWire is a 10x10 plate rotated by theta with a 30-vertex wire rising
// from its centre and running well past its edge in XY.
func slantedWire(theta float64) (mesh.View, int) {
	plate := testutil.Grid(10, 10, 0.1)
	c := plate.Vertices[55]
	v, first := testutil.Polyline(plate,
		geom.Point3{X: c.X + 0.1, Y: c.Y, Z: 0.1}, geom.Point3{X: 0.1, Z: 0.1}, 30, 55)
	return testutil.RotateZ(v, theta), first
}

func TestStandardize_IgnoresWire(t *testing.T) {
	theta := 20 * math.Pi / 180
	v, first := slantedWire(theta)

	p := DefaultParams()
	p.Wire.K = 16
	r, err := Standardize(v, p, Options{})
	require.NoError(t, err)

	for i := 0; i < first; i++ {
		assert.False(t, r.Mask[i], "plate vertex %d flagged as wire", i)
	}
	assert.GreaterOrEqual(t, r.WireCount, 25)
	assert.InDelta(t, 0.81, r.Rect.Area, 1e-9)
	assertQuarterTurn(t, theta, r.Angle())

	// The flat plate is its own base.
	assert.InDelta(t, 1, r.FullToBaseRatio, 1e-9)

	p.Strategy = StrategyNone
	bare, err := Standardize(v, p, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, bare.WireCount)
	assert.Greater(t, bare.Rect.Area, 0.81+1e-3)
}

func TestStandardize_VoxelStrategy(t *testing.T) {
	p := DefaultParams()
	p.Strategy = StrategyVoxel

	theta := math.Pi / 6
	r, err := Standardize(testutil.RotateZ(testutil.Square(), theta), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, r.WireCount)
	assert.InDelta(t, 1, r.Rect.Area, 1e-9)
	assertQuarterTurn(t, theta, r.Angle())
}

func TestStandardize_CenterTranslation(t *testing.T) {
	p := DefaultParams()
	p.Translation = TranslationCenter

	v := testutil.Translate(testutil.UnitCube(), geom.Point3{X: 3, Y: -1, Z: 2})
	r, err := Standardize(v, p, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, r.Translation.X, 1e-9)
	assert.InDelta(t, -0.5, r.Translation.Y, 1e-9)
	assert.InDelta(t, 2, r.Translation.Z, 1e-12)
}

func TestStandardize_BaseFootprint(t *testing.T) {
	// A 0.9 m tabletop on a 0.2 m square pedestal.
	var pts []geom.Point3
	for _, c := range [][2]float64{{0, 0}, {0.9, 0}, {0.9, 0.9}, {0, 0.9}} {
		pts = append(pts, geom.Point3{X: c[0], Y: c[1], Z: 1})
	}
	for _, c := range [][2]float64{{0.35, 0.35}, {0.55, 0.35}, {0.55, 0.55}, {0.35, 0.55}} {
		pts = append(pts, geom.Point3{X: c[0], Y: c[1], Z: 0})
	}

	p := DefaultParams()
	p.Strategy = StrategyNone
	r, err := Standardize(testutil.PointsView(pts), p, Options{})
	require.NoError(t, err)

	require.True(t, r.BaseRect.Valid())
	assert.InDelta(t, 0.04, r.BaseRect.Area, 1e-9)
	assert.InDelta(t, 0.81/0.04, r.FullToBaseRatio, 1e-6)
}

func TestStandardize_Cache(t *testing.T) {
	cache := resultcache.NewMemory()
	opts := Options{Cache: cache}
	v := testutil.RotateZ(testutil.Square(), 0.3)

	first, err := Standardize(v, DefaultParams(), opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.Len())

	second, err := Standardize(v, DefaultParams(), opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Rotation, second.Rotation)
	assert.Equal(t, first.Rect, second.Rect)
	assert.Equal(t, first.BaseRect, second.BaseRect)
	assert.Equal(t, first.Hull, second.Hull)

	hits, misses := cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	// A different knob must miss.
	p := DefaultParams()
	p.Translation = TranslationCenter
	third, err := Standardize(v, p, opts)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, cache.Len())
}

func TestStandardize_SQLiteCache(t *testing.T) {
	cache, err := resultcache.OpenSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer cache.Close()

	p := DefaultParams()
	p.Translation = TranslationCenter
	v := testutil.RotateZ(testutil.UnitCube(), -0.7)

	fresh, err := Standardize(v, p, Options{Cache: cache})
	require.NoError(t, err)
	cached, err := Standardize(v, p, Options{Cache: cache})
	require.NoError(t, err)
	require.True(t, cached.Cached)

	opts := cmp.Options{
		cmpopts.EquateApprox(0, 1e-12),
		cmpopts.IgnoreFields(Result{}, "Mask", "Cached"),
	}
	if diff := cmp.Diff(fresh, cached, opts); diff != "" {
		t.Errorf("cached result mismatch (-fresh +cached):\n%s", diff)
	}
}

func TestStandardize_InvalidResultNotCached(t *testing.T) {
	cache := resultcache.NewMemory()
	v := testutil.PointsView([]geom.Point3{{X: 0}, {X: 1}, {X: 2}})
	_, err := Standardize(v, DefaultParams(), Options{Cache: cache})
	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestResult_Quaternion(t *testing.T) {
	r := Result{Rotation: geom.Point3{Z: math.Pi / 2}}
	q := r.Quaternion()
	assert.InDelta(t, math.Sqrt2/2, q.Real, 1e-12)
	assert.InDelta(t, math.Sqrt2/2, q.Kmag, 1e-12)
	assert.Zero(t, q.Imag)
	assert.Zero(t, q.Jmag)
	assert.InDelta(t, 1, quat.Abs(q), 1e-12)

	assert.Equal(t, quat.Number{Real: 1}, Result{}.Quaternion())
}

func TestVolume_UnitCube(t *testing.T) {
	p := DefaultParams()
	p.SliceThickness = 0.5
	res, err := Volume(testutil.UnitCube(), p)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.COG.X, 1e-9)
	assert.InDelta(t, 0.5, res.COG.Y, 1e-9)
	assert.InDelta(t, 0.5, res.COG.Z, 1e-9)
}

func TestVolume_NonFiniteIsZero(t *testing.T) {
	v := testutil.UnitCube()
	v.Vertices[2].Z = math.NaN()

	res, err := Volume(v, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, geom.Point3{}, res.COG)
	assert.Zero(t, res.TotalArea)
	assert.Empty(t, res.Slices)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyPCA, false},
		{"pca", StrategyPCA, false},
		{"Voxel", StrategyVoxel, false},
		{"none", StrategyNone, false},
		{"ransac", StrategyPCA, true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStrategy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTranslationMode(t *testing.T) {
	tests := []struct {
		in      string
		want    TranslationMode
		wantErr bool
	}{
		{"", TranslationOrigin, false},
		{"origin", TranslationOrigin, false},
		{"CENTER", TranslationCenter, false},
		{"centre", TranslationCenter, false},
		{"middle", TranslationOrigin, true},
	}
	for _, tt := range tests {
		got, err := ParseTranslationMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTranslationMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseTranslationMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParamsFromTuning(t *testing.T) {
	t.Run("defaults match", func(t *testing.T) {
		got := ParamsFromTuning(config.MustLoadDefaultConfig())
		assert.Equal(t, DefaultParams(), got)
	})

	t.Run("example overrides", func(t *testing.T) {
		cfg, err := config.LoadTuningConfig("../../../config/tuning.example.json")
		require.NoError(t, err)
		got := ParamsFromTuning(cfg)
		assert.Equal(t, 40, got.Wire.K)
		assert.Equal(t, wire.Geodesic, got.Wire.Mode)
		assert.Equal(t, 0.92, got.Wire.Strict)
		assert.Equal(t, 16, got.Wire.MinGroup)
		assert.Equal(t, TranslationCenter, got.Translation)
		assert.Equal(t, 0.02, got.SliceThickness)
		assert.Equal(t, 4, got.Workers)
	})
}

func TestParams_Fingerprint(t *testing.T) {
	a := DefaultParams()
	b := DefaultParams()
	b.Workers = 8
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Wire.K = 50
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func packBatch(views ...mesh.View) BatchInput {
	var in BatchInput
	for _, v := range views {
		for _, p := range v.Vertices {
			in.Vertices = append(in.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		}
		for _, e := range v.Edges {
			in.Edges = append(in.Edges, e[0], e[1])
		}
		in.VertCounts = append(in.VertCounts, uint32(len(v.Vertices)))
		in.EdgeCounts = append(in.EdgeCounts, uint32(len(v.Edges)))
	}
	return in
}

func TestProcessBatch_Order(t *testing.T) {
	theta := math.Pi / 6
	in := packBatch(
		testutil.Square(),
		testutil.RotateZ(testutil.Square(), theta),
		testutil.PointsView([]geom.Point3{{X: 2, Y: 3, Z: 5}}),
		mesh.View{},
	)

	p := DefaultParams()
	p.Workers = 3
	results, err := ProcessBatch(context.Background(), in, p, Options{})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.InDelta(t, 0, results[0].Angle(), 1e-6)
	assertQuarterTurn(t, theta, results[1].Angle())
	assert.InDelta(t, 1, results[1].Rect.Area, 1e-5)
	assert.Equal(t, geom.Point3{X: 2, Y: 3, Z: 5}, results[2].Translation)
	assert.False(t, results[3].Rect.Valid())
}

func TestProcessBatch_PerObjectErrors(t *testing.T) {
	bad := testutil.Square()
	bad.Edges = []mesh.Edge{{0, 7}}
	in := packBatch(testutil.Square(), bad, testutil.Square())

	results, err := ProcessBatch(context.Background(), in, DefaultParams(), Options{})
	require.Error(t, err)
	require.Len(t, results, 3)

	var ce *mesh.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 7, ce.Value)
	assert.Contains(t, err.Error(), "object 1")
	assert.NotContains(t, err.Error(), "object 0")

	assert.InDelta(t, 1, results[0].Rect.Area, 1e-9)
	assert.InDelta(t, 1, results[2].Rect.Area, 1e-9)
	assert.False(t, results[1].Rect.Valid())
}

func TestProcessBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := packBatch(testutil.Square(), testutil.Square())
	results, err := ProcessBatch(ctx, in, DefaultParams(), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, results, 2)
	for _, r := range results {
		assert.False(t, r.Rect.Valid())
	}
}

func TestProcessBatch_MismatchedBuffers(t *testing.T) {
	tests := []struct {
		name string
		in   BatchInput
		op   string
	}{
		{
			name: "count arrays",
			in:   BatchInput{VertCounts: []uint32{1}, EdgeCounts: nil, Vertices: []float32{0, 0, 0}},
			op:   "edge_counts",
		},
		{
			name: "vertex buffer",
			in:   BatchInput{VertCounts: []uint32{2}, EdgeCounts: []uint32{0}, Vertices: []float32{0, 0, 0}},
			op:   "vertices",
		},
		{
			name: "edge buffer",
			in:   BatchInput{VertCounts: []uint32{1}, EdgeCounts: []uint32{1}, Vertices: []float32{0, 0, 0}},
			op:   "edges",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := ProcessBatch(context.Background(), tt.in, DefaultParams(), Options{})
			assert.Nil(t, results)
			var ce *mesh.ContractError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.op, ce.Op)
		})
	}
}

func TestProcessBatch_Empty(t *testing.T) {
	results, err := ProcessBatch(context.Background(), BatchInput{}, DefaultParams(), Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestProcessBatch_SharedCache(t *testing.T) {
	cache := resultcache.NewMemory()
	sq := testutil.RotateZ(testutil.Square(), 0.4)
	in := packBatch(sq, sq, sq, sq)

	p := DefaultParams()
	p.Workers = 1
	results, err := ProcessBatch(context.Background(), in, p, Options{Cache: cache})
	require.NoError(t, err)

	assert.Equal(t, 1, cache.Len())
	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	assert.Equal(t, 3, cached)
}

func TestProcessBatch_FacesAndNormals(t *testing.T) {
	cube := testutil.UnitCube()
	var in BatchInput
	for _, p := range cube.Vertices {
		in.Vertices = append(in.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		in.Normals = append(in.Normals, 0, 0, 1)
	}
	for _, f := range cube.Faces {
		in.Faces = append(in.Faces, f[0], f[1], f[2])
	}
	in.VertCounts = []uint32{8}
	in.EdgeCounts = []uint32{0}
	in.FaceCounts = []uint32{12}

	p := DefaultParams()
	p.Strategy = StrategyVoxel
	results, err := ProcessBatch(context.Background(), in, p, Options{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1, results[0].Rect.Area, 1e-9)

	in.Normals = in.Normals[:3]
	_, err = ProcessBatch(context.Background(), in, p, Options{})
	var ce *mesh.ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "normals", ce.Op)
}
