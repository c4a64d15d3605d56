package spatial

import (
	"math/rand/v2"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/meshpivot/internal/mesh/geom"
)

func randomCloud(n int, seed uint64) []geom.Point3 {
	r := rand.New(rand.NewPCG(seed, seed+1))
	pts := make([]geom.Point3, n)
	for i := range pts {
		pts[i] = geom.Point3{X: r.Float64() * 10, Y: r.Float64() * 10, Z: r.Float64() * 10}
	}
	return pts
}

func bruteForce(pts []geom.Point3, q geom.Point3) []Neighbor {
	out := make([]Neighbor, len(pts))
	for i, p := range pts {
		out[i] = Neighbor{ID: i, Dist2: p.Sub(q).Norm2()}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Dist2 != out[j].Dist2 {
			return out[i].Dist2 < out[j].Dist2
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func TestBuild_Empty(t *testing.T) {
	ix := Build(nil)
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.KNearest(geom.Point3{}, 5))
	assert.Empty(t, ix.Radius(geom.Point3{}, 10))
}

func TestKNearest_MatchesBruteForce(t *testing.T) {
	pts := randomCloud(500, 42)
	ix := Build(pts)
	require.Equal(t, 500, ix.Len())

	queries := randomCloud(20, 7)
	for _, q := range queries {
		got := ix.KNearest(q, 12)
		want := bruteForce(pts, q)[:12]
		require.Len(t, got, 12)
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.InDelta(t, want[i].Dist2, got[i].Dist2, 1e-12)
		}
	}
}

func TestKNearest_ClampsToSize(t *testing.T) {
	pts := []geom.Point3{{X: 0}, {X: 1}, {X: 3}}
	ix := Build(pts)

	got := ix.KNearest(geom.Point3{X: 0.9}, 10)
	require.Len(t, got, 3)
	assert.Equal(t, []int{1, 0, 2}, []int{got[0].ID, got[1].ID, got[2].ID})
	assert.Empty(t, ix.KNearest(geom.Point3{}, 0))
}

func TestKNearest_AscendingDistance(t *testing.T) {
	ix := Build(randomCloud(300, 3))
	got := ix.KNearest(geom.Point3{X: 5, Y: 5, Z: 5}, 50)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Dist2, got[i].Dist2)
	}
}

func TestRadius_MatchesBruteForce(t *testing.T) {
	pts := randomCloud(400, 11)
	ix := Build(pts)
	q := geom.Point3{X: 4, Y: 6, Z: 5}

	got := ix.Radius(q, 2)
	var want []Neighbor
	for _, nb := range bruteForce(pts, q) {
		if nb.Dist2 <= 4 {
			want = append(want, nb)
		}
	}
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
	}
	assert.Empty(t, ix.Radius(q, -1))
}

func TestIndex_ConcurrentReaders(t *testing.T) {
	pts := randomCloud(1000, 5)
	ix := Build(pts)
	want := ix.KNearest(geom.Point3{X: 1, Y: 2, Z: 3}, 8)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				got := ix.KNearest(geom.Point3{X: 1, Y: 2, Z: 3}, 8)
				assert.Equal(t, want, got)
			}
		}()
	}
	wg.Wait()
}
