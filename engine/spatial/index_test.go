package spatial

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/runner-engine/engine/core"
)

func spawnAt(w *core.World, idx *Index, x, y float64) *Chunked {
	e := w.Spawn(core.SpawnParams{Position: mgl64.Vec2{x, y}, Shifts: true})
	return Attach(idx, e)
}

func countOf(list []*Chunked, c *Chunked) int {
	n := 0
	for _, have := range list {
		if have == c {
			n++
		}
	}
	return n
}

func TestIndex_moveScenario(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	c := spawnAt(w, idx, 4, 4)

	left := core.NewRect(0, 0, 10, 10)
	right := core.NewRect(10, 0, 10, 10)
	assert.Equal(t, 1, countOf(idx.QueryRect(left), c))
	assert.Equal(t, 0, countOf(idx.QueryRect(right), c))

	c.Entity().SetPosition(mgl64.Vec2{15, 4})
	assert.Equal(t, 0, countOf(idx.QueryRect(left), c))
	assert.Equal(t, 1, countOf(idx.QueryRect(right), c))
	assert.Equal(t, CellKey{1, 0}, c.Key())
	assert.Equal(t, 1, idx.BucketCount())
}

func TestIndex_boundaryTieBreak(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	for _, tc := range []struct {
		x, y float64
		key  CellKey
	}{
		{10, 0, CellKey{1, 0}},
		{9.9999, 0, CellKey{0, 0}},
		{0, 10, CellKey{0, 1}},
		{-0.5, -10, CellKey{-1, -1}},
		{-10, 0, CellKey{-1, 0}},
		{-10.0001, 0, CellKey{-2, 0}},
	} {
		c := spawnAt(w, idx, tc.x, tc.y)
		assert.Equal(t, tc.key, c.Key(), "position (%v, %v)", tc.x, tc.y)
	}
}

func TestIndex_emptyBucketCleanup(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	a := spawnAt(w, idx, 1, 1)
	b := spawnAt(w, idx, 2, 2)
	c := spawnAt(w, idx, 25, 1)
	assert.Equal(t, 2, idx.BucketCount())
	assert.Equal(t, 3, idx.Len())

	w.Destroy(a.Entity())
	assert.Equal(t, 2, idx.BucketCount())
	w.Destroy(b.Entity())
	assert.Equal(t, 1, idx.BucketCount(), "cell (0,0) must be dropped once empty")

	c.Entity().SetPosition(mgl64.Vec2{-5, -5})
	assert.Equal(t, 1, idx.BucketCount())
	var keys []CellKey
	idx.Cells(func(k CellKey, n int) {
		keys = append(keys, k)
		assert.Equal(t, 1, n)
	})
	assert.Equal(t, []CellKey{{-1, -1}}, keys)

	require.True(t, c.Entity().Detach(c))
	assert.Zero(t, idx.BucketCount())
	assert.Zero(t, idx.Len())
	assert.False(t, c.Filed())
}

func TestIndex_swapRemoveKeepsPositions(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	var all []*Chunked
	for i := 0; i < 5; i++ {
		all = append(all, spawnAt(w, idx, float64(i), 0))
	}
	w.Destroy(all[1].Entity())
	w.Destroy(all[0].Entity())
	got := idx.QueryRect(core.NewRect(0, 0, 10, 10))
	assert.ElementsMatch(t, all[2:], got)
	for _, c := range all[2:] {
		c.Entity().SetPosition(mgl64.Vec2{50, 50})
	}
	assert.Equal(t, 1, idx.BucketCount())
	assert.Len(t, idx.QueryRect(core.NewRect(45, 45, 10, 10)), 3)
}

func TestIndex_bucketConsistencyUnderRandomMoves(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(8)
	rng := rand.New(rand.NewSource(7))
	var comps []*Chunked
	for i := 0; i < 64; i++ {
		comps = append(comps, spawnAt(w, idx, rng.Float64()*200-100, rng.Float64()*200-100))
	}
	for step := 0; step < 2000; step++ {
		c := comps[rng.Intn(len(comps))]
		p := mgl64.Vec2{rng.Float64()*200 - 100, rng.Float64()*200 - 100}
		c.Entity().SetPosition(p)

		around := core.RectAround(p, 0.5)
		require.Equal(t, 1, countOf(idx.QueryRect(around), c), "step %d", step)

		away := core.RectAround(p.Add(mgl64.Vec2{300, 0}), 50)
		require.Equal(t, 0, countOf(idx.QueryRect(away), c), "step %d", step)
	}
	assert.Len(t, idx.GetAll(), len(comps))

	// Every component must be found by a query covering everything.
	everything := idx.QueryRect(core.NewRect(-101, -101, 202, 202))
	assert.ElementsMatch(t, comps, everything)
}

func TestIndex_narrowPhase(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	in := spawnAt(w, idx, 3, 3)
	out := spawnAt(w, idx, 8, 8)
	got := idx.QueryRect(core.NewRect(0, 0, 5, 5))
	assert.Equal(t, []*Chunked{in}, got)
	assert.Equal(t, 0, countOf(got, out))
}

func TestIndex_emptyQueries(t *testing.T) {
	idx := New(10)
	assert.Empty(t, idx.QueryRect(core.NewRect(0, 0, 100, 100)))
	assert.Empty(t, idx.GetAll())

	w := core.NewWorld(20)
	spawnAt(w, idx, 1, 1)
	assert.Empty(t, idx.QueryRect(core.NewRect(0, 0, 0, 0)))
	assert.Len(t, idx.QueryRect(core.NewRect(-1e9, -1e9, 2e9, 2e9)), 1)
}

func TestIndex_unboundedQueries(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	spawnAt(w, idx, 1, 1)
	spawnAt(w, idx, -250, 40)
	spawnAt(w, idx, 3e5, -7)

	inf := math.Inf(1)
	for name, r := range map[string]core.Rect{
		"infinite": {Min: mgl64.Vec2{-inf, -inf}, Max: mgl64.Vec2{inf, inf}},
		"1e30":     {Min: mgl64.Vec2{-1e30, -1e30}, Max: mgl64.Vec2{1e30, 1e30}},
		"max":      {Min: mgl64.Vec2{-math.MaxFloat64, -math.MaxFloat64}, Max: mgl64.Vec2{math.MaxFloat64, math.MaxFloat64}},
	} {
		assert.Len(t, idx.QueryRect(r), 3, name)
	}

	halfOpen := core.Rect{Min: mgl64.Vec2{0, -inf}, Max: mgl64.Vec2{inf, inf}}
	assert.Len(t, idx.QueryRect(halfOpen), 2)
	far := core.Rect{Min: mgl64.Vec2{1e30, 0}, Max: mgl64.Vec2{1e30 + 1e20, 10}}
	assert.Empty(t, idx.QueryRect(far))
	nan := core.Rect{Min: mgl64.Vec2{math.NaN(), 0}, Max: mgl64.Vec2{10, 10}}
	assert.Empty(t, idx.QueryRect(nan))
}

func TestIndex_queryStopsEarly(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	for i := 0; i < 10; i++ {
		spawnAt(w, idx, float64(i), float64(i))
	}
	n := 0
	idx.Query(core.NewRect(0, 0, 10, 10), func(*Chunked) bool {
		n++
		return n < 3
	})
	assert.Equal(t, 3, n)
}

func TestIndex_rejectsNonFinite(t *testing.T) {
	w := core.NewWorld(20)
	idx := New(10)
	e := w.Spawn(core.SpawnParams{})
	c := NewChunked(idx)
	e.Attach(c)
	assert.Panics(t, func() { e.SetPosition(mgl64.Vec2{math.NaN(), 0}) })
	assert.Equal(t, CellKey{0, 0}, c.Key(), "bucket key must not be corrupted")
	assert.Panics(t, func() { New(0) })
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	render := r.Add("render", 16)
	audioNear := r.Add("audio", 4)
	audioFar := r.Add("audio", 64)

	assert.Equal(t, 0, render.Slot())
	assert.Equal(t, 1, audioFar.Slot())
	assert.Equal(t, Kind("audio"), audioNear.Kind())

	got, ok := r.Get("audio", 1)
	require.True(t, ok)
	assert.Same(t, audioFar, got)
	_, ok = r.Get("audio", 2)
	assert.False(t, ok)
	assert.Equal(t, []Kind{"audio", "render"}, r.Kinds())
	assert.Len(t, r.Indexes("audio"), 2)

	w := core.NewWorld(20)
	e := w.Spawn(core.SpawnParams{Position: mgl64.Vec2{5, 5}})
	near := Attach(audioNear, e)
	far := Attach(audioFar, e)
	assert.Equal(t, 0, near.Slot())
	assert.Equal(t, 1, far.Slot())
	assert.Equal(t, Kind("audio"), far.Kind())
	assert.Len(t, audioNear.QueryRect(core.NewRect(0, 0, 10, 10)), 1)
	assert.Len(t, audioFar.QueryRect(core.NewRect(0, 0, 10, 10)), 1)
	assert.Zero(t, render.Len())
}
