// Package spatial implements the uniform broad-phase grid used to answer
// "what overlaps this rectangle" every frame.
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/1siamBot/runner-engine/engine/core"
)

// CellKey is an integer grid cell coordinate
type CellKey struct {
	X, Y int
}

// Kind names a family of chunked components. A kind may own more than one
// independent Index.
type Kind string

// Index is a sparse uniform grid from cell key to a bucket of components.
// A bucket exists if and only if it is non-empty.
type Index struct {
	kind     Kind
	slot     int
	cellSize float64
	buckets  map[CellKey][]*Chunked
	count    int
}

// New creates an index with square cells of the given size
func New(cellSize float64) *Index {
	return newIndex("", 0, cellSize)
}

func newIndex(kind Kind, slot int, cellSize float64) *Index {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		panic("spatial: cell size must be positive and finite")
	}
	return &Index{
		kind:     kind,
		slot:     slot,
		cellSize: cellSize,
		buckets:  make(map[CellKey][]*Chunked),
	}
}

// Kind returns the component kind this index serves
func (idx *Index) Kind() Kind { return idx.kind }

// Slot returns the index slot id within its kind
func (idx *Index) Slot() int { return idx.slot }

// CellSize returns the edge length of a cell
func (idx *Index) CellSize() float64 { return idx.cellSize }

// Len returns the number of indexed components
func (idx *Index) Len() int { return idx.count }

// BucketCount returns the number of non-empty cells
func (idx *Index) BucketCount() int { return len(idx.buckets) }

// KeyFor returns the cell containing p (floor per axis). A point on a cell
// boundary belongs to the cell that starts there.
func (idx *Index) KeyFor(p mgl64.Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(p[0] / idx.cellSize)),
		Y: int(math.Floor(p[1] / idx.cellSize)),
	}
}

// CellRect returns the world-space extents of a cell
func (idx *Index) CellRect(k CellKey) core.Rect {
	return core.NewRect(float64(k.X)*idx.cellSize, float64(k.Y)*idx.cellSize, idx.cellSize, idx.cellSize)
}

// Insert files c into the bucket for its entity's position
func (idx *Index) Insert(c *Chunked) {
	if c.filed {
		return
	}
	p := c.entity.Position()
	if !core.Finite(p) {
		panic(&core.InvalidPositionError{Entity: c.entity.Handle(), Position: p, Rotation: c.entity.Rotation()})
	}
	idx.insertAt(c, idx.KeyFor(p))
	idx.count++
}

// Remove takes c out of its bucket, deleting the bucket when it empties
func (idx *Index) Remove(c *Chunked) {
	if !c.filed {
		return
	}
	idx.removeAt(c)
	idx.count--
}

// OnEntityMoved re-files c if its entity crossed into another cell
func (idx *Index) OnEntityMoved(c *Chunked) {
	if !c.filed {
		return
	}
	p := c.entity.Position()
	if !core.Finite(p) {
		panic(&core.InvalidPositionError{Entity: c.entity.Handle(), Position: p, Rotation: c.entity.Rotation()})
	}
	key := idx.KeyFor(p)
	if key == c.key {
		return
	}
	idx.removeAt(c)
	idx.insertAt(c, key)
}

func (idx *Index) insertAt(c *Chunked, key CellKey) {
	bucket := idx.buckets[key]
	c.key = key
	c.pos = len(bucket)
	c.filed = true
	idx.buckets[key] = append(bucket, c)
}

func (idx *Index) removeAt(c *Chunked) {
	bucket := idx.buckets[c.key]
	last := len(bucket) - 1
	if c.pos != last {
		moved := bucket[last]
		bucket[c.pos] = moved
		moved.pos = c.pos
	}
	bucket[last] = nil
	bucket = bucket[:last]
	if len(bucket) == 0 {
		delete(idx.buckets, c.key)
	} else {
		idx.buckets[c.key] = bucket
	}
	c.filed = false
}

// QueryRect returns every component whose entity lies inside r. Cells only
// approximate occupancy, so candidates are re-checked against r. Result
// order is unspecified.
func (idx *Index) QueryRect(r core.Rect) []*Chunked {
	var out []*Chunked
	idx.Query(r, func(c *Chunked) bool {
		out = append(out, c)
		return true
	})
	return out
}

// maxCell bounds cell coordinates that are walked one by one; beyond it
// float cell indexes no longer convert to int exactly.
const maxCell = 1 << 52

// Query calls fn for each component inside r until fn returns false
func (idx *Index) Query(r core.Rect, fn func(c *Chunked) bool) {
	if r.Empty() || len(idx.buckets) == 0 {
		return
	}
	loX, loY := math.Floor(r.Min[0]/idx.cellSize), math.Floor(r.Min[1]/idx.cellSize)
	hiX, hiY := math.Floor(r.Max[0]/idx.cellSize), math.Floor(r.Max[1]/idx.cellSize)

	// Huge or unbounded rects over a sparse population: walk the buckets
	// instead of the cells. The negated test also catches NaN.
	cells := (hiX - loX + 1) * (hiY - loY + 1)
	if !(cells <= float64(len(idx.buckets))) || !inCellRange(loX, loY, hiX, hiY) {
		for key, bucket := range idx.buckets {
			kx, ky := float64(key.X), float64(key.Y)
			if kx < loX || kx > hiX || ky < loY || ky > hiY {
				continue
			}
			if !scan(bucket, r, fn) {
				return
			}
		}
		return
	}

	for y := int(loY); y <= int(hiY); y++ {
		for x := int(loX); x <= int(hiX); x++ {
			bucket, ok := idx.buckets[CellKey{x, y}]
			if !ok {
				continue
			}
			if !scan(bucket, r, fn) {
				return
			}
		}
	}
}

func inCellRange(vs ...float64) bool {
	for _, v := range vs {
		if !(v > -maxCell && v < maxCell) {
			return false
		}
	}
	return true
}

func scan(bucket []*Chunked, r core.Rect, fn func(c *Chunked) bool) bool {
	for _, c := range bucket {
		if r.Contains(c.entity.Position()) && !fn(c) {
			return false
		}
	}
	return true
}

// GetAll flattens every bucket. Meant for maintenance sweeps and debug
// drawing, not per-frame queries.
func (idx *Index) GetAll() []*Chunked {
	out := make([]*Chunked, 0, idx.count)
	for _, bucket := range idx.buckets {
		out = append(out, bucket...)
	}
	return out
}

// Cells calls fn with every non-empty cell and its population
func (idx *Index) Cells(fn func(k CellKey, n int)) {
	for k, bucket := range idx.buckets {
		fn(k, len(bucket))
	}
}
