package spatial

import "github.com/1siamBot/runner-engine/engine/core"

var (
	_ core.Attacher       = &Chunked{}
	_ core.Detacher       = &Chunked{}
	_ core.ChangeListener = &Chunked{}
)

// Chunked is a component that keeps its entity filed in an Index. It refers
// back to the entity but never owns it.
type Chunked struct {
	index  *Index
	entity *core.Entity

	key   CellKey
	pos   int // position inside the bucket
	filed bool
}

// NewChunked creates a component that will file itself into idx on attach
func NewChunked(idx *Index) *Chunked {
	return &Chunked{index: idx}
}

// Attach creates a Chunked component for idx and attaches it to e
func Attach(idx *Index, e *core.Entity) *Chunked {
	c := NewChunked(idx)
	e.Attach(c)
	return c
}

// Entity returns the owning entity
func (c *Chunked) Entity() *core.Entity { return c.entity }

// Index returns the index the component is filed in
func (c *Chunked) Index() *Index { return c.index }

// Kind returns the component kind of its index
func (c *Chunked) Kind() Kind { return c.index.kind }

// Slot returns the index slot id within the kind
func (c *Chunked) Slot() int { return c.index.slot }

// Key returns the cached cell key
func (c *Chunked) Key() CellKey { return c.key }

// Filed reports whether the component is currently in a bucket
func (c *Chunked) Filed() bool { return c.filed }

func (c *Chunked) OnAttach(e *core.Entity) {
	c.entity = e
	c.index.Insert(c)
}

func (c *Chunked) OnEntityChanged(*core.Entity) {
	c.index.OnEntityMoved(c)
}

func (c *Chunked) OnDetach(*core.Entity) {
	c.index.Remove(c)
}
