package spatial

import "sort"

// Registry owns the index instances of every component kind. It is created
// by the composition root and handed to whoever attaches chunked components,
// so independent worlds never share indexes.
type Registry struct {
	byKind map[Kind][]*Index
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[Kind][]*Index)}
}

// Add creates a new index for kind and returns it. Its slot id is the number
// of indexes the kind had before.
func (r *Registry) Add(kind Kind, cellSize float64) *Index {
	idx := newIndex(kind, len(r.byKind[kind]), cellSize)
	r.byKind[kind] = append(r.byKind[kind], idx)
	return idx
}

// Get returns the index in slot of kind
func (r *Registry) Get(kind Kind, slot int) (*Index, bool) {
	list := r.byKind[kind]
	if slot < 0 || slot >= len(list) {
		return nil, false
	}
	return list[slot], true
}

// Indexes returns every index of kind in slot order
func (r *Registry) Indexes(kind Kind) []*Index {
	return r.byKind[kind]
}

// Kinds returns the registered kinds, sorted
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.byKind))
	for k := range r.byKind {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
