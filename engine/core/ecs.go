package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Handle identifies an entity slot in a World. The generation is bumped when
// the entity is destroyed, so stale handles stop resolving.
type Handle struct {
	Index uint32
	Gen   uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Gen)
}

// SpawnParams describes a new entity
type SpawnParams struct {
	ID         uuid.UUID // zero means a fresh random id
	Kind       string
	Position   mgl64.Vec2
	Rotation   float64
	Shifts     bool
	Persistent bool
	Payload    []byte
	Parent     *Entity
}

// SpawnHook runs after every spawn, before the entity is returned
type SpawnHook func(e *Entity)

// System processes entities each tick
type System interface {
	Update(w *World, dt float64)
	Priority() int
}

// World owns every live entity. Entities are only ever released through
// Destroy; nothing here depends on the garbage collector for cleanup.
type World struct {
	slots     []*Entity
	gens      []uint32
	free      []uint32
	alive     int
	hooks     []SpawnHook
	systems   []System
	TickCount uint64
	TickRate  float64 // ticks per second

	// Events receives spawn/destroy notifications when set
	Events *EventBus
}

// NewWorld creates an empty world
func NewWorld(tickRate float64) *World {
	return &World{TickRate: tickRate}
}

// OnSpawn registers a hook run for every spawned entity
func (w *World) OnSpawn(h SpawnHook) {
	w.hooks = append(w.hooks, h)
}

// Spawn creates a new entity and returns it
func (w *World) Spawn(p SpawnParams) *Entity {
	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	e := &Entity{
		world:        w,
		alive:        true,
		id:           id,
		kind:         p.Kind,
		payload:      p.Payload,
		position:     p.Position,
		lastPosition: p.Position,
		rotation:     p.Rotation,
		shifts:       p.Shifts,
		persistent:   p.Persistent,
	}
	mustFinite(e, p.Position)

	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
		w.slots[idx] = e
	} else {
		idx = uint32(len(w.slots))
		w.slots = append(w.slots, e)
		w.gens = append(w.gens, 0)
	}
	e.handle = Handle{Index: idx, Gen: w.gens[idx]}
	w.alive++

	if p.Parent != nil {
		e.SetParent(p.Parent)
	}
	for _, h := range w.hooks {
		h(e)
	}
	w.Events.Emit(Event{Type: EvtEntitySpawned, Tick: w.TickCount, Payload: e.handle})
	return e
}

// Get resolves a handle; stale handles resolve to nil, false
func (w *World) Get(h Handle) (*Entity, bool) {
	if int(h.Index) >= len(w.slots) || w.gens[h.Index] != h.Gen {
		return nil, false
	}
	e := w.slots[h.Index]
	if e == nil {
		return nil, false
	}
	return e, true
}

// Destroy removes an entity and its children from the world. Every component
// is detached (leaving index and region membership) before any is finalized.
// Destroying an already destroyed entity is a no-op that returns false.
func (w *World) Destroy(e *Entity) bool {
	if e == nil || !e.alive || e.world != w {
		return false
	}
	e.alive = false

	for len(e.children) > 0 {
		child := e.children[len(e.children)-1]
		if !w.Destroy(child) {
			e.children = e.children[:len(e.children)-1]
		}
	}
	if e.parent != nil {
		e.parent.removeChild(e)
		e.parent = nil
	}

	comps := e.components
	for i := len(comps) - 1; i >= 0; i-- {
		if d, ok := comps[i].(Detacher); ok {
			d.OnDetach(e)
		}
	}
	for _, c := range comps {
		if d, ok := c.(Destroyer); ok {
			d.OnDestroy(e)
		}
	}
	e.components = nil

	idx := e.handle.Index
	w.slots[idx] = nil
	w.gens[idx]++
	w.free = append(w.free, idx)
	w.alive--
	w.Events.Emit(Event{Type: EvtEntityDestroyed, Tick: w.TickCount, Payload: e.handle})
	return true
}

// Each calls fn for every live entity. fn may destroy entities.
func (w *World) Each(fn func(e *Entity)) {
	for i := 0; i < len(w.slots); i++ {
		if e := w.slots[i]; e != nil {
			fn(e)
		}
	}
}

// Entities returns a snapshot of every live entity
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, w.alive)
	w.Each(func(e *Entity) { out = append(out, e) })
	return out
}

// EntityCount returns the number of alive entities
func (w *World) EntityCount() int {
	return w.alive
}

// AddSystem registers a system
func (w *World) AddSystem(s System) {
	w.systems = append(w.systems, s)
	// Sort by priority (simple insertion)
	for i := len(w.systems) - 1; i > 0; i-- {
		if w.systems[i].Priority() < w.systems[i-1].Priority() {
			w.systems[i], w.systems[i-1] = w.systems[i-1], w.systems[i]
		}
	}
}

// Tick runs all systems once
func (w *World) Tick(dt float64) {
	for _, s := range w.systems {
		s.Update(w, dt)
	}
	w.TickCount++
}
