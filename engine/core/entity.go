package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Entity is something located in the world. It owns its position and rotation
// and the ordered list of components attached to it. Entities are created and
// destroyed only through a World.
type Entity struct {
	world  *World
	handle Handle
	alive  bool

	id      uuid.UUID
	kind    string
	payload []byte

	position     mgl64.Vec2
	lastPosition mgl64.Vec2
	rotation     float64

	shifts     bool
	persistent bool

	parent   *Entity
	local    mgl64.Vec2 // offset from parent
	children []*Entity

	components []Component
}

// Handle returns the arena handle of the entity
func (e *Entity) Handle() Handle { return e.handle }

// Alive reports whether the entity has not been destroyed
func (e *Entity) Alive() bool { return e.alive }

// ID returns the identity persisted with the entity
func (e *Entity) ID() uuid.UUID { return e.id }

// Kind returns the gameplay kind tag
func (e *Entity) Kind() string { return e.kind }

// Payload returns the opaque serialized payload
func (e *Entity) Payload() []byte { return e.payload }

// SetPayload replaces the opaque payload stored with the entity
func (e *Entity) SetPayload(b []byte) { e.payload = b }

// Position returns the world position
func (e *Entity) Position() mgl64.Vec2 { return e.position }

// LastPosition returns the position before the most recent move.
// Only meaningful for chunk and region membership math.
func (e *Entity) LastPosition() mgl64.Vec2 { return e.lastPosition }

// Rotation returns the rotation in radians
func (e *Entity) Rotation() float64 { return e.rotation }

// Shifts reports whether the entity takes part in origin translation
func (e *Entity) Shifts() bool { return e.shifts }

// Persistent reports whether the entity is saved when its region unloads
func (e *Entity) Persistent() bool { return e.persistent }

// Parent returns the parent entity or nil
func (e *Entity) Parent() *Entity { return e.parent }

// Children returns the entities positioned relative to this one
func (e *Entity) Children() []*Entity { return e.children }

// Components returns the attached components in attach order
func (e *Entity) Components() []Component { return e.components }

// SetPosition moves the entity and synchronously notifies every attached
// component. Children follow at their local offset.
func (e *Entity) SetPosition(p mgl64.Vec2) {
	mustFinite(e, p)
	e.lastPosition = e.position
	e.position = p
	if e.parent != nil {
		e.local = p.Sub(e.parent.position)
	}
	e.notify()
	e.moveChildren()
}

// Translate moves the entity by d
func (e *Entity) Translate(d mgl64.Vec2) {
	e.SetPosition(e.position.Add(d))
}

// SetRotation sets the rotation and notifies attached components
func (e *Entity) SetRotation(r float64) {
	if math.IsNaN(r) || math.IsInf(r, 0) {
		panic(&InvalidPositionError{Entity: e.handle, Position: e.position, Rotation: r})
	}
	e.rotation = r
	e.notify()
}

// Attach appends a component and lets it bind to the entity
func (e *Entity) Attach(c Component) {
	e.components = append(e.components, c)
	if a, ok := c.(Attacher); ok {
		a.OnAttach(e)
	}
}

// Detach removes a component. Returns false if it was not attached.
func (e *Entity) Detach(c Component) bool {
	for i, have := range e.components {
		if have != c {
			continue
		}
		e.components = append(e.components[:i], e.components[i+1:]...)
		if d, ok := c.(Detacher); ok {
			d.OnDetach(e)
		}
		return true
	}
	return false
}

// SetParent makes the entity follow parent at its current offset.
// A nil parent detaches it again.
func (e *Entity) SetParent(parent *Entity) {
	if e.parent != nil {
		e.parent.removeChild(e)
	}
	e.parent = parent
	if parent == nil {
		e.local = mgl64.Vec2{}
		return
	}
	e.local = e.position.Sub(parent.position)
	parent.children = append(parent.children, e)
}

func (e *Entity) removeChild(child *Entity) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i], e.children[i+1:]...)
			return
		}
	}
}

func (e *Entity) notify() {
	for _, c := range e.components {
		if l, ok := c.(ChangeListener); ok {
			l.OnEntityChanged(e)
		}
	}
}

func (e *Entity) moveChildren() {
	for _, child := range e.children {
		p := e.position.Add(child.local)
		child.lastPosition = child.position
		child.position = p
		child.notify()
		child.moveChildren()
	}
}

func mustFinite(e *Entity, p mgl64.Vec2) {
	if !Finite(p) {
		panic(&InvalidPositionError{Entity: e.handle, Position: p, Rotation: e.rotation})
	}
}

// Finite reports whether both coordinates are neither NaN nor infinite
func Finite(p mgl64.Vec2) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
