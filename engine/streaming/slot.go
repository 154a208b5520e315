package streaming

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/persist"
)

// Slot is one chunk of the window. Slots are allocated once and relabeled
// with a new absolute region as the window slides.
type Slot struct {
	window *Window

	index   int
	region  int
	loaded  bool
	dirty   bool
	members []*member
}

// Key returns the persistence key "{region}_{index}"
func (s *Slot) Key() string { return persist.SlotKey(s.region, s.index) }

// IndexInRegion returns the slot's position inside its region
func (s *Slot) IndexInRegion() int { return s.index }

// RegionID returns the absolute region the slot currently represents
func (s *Slot) RegionID() int { return s.region }

// Loaded reports whether the slot has been restored or generated
func (s *Slot) Loaded() bool { return s.loaded }

// Len returns the number of tracked entities
func (s *Slot) Len() int { return len(s.members) }

// Entities returns the tracked entities
func (s *Slot) Entities() []*core.Entity {
	out := make([]*core.Entity, len(s.members))
	for i, m := range s.members {
		out[i] = m.entity
	}
	return out
}

// Origin returns the slot's lower x edge in the current frame (y is 0)
func (s *Slot) Origin() mgl64.Vec2 {
	return s.originIn(s.window.origin)
}

func (s *Slot) originIn(origin int) mgl64.Vec2 {
	w := s.window
	x := float64(s.region-origin)*w.conf.RegionSize + float64(s.index)*w.chunkWidth
	return mgl64.Vec2{x, 0}
}

// Width returns the slot's extent along x
func (s *Slot) Width() float64 { return s.window.chunkWidth }

// Contains reports whether x (current frame) lies inside the slot
func (s *Slot) Contains(x float64) bool {
	lo := s.Origin()[0]
	return x >= lo && x < lo+s.window.chunkWidth
}

func (s *Slot) add(m *member) {
	m.slot = s
	m.pos = len(s.members)
	s.members = append(s.members, m)
}

func (s *Slot) remove(m *member) {
	last := len(s.members) - 1
	if m.pos != last {
		moved := s.members[last]
		s.members[m.pos] = moved
		moved.pos = m.pos
	}
	s.members[last] = nil
	s.members = s.members[:last]
	m.slot = nil
}
