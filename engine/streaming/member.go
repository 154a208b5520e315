package streaming

import "github.com/1siamBot/runner-engine/engine/core"

var (
	_ core.Attacher       = &member{}
	_ core.Detacher       = &member{}
	_ core.ChangeListener = &member{}
)

// member keeps an entity filed in the slot covering its position, the same
// way spatial.Chunked keeps one filed in a grid bucket. Entities outside the
// window are kept as strays until a slot covers them.
type member struct {
	window *Window
	entity *core.Entity
	slot   *Slot
	pos    int
	stray  bool
}

func (m *member) OnAttach(e *core.Entity) {
	m.entity = e
	m.window.file(m)
}

func (m *member) OnEntityChanged(*core.Entity) {
	m.window.file(m)
}

func (m *member) OnDetach(*core.Entity) {
	m.window.unfile(m)
}
