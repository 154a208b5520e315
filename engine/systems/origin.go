package systems

import (
	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/streaming"
)

// OriginSystem keeps the streaming window centered on a target entity. It
// runs after movement so range queries later in the frame see the shifted
// coordinates.
type OriginSystem struct {
	Window *streaming.Window
	Target *core.Entity

	// LastShift is the number of regions moved by the latest update
	LastShift int
}

func (s *OriginSystem) Priority() int { return 20 }

func (s *OriginSystem) Update(_ *core.World, _ float64) {
	if s.Target == nil || !s.Target.Alive() {
		s.LastShift = 0
		return
	}
	s.LastShift = s.Window.KeepOriginNear(s.Target.Position())
}
