package systems

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/1siamBot/runner-engine/engine/core"
)

// Velocity drives an entity at a constant rate. Spin is in radians per second.
type Velocity struct {
	V    mgl64.Vec2
	Spin float64
}

// MovementSystem integrates velocities. Every move goes through SetPosition
// so chunk and region membership follow along.
type MovementSystem struct{}

func (s *MovementSystem) Priority() int { return 10 }

func (s *MovementSystem) Update(w *core.World, dt float64) {
	for _, e := range w.Entities() {
		if !e.Alive() || e.Parent() != nil {
			continue
		}
		v, ok := core.Find[*Velocity](e)
		if !ok {
			continue
		}
		if v.V[0] != 0 || v.V[1] != 0 {
			e.Translate(v.V.Mul(dt))
		}
		if v.Spin != 0 {
			e.SetRotation(math.Mod(e.Rotation()+v.Spin*dt, 2*math.Pi))
		}
	}
}
