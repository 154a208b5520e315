package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countSystem struct {
	prio  int
	order *[]int
	dt    float64
}

func (s *countSystem) Priority() int { return s.prio }
func (s *countSystem) Update(_ *World, dt float64) {
	*s.order = append(*s.order, s.prio)
	s.dt = dt
}

func TestGameLoop_fixedStep(t *testing.T) {
	var order []int
	gl := NewGameLoop(20)
	late := &countSystem{prio: 20, order: &order}
	early := &countSystem{prio: 10, order: &order}
	gl.World.AddSystem(late)
	gl.World.AddSystem(early)

	gl.Advance(0.1)
	assert.Zero(t, gl.CurrentTick(), "paused loop does not tick")
	assert.Empty(t, order)

	gl.Play()
	alpha := gl.Advance(0.125)
	assert.Equal(t, uint64(2), gl.CurrentTick())
	assert.InDelta(t, 0.5, alpha, 1e-9)
	assert.InDelta(t, 0.5, gl.Alpha(), 1e-9)
	assert.Equal(t, []int{10, 20, 10, 20}, order)
	assert.InDelta(t, 0.05, early.dt, 1e-12)
}

func TestGameLoop_dropsBacklog(t *testing.T) {
	gl := NewGameLoop(20)
	gl.Play()
	gl.Advance(0.025)

	alpha := gl.Advance(10)
	assert.Equal(t, uint64(DefaultMaxSteps), gl.CurrentTick())
	assert.Equal(t, uint64(195), gl.Dropped())
	assert.InDelta(t, 0.5, alpha, 1e-6)

	gl.MaxSteps = 0
	gl.Advance(1)
	assert.Equal(t, uint64(DefaultMaxSteps+20), gl.CurrentTick())
}

func TestGameLoop_pauseAndStep(t *testing.T) {
	gl := NewGameLoop(10)
	gl.Toggle()
	assert.Equal(t, StatePlaying, gl.State)
	gl.Advance(0.05)
	gl.Toggle()
	assert.Equal(t, StatePaused, gl.State)

	gl.Advance(5)
	assert.Zero(t, gl.CurrentTick())
	gl.Step()
	assert.Equal(t, uint64(1), gl.CurrentTick())

	// Owed time from before the pause is still there.
	gl.Play()
	gl.Advance(0.05)
	assert.Equal(t, uint64(2), gl.CurrentTick())
}

func TestGameLoop_updateReadsClock(t *testing.T) {
	now := time.Unix(1000, 0)
	gl := NewGameLoop(10)
	gl.Now = func() time.Time { return now }
	gl.Play()

	gl.Update()
	assert.Zero(t, gl.CurrentTick(), "first frame only starts the clock")

	now = now.Add(350 * time.Millisecond)
	alpha := gl.Update()
	assert.Equal(t, uint64(3), gl.CurrentTick())
	assert.InDelta(t, 0.5, alpha, 1e-9)

	now = now.Add(-time.Second)
	gl.Update()
	assert.Equal(t, uint64(3), gl.CurrentTick(), "a clock going backwards is ignored")
}
