package core

import "time"

// LoopState represents the run state of the loop
type LoopState uint8

const (
	StatePaused LoopState = iota
	StatePlaying
)

// DefaultMaxSteps caps the ticks run for a single frame. Whatever a long
// frame owes beyond that (a hitch, a big origin shift) is dropped.
const DefaultMaxSteps = 5

// GameLoop turns variable frame times into fixed simulation ticks
type GameLoop struct {
	World    *World
	State    LoopState
	TickRate float64 // fixed ticks per second
	MaxSteps int

	// Now is the clock read by Update
	Now func() time.Time

	owed    float64 // seconds not yet simulated
	last    time.Time
	alpha   float64
	dropped uint64
}

// NewGameLoop creates a paused loop over a fresh world
func NewGameLoop(tickRate float64) *GameLoop {
	return &GameLoop{
		World:    NewWorld(tickRate),
		TickRate: tickRate,
		MaxSteps: DefaultMaxSteps,
		Now:      time.Now,
	}
}

// Update reads the clock, simulates the time since the previous call and
// returns the interpolation alpha. Call it once per rendered frame.
func (gl *GameLoop) Update() float64 {
	now := gl.Now()
	if gl.last.IsZero() {
		gl.last = now
	}
	frame := now.Sub(gl.last).Seconds()
	gl.last = now
	return gl.Advance(frame)
}

// Advance simulates frame seconds in whole ticks. Time passing while paused
// is not owed.
func (gl *GameLoop) Advance(frame float64) float64 {
	if gl.State != StatePlaying || frame <= 0 {
		return gl.alpha
	}
	dt := gl.step()
	gl.owed += frame

	steps := 0
	for gl.owed >= dt {
		if gl.MaxSteps > 0 && steps == gl.MaxSteps {
			skipped := uint64(gl.owed / dt)
			gl.dropped += skipped
			gl.owed -= float64(skipped) * dt
			break
		}
		gl.World.Tick(dt)
		gl.owed -= dt
		steps++
	}
	gl.alpha = gl.owed / dt
	return gl.alpha
}

// Step runs exactly one tick, whatever the state. Meant for stepping a
// paused simulation.
func (gl *GameLoop) Step() {
	gl.World.Tick(gl.step())
}

func (gl *GameLoop) step() float64 { return 1.0 / gl.TickRate }

// Alpha returns how far the simulation is into the next tick, in [0, 1)
func (gl *GameLoop) Alpha() float64 { return gl.alpha }

// Dropped returns the number of ticks skipped because a frame owed too many
func (gl *GameLoop) Dropped() uint64 { return gl.dropped }

// Play starts or resumes the loop
func (gl *GameLoop) Play() {
	gl.State = StatePlaying
	gl.last = time.Time{}
}

// Pause stops ticking; owed time is kept for when play resumes
func (gl *GameLoop) Pause() {
	gl.State = StatePaused
}

// Toggle switches between playing and paused
func (gl *GameLoop) Toggle() {
	if gl.State == StatePlaying {
		gl.Pause()
		return
	}
	gl.Play()
}

// CurrentTick returns the current simulation tick
func (gl *GameLoop) CurrentTick() uint64 {
	return gl.World.TickCount
}
