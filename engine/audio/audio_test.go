package audio

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/spatial"
)

func source(w *core.World, idx *spatial.Index, x, y float64) *core.Entity {
	e := w.Spawn(core.SpawnParams{Kind: "emitter", Position: mgl64.Vec2{x, y}})
	spatial.Attach(idx, e)
	return e
}

func TestMix(t *testing.T) {
	w := core.NewWorld(20)
	idx := spatial.New(8)
	am := NewAudioManager()
	am.SFXVolume = 1
	am.SetListener(mgl64.Vec2{100, 0})

	near := source(w, idx, 106, 0)
	far := source(w, idx, 85, 0)
	source(w, idx, 100, 29.5) // at the edge of hearing
	source(w, idx, 128, 28)   // inside the query square, beyond MaxDistance
	source(w, idx, 200, 0)    // outside the query square

	voices := am.Mix(idx)
	require.Len(t, voices, 3)
	assert.Same(t, near, voices[0].Entity)
	assert.InDelta(t, 0.8, voices[0].Volume, 1e-9)
	assert.InDelta(t, 0.2, voices[0].Pan, 1e-9)
	assert.Same(t, far, voices[1].Entity)
	assert.InDelta(t, 0.5, voices[1].Volume, 1e-9)
	assert.InDelta(t, -0.5, voices[1].Pan, 1e-9)
	assert.InDelta(t, 1.0/60, voices[2].Volume, 1e-9)
}

func TestMix_followsMovesAndCaps(t *testing.T) {
	w := core.NewWorld(20)
	idx := spatial.New(8)
	am := NewAudioManager()
	am.MaxVoices = 2

	for i := 0; i < 5; i++ {
		source(w, idx, float64(i), 0)
	}
	assert.Len(t, am.Mix(idx), 2)

	mover := source(w, idx, 500, 0)
	assert.Len(t, am.Mix(idx), 2)
	mover.SetPosition(mgl64.Vec2{0, 0})
	voices := am.Mix(idx)
	require.Len(t, voices, 2)
	assert.Equal(t, mgl64.Vec2{0, 0}, voices[0].Entity.Position())

	am.SetVolume(0)
	assert.Empty(t, am.Mix(idx))
}

func TestShift(t *testing.T) {
	am := NewAudioManager()
	am.SetListener(mgl64.Vec2{250, 3})
	am.Shift(mgl64.Vec2{-200, 0})
	assert.Equal(t, mgl64.Vec2{50, 3}, am.Listener())
}

func TestSetVolume(t *testing.T) {
	am := NewAudioManager()
	am.SetVolume(2)
	assert.Equal(t, 1.0, am.MasterVolume)
	am.SetVolume(-1)
	assert.Equal(t, 0.0, am.MasterVolume)
}
