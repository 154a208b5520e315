package input

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// InputState tracks mouse and keyboard state per frame
type InputState struct {
	// Mouse
	MouseX, MouseY   int
	MouseDX, MouseDY int // delta since last frame
	prevMouseX       int
	prevMouseY       int
	ScrollY          float64

	// Keyboard
	KeysPressed map[ebiten.Key]bool
}

func NewInputState() *InputState {
	return &InputState{
		KeysPressed: make(map[ebiten.Key]bool),
	}
}

var watchedKeys = []ebiten.Key{
	ebiten.KeyW, ebiten.KeyA, ebiten.KeyS, ebiten.KeyD,
	ebiten.KeyUp, ebiten.KeyDown, ebiten.KeyLeft, ebiten.KeyRight,
	ebiten.KeySpace, ebiten.KeyEscape, ebiten.KeyShift,
	ebiten.KeyC, ebiten.KeyF, ebiten.KeyG, ebiten.KeyN, ebiten.KeyP,
}

// Update should be called every frame
func (s *InputState) Update() {
	s.prevMouseX = s.MouseX
	s.prevMouseY = s.MouseY
	s.MouseX, s.MouseY = ebiten.CursorPosition()
	s.MouseDX = s.MouseX - s.prevMouseX
	s.MouseDY = s.MouseY - s.prevMouseY

	_, scrollY := ebiten.Wheel()
	s.ScrollY = scrollY

	for _, k := range watchedKeys {
		s.KeysPressed[k] = ebiten.IsKeyPressed(k)
	}
}

// Pressed reports whether any of keys is held
func (s *InputState) Pressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if s.KeysPressed[k] {
			return true
		}
	}
	return false
}

// Axis returns -1, 0 or 1 from a pair of key groups
func (s *InputState) Axis(neg, pos []ebiten.Key) float64 {
	v := 0.0
	if s.Pressed(neg...) {
		v--
	}
	if s.Pressed(pos...) {
		v++
	}
	return v
}

// IsKeyJustPressed returns true if key was just pressed this frame
func (s *InputState) IsKeyJustPressed(key ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(key)
}

// MiddleDragging reports whether the middle mouse button is held
func (s *InputState) MiddleDragging() bool {
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)
}
