package render

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestCamera_roundTrip(t *testing.T) {
	c := NewCamera(800, 600)
	c.CenterOn(mgl64.Vec2{100, 50})

	sx, sy := c.WorldToScreen(mgl64.Vec2{100, 50})
	assert.Equal(t, 400.0, sx)
	assert.Equal(t, 300.0, sy)

	sx, sy = c.WorldToScreen(mgl64.Vec2{110, 45})
	assert.Equal(t, 440.0, sx)
	assert.Equal(t, 280.0, sy)
	assert.Equal(t, mgl64.Vec2{110, 45}, c.ScreenToWorld(440, 280))
}

func TestCamera_viewRect(t *testing.T) {
	c := NewCamera(800, 600)
	c.CenterOn(mgl64.Vec2{0, 0})
	r := c.ViewRect()
	assert.Equal(t, mgl64.Vec2{-100, -75}, r.Min)
	assert.Equal(t, mgl64.Vec2{100, 75}, r.Max)

	c.SetZoom(2)
	assert.Equal(t, 100.0, c.ViewRect().Dx())
	c.SetZoom(100)
	assert.Equal(t, c.MaxZoom, c.Zoom)
}

func TestCamera_zoomAtKeepsCursorPoint(t *testing.T) {
	c := NewCamera(800, 600)
	c.CenterOn(mgl64.Vec2{10, 10})
	before := c.ScreenToWorld(600, 100)
	c.ZoomAt(0.5, 600, 100)
	after := c.ScreenToWorld(600, 100)
	assert.InDelta(t, before[0], after[0], 1e-9)
	assert.InDelta(t, before[1], after[1], 1e-9)
}

func TestCamera_followAndShift(t *testing.T) {
	c := NewCamera(800, 600)
	c.Lerp = 0.5
	c.Follow(mgl64.Vec2{10, 0})
	assert.Equal(t, mgl64.Vec2{5, 0}, c.Center)
	c.Shift(mgl64.Vec2{-100, 0})
	assert.Equal(t, mgl64.Vec2{-95, 0}, c.Center)
	c.Pan(40, 0)
	assert.Equal(t, mgl64.Vec2{-85, 0}, c.Center)
}
