package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/1siamBot/runner-engine/engine/core"
)

// Camera is an orthographic view onto the world. World y grows downwards,
// like screen y.
type Camera struct {
	Center         mgl64.Vec2 // world position at the middle of the screen
	Zoom           float64    // zoom level (1.0 = default)
	MinZoom        float64
	MaxZoom        float64
	PixelsPerMeter float64
	ScreenW        int     // viewport width in pixels
	ScreenH        int     // viewport height in pixels
	Speed          float64 // pan speed (pixels per second)

	// Lerp smooths Follow; 1 snaps to the target
	Lerp float64
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:           1.0,
		MinZoom:        0.1,
		MaxZoom:        4.0,
		PixelsPerMeter: 4,
		ScreenW:        screenW,
		ScreenH:        screenH,
		Speed:          500,
		Lerp:           0.15,
	}
}

func (c *Camera) scale() float64 { return c.PixelsPerMeter * c.Zoom }

// Pan moves the camera by pixel delta
func (c *Camera) Pan(dx, dy float64) {
	s := c.scale()
	c.Center = c.Center.Add(mgl64.Vec2{dx / s, dy / s})
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms toward a screen point
func (c *Camera) ZoomAt(delta float64, screenX, screenY int) {
	before := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom + delta)
	after := c.ScreenToWorld(screenX, screenY)
	// Keep the point under the cursor stationary
	c.Center = c.Center.Add(before.Sub(after))
}

// CenterOn centers the camera on a world position
func (c *Camera) CenterOn(p mgl64.Vec2) {
	c.Center = p
}

// Follow eases the camera towards p
func (c *Camera) Follow(p mgl64.Vec2) {
	c.Center = c.Center.Add(p.Sub(c.Center).Mul(c.Lerp))
}

// Shift moves the camera with an origin shift so the picture does not jump
func (c *Camera) Shift(d mgl64.Vec2) {
	c.Center = c.Center.Add(d)
}

// WorldToScreen converts a world position to screen pixels
func (c *Camera) WorldToScreen(p mgl64.Vec2) (float64, float64) {
	s := c.scale()
	sx := (p[0]-c.Center[0])*s + float64(c.ScreenW)/2
	sy := (p[1]-c.Center[1])*s + float64(c.ScreenH)/2
	return sx, sy
}

// ScreenToWorld converts a screen pixel to a world position
func (c *Camera) ScreenToWorld(sx, sy int) mgl64.Vec2 {
	s := c.scale()
	return mgl64.Vec2{
		(float64(sx)-float64(c.ScreenW)/2)/s + c.Center[0],
		(float64(sy)-float64(c.ScreenH)/2)/s + c.Center[1],
	}
}

// ViewRect returns the world rectangle on screen, for range queries
func (c *Camera) ViewRect() core.Rect {
	lo := c.ScreenToWorld(0, 0)
	hi := c.ScreenToWorld(c.ScreenW, c.ScreenH)
	return core.Rect{Min: lo, Max: hi}
}
