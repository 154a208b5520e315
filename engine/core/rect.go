package core

import "github.com/go-gl/mathgl/mgl64"

// Rect is an axis-aligned rectangle in world space. Min is inclusive and Max
// is exclusive, matching the floor-based cell keys used by the spatial index.
type Rect struct {
	Min, Max mgl64.Vec2
}

// NewRect creates a rectangle from its origin and size
func NewRect(x, y, w, h float64) Rect {
	return Rect{
		Min: mgl64.Vec2{x, y},
		Max: mgl64.Vec2{x + w, y + h},
	}
}

// RectAround returns the square of half-extent r centered on p
func RectAround(p mgl64.Vec2, r float64) Rect {
	return Rect{
		Min: mgl64.Vec2{p[0] - r, p[1] - r},
		Max: mgl64.Vec2{p[0] + r, p[1] + r},
	}
}

// Contains reports whether p lies inside the rectangle
func (r Rect) Contains(p mgl64.Vec2) bool {
	return p[0] >= r.Min[0] && p[0] < r.Max[0] &&
		p[1] >= r.Min[1] && p[1] < r.Max[1]
}

// Empty reports whether the rectangle encloses no points
func (r Rect) Empty() bool {
	return r.Min[0] >= r.Max[0] || r.Min[1] >= r.Max[1]
}

// Dx returns the width
func (r Rect) Dx() float64 { return r.Max[0] - r.Min[0] }

// Dy returns the height
func (r Rect) Dy() float64 { return r.Max[1] - r.Min[1] }
