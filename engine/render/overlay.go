package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/spatial"
	"github.com/1siamBot/runner-engine/engine/streaming"
)

var (
	slotLoadedColor   = color.RGBA{80, 160, 255, 140}
	slotPendingColor  = color.RGBA{255, 120, 60, 140}
	regionEdgeColor   = color.RGBA{255, 255, 255, 200}
	cellColor         = color.RGBA{255, 255, 0, 60}
	entityColor       = color.RGBA{60, 220, 120, 255}
	persistentColor   = color.RGBA{255, 215, 0, 255}
	nonShiftingColor  = color.RGBA{200, 80, 200, 255}
	entityStrokeColor = color.RGBA{255, 255, 255, 180}
)

// Overlay draws the streaming window and spatial index state for debugging
type Overlay struct {
	Camera *Camera

	ShowCells bool
	ShowSlots bool
}

// NewOverlay creates an overlay drawing through cam
func NewOverlay(cam *Camera) *Overlay {
	return &Overlay{Camera: cam, ShowSlots: true}
}

// DrawSlots draws slot edges and labels. Region edges are drawn brighter.
func (o *Overlay) DrawSlots(screen *ebiten.Image, w *streaming.Window) {
	if !o.ShowSlots {
		return
	}
	h := float32(o.Camera.ScreenH)
	for _, s := range w.Slots() {
		x, _ := o.Camera.WorldToScreen(s.Origin())
		clr := slotPendingColor
		if s.Loaded() {
			clr = slotLoadedColor
		}
		width := float32(1)
		if s.IndexInRegion() == 0 {
			clr = regionEdgeColor
			width = 2
		}
		vector.StrokeLine(screen, float32(x), 0, float32(x), h, width, clr, false)
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s (%d)", s.Key(), s.Len()), int(x)+4, int(h)-16)
	}
}

// DrawCells shades the occupied cells of idx that are on screen
func (o *Overlay) DrawCells(screen *ebiten.Image, idx *spatial.Index) {
	if !o.ShowCells {
		return
	}
	view := o.Camera.ViewRect()
	idx.Cells(func(k spatial.CellKey, n int) {
		r := idx.CellRect(k)
		if r.Max[0] < view.Min[0] || r.Min[0] > view.Max[0] || r.Max[1] < view.Min[1] || r.Min[1] > view.Max[1] {
			return
		}
		x0, y0 := o.Camera.WorldToScreen(r.Min)
		x1, y1 := o.Camera.WorldToScreen(r.Max)
		vector.DrawFilledRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), cellColor, false)
	})
}

// DrawEntities draws every entity of idx inside the view and returns how
// many were drawn
func (o *Overlay) DrawEntities(screen *ebiten.Image, idx *spatial.Index) int {
	n := 0
	radius := float32(o.Camera.scale() * 0.5)
	if radius < 2 {
		radius = 2
	}
	idx.Query(o.Camera.ViewRect(), func(c *spatial.Chunked) bool {
		drawEntity(screen, o.Camera, c.Entity(), radius)
		n++
		return true
	})
	return n
}

func drawEntity(screen *ebiten.Image, cam *Camera, e *core.Entity, radius float32) {
	sx, sy := cam.WorldToScreen(e.Position())
	clr := entityColor
	switch {
	case !e.Shifts():
		clr = nonShiftingColor
	case e.Persistent():
		clr = persistentColor
	}
	vector.DrawFilledCircle(screen, float32(sx), float32(sy), radius, clr, false)
	vector.StrokeCircle(screen, float32(sx), float32(sy), radius, 1, entityStrokeColor, false)
}

// DrawMarker draws a single entity, e.g. the player, regardless of indexes
func (o *Overlay) DrawMarker(screen *ebiten.Image, e *core.Entity, radius float32, clr color.Color) {
	sx, sy := o.Camera.WorldToScreen(e.Position())
	vector.DrawFilledCircle(screen, float32(sx), float32(sy), radius, clr, false)
	vector.StrokeCircle(screen, float32(sx), float32(sy), radius, 2, entityStrokeColor, false)
}
