package core

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// InvalidPositionError is raised (as a panic value) when an entity is given a
// NaN or infinite coordinate. It indicates a caller bug; letting it through
// would corrupt every index keyed by position.
type InvalidPositionError struct {
	Entity   Handle
	Position mgl64.Vec2
	Rotation float64
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("entity %v: invalid transform position=%v rotation=%v", e.Entity, e.Position, e.Rotation)
}
