package streaming

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/persist"
)

// Generator populates a slot that has no persisted record. It is called at
// most once per load of an absolute slot id.
type Generator interface {
	Generate(w *core.World, s *Slot)
}

// GeneratorFunc adapts a function to Generator
type GeneratorFunc func(w *core.World, s *Slot)

func (f GeneratorFunc) Generate(w *core.World, s *Slot) { f(w, s) }

// RestoreFunc rebuilds one persisted entity at pos, expressed in the current
// frame. Implementations usually spawn the entity and attach the components
// its kind needs.
type RestoreFunc func(w *core.World, s *Slot, rec persist.EntityRecord, pos mgl64.Vec2) *core.Entity

// DefaultRestore spawns a plain persistent entity with the recorded identity
func DefaultRestore(w *core.World, _ *Slot, rec persist.EntityRecord, pos mgl64.Vec2) *core.Entity {
	return w.Spawn(core.SpawnParams{
		ID:         rec.ID,
		Kind:       rec.Kind,
		Position:   pos,
		Rotation:   rec.Rotation,
		Shifts:     !rec.Static,
		Persistent: true,
		Payload:    rec.Payload,
	})
}

// Config configures a Window
type Config struct {
	// RegionSize is the length of one region along x, in meters
	RegionSize float64
	// ChunksPerRegion splits every region into equally wide slots
	ChunksPerRegion int
	// RegionsBehind and RegionsAhead size the window around the origin region
	RegionsBehind int
	RegionsAhead  int

	Store     persist.Store
	Codec     persist.Codec
	Generator Generator
	Restore   RestoreFunc

	// Events receives advisory telemetry when set
	Events *core.EventBus
	Log    *slog.Logger
}

// DefaultConfig returns a window of three 256m regions of four slots each,
// persisting to memory
func DefaultConfig() Config {
	return Config{
		RegionSize:      256,
		ChunksPerRegion: 4,
		RegionsBehind:   1,
		RegionsAhead:    1,
	}
}

var (
	errRegionSize = errors.New("region size must be positive and finite")
	errChunks     = errors.New("chunks per region must be at least 1")
	errWindow     = errors.New("window needs at least one region behind and one ahead of the origin")
)

// Validate checks the geometry of the window
func (c Config) Validate() error {
	if !(c.RegionSize > 0) || math.IsInf(c.RegionSize, 0) {
		return fmt.Errorf("streaming config: %w (got %v)", errRegionSize, c.RegionSize)
	}
	if c.ChunksPerRegion < 1 {
		return fmt.Errorf("streaming config: %w (got %d)", errChunks, c.ChunksPerRegion)
	}
	if c.RegionsBehind < 1 || c.RegionsAhead < 1 {
		return fmt.Errorf("streaming config: %w (got %d behind, %d ahead)", errWindow, c.RegionsBehind, c.RegionsAhead)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Store == nil {
		c.Store = persist.NewMemStore()
	}
	if c.Codec == nil {
		c.Codec = persist.JSONCodec{}
	}
	if c.Generator == nil {
		c.Generator = GeneratorFunc(func(*core.World, *Slot) {})
	}
	if c.Restore == nil {
		c.Restore = DefaultRestore
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
	return c
}
