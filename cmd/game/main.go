package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/pkg/profile"

	"github.com/1siamBot/runner-engine/engine/audio"
	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/input"
	"github.com/1siamBot/runner-engine/engine/persist"
	"github.com/1siamBot/runner-engine/engine/render"
	"github.com/1siamBot/runner-engine/engine/spatial"
	"github.com/1siamBot/runner-engine/engine/streaming"
	"github.com/1siamBot/runner-engine/engine/systems"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
	TickRate     = 60.0

	kindPlayer = "player"
	kindCrate  = "crate"
	kindBeacon = "beacon"

	bandHalfHeight = 60.0 // props are generated with |y| below this
)

type options struct {
	dataDir    string
	regionSize float64
	chunks     int
	cellSize   float64
	speed      float64
	profile    string
}

// Game implements ebiten.Game interface
type Game struct {
	opts     options
	gameLoop *core.GameLoop
	eventBus *core.EventBus
	input    *input.InputState
	camera   *render.Camera
	overlay  *render.Overlay
	mixer    *audio.AudioManager

	store   persist.Store
	window  *streaming.Window
	indexes *spatial.Registry
	crates  *spatial.Index
	beacons *spatial.Index

	player *core.Entity
	drive  *systems.Velocity
	voices []audio.Voice
	drawn  int
}

func NewGame(opts options) (*Game, error) {
	g := &Game{
		opts:     opts,
		gameLoop: core.NewGameLoop(TickRate),
		eventBus: core.NewEventBus(),
		input:    input.NewInputState(),
		camera:   render.NewCamera(ScreenWidth, ScreenHeight),
		mixer:    audio.NewAudioManager(),
		indexes:  spatial.NewRegistry(),
	}
	g.overlay = render.NewOverlay(g.camera)
	g.crates = g.indexes.Add(kindCrate, opts.cellSize)
	g.beacons = g.indexes.Add(kindBeacon, opts.cellSize*4)

	store, err := openStore(opts.dataDir)
	if err != nil {
		return nil, err
	}
	g.store = store

	world := g.gameLoop.World
	world.Events = g.eventBus

	conf := streaming.DefaultConfig()
	conf.RegionSize = opts.regionSize
	conf.ChunksPerRegion = opts.chunks
	conf.Store = store
	conf.Events = g.eventBus
	conf.Generator = streaming.GeneratorFunc(g.generate)
	conf.Restore = g.restore
	g.window, err = streaming.New(world, conf)
	if err != nil {
		store.Close()
		return nil, err
	}

	g.player = world.Spawn(core.SpawnParams{Kind: kindPlayer, Shifts: true})
	g.drive = &systems.Velocity{}
	g.player.Attach(g.drive)

	world.AddSystem(&systems.MovementSystem{})
	world.AddSystem(&systems.OriginSystem{Window: g.window, Target: g.player})
	g.window.KeepOriginNear(g.player.Position())

	g.eventBus.On(core.EvtOriginShifted, g.onShift)
	g.eventBus.On(core.EvtPersistFailed, func(e core.Event) {
		f := e.Payload.(streaming.PersistFailure)
		log.Printf("persist %s %s failed: %v", f.Op, f.Key, f.Err)
	})

	g.gameLoop.Play()
	return g, nil
}

func openStore(dir string) (*persist.LevelStore, error) {
	if dir == "" {
		return persist.NewMemLevelStore()
	}
	return persist.OpenLevelStore(dir)
}

// generate scatters crates and beacons over a slot. The layout depends only
// on the slot key, so a slot that was never saved looks the same every time.
func (g *Game) generate(w *core.World, s *streaming.Slot) {
	rng := rand.New(rand.NewSource(int64(s.RegionID())*7919 + int64(s.IndexInRegion())))
	origin := s.Origin()
	n := 3 + rng.Intn(6)
	for i := 0; i < n; i++ {
		pos := mgl64.Vec2{
			origin[0] + rng.Float64()*s.Width(),
			(rng.Float64()*2 - 1) * bandHalfHeight,
		}
		e := w.Spawn(core.SpawnParams{
			Kind:       kindCrate,
			Position:   pos,
			Rotation:   rng.Float64() * 2 * math.Pi,
			Shifts:     true,
			Persistent: true,
		})
		spatial.Attach(g.crates, e)
	}
	if rng.Intn(3) == 0 {
		e := w.Spawn(core.SpawnParams{
			Kind:     kindBeacon,
			Position: mgl64.Vec2{origin[0] + s.Width()/2, 0},
			Shifts:   true,
		})
		e.Attach(&systems.Velocity{Spin: 1})
		spatial.Attach(g.beacons, e)
	}
}

func (g *Game) restore(w *core.World, s *streaming.Slot, rec persist.EntityRecord, pos mgl64.Vec2) *core.Entity {
	e := streaming.DefaultRestore(w, s, rec, pos)
	for _, idx := range g.indexes.Indexes(spatial.Kind(rec.Kind)) {
		spatial.Attach(idx, e)
	}
	return e
}

func (g *Game) onShift(e core.Event) {
	ev := e.Payload.(streaming.ShiftEvent)
	d := mgl64.Vec2{-float64(ev.Units) * g.window.RegionSize(), 0}
	g.camera.Shift(d)
	g.mixer.Shift(d)
	log.Printf("origin shifted by %d regions, now at region %d", ev.Units, ev.Origin)
}

func (g *Game) dropCrate() {
	e := g.gameLoop.World.Spawn(core.SpawnParams{
		Kind:       kindCrate,
		Position:   g.player.Position(),
		Shifts:     true,
		Persistent: true,
	})
	spatial.Attach(g.crates, e)
}

func (g *Game) Update() error {
	g.input.Update()

	if g.input.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if g.input.IsKeyJustPressed(ebiten.KeyP) {
		g.gameLoop.Toggle()
	}
	if g.input.IsKeyJustPressed(ebiten.KeyN) && g.gameLoop.State == core.StatePaused {
		g.gameLoop.Step()
	}
	if g.input.IsKeyJustPressed(ebiten.KeyG) {
		g.overlay.ShowCells = !g.overlay.ShowCells
	}
	if g.input.IsKeyJustPressed(ebiten.KeyC) {
		g.dropCrate()
	}
	if g.input.IsKeyJustPressed(ebiten.KeyF) {
		g.window.Flush()
		log.Printf("flushed %d slots", len(g.window.Slots()))
	}

	speed := g.opts.speed
	if g.input.Pressed(ebiten.KeyShift) {
		speed *= 10
	}
	g.drive.V = mgl64.Vec2{
		g.input.Axis([]ebiten.Key{ebiten.KeyA, ebiten.KeyLeft}, []ebiten.Key{ebiten.KeyD, ebiten.KeyRight}),
		g.input.Axis([]ebiten.Key{ebiten.KeyW, ebiten.KeyUp}, []ebiten.Key{ebiten.KeyS, ebiten.KeyDown}),
	}.Mul(speed)

	if g.input.ScrollY != 0 {
		g.camera.ZoomAt(g.input.ScrollY*0.1, g.input.MouseX, g.input.MouseY)
	}
	if g.input.MiddleDragging() {
		g.camera.Pan(float64(-g.input.MouseDX), float64(-g.input.MouseDY))
	}

	// Game simulation tick
	g.gameLoop.Update()
	g.eventBus.Dispatch()

	g.camera.Follow(g.player.Position())
	g.mixer.SetListener(g.player.Position())
	g.voices = g.mixer.Mix(g.beacons)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 20, 30, 255})

	g.overlay.DrawCells(screen, g.crates)
	g.overlay.DrawSlots(screen, g.window)
	g.drawn = g.overlay.DrawEntities(screen, g.crates) + g.overlay.DrawEntities(screen, g.beacons)
	g.overlay.DrawMarker(screen, g.player, 6, color.RGBA{60, 120, 255, 255})

	g.drawHUD(screen)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	stats := g.window.Stats()
	start, end := g.window.ActiveRange()
	region, offset := g.window.AbsoluteX(g.player.Position()[0])
	loudest := 0.0
	if len(g.voices) > 0 {
		loudest = g.voices[0].Volume
	}

	info := fmt.Sprintf(
		"Runner Engine | FPS: %.0f | Tick: %d\n"+
			"Player: local %.2f, region %d + %.2fm | Origin: %d | Window: [%d, %d)\n"+
			"Entities: %d | Drawn: %d | Crates: %d in %d cells | Strays: %d\n"+
			"Shifts: %d | Loaded: %d | Generated: %d | Restored: %d | Persisted: %d | Failures: %d\n"+
			"Voices: %d (loudest %.2f) | Zoom: %.1fx\n"+
			"[WASD] Move [Shift] Sprint [C] Drop crate [F] Flush [G] Cells [P] Pause [N] Step [Esc] Quit",
		ebiten.ActualFPS(),
		g.gameLoop.CurrentTick(),
		g.player.Position()[0], region, offset, g.window.Origin(), start, end,
		g.gameLoop.World.EntityCount(), g.drawn, g.crates.Len(), g.crates.BucketCount(), g.window.Strays(),
		stats.Shifts, stats.Loaded, stats.Generated, stats.Restored, stats.Persisted, stats.Failures,
		len(g.voices), loudest, g.camera.Zoom,
	)

	ebitenutil.DebugPrint(screen, info)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close saves every loaded slot and releases the store
func (g *Game) Close() error {
	g.window.Flush()
	return g.store.Close()
}

func main() {
	var opts options
	flag.StringVar(&opts.dataDir, "data", "", "LevelDB directory for slot records (empty keeps them in memory)")
	flag.Float64Var(&opts.regionSize, "region", 256, "region length in meters")
	flag.IntVar(&opts.chunks, "chunks", 4, "slots per region")
	flag.Float64Var(&opts.cellSize, "cell", 16, "spatial index cell size in meters")
	flag.Float64Var(&opts.speed, "speed", 40, "player speed in meters per second")
	flag.StringVar(&opts.profile, "profile", "", "write a cpu or mem profile")
	flag.Parse()

	// log.Fatal skips deferred calls; everything needing cleanup lives in run
	if err := run(opts); err != nil {
		log.Fatal(err)
	}
}

func run(opts options) error {
	switch opts.profile {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", opts.profile)
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("Runner Engine")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)

	game, err := NewGame(opts)
	if err != nil {
		return err
	}

	runErr := ebiten.RunGame(game)
	if err := game.Close(); err != nil {
		log.Printf("closing store: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, ebiten.Termination) {
		return runErr
	}
	return nil
}
