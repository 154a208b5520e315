// Package streaming keeps an unbounded world inside the precision-safe range
// of floating point coordinates.
//
// A Window covers a fixed number of regions along x around an origin region.
// When the reference position (camera, player) strays more than one region
// from the origin, the window slides by whole regions: slots that leave it
// are persisted and unloaded, every shifting entity is translated back
// towards zero, and slots that enter it are restored from their records or
// generated from scratch. The whole shift runs synchronously inside
// KeepOriginNear.
package streaming

import (
	"errors"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/fixedpoint"
	"github.com/1siamBot/runner-engine/engine/persist"
)

// ErrReentrantShift is the panic value when KeepOriginNear is called from
// inside a shift, e.g. by a generator
var ErrReentrantShift = errors.New("streaming: KeepOriginNear called during a shift")

// Stats counts window activity
type Stats struct {
	Shifts    int
	Loaded    int
	Unloaded  int
	Restored  int // entities rebuilt from records
	Generated int // slots handed to the generator
	Persisted int // records written
	Failures  int // store or codec failures
}

// ShiftEvent is the payload of core.EvtOriginShifted
type ShiftEvent struct {
	Units  int
	Origin int
}

// SlotEvent is the payload of slot load/unload/generate events
type SlotEvent struct {
	Key      string
	Region   int
	Index    int
	Entities int
}

// PersistFailure is the payload of core.EvtPersistFailed
type PersistFailure struct {
	Key string
	Op  string
	Err error
}

// Window is the sliding set of slots around the origin region
type Window struct {
	conf  Config
	world *core.World
	log   *slog.Logger

	chunkWidth float64
	regions    int
	origin     int // origin in regions

	slots  []*Slot
	strays map[*member]struct{}

	busy  bool
	stats Stats
}

// New creates a window over world and starts tracking its entities. Nothing
// is loaded until the first KeepOriginNear.
func New(world *core.World, conf Config) (*Window, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	conf = conf.withDefaults()
	w := &Window{
		conf:       conf,
		world:      world,
		log:        conf.Log.With("component", "streaming"),
		chunkWidth: conf.RegionSize / float64(conf.ChunksPerRegion),
		regions:    conf.RegionsBehind + conf.RegionsAhead + 1,
		strays:     make(map[*member]struct{}),
	}
	w.slots = make([]*Slot, 0, w.regions*conf.ChunksPerRegion)
	start, _ := w.ActiveRange()
	for g := 0; g < w.regions; g++ {
		for i := 0; i < conf.ChunksPerRegion; i++ {
			w.slots = append(w.slots, &Slot{window: w, index: i})
		}
	}
	w.relabel(start)

	world.Each(w.track)
	world.OnSpawn(w.track)
	return w, nil
}

// Origin returns the absolute region at local x = 0
func (w *Window) Origin() int { return w.origin }

// ActiveRange returns the half-open range of absolute regions in the window
func (w *Window) ActiveRange() (start, end int) {
	return w.origin - w.conf.RegionsBehind, w.origin + w.conf.RegionsAhead + 1
}

// Slots returns every slot, grouped by region ring position
func (w *Window) Slots() []*Slot { return w.slots }

// Stats returns the activity counters
func (w *Window) Stats() Stats { return w.stats }

// Strays returns the number of tracked entities outside every slot
func (w *Window) Strays() int { return len(w.strays) }

// RegionSize returns the region length in meters
func (w *Window) RegionSize() float64 { return w.conf.RegionSize }

// SlotAt returns the slot covering local x, or nil outside the window
func (w *Window) SlotAt(x float64) *Slot {
	return w.slotForChunk(w.chunkOf(x))
}

// SlotOf returns the slot an entity is filed in, or nil
func (w *Window) SlotOf(e *core.Entity) *Slot {
	if m, ok := core.Find[*member](e); ok && m.window == w {
		return m.slot
	}
	return nil
}

// AbsoluteX splits a local x into its absolute region and the offset inside it
func (w *Window) AbsoluteX(x float64) (region int, offset float64) {
	n := math.Floor(x / w.conf.RegionSize)
	return w.origin + int(n), x - n*w.conf.RegionSize
}

// KeepOriginNear slides the window so the origin stays within one region of
// ref, then loads any slot that is not loaded yet. It returns the number of
// regions shifted. Call it once per frame, after movement and before any
// range query.
func (w *Window) KeepOriginNear(ref mgl64.Vec2) int {
	if !core.Finite(ref) {
		panic(&core.InvalidPositionError{Position: ref})
	}
	if w.busy {
		panic(ErrReentrantShift)
	}
	w.busy = true
	defer func() { w.busy = false }()

	units := w.shiftUnits(ref[0])
	if units != 0 {
		w.shift(units)
	}
	w.loadSweep()
	return units
}

func (w *Window) shiftUnits(x float64) int {
	if math.Abs(x) <= w.conf.RegionSize {
		return 0
	}
	return int(x / w.conf.RegionSize)
}

func (w *Window) shift(units int) {
	prevOrigin := w.origin
	w.origin += units
	start, end := w.ActiveRange()

	var outgoing []*Slot
	leaving := make(map[*Slot]bool)
	for _, s := range w.slots {
		if s.region < start || s.region >= end {
			outgoing = append(outgoing, s)
			leaving[s] = true
		}
	}
	// Records are built for every outgoing slot before anything is destroyed,
	// so a parent destroyed from one slot cannot take a child out of another
	// slot's record.
	for _, s := range outgoing {
		if s.loaded {
			w.persist(s, prevOrigin)
		}
	}
	for _, s := range outgoing {
		w.unload(s, leaving)
	}

	delta := mgl64.Vec2{-float64(units) * w.conf.RegionSize, 0}
	for _, e := range w.world.Entities() {
		if e.Alive() && e.Shifts() && !shiftingAncestor(e) {
			e.Translate(delta)
		}
	}

	w.relabel(start)
	// Entities that were not translated keep their local x, which now lies
	// in a different absolute chunk.
	w.refileAll()
	w.stats.Shifts++
	w.log.Debug("origin shifted", "units", units, "origin", w.origin, "unloaded", len(outgoing))
	w.emit(core.EvtOriginShifted, ShiftEvent{Units: units, Origin: w.origin})
}

// shiftingAncestor reports whether a parent up the chain shifts, in which
// case e follows it and must not be translated twice
func shiftingAncestor(e *core.Entity) bool {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if p.Shifts() {
			return true
		}
	}
	return false
}

// relabel assigns every region ring position the absolute region of the
// active range that maps onto it. Slots whose label changes become dirty.
func (w *Window) relabel(start int) {
	k := w.conf.ChunksPerRegion
	for g := 0; g < w.regions; g++ {
		region := start + mod(g-start, w.regions)
		for i := 0; i < k; i++ {
			s := w.slots[g*k+i]
			if s.region != region || !s.loaded {
				s.region = region
				s.loaded = false
				s.dirty = true
			}
		}
	}
}

func (w *Window) loadSweep() {
	loadedAny := false
	for _, s := range w.slots {
		if s.dirty || !s.loaded {
			w.load(s)
			loadedAny = true
		}
	}
	if loadedAny {
		for m := range w.strays {
			w.file(m)
		}
	}
}

// persist writes the persistent entities of s as offsets from the slot
// origin in the frame given by origin. A slot with nothing persistent leaves
// no record behind.
func (w *Window) persist(s *Slot, origin int) {
	base := s.originIn(origin)
	rec := &persist.Record{
		Version: persist.FormatVersion,
		Region:  s.region,
		Index:   s.index,
	}
	for _, m := range s.members {
		e := m.entity
		if !e.Persistent() {
			continue
		}
		rec.Entities = append(rec.Entities, persist.EntityRecord{
			ID:       e.ID(),
			Kind:     e.Kind(),
			Offset:   fixedpoint.EncodeVec(e.Position().Sub(base)),
			Rotation: e.Rotation(),
			Static:   !e.Shifts(),
			Payload:  e.Payload(),
		})
	}
	key := s.Key()
	if len(rec.Entities) == 0 {
		if err := w.conf.Store.Delete(key); err != nil {
			w.fail(key, "delete", err)
		}
		return
	}
	data, err := w.conf.Codec.Marshal(rec)
	if err != nil {
		w.fail(key, "marshal", err)
		return
	}
	if err := w.conf.Store.Save(key, data); err != nil {
		w.fail(key, "save", err)
		return
	}
	w.stats.Persisted++
}

// unload destroys the shifting entities of s and drops the others from
// tracking; their owners manage them. Tracked descendants filed in a slot
// that stays loaded are cut loose first so they survive their parent.
func (w *Window) unload(s *Slot, leaving map[*Slot]bool) {
	members := append([]*member(nil), s.members...)
	for _, m := range members {
		e := m.entity
		if !e.Alive() {
			continue
		}
		if e.Shifts() {
			w.release(e, leaving)
			w.world.Destroy(e)
		} else {
			e.Detach(m)
		}
	}
	wasLoaded := s.loaded
	s.loaded = false
	if wasLoaded {
		w.stats.Unloaded++
		w.emit(core.EvtSlotUnloaded, SlotEvent{Key: s.Key(), Region: s.region, Index: s.index, Entities: len(members)})
	}
}

// release detaches every tracked descendant of e that is not filed in a
// leaving slot. Untracked children stay with e.
func (w *Window) release(e *core.Entity, leaving map[*Slot]bool) {
	children := append([]*core.Entity(nil), e.Children()...)
	for _, c := range children {
		if m, ok := core.Find[*member](c); ok && m.window == w && !leaving[m.slot] {
			c.SetParent(nil)
			continue
		}
		w.release(c, leaving)
	}
}

// refileAll re-files every tracked entity against the current labels
func (w *Window) refileAll() {
	var all []*member
	for _, s := range w.slots {
		all = append(all, s.members...)
	}
	for m := range w.strays {
		all = append(all, m)
	}
	for _, m := range all {
		w.file(m)
	}
}

func (w *Window) load(s *Slot) {
	key := s.Key()
	rec := w.readRecord(key)
	if rec != nil {
		origin := s.Origin()
		for _, er := range rec.Entities {
			pos := origin.Add(fixedpoint.DecodeVec(er.Offset))
			if e := w.conf.Restore(w.world, s, er, pos); e != nil {
				w.stats.Restored++
			}
		}
	} else {
		w.conf.Generator.Generate(w.world, s)
		w.stats.Generated++
		w.emit(core.EvtSlotGenerated, SlotEvent{Key: key, Region: s.region, Index: s.index, Entities: len(s.members)})
	}
	s.loaded = true
	s.dirty = false
	w.stats.Loaded++
	w.emit(core.EvtSlotLoaded, SlotEvent{Key: key, Region: s.region, Index: s.index, Entities: len(s.members)})
}

// readRecord returns nil when the slot has to be generated: either nothing
// was stored or the stored record could not be read.
func (w *Window) readRecord(key string) *persist.Record {
	data, err := w.conf.Store.Load(key)
	if errors.Is(err, persist.ErrNotFound) {
		return nil
	}
	if err != nil {
		w.fail(key, "load", err)
		return nil
	}
	rec, err := w.conf.Codec.Unmarshal(data)
	if err != nil {
		w.fail(key, "unmarshal", err)
		return nil
	}
	return rec
}

// Flush persists every loaded slot without unloading it. Call it before
// shutting down.
func (w *Window) Flush() {
	for _, s := range w.slots {
		if s.loaded {
			w.persist(s, w.origin)
		}
	}
}

func (w *Window) fail(key, op string, err error) {
	w.stats.Failures++
	w.log.Warn("slot persistence failed", "key", key, "op", op, "err", err)
	w.emit(core.EvtPersistFailed, PersistFailure{Key: key, Op: op, Err: err})
}

func (w *Window) emit(t core.EventType, payload interface{}) {
	w.conf.Events.Emit(core.Event{Type: t, Tick: w.world.TickCount, Payload: payload})
}

// track starts region membership for top-level or shifting entities.
// Children that follow a parent without shifting are left to the parent.
func (w *Window) track(e *core.Entity) {
	if !e.Shifts() && e.Parent() != nil {
		return
	}
	e.Attach(&member{window: w})
}

func (w *Window) chunkOf(x float64) int {
	return w.origin*w.conf.ChunksPerRegion + int(math.Floor(x/w.chunkWidth))
}

func (w *Window) slotForChunk(c int) *Slot {
	k := w.conf.ChunksPerRegion
	region := floorDiv(c, k)
	s := w.slots[mod(region, w.regions)*k+(c-region*k)]
	if s.region != region {
		return nil
	}
	return s
}

func (w *Window) file(m *member) {
	s := w.slotForChunk(w.chunkOf(m.entity.Position()[0]))
	if s == m.slot && (s != nil || m.stray) {
		return
	}
	if m.slot != nil {
		m.slot.remove(m)
	}
	if s == nil {
		m.stray = true
		w.strays[m] = struct{}{}
		return
	}
	if m.stray {
		m.stray = false
		delete(w.strays, m)
	}
	s.add(m)
}

func (w *Window) unfile(m *member) {
	if m.slot != nil {
		m.slot.remove(m)
	}
	if m.stray {
		m.stray = false
		delete(w.strays, m)
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
