// Package audio mixes positional sound sources found through a spatial index.
package audio

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/1siamBot/runner-engine/engine/core"
	"github.com/1siamBot/runner-engine/engine/spatial"
)

// Voice is one audible source with its mixed gain and stereo pan
type Voice struct {
	Entity *core.Entity
	Volume float64 // 0..1
	Pan    float64 // -1 left .. 1 right
}

// AudioManager holds the listener and the volume settings
type AudioManager struct {
	MasterVolume float64
	SFXVolume    float64
	// MaxDistance is the range beyond which sources are silent
	MaxDistance float64
	// MaxVoices caps the mix; the loudest voices win. Zero means no cap.
	MaxVoices int

	listener mgl64.Vec2
}

func NewAudioManager() *AudioManager {
	return &AudioManager{
		MasterVolume: 1.0,
		SFXVolume:    0.8,
		MaxDistance:  30.0,
		MaxVoices:    16,
	}
}

// SetListener updates the listener position for positional audio
func (am *AudioManager) SetListener(p mgl64.Vec2) {
	am.listener = p
}

// Listener returns the listener position
func (am *AudioManager) Listener() mgl64.Vec2 { return am.listener }

// Shift moves the listener along with an origin shift of the world
func (am *AudioManager) Shift(d mgl64.Vec2) {
	am.listener = am.listener.Add(d)
}

// Mix returns the audible sources of every index, loudest first
func (am *AudioManager) Mix(indexes ...*spatial.Index) []Voice {
	area := core.RectAround(am.listener, am.MaxDistance)
	var voices []Voice
	for _, idx := range indexes {
		idx.Query(area, func(c *spatial.Chunked) bool {
			e := c.Entity()
			if vol := am.calcVolume(e.Position()); vol > 0 {
				voices = append(voices, Voice{Entity: e, Volume: vol, Pan: am.calcPan(e.Position())})
			}
			return true
		})
	}
	sort.SliceStable(voices, func(i, j int) bool { return voices[i].Volume > voices[j].Volume })
	if am.MaxVoices > 0 && len(voices) > am.MaxVoices {
		voices = voices[:am.MaxVoices]
	}
	return voices
}

// calcVolume computes volume based on distance from the listener
func (am *AudioManager) calcVolume(p mgl64.Vec2) float64 {
	dist := p.Sub(am.listener).Len()
	if dist >= am.MaxDistance {
		return 0
	}
	return (1.0 - dist/am.MaxDistance) * am.SFXVolume * am.MasterVolume
}

func (am *AudioManager) calcPan(p mgl64.Vec2) float64 {
	return math.Max(-1, math.Min(1, (p[0]-am.listener[0])/am.MaxDistance))
}

// SetVolume sets master volume (0-1)
func (am *AudioManager) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	am.MasterVolume = v
}
