// Package persist stores the entities of unloaded regions. The engine only
// supplies fixed-point offsets and opaque payloads; how a record becomes bytes
// is up to the Codec and where the bytes go is up to the Store.
package persist

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/image/math/fixed"
)

// FormatVersion is written into every record
const FormatVersion = 1

// EntityRecord is one persisted entity, positioned relative to the origin of
// the slot it was saved from. Every recorded entity is persistent; Static
// marks one that does not take part in origin shifts.
type EntityRecord struct {
	ID       uuid.UUID       `json:"id"`
	Kind     string          `json:"kind,omitempty"`
	Offset   fixed.Point26_6 `json:"offset"`
	Rotation float64         `json:"rotation,omitempty"`
	Static   bool            `json:"static,omitempty"`
	Payload  []byte          `json:"payload,omitempty"`
}

// Record holds every persistent entity of one slot
type Record struct {
	Version  int            `json:"version"`
	Region   int            `json:"region"`
	Index    int            `json:"index"`
	Entities []EntityRecord `json:"entities"`
}

// SlotKey returns the storage key of a slot: "{region}_{index}"
func SlotKey(region, index int) string {
	return fmt.Sprintf("%d_%d", region, index)
}

// Key returns the storage key of the record
func (r *Record) Key() string {
	return SlotKey(r.Region, r.Index)
}
