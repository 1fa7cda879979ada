package board

import (
	"sort"
	"strconv"
	"strings"
)

// Owner is the board side a slot belongs to, relative to the local player
type Owner string

const (
	OwnerPlayer   Owner = "player"
	OwnerOpponent Owner = "opponent"
)

// Opposite returns the other side
func (o Owner) Opposite() Owner {
	if o == OwnerOpponent {
		return OwnerPlayer
	}
	return OwnerOpponent
}

// IsOpponent reports whether the side is drawn at the top of the board
func (o Owner) IsOpponent() bool {
	return o == OwnerOpponent
}

// SideResolver maps a server player id to a board side, stable per game session
type SideResolver func(playerID string) (Owner, bool)

// SelfSide returns a resolver treating selfID as the local player and any other id as the opponent
func SelfSide(selfID string) SideResolver {
	return func(playerID string) (Owner, bool) {
		if playerID == "" {
			return "", false
		}
		if playerID == selfID {
			return OwnerPlayer, true
		}
		return OwnerOpponent, true
	}
}

// Point is a screen position in terminal cells; fractional values come from tweens
type Point struct {
	X, Y float64
}

// Lerp interpolates between p and q, t clamped to [0,1]
func (p Point) Lerp(q Point, t float64) Point {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Size is a width/height pair in terminal cells
type Size struct {
	W, H float64
}

// CardView is the renderable identity of one card
type CardView struct {
	UID        string `json:"carduid"`
	CardID     string `json:"cardId,omitempty"`
	Name       string `json:"name,omitempty"`
	AP         int    `json:"ap,omitempty"`
	HP         int    `json:"hp,omitempty"`
	TextureKey string `json:"textureKey,omitempty"`
}

// FieldCardValue holds the combined unit+pilot totals computed by the server
type FieldCardValue struct {
	TotalAP int `json:"totalAP"`
	TotalHP int `json:"totalHP"`
}

// Slot is the renderable state of one board cell
// Live slots are shared; use Clone before changing anything
type Slot struct {
	Owner          Owner
	SlotID         string
	Unit           *CardView
	Pilot          *CardView
	IsRested       bool
	AP             int
	HP             int
	FieldCardValue *FieldCardValue
}

// Key returns the "owner-slotId" map key of a slot
func Key(owner Owner, slotID string) string {
	return string(owner) + "-" + slotID
}

// Key returns the slot's map key
func (s Slot) Key() string {
	return Key(s.Owner, s.SlotID)
}

// Clone returns a deep copy safe to mutate
func (s Slot) Clone() Slot {
	c := s
	if s.Unit != nil {
		u := *s.Unit
		c.Unit = &u
	}
	if s.Pilot != nil {
		p := *s.Pilot
		c.Pilot = &p
	}
	if s.FieldCardValue != nil {
		f := *s.FieldCardValue
		c.FieldCardValue = &f
	}
	return c
}

// IsEmpty reports whether no card occupies the slot
func (s Slot) IsEmpty() bool {
	return s.Unit == nil && s.Pilot == nil
}

// HasCard reports whether the unit or pilot has the given uid
func (s Slot) HasCard(uid string) bool {
	if uid == "" {
		return false
	}
	return (s.Unit != nil && s.Unit.UID == uid) || (s.Pilot != nil && s.Pilot.UID == uid)
}

// Card returns the card with uid, or the unit when uid is empty
func (s Slot) Card(uid string) (CardView, bool) {
	switch {
	case uid != "" && s.Unit != nil && s.Unit.UID == uid:
		return *s.Unit, true
	case uid != "" && s.Pilot != nil && s.Pilot.UID == uid:
		return *s.Pilot, true
	case uid == "" && s.Unit != nil:
		return *s.Unit, true
	}
	return CardView{}, false
}

// CardUIDs returns the uids of cards in the slot
func (s Slot) CardUIDs() []string {
	var out []string
	if s.Unit != nil && s.Unit.UID != "" {
		out = append(out, s.Unit.UID)
	}
	if s.Pilot != nil && s.Pilot.UID != "" {
		out = append(out, s.Pilot.UID)
	}
	return out
}

// ApplyStatDelta adds delta to the named stat ("ap" or "hp") on a clone-owned slot
// Both the slot value and the field totals move so renderers agree on the number
func (s *Slot) ApplyStatDelta(stat string, delta int) bool {
	switch strings.ToLower(stat) {
	case "ap":
		s.AP += delta
		if s.FieldCardValue != nil {
			s.FieldCardValue.TotalAP += delta
		}
	case "hp":
		s.HP += delta
		if s.FieldCardValue != nil {
			s.FieldCardValue.TotalHP += delta
		}
	default:
		return false
	}
	return true
}

// Find returns the slot with the given owner and slot id
func Find(slots []Slot, owner Owner, slotID string) (Slot, bool) {
	for _, s := range slots {
		if s.Owner == owner && s.SlotID == slotID {
			return s, true
		}
	}
	return Slot{}, false
}

// FindByKey returns the slot with the given key
func FindByKey(slots []Slot, key string) (Slot, bool) {
	for _, s := range slots {
		if s.Key() == key {
			return s, true
		}
	}
	return Slot{}, false
}

// FindByCard returns the slot holding the card uid
func FindByCard(slots []Slot, uid string) (Slot, bool) {
	if uid == "" {
		return Slot{}, false
	}
	for _, s := range slots {
		if s.HasCard(uid) {
			return s, true
		}
	}
	return Slot{}, false
}

// SlotIndex parses the 1-based index out of ids like "slot3"
func SlotIndex(slotID string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.ToLower(slotID), "slot")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// SortSlots orders slots player side first, then by slot index
func SortSlots(slots []Slot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Owner != slots[j].Owner {
			return slots[i].Owner == OwnerPlayer
		}
		a, _ := SlotIndex(slots[i].SlotID)
		b, _ := SlotIndex(slots[j].SlotID)
		if a != b {
			return a < b
		}
		return slots[i].SlotID < slots[j].SlotID
	})
}
