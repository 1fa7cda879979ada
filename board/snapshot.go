package board

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/AnsonYua/cardGameMobile-sub001/notification"
)

// Snapshot is the full game state delivered by the server on every poll
type Snapshot struct {
	GameID        string                      `json:"gameId"`
	Version       int64                       `json:"version"`
	Players       map[string]PlayerState      `json:"players"`
	Notifications []notification.Notification `json:"notificationQueue"`
}

// PlayerState is one player's zones keyed by zone id ("slot1".."slot6", "base", ...)
type PlayerState struct {
	Zones map[string]ZoneState `json:"zones"`
}

// ZoneState is the raw content of one zone
type ZoneState struct {
	Unit           *CardView       `json:"unit,omitempty"`
	Pilot          *CardView       `json:"pilot,omitempty"`
	IsRested       bool            `json:"isRested,omitempty"`
	FieldCardValue *FieldCardValue `json:"fieldCardValue,omitempty"`
}

// DecodeSnapshot parses a raw JSON snapshot
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// SnapshotToSlots projects a raw snapshot into slot view-models
// Only "slotN" zones become slots; players the resolver cannot place are skipped
// Empty slot zones are kept so renderers can draw the cell outline
func SnapshotToSlots(raw *Snapshot, side SideResolver) []Slot {
	if raw == nil {
		return nil
	}

	playerIDs := make([]string, 0, len(raw.Players))
	for id := range raw.Players {
		playerIDs = append(playerIDs, id)
	}
	sort.Strings(playerIDs)

	var slots []Slot
	for _, pid := range playerIDs {
		owner, ok := side(pid)
		if !ok {
			continue
		}
		for zoneID, z := range raw.Players[pid].Zones {
			if _, isSlot := SlotIndex(zoneID); !isSlot {
				continue
			}
			slots = append(slots, zoneToSlot(owner, zoneID, z))
		}
	}

	SortSlots(slots)
	return slots
}

func zoneToSlot(owner Owner, slotID string, z ZoneState) Slot {
	s := Slot{
		Owner:    owner,
		SlotID:   slotID,
		IsRested: z.IsRested,
	}
	if z.Unit != nil {
		u := *z.Unit
		s.Unit = &u
		s.AP += u.AP
		s.HP += u.HP
	}
	if z.Pilot != nil {
		p := *z.Pilot
		s.Pilot = &p
		s.AP += p.AP
		s.HP += p.HP
	}
	if z.FieldCardValue != nil {
		f := *z.FieldCardValue
		s.FieldCardValue = &f
		s.AP = f.TotalAP
		s.HP = f.TotalHP
	}
	return s
}
