package battle

import (
	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
	"github.com/AnsonYua/cardGameMobile-sub001/targeting"
)

// View is the board a capture reads from
// Previous is consulted when a card already left Slots
type View struct {
	Slots     []board.Slot
	Previous  []board.Slot
	Positions board.Positions
	SlotSize  board.Size
	Targeting targeting.Context
}

// Snapshot is the attack geometry captured at declaration time
type Snapshot struct {
	Attacker    stage.SpriteSeed
	Target      *stage.SpriteSeed
	TargetPoint board.Point
}

// TextureKey synthesizes the texture key for a card known only from a payload
func TextureKey(cardID, uid string) string {
	if cardID != "" {
		return "card-" + cardID
	}
	return "card-" + uid
}

// slotSeed builds a seed from a live slot; uid selects unit or pilot
func slotSeed(s board.Slot, uid string, pos board.Point, size board.Size) (stage.SpriteSeed, bool) {
	card, ok := s.Card(uid)
	if !ok {
		card, ok = s.Card("")
	}
	if !ok {
		return stage.SpriteSeed{}, false
	}
	if card.TextureKey == "" {
		card.TextureKey = TextureKey(card.CardID, card.UID)
	}
	return stage.SpriteSeed{
		Owner:      s.Owner,
		SlotID:     s.SlotID,
		Card:       card,
		Position:   pos,
		Size:       size,
		IsOpponent: s.Owner.IsOpponent(),
	}, true
}

// payloadSeed builds a seed from payload fields when the card already left the board
func payloadSeed(owner board.Owner, slotID, uid, name string, pos board.Point, size board.Size) stage.SpriteSeed {
	return stage.SpriteSeed{
		Owner:  owner,
		SlotID: slotID,
		Card: board.CardView{
			UID:        uid,
			Name:       name,
			TextureKey: TextureKey("", uid),
		},
		Position:   pos,
		Size:       size,
		IsOpponent: owner.IsOpponent(),
	}
}

// lockSlot is the frozen slot shown while a seed's sprite animates
func lockSlot(found board.Slot, ok bool, seed stage.SpriteSeed) board.Slot {
	if ok {
		return found.Clone()
	}
	card := seed.Card
	return board.Slot{Owner: seed.Owner, SlotID: seed.SlotID, Unit: &card}
}

// findSlot locates a combatant: by card uid on either board first, then through find
// A slot that exists but holds no card does not count, so an emptied cell falls through to Previous
func findSlot(v View, uid string, find func([]board.Slot) (board.Slot, bool)) (board.Slot, bool) {
	boards := [][]board.Slot{v.Slots, v.Previous}
	if uid != "" {
		for _, slots := range boards {
			if s, ok := board.FindByCard(slots, uid); ok {
				return s, true
			}
		}
	}
	for _, slots := range boards {
		if s, ok := find(slots); ok && !s.IsEmpty() {
			return s, true
		}
	}
	return board.Slot{}, false
}
