package overlay

import "github.com/AnsonYua/cardGameMobile-sub001/board"

// cardIndex locates cards and slots, preferring the pre-batch board
type cardIndex struct {
	cards map[string]board.Slot
	slots map[string]board.Slot
}

func newCardIndex(prev, curr []board.Slot) cardIndex {
	idx := cardIndex{
		cards: make(map[string]board.Slot),
		slots: make(map[string]board.Slot),
	}
	// curr first so prev overwrites it
	for _, set := range [][]board.Slot{curr, prev} {
		for _, s := range set {
			idx.slots[s.Key()] = s
			for _, uid := range s.CardUIDs() {
				idx.cards[uid] = s
			}
		}
	}
	return idx
}

func (i cardIndex) byCard(uid string) (board.Slot, bool) {
	s, ok := i.cards[uid]
	return s, ok
}

func (i cardIndex) slot(key string) (board.Slot, bool) {
	s, ok := i.slots[key]
	return s, ok
}
