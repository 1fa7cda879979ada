package battle

import (
	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
	"github.com/AnsonYua/cardGameMobile-sub001/targeting"
)

// LockedSlots returns a copy of the locked-slot map
// A locked key is authoritative over the live board
func (e *Engine) LockedSlots() map[string]board.Slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]board.Slot, len(e.locks))
	for k, l := range e.locks {
		out[k] = l.slot.Clone()
	}
	return out
}

// lock takes keys for attack id; a key held by another attack changes hands
func (e *Engine) lock(id string, slots map[string]board.Slot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, s := range slots {
		e.locks[k] = lockEntry{slot: s, owner: id}
	}
	e.lockedGauge.Store(int64(len(e.locks)))
}

// release drops every key held by attack id and returns how many were removed
func (e *Engine) release(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for k, l := range e.locks {
		if l.owner == id {
			delete(e.locks, k)
			n++
		}
	}
	e.lockedGauge.Store(int64(len(e.locks)))
	return n
}

// releaseStale drops keys of a replaced snapshot that the new capture no longer locks
func (e *Engine) releaseStale(id string, old Snapshot, keep map[string]board.Slot) {
	seeds := []stage.SpriteSeed{old.Attacker}
	if old.Target != nil {
		seeds = append(seeds, *old.Target)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range seeds {
		k := board.Key(s.Owner, s.SlotID)
		if _, kept := keep[k]; kept {
			continue
		}
		if l, ok := e.locks[k]; ok && l.owner == id {
			delete(e.locks, k)
		}
	}
	e.lockedGauge.Store(int64(len(e.locks)))
}

// releaseInferred unlocks keys a resolution payload names when no snapshot is pending
func (e *Engine) releaseInferred(id string, p *notification.AttackPayload) int {
	n := e.release(id)

	keys := make(map[string]struct{}, 2)
	attacker := targeting.AttackerOwner(p, nil, e.resolve)
	if slot := p.AttackerSlotID(); slot != "" {
		keys[board.Key(attacker, slot)] = struct{}{}
	}
	if slot := p.TargetSlotID(); slot != "" && !p.TargetsBase() && !p.TargetsShield() {
		keys[board.Key(targeting.DefenderOwner(p, attacker, e.resolve), slot)] = struct{}{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for k, l := range e.locks {
		_, named := keys[k]
		if named || l.slot.HasCard(p.AttackerCardUID) || l.slot.HasCard(p.TargetUID()) {
			delete(e.locks, k)
			n++
		}
	}
	e.lockedGauge.Store(int64(len(e.locks)))
	return n
}
