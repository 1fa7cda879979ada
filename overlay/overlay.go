// Package overlay freezes board slots while their animations are pending
//
// The snapshot map holds, per slot key, either a frozen slot shown instead of the
// live one or nil meaning "draw nothing here". Keys absent from the map show live.
package overlay

import (
	"sync"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/event"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
	"github.com/AnsonYua/cardGameMobile-sub001/targeting"
)

// Option configures an Overlay
type Option func(*Overlay)

// WithSideResolver lets stat events locate their slot by owner and zone
func WithSideResolver(resolve board.SideResolver) Option {
	return func(o *Overlay) { o.resolve = resolve }
}

// Overlay is the render snapshot map for one or more notification batches
type Overlay struct {
	mu        sync.Mutex
	resolve   board.SideResolver
	snapshots map[string]*board.Slot
	running   map[string]int
	eventKeys map[string][]string
	live      map[string]board.Slot
}

// New builds the overlay for a batch
func New(events []event.AnimationEvent, prev, curr []board.Slot, opts ...Option) *Overlay {
	o := &Overlay{
		snapshots: make(map[string]*board.Slot),
		running:   make(map[string]int),
		eventKeys: make(map[string][]string),
		live:      make(map[string]board.Slot),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.Merge(events, prev, curr)
	return o
}

// Merge adds a later batch; keys already seeded keep their frozen copy
func (o *Overlay) Merge(events []event.AnimationEvent, prev, curr []board.Slot) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.setLiveLocked(curr)
	idx := newCardIndex(prev, curr)

	for _, ev := range events {
		if _, seen := o.eventKeys[ev.ID]; seen {
			continue
		}
		keys := o.keysFor(ev, idx, prev, curr)
		o.eventKeys[ev.ID] = keys
		for _, k := range keys {
			if _, seeded := o.snapshots[k]; seeded {
				continue
			}
			if s, ok := idx.slot(k); ok {
				c := s.Clone()
				o.snapshots[k] = &c
			}
		}
	}
}

// keysFor lists the slot keys an event touches, in first-touch order
func (o *Overlay) keysFor(ev event.AnimationEvent, idx cardIndex, prev, curr []board.Slot) []string {
	var keys []string
	add := func(k string) {
		if k == "" {
			return
		}
		for _, have := range keys {
			if have == k {
				return
			}
		}
		keys = append(keys, k)
	}

	for _, uid := range ev.CardUIDs {
		if s, ok := idx.byCard(uid); ok {
			add(s.Key())
		}
	}

	switch p := ev.Note.Payload.(type) {
	case *notification.StatModifiedPayload:
		add(o.statKey(p, prev, curr))
	case *notification.AttackPayload:
		add(attackerKey(p, prev, curr, o.resolve))
	}
	return keys
}

func (o *Overlay) statKey(p *notification.StatModifiedPayload, slotSets ...[]board.Slot) string {
	ctx := targeting.Context{ResolveSide: o.resolve}
	for _, slots := range slotSets {
		if key, _, ok := targeting.ResolveStatSlot(p, slots, ctx); ok {
			return key
		}
	}
	return ""
}

func attackerKey(p *notification.AttackPayload, prev, curr []board.Slot, resolve board.SideResolver) string {
	for _, slots := range [][]board.Slot{prev, curr} {
		owner := targeting.AttackerOwner(p, slots, resolve)
		if s, ok := targeting.ResolveAttackerSlot(p, slots, owner); ok {
			return s.Key()
		}
	}
	return ""
}

// HandleEventStart marks the event's keys running and applies its immediate visual state
// Stat deltas land on the frozen copy now so the pulse shows post-change numbers
func (o *Overlay) HandleEventStart(ev event.AnimationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys, ok := o.eventKeys[ev.ID]
	if !ok {
		// Event was never merged; index it against the live board
		live := o.liveSlotsLocked()
		keys = o.keysFor(ev, newCardIndex(nil, live), nil, live)
		o.eventKeys[ev.ID] = keys
		for _, k := range keys {
			if _, seeded := o.snapshots[k]; !seeded {
				if s, ok := o.live[k]; ok {
					c := s.Clone()
					o.snapshots[k] = &c
				}
			}
		}
	}
	for _, k := range keys {
		o.running[k]++
	}

	switch p := ev.Note.Payload.(type) {
	case *notification.StatModifiedPayload:
		delta := p.Amount()
		if delta == 0 {
			return
		}
		key := o.statKey(p, o.snapshotSlotsLocked())
		if key == "" {
			key = o.statKey(p, o.liveSlotsLocked())
		}
		if snap := o.snapshots[key]; snap != nil {
			snap.ApplyStatDelta(p.StatKey(), delta)
		}
	case *notification.AttackPayload:
		if ev.Type != notification.TypeAttackDeclared {
			return
		}
		if key := attackerKey(p, o.snapshotSlotsLocked(), nil, o.resolve); key != "" {
			if snap := o.snapshots[key]; snap != nil {
				snap.IsRested = true
			}
		}
	}
}

// HandleEventEnd un-marks the event's keys
// Stat and attack snapshots are kept: the live slot may already show a later, unplayed change
// Every other type commits the live slot back, or nil when it is gone
func (o *Overlay) HandleEventEnd(ev event.AnimationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys := o.eventKeys[ev.ID]
	for _, k := range keys {
		if o.running[k] <= 1 {
			delete(o.running, k)
		} else {
			o.running[k]--
		}
	}

	if ev.Type == notification.TypeStatModified || ev.IsAttack() {
		return
	}
	for _, k := range keys {
		if s, ok := o.live[k]; ok {
			c := s.Clone()
			o.snapshots[k] = &c
		} else {
			o.snapshots[k] = nil
		}
	}
}

// UpdateLive records the newest live slots
func (o *Overlay) UpdateLive(slots []board.Slot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.setLiveLocked(slots)
}

// BuildSlotsForRender merges live slots with the snapshot map
// Running keys are omitted, snapshots substitute (nil omits), snapshot-only keys are appended
func (o *Overlay) BuildSlotsForRender(curr []board.Slot) []board.Slot {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]board.Slot, 0, len(curr))
	seen := make(map[string]struct{}, len(curr))
	for _, s := range curr {
		k := s.Key()
		seen[k] = struct{}{}
		if o.running[k] > 0 {
			continue
		}
		if snap, ok := o.snapshots[k]; ok {
			if snap != nil {
				out = append(out, snap.Clone())
			}
			continue
		}
		out = append(out, s)
	}

	for k, snap := range o.snapshots {
		if _, ok := seen[k]; ok || snap == nil || o.running[k] > 0 {
			continue
		}
		out = append(out, snap.Clone())
	}

	board.SortSlots(out)
	return out
}

// Snapshot returns a copy of the frozen slot for key
// ok is false when the key is absent; a nil slot with ok means the slot is hidden
func (o *Overlay) Snapshot(key string) (*board.Slot, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap, ok := o.snapshots[key]
	if !ok || snap == nil {
		return nil, ok
	}
	c := snap.Clone()
	return &c, true
}

// Running reports whether an in-flight event hides key
func (o *Overlay) Running(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.running[key] > 0
}

// Keys returns the slot keys recorded for an event
func (o *Overlay) Keys(eventID string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.eventKeys[eventID]...)
}

// Len returns the number of snapshot entries
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.snapshots)
}

// Reset drops every snapshot, running mark and event index
func (o *Overlay) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	clear(o.snapshots)
	clear(o.running)
	clear(o.eventKeys)
}

func (o *Overlay) setLiveLocked(slots []board.Slot) {
	clear(o.live)
	for _, s := range slots {
		o.live[s.Key()] = s
	}
}

func (o *Overlay) liveSlotsLocked() []board.Slot {
	out := make([]board.Slot, 0, len(o.live))
	for _, s := range o.live {
		out = append(out, s)
	}
	board.SortSlots(out)
	return out
}

func (o *Overlay) snapshotSlotsLocked() []board.Slot {
	out := make([]board.Slot, 0, len(o.snapshots))
	for _, s := range o.snapshots {
		if s != nil {
			out = append(out, *s)
		}
	}
	board.SortSlots(out)
	return out
}
