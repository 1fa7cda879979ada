// Package targeting computes the screen points attacks and effects aim at
// Everything here is a pure function of the payload, the slot list and the layout
package targeting

import (
	"strings"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
)

// AnchorFunc returns a zone anchor for a side, false when the zone has none
type AnchorFunc func(isOpponent bool) (board.Point, bool)

// Context carries the session-level collaborators a resolution needs
// Nil anchor functions mean the zone has no anchor
type Context struct {
	ResolveSide   board.SideResolver
	BaseAnchor    AnchorFunc
	ShieldAnchor  AnchorFunc
	CommandAnchor AnchorFunc
}

// AnchorSource is implemented by board.Layout and render stages
type AnchorSource interface {
	BaseAnchor(isOpponent bool) (board.Point, bool)
	ShieldAnchor(isOpponent bool) (board.Point, bool)
	CommandAnchor(isOpponent bool) (board.Point, bool)
}

// NewContext builds a Context from a side resolver and an anchor source (may be nil)
func NewContext(resolve board.SideResolver, anchors AnchorSource) Context {
	ctx := Context{ResolveSide: resolve}
	if anchors != nil {
		ctx.BaseAnchor = anchors.BaseAnchor
		ctx.ShieldAnchor = anchors.ShieldAnchor
		ctx.CommandAnchor = anchors.CommandAnchor
	}
	return ctx
}

func (c Context) side(playerID string) (board.Owner, bool) {
	return resolveSide(c.ResolveSide, playerID)
}

func resolveSide(resolve board.SideResolver, playerID string) (board.Owner, bool) {
	if resolve == nil || playerID == "" {
		return "", false
	}
	return resolve(playerID)
}

// AttackerOwner resolves the attacking side from attackingPlayerId, then from the board
// position of the attacker card, defaulting to the local player
func AttackerOwner(p *notification.AttackPayload, slots []board.Slot, resolve board.SideResolver) board.Owner {
	if owner, ok := resolveSide(resolve, p.AttackingPlayerID); ok {
		return owner
	}
	if s, ok := board.FindByCard(slots, p.AttackerCardUID); ok {
		return s.Owner
	}
	return board.OwnerPlayer
}

// DefenderOwner resolves the defending side from defendingPlayerId,
// defaulting to the opposite of the attacker
func DefenderOwner(p *notification.AttackPayload, attacker board.Owner, resolve board.SideResolver) board.Owner {
	if owner, ok := resolveSide(resolve, p.DefendingPlayerID); ok {
		return owner
	}
	return attacker.Opposite()
}

// ResolveAttackerSlot finds the attacker by card uid, falling back to (owner, attackerSlot)
func ResolveAttackerSlot(p *notification.AttackPayload, slots []board.Slot, attacker board.Owner) (board.Slot, bool) {
	if s, ok := board.FindByCard(slots, p.AttackerCardUID); ok {
		return s, true
	}
	if id := p.AttackerSlotID(); id != "" {
		return board.Find(slots, attacker, id)
	}
	return board.Slot{}, false
}

// ResolveTargetSlot finds the target unit by uid, falling back to (defender, targetSlot)
// Base and shield targets never resolve to a slot
func ResolveTargetSlot(p *notification.AttackPayload, slots []board.Slot, defender board.Owner) (board.Slot, bool) {
	if p.TargetsBase() || p.TargetsShield() {
		return board.Slot{}, false
	}
	if s, ok := board.FindByCard(slots, p.TargetUID()); ok {
		return s, true
	}
	if id := p.TargetSlotID(); id != "" {
		return board.Find(slots, defender, id)
	}
	return board.Slot{}, false
}

// ResolveAttackTarget returns the point an attack flies to
// Priority: base anchor, shield anchor (falling back to base), then the target slot position
func ResolveAttackTarget(
	p *notification.AttackPayload,
	slots []board.Slot,
	positions board.Positions,
	defender board.Owner,
	ctx Context,
) (board.Point, bool) {
	isOpp := defender.IsOpponent()

	if p.TargetsBase() {
		if ctx.BaseAnchor == nil {
			return board.Point{}, false
		}
		return ctx.BaseAnchor(isOpp)
	}

	if p.TargetsShield() {
		if ctx.ShieldAnchor != nil {
			if pt, ok := ctx.ShieldAnchor(isOpp); ok {
				return pt, true
			}
		}
		if ctx.BaseAnchor == nil {
			return board.Point{}, false
		}
		return ctx.BaseAnchor(isOpp)
	}

	s, ok := ResolveTargetSlot(p, slots, defender)
	if !ok {
		return board.Point{}, false
	}
	pt, ok := positions[s.Key()]
	return pt, ok
}

// ResolveStatSlot locates the slot a stat change applies to
// Explicit owner+zone wins; otherwise the slot holding the referenced card
// The key is returned even when the slot is not in slots, as long as owner and zone name a board slot
func ResolveStatSlot(p *notification.StatModifiedPayload, slots []board.Slot, ctx Context) (string, board.Slot, bool) {
	if owner, ok := ctx.side(p.PlayerID); ok {
		if ref := p.SlotRef(); ref != "" {
			if s, found := board.Find(slots, owner, ref); found {
				return s.Key(), s, true
			}
			if _, isSlot := board.SlotIndex(ref); isSlot {
				return board.Key(owner, ref), board.Slot{Owner: owner, SlotID: ref}, true
			}
		}
	}
	if s, ok := board.FindByCard(slots, p.UID()); ok {
		return s.Key(), s, true
	}
	return "", board.Slot{}, false
}

// PlayOwner resolves the side that played a card
func PlayOwner(p *notification.CardPlayedPayload, slots []board.Slot, ctx Context) board.Owner {
	if owner, ok := ctx.side(p.PlayerID); ok {
		return owner
	}
	if s, ok := board.FindByCard(slots, p.UID()); ok {
		return s.Owner
	}
	return board.OwnerPlayer
}

// ResolvePlayDestination returns where a played card flies to: its slot, the base or the command zone
func ResolvePlayDestination(
	p *notification.CardPlayedPayload,
	slots []board.Slot,
	positions board.Positions,
	ctx Context,
) (board.Point, bool) {
	owner := PlayOwner(p, slots, ctx)
	isOpp := owner.IsOpponent()
	dest := strings.ToLower(p.Destination())
	playAs := strings.ToLower(p.PlayAs)

	switch {
	case playAs == "base" || dest == "base":
		if ctx.BaseAnchor == nil {
			return board.Point{}, false
		}
		return ctx.BaseAnchor(isOpp)
	case playAs == "command" || dest == "command":
		if ctx.CommandAnchor == nil {
			return board.Point{}, false
		}
		return ctx.CommandAnchor(isOpp)
	}

	if _, isSlot := board.SlotIndex(dest); isSlot {
		if pt, ok := positions[board.Key(owner, dest)]; ok {
			return pt, true
		}
	}
	if s, ok := board.FindByCard(slots, p.UID()); ok {
		pt, found := positions[s.Key()]
		return pt, found
	}
	return board.Point{}, false
}
