package animator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/battle"
	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/event"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
	"github.com/AnsonYua/cardGameMobile-sub001/targeting"
)

// CardPlayed flies a card from its owner's hand to the slot, base or command zone
type CardPlayed struct {
	cfg  Config
	deps Deps
}

func (*CardPlayed) EventTypes() []notification.Type {
	return []notification.Type{notification.TypeCardPlayed}
}

func (a *CardPlayed) Animate(ctx context.Context, v battle.View, ev event.AnimationEvent) error {
	p, ok := ev.Note.Payload.(*notification.CardPlayedPayload)
	if !ok {
		return fmt.Errorf("card played %s: unexpected payload %T", ev.ID, ev.Note.Payload)
	}
	log := a.deps.Log.WithFields(logrus.Fields{"event": ev.ID, "card": p.UID()})

	to, ok := targeting.ResolvePlayDestination(p, v.Slots, v.Positions, v.Targeting)
	if !ok {
		log.Debug("play destination unresolved, skipping flight")
		return nil
	}
	owner := targeting.PlayOwner(p, v.Slots, v.Targeting)
	from, ok := a.hand(owner)
	if !ok {
		log.Debug("no hand anchor, skipping flight")
		return nil
	}

	h, err := a.deps.Stage.CreateSprite(stage.SpriteSeed{
		Owner:  owner,
		SlotID: p.Destination(),
		Card: board.CardView{
			UID:        p.UID(),
			CardID:     p.CardID,
			Name:       p.CardName,
			TextureKey: battle.TextureKey(p.CardID, p.UID()),
		},
		Position:   from,
		Size:       v.SlotSize,
		IsOpponent: owner.IsOpponent(),
	})
	if err != nil {
		return fmt.Errorf("spawn played card: %w", err)
	}
	defer a.deps.Stage.DestroySprite(h)

	if a.deps.Cues != nil {
		a.deps.Cues.PlayCardPlayed()
	}
	return a.deps.Stage.MoveSprite(ctx, h, to, a.cfg.PlayFlight)
}

func (a *CardPlayed) hand(owner board.Owner) (board.Point, bool) {
	if a.deps.Anchors == nil {
		return board.Point{}, false
	}
	return a.deps.Anchors.HandAnchor(owner.IsOpponent())
}

// AttackDeclared points the arrow at the target and captures the battle geometry
type AttackDeclared struct {
	deps  Deps
	arrow *indicator
}

func (*AttackDeclared) EventTypes() []notification.Type {
	return []notification.Type{notification.TypeAttackDeclared, notification.TypeAttackRedirected}
}

func (a *AttackDeclared) Animate(ctx context.Context, v battle.View, ev event.AnimationEvent) error {
	p, ok := ev.Note.Attack()
	if !ok {
		return fmt.Errorf("attack %s: unexpected payload %T", ev.ID, ev.Note.Payload)
	}

	snap, err := a.deps.Battle.CaptureAttack(ev.Note, p, v)
	if err != nil {
		// Missing geometry skips the visual
		a.deps.Log.WithFields(logrus.Fields{"event": ev.ID}).WithError(err).Debug("attack not captured")
		return nil
	}
	a.arrow.set(arrowOwner(p), snap.Attacker.Position, snap.TargetPoint)
	return nil
}

// arrowOwner keys the arrow by attacker so a redirect and its resolution share it
func arrowOwner(p *notification.AttackPayload) string {
	return "attacker:" + p.AttackerCardUID
}

// BattleResolved hands the choreography to the battle engine and clears the arrow afterwards
type BattleResolved struct {
	deps  Deps
	arrow *indicator
}

func (*BattleResolved) EventTypes() []notification.Type {
	return []notification.Type{notification.TypeBattleResolved}
}

func (a *BattleResolved) Animate(ctx context.Context, v battle.View, ev event.AnimationEvent) error {
	p, ok := ev.Note.Payload.(*notification.BattleResolvedPayload)
	if !ok {
		return fmt.Errorf("battle %s: unexpected payload %T", ev.ID, ev.Note.Payload)
	}
	owner := arrowOwner(&p.AttackPayload)
	return a.deps.Battle.ResolveBattle(ctx, ev.Note, p, func() {
		a.arrow.clear(owner)
	})
}

// StatModified pulses the slot whose stat changed
type StatModified struct {
	cfg  Config
	deps Deps
}

func (*StatModified) EventTypes() []notification.Type {
	return []notification.Type{notification.TypeStatModified}
}

func (a *StatModified) Animate(ctx context.Context, v battle.View, ev event.AnimationEvent) error {
	p, ok := ev.Note.Payload.(*notification.StatModifiedPayload)
	if !ok {
		return fmt.Errorf("stat %s: unexpected payload %T", ev.ID, ev.Note.Payload)
	}
	delta := p.Amount()
	if delta == 0 {
		return nil
	}

	key, ok := statKey(p, v)
	if !ok {
		a.deps.Log.WithField("event", ev.ID).Debug("stat slot unresolved, skipping pulse")
		return nil
	}
	pos, ok := v.Positions[key]
	if !ok {
		return nil
	}

	if a.deps.Cues != nil {
		a.deps.Cues.PlayPulse()
	}
	return a.deps.Stage.PlayEffect(ctx, stage.Effect{
		Kind:     stage.EffectSlotPulse,
		Point:    pos,
		SlotKey:  key,
		Stat:     p.StatKey(),
		Delta:    delta,
		Duration: a.cfg.StatPulse,
	})
}

func statKey(p *notification.StatModifiedPayload, v battle.View) (string, bool) {
	for _, slots := range [][]board.Slot{v.Slots, v.Previous} {
		if key, _, ok := targeting.ResolveStatSlot(p, slots, v.Targeting); ok {
			return key, true
		}
	}
	return "", false
}
