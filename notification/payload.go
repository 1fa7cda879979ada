package notification

import "strings"

// CardPlayedPayload describes a card leaving the hand for the board, base or command zone
type CardPlayedPayload struct {
	PlayerID   string `json:"playerId,omitempty"`
	CardUID    string `json:"carduid,omitempty"`
	CardUIDAlt string `json:"cardUid,omitempty"`
	CardID     string `json:"cardId,omitempty"`
	CardName   string `json:"cardName,omitempty"`
	Zone       string `json:"zone,omitempty"`
	SlotID     string `json:"slotId,omitempty"`
	// PlayAs is one of unit, pilot, base or command
	PlayAs string `json:"playAs,omitempty"`
}

func (*CardPlayedPayload) payload() {}

// UID returns the played card uid regardless of which field spelling the server used
func (p *CardPlayedPayload) UID() string {
	if p.CardUID != "" {
		return p.CardUID
	}
	return p.CardUIDAlt
}

// Destination returns the zone or slot id the card was played into
func (p *CardPlayedPayload) Destination() string {
	if p.SlotID != "" {
		return p.SlotID
	}
	return p.Zone
}

func (p *CardPlayedPayload) CardUIDs() []string {
	return uniqueNonEmpty(p.UID())
}

// AttackPayload is shared by attack declarations, redirects and battle resolutions
type AttackPayload struct {
	AttackerCardUID     string `json:"attackerCarduid,omitempty"`
	AttackerSlot        string `json:"attackerSlot,omitempty"`
	AttackerSlotName    string `json:"attackerSlotName,omitempty"`
	AttackerName        string `json:"attackerName,omitempty"`
	AttackingPlayerID   string `json:"attackingPlayerId,omitempty"`
	DefendingPlayerID   string `json:"defendingPlayerId,omitempty"`
	TargetCardUID       string `json:"targetCarduid,omitempty"`
	TargetUnitUID       string `json:"targetUnitUid,omitempty"`
	ForcedTargetCardUID string `json:"forcedTargetCarduid,omitempty"`
	TargetSlot          string `json:"targetSlot,omitempty"`
	TargetSlotName      string `json:"targetSlotName,omitempty"`
	ForcedTargetZone    string `json:"forcedTargetZone,omitempty"`
	TargetName          string `json:"targetName,omitempty"`
	BattleEnd           bool   `json:"battleEnd,omitempty"`
}

func (*AttackPayload) payload() {}

// AttackerSlotID returns the attacker slot, preferring the slot id over its display name
func (p *AttackPayload) AttackerSlotID() string {
	if p.AttackerSlot != "" {
		return p.AttackerSlot
	}
	return p.AttackerSlotName
}

// TargetUID returns the targeted card uid; a forced (redirected) target wins
func (p *AttackPayload) TargetUID() string {
	switch {
	case p.ForcedTargetCardUID != "":
		return p.ForcedTargetCardUID
	case p.TargetCardUID != "":
		return p.TargetCardUID
	default:
		return p.TargetUnitUID
	}
}

// TargetSlotID returns the targeted slot or zone; a forced zone wins
func (p *AttackPayload) TargetSlotID() string {
	switch {
	case p.ForcedTargetZone != "":
		return p.ForcedTargetZone
	case p.TargetSlot != "":
		return p.TargetSlot
	default:
		return p.TargetSlotName
	}
}

// NamesTarget reports whether the payload names any target at all
func (p *AttackPayload) NamesTarget() bool {
	return p.TargetUID() != "" || p.TargetSlotID() != "" || p.TargetName != ""
}

// TargetsBase reports a base target by slot id or display name, case-insensitive
func (p *AttackPayload) TargetsBase() bool {
	return p.targetNameMatches(func(s string) bool { return s == "base" })
}

// TargetsShield reports a shield target by slot id or display name, case-insensitive
func (p *AttackPayload) TargetsShield() bool {
	return p.targetNameMatches(func(s string) bool { return strings.HasPrefix(s, "shield") })
}

func (p *AttackPayload) targetNameMatches(match func(string) bool) bool {
	for _, v := range []string{p.ForcedTargetZone, p.TargetSlot, p.TargetSlotName, p.TargetName} {
		if v != "" && match(strings.ToLower(strings.TrimSpace(v))) {
			return true
		}
	}
	return false
}

func (p *AttackPayload) CardUIDs() []string {
	return uniqueNonEmpty(p.AttackerCardUID, p.TargetCardUID, p.TargetUnitUID, p.ForcedTargetCardUID)
}

// BattleResult carries the destruction flags of a resolved battle
type BattleResult struct {
	AttackerDestroyed bool `json:"attackerDestroyed,omitempty"`
	DefenderDestroyed bool `json:"defenderDestroyed,omitempty"`
}

// BattleResolvedPayload closes the attack referenced by AttackNotificationID
type BattleResolvedPayload struct {
	AttackPayload
	AttackNotificationID string       `json:"attackNotificationId,omitempty"`
	Result               BattleResult `json:"result"`
}

func (*BattleResolvedPayload) payload() {}

func (p *BattleResolvedPayload) CardUIDs() []string {
	return p.AttackPayload.CardUIDs()
}

// StatModifiedPayload reports an AP/HP change on a board card
type StatModifiedPayload struct {
	Delta         *int   `json:"delta,omitempty"`
	ModifierValue *int   `json:"modifierValue,omitempty"`
	Stat          string `json:"stat,omitempty"`
	Zone          string `json:"zone,omitempty"`
	SlotID        string `json:"slotId,omitempty"`
	Slot          string `json:"slot,omitempty"`
	PlayerID      string `json:"playerId,omitempty"`
	CardUID       string `json:"carduid,omitempty"`
	CardUIDAlt    string `json:"cardUid,omitempty"`
}

func (*StatModifiedPayload) payload() {}

// Amount returns delta, falling back to modifierValue, zero when neither is present
func (p *StatModifiedPayload) Amount() int {
	switch {
	case p.Delta != nil:
		return *p.Delta
	case p.ModifierValue != nil:
		return *p.ModifierValue
	}
	return 0
}

// SlotRef returns the explicit slot reference: zone, then slotId, then slot
func (p *StatModifiedPayload) SlotRef() string {
	switch {
	case p.Zone != "":
		return p.Zone
	case p.SlotID != "":
		return p.SlotID
	default:
		return p.Slot
	}
}

// UID returns the modified card uid
func (p *StatModifiedPayload) UID() string {
	if p.CardUID != "" {
		return p.CardUID
	}
	return p.CardUIDAlt
}

// StatKey returns the lowercased stat name ("ap" or "hp")
func (p *StatModifiedPayload) StatKey() string {
	return strings.ToLower(strings.TrimSpace(p.Stat))
}

func (p *StatModifiedPayload) CardUIDs() []string {
	return uniqueNonEmpty(p.UID())
}

// TargetChoicePayload records a target selection for a card that was just played
type TargetChoicePayload struct {
	// ReferenceID is the id of the CARD_PLAYED notification this choice belongs to
	ReferenceID    string   `json:"referenceId,omitempty"`
	PlayerID       string   `json:"playerId,omitempty"`
	SourceCardUID  string   `json:"carduid,omitempty"`
	TargetCardUIDs []string `json:"targetCarduids,omitempty"`
}

func (*TargetChoicePayload) payload() {}

func (p *TargetChoicePayload) CardUIDs() []string {
	return uniqueNonEmpty(append([]string{p.SourceCardUID}, p.TargetCardUIDs...)...)
}

// GenericPayload holds the body of any notification type the client does not model
type GenericPayload struct {
	Fields map[string]any
}

func (*GenericPayload) payload() {}

func (p *GenericPayload) CardUIDs() []string {
	var ids []string
	for _, k := range []string{"carduid", "cardUid"} {
		if s, ok := p.Fields[k].(string); ok {
			ids = append(ids, s)
		}
	}
	return uniqueNonEmpty(ids...)
}
