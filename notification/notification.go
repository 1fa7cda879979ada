package notification

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type identifies the server-side event kind of a notification
type Type string

const (
	TypeCardPlayed       Type = "CARD_PLAYED"
	TypeAttackDeclared   Type = "UNIT_ATTACK_DECLARED"
	TypeAttackRedirected Type = "ATTACK_REDIRECTED"
	TypeBattleResolved   Type = "BATTLE_RESOLVED"
	TypeStatModified     Type = "CARD_STAT_MODIFIED"
	TypeTargetChoice     Type = "TARGET_CHOICE"
)

// ErrMissingID is returned when a raw notification carries no id
var ErrMissingID = errors.New("notification: missing id")

// Notification is one immutable server-issued game event
type Notification struct {
	ID      string
	Type    Type
	Payload Payload
}

// Payload is the closed set of typed notification bodies
// Implemented by *CardPlayedPayload, *AttackPayload, *BattleResolvedPayload,
// *StatModifiedPayload, *TargetChoicePayload and *GenericPayload
type Payload interface {
	// CardUIDs returns every card uid the payload references, duplicates removed
	CardUIDs() []string
	payload()
}

// wireNotification is the JSON shape delivered inside a snapshot
type wireNotification struct {
	ID      string          `json:"id"`
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// UnmarshalJSON decodes the envelope and selects the payload variant by type
func (n *Notification) UnmarshalJSON(data []byte) error {
	var w wireNotification
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	p, err := decodePayload(w.Type, w.Payload)
	if err != nil {
		return fmt.Errorf("decode %s payload for %q: %w", w.Type, w.ID, err)
	}
	n.ID = w.ID
	n.Type = w.Type
	n.Payload = p
	return nil
}

// MarshalJSON encodes the notification back into its wire envelope
func (n Notification) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	if n.Payload != nil {
		var err error
		if g, ok := n.Payload.(*GenericPayload); ok {
			raw, err = json.Marshal(g.Fields)
		} else {
			raw, err = json.Marshal(n.Payload)
		}
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(wireNotification{ID: n.ID, Type: n.Type, Payload: raw})
}

// Decode parses a single raw notification
func Decode(data []byte) (Notification, error) {
	var n Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return Notification{}, err
	}
	if n.ID == "" {
		return Notification{}, ErrMissingID
	}
	return n, nil
}

func decodePayload(t Type, raw json.RawMessage) (Payload, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	var p Payload
	switch t {
	case TypeCardPlayed:
		p = &CardPlayedPayload{}
	case TypeAttackDeclared, TypeAttackRedirected:
		p = &AttackPayload{}
	case TypeBattleResolved:
		p = &BattleResolvedPayload{}
	case TypeStatModified:
		p = &StatModifiedPayload{}
	case TypeTargetChoice:
		p = &TargetChoicePayload{}
	default:
		g := &GenericPayload{}
		if err := json.Unmarshal(raw, &g.Fields); err != nil {
			return nil, err
		}
		return g, nil
	}

	if err := json.Unmarshal(raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Attack returns the attack payload for declared, redirected and resolved notifications
func (n Notification) Attack() (*AttackPayload, bool) {
	switch p := n.Payload.(type) {
	case *AttackPayload:
		return p, true
	case *BattleResolvedPayload:
		return &p.AttackPayload, true
	}
	return nil, false
}

// CardUIDs returns the card uids referenced by the payload
func (n Notification) CardUIDs() []string {
	if n.Payload == nil {
		return nil
	}
	return n.Payload.CardUIDs()
}

// Normalize drops notifications without an id and repeated ids, keeping the first copy
func Normalize(notes []Notification) []Notification {
	out := make([]Notification, 0, len(notes))
	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		if n.ID == "" {
			continue
		}
		if _, dup := seen[n.ID]; dup {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}

// uniqueNonEmpty collects non-empty values preserving first-seen order
func uniqueNonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, o := range out {
			if o == v {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
