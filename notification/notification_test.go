package notification

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, n Notification)
	}{
		{
			name: "attack declared",
			raw: `{"id":"atk1","type":"UNIT_ATTACK_DECLARED","payload":{
				"attackerCarduid":"U1","attackerSlot":"slot1","attackingPlayerId":"p1",
				"defendingPlayerId":"p2","targetCarduid":"U2","targetSlotName":"slot1"}}`,
			check: func(t *testing.T, n Notification) {
				p, ok := n.Payload.(*AttackPayload)
				if !ok {
					t.Fatalf("expected *AttackPayload, got %T", n.Payload)
				}
				if p.AttackerSlotID() != "slot1" || p.TargetUID() != "U2" {
					t.Errorf("unexpected payload %+v", p)
				}
				uids := n.CardUIDs()
				if len(uids) != 2 || uids[0] != "U1" || uids[1] != "U2" {
					t.Errorf("CardUIDs() = %v", uids)
				}
			},
		},
		{
			name: "battle resolved",
			raw: `{"id":"b1","type":"BATTLE_RESOLVED","payload":{
				"attackNotificationId":"atk1","attackerCarduid":"U1",
				"result":{"attackerDestroyed":false,"defenderDestroyed":true}}}`,
			check: func(t *testing.T, n Notification) {
				p, ok := n.Payload.(*BattleResolvedPayload)
				if !ok {
					t.Fatalf("expected *BattleResolvedPayload, got %T", n.Payload)
				}
				if p.AttackNotificationID != "atk1" || !p.Result.DefenderDestroyed || p.Result.AttackerDestroyed {
					t.Errorf("unexpected payload %+v", p)
				}
				if a, ok := n.Attack(); !ok || a.AttackerCardUID != "U1" {
					t.Errorf("Attack() did not expose embedded attack payload")
				}
			},
		},
		{
			name: "stat modified with modifierValue",
			raw:  `{"id":"s1","type":"CARD_STAT_MODIFIED","payload":{"modifierValue":-3,"stat":"HP","slot":"slot4","cardUid":"U9"}}`,
			check: func(t *testing.T, n Notification) {
				p := n.Payload.(*StatModifiedPayload)
				if p.Amount() != -3 || p.StatKey() != "hp" || p.SlotRef() != "slot4" || p.UID() != "U9" {
					t.Errorf("unexpected payload %+v", p)
				}
			},
		},
		{
			name: "unknown type keeps fields",
			raw:  `{"id":"x","type":"PHASE_CHANGED","payload":{"phase":"MAIN","carduid":"U3"}}`,
			check: func(t *testing.T, n Notification) {
				g, ok := n.Payload.(*GenericPayload)
				if !ok {
					t.Fatalf("expected *GenericPayload, got %T", n.Payload)
				}
				if g.Fields["phase"] != "MAIN" {
					t.Errorf("fields = %v", g.Fields)
				}
				if uids := n.CardUIDs(); len(uids) != 1 || uids[0] != "U3" {
					t.Errorf("CardUIDs() = %v", uids)
				}
			},
		},
		{
			name: "missing payload",
			raw:  `{"id":"p","type":"CARD_PLAYED"}`,
			check: func(t *testing.T, n Notification) {
				if _, ok := n.Payload.(*CardPlayedPayload); !ok {
					t.Fatalf("expected *CardPlayedPayload, got %T", n.Payload)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Decode([]byte(tt.raw))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			tt.check(t, n)
		})
	}
}

func TestDecodeMissingID(t *testing.T) {
	_, err := Decode([]byte(`{"type":"CARD_PLAYED","payload":{}}`))
	if !errors.Is(err, ErrMissingID) {
		t.Errorf("expected ErrMissingID, got %v", err)
	}
}

func TestTargetsBaseAndShield(t *testing.T) {
	base := &AttackPayload{TargetName: "Base"}
	if !base.TargetsBase() || base.TargetsShield() {
		t.Errorf("Base target misdetected")
	}
	shield := &AttackPayload{TargetSlot: "SHIELD"}
	if !shield.TargetsShield() || shield.TargetsBase() {
		t.Errorf("shield target misdetected")
	}
	unit := &AttackPayload{TargetSlot: "slot2"}
	if unit.TargetsBase() || unit.TargetsShield() {
		t.Errorf("unit target misdetected")
	}
}

func TestMarshalRoundTripKeepsType(t *testing.T) {
	delta := 2
	n := Notification{ID: "s", Type: TypeStatModified, Payload: &StatModifiedPayload{Delta: &delta, Stat: "ap"}}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p := back.Payload.(*StatModifiedPayload); p.Amount() != 2 {
		t.Errorf("Amount() = %d, want 2", p.Amount())
	}
}

func TestSchemaCoversVariants(t *testing.T) {
	s := Schema()
	for _, typ := range []Type{TypeCardPlayed, TypeAttackDeclared, TypeBattleResolved, TypeStatModified, TypeTargetChoice} {
		if s[typ] == nil {
			t.Errorf("missing schema for %s", typ)
		}
	}
}
