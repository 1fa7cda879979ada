package event

import (
	"testing"

	"github.com/AnsonYua/cardGameMobile-sub001/notification"
)

func TestBuildFiltersAllowList(t *testing.T) {
	notes := []notification.Notification{
		{ID: "n1", Type: notification.TypeCardPlayed, Payload: &notification.CardPlayedPayload{CardUID: "C1"}},
		{ID: "n2", Type: notification.TypeTargetChoice, Payload: &notification.TargetChoicePayload{ReferenceID: "n1"}},
		{ID: "n3", Type: "PHASE_CHANGED", Payload: &notification.GenericPayload{}},
		{ID: "", Type: notification.TypeStatModified, Payload: &notification.StatModifiedPayload{}},
		{ID: "atk1", Type: notification.TypeAttackDeclared, Payload: &notification.AttackPayload{
			AttackerCardUID: "A", TargetCardUID: "T", ForcedTargetCardUID: "T",
		}},
	}

	got := Build(notes)
	if len(got) != 2 {
		t.Fatalf("Build returned %d events, want 2", len(got))
	}
	if got[0].ID != "n1" || got[1].ID != "atk1" {
		t.Errorf("order = %s,%s", got[0].ID, got[1].ID)
	}
	if len(got[1].CardUIDs) != 2 {
		t.Errorf("CardUIDs = %v, want deduplicated [A T]", got[1].CardUIDs)
	}
	if !got[1].IsAttack() || got[0].IsAttack() {
		t.Error("IsAttack mismatch")
	}
	if !got[1].Touches("T") || got[1].Touches("C1") {
		t.Error("Touches mismatch")
	}
}

func TestAnimatable(t *testing.T) {
	for _, typ := range AnimatableTypes() {
		if !Animatable(typ) {
			t.Errorf("%s should be animatable", typ)
		}
	}
	if Animatable(notification.TypeTargetChoice) {
		t.Error("TARGET_CHOICE should not be animatable")
	}
}
