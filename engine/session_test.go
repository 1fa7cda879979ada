package engine

import (
	"context"
	"testing"
	"time"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/clock"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
	"github.com/AnsonYua/cardGameMobile-sub001/stage/stagetest"
)

// gateStage blocks moves and effects until the test lets them through
type gateStage struct {
	*stagetest.Recorder
	moveStarted   chan struct{}
	moveGate      chan struct{}
	effectStarted chan struct{}
	effectGate    chan struct{}
}

func newGateStage() *gateStage {
	return &gateStage{
		Recorder:      stagetest.New(),
		moveStarted:   make(chan struct{}, 8),
		moveGate:      make(chan struct{}),
		effectStarted: make(chan struct{}, 8),
		effectGate:    make(chan struct{}),
	}
}

func (g *gateStage) MoveSprite(ctx context.Context, h stage.SpriteHandle, to board.Point, d time.Duration) error {
	g.moveStarted <- struct{}{}
	<-g.moveGate
	return g.Recorder.MoveSprite(ctx, h, to, d)
}

func (g *gateStage) PlayEffect(ctx context.Context, fx stage.Effect) error {
	g.effectStarted <- struct{}{}
	<-g.effectGate
	return g.Recorder.PlayEffect(ctx, fx)
}

func await(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func newTestSession(t *testing.T, st stage.Stage) (*Session, chan struct{}) {
	t.Helper()
	s := NewSession(context.Background(), DefaultConfig("p1"), Deps{
		Stage:  st,
		Layout: board.NewLayout(120, 40),
		Clock:  clock.NewMockTimeProvider(time.Unix(0, 0)),
	})
	t.Cleanup(func() { _ = s.Close() })

	idle := make(chan struct{}, 8)
	s.OnIdle(func() { idle <- struct{}{} })
	return s, idle
}

func unit(uid string, ap, hp int) *board.CardView {
	return &board.CardView{UID: uid, AP: ap, HP: hp}
}

func intp(v int) *int { return &v }

func findSlot(slots []board.Slot, key string) (board.Slot, bool) {
	return board.FindByKey(slots, key)
}

func TestStatModifiedAppliesAtEventStart(t *testing.T) {
	st := newGateStage()
	s, idle := newTestSession(t, st)

	s.Apply(&board.Snapshot{
		Version: 1,
		Players: map[string]board.PlayerState{
			"p1": {Zones: map[string]board.ZoneState{
				"slot2": {Unit: unit("C2", 3, 4), FieldCardValue: &board.FieldCardValue{TotalAP: 3, TotalHP: 4}},
			}},
		},
	})

	n := s.Apply(&board.Snapshot{
		Version: 2,
		Players: map[string]board.PlayerState{
			"p1": {Zones: map[string]board.ZoneState{
				"slot2": {Unit: unit("C2", 5, 4), FieldCardValue: &board.FieldCardValue{TotalAP: 5, TotalHP: 4}},
				"slot3": {Unit: unit("C9", 1, 1)},
			}},
		},
		Notifications: []notification.Notification{
			{ID: "n1", Type: notification.TypeCardPlayed, Payload: &notification.CardPlayedPayload{PlayerID: "p1", CardUID: "C9", SlotID: "slot3"}},
			{ID: "s1", Type: notification.TypeStatModified, Payload: &notification.StatModifiedPayload{
				Delta: intp(2), Stat: "ap", PlayerID: "p1", Zone: "slot2",
			}},
		},
	})
	if n != 2 {
		t.Fatalf("Apply queued %d events, want 2", n)
	}

	// Card flight in progress: the stat event has not started yet
	await(t, st.moveStarted, "card flight")
	slots := s.SlotsForRender()
	if sl, ok := findSlot(slots, "player-slot2"); !ok || sl.AP != 3 {
		t.Errorf("before stat start ap = %d (found %v), want 3", sl.AP, ok)
	}
	if _, ok := findSlot(slots, "player-slot3"); ok {
		t.Error("destination slot should be hidden during the flight")
	}
	if !s.Busy() {
		t.Error("session should be busy")
	}
	close(st.moveGate)

	await(t, st.effectStarted, "stat pulse")
	snap, ok := s.overlay.Snapshot("player-slot2")
	if !ok || snap == nil || snap.AP != 5 || snap.FieldCardValue.TotalAP != 5 {
		t.Errorf("frozen slot at stat start = %+v", snap)
	}
	close(st.effectGate)

	await(t, idle, "idle")
	slots = s.SlotsForRender()
	if sl, ok := findSlot(slots, "player-slot2"); !ok || sl.AP != 5 {
		t.Errorf("after idle ap = %d, want live 5", sl.AP)
	}
	if _, ok := findSlot(slots, "player-slot3"); !ok {
		t.Error("played card should show after idle")
	}
}

func TestApplyIsIdempotentAndIgnoresStaleVersions(t *testing.T) {
	rec := stagetest.New()
	s, idle := newTestSession(t, rec)

	snap := &board.Snapshot{
		Version: 5,
		Players: map[string]board.PlayerState{"p1": {Zones: map[string]board.ZoneState{"slot1": {Unit: unit("A", 1, 1)}}}},
		Notifications: []notification.Notification{
			{ID: "n1", Type: notification.TypeCardPlayed, Payload: &notification.CardPlayedPayload{PlayerID: "p1", CardUID: "A", SlotID: "slot1"}},
			{ID: "c1", Type: notification.TypeTargetChoice, Payload: &notification.TargetChoicePayload{ReferenceID: "n1"}},
		},
	}
	if n := s.Apply(snap); n != 1 {
		t.Fatalf("first apply queued %d, want 1", n)
	}
	await(t, idle, "idle")

	if n := s.Apply(snap); n != 0 {
		t.Errorf("repeated snapshot queued %d events", n)
	}
	old := *snap
	old.Version = 4
	old.Notifications = []notification.Notification{
		{ID: "n0", Type: notification.TypeCardPlayed, Payload: &notification.CardPlayedPayload{PlayerID: "p1", CardUID: "A"}},
	}
	if n := s.Apply(&old); n != 0 {
		t.Errorf("stale snapshot queued %d events", n)
	}
	if got := len(rec.CallsOf("create")); got != 1 {
		t.Errorf("flights = %d, want 1", got)
	}
}

func TestLockedSlotsOverrideLiveBoard(t *testing.T) {
	rec := stagetest.New()
	s, idle := newTestSession(t, rec)

	players := map[string]board.PlayerState{
		"p1": {Zones: map[string]board.ZoneState{"slot1": {Unit: unit("U1", 3, 3)}}},
		"p2": {Zones: map[string]board.ZoneState{"slot1": {Unit: unit("U2", 2, 2)}}},
	}
	s.Apply(&board.Snapshot{Version: 1, Players: players})

	atk := &notification.AttackPayload{
		AttackerCardUID: "U1", AttackingPlayerID: "p1", DefendingPlayerID: "p2",
		TargetCardUID: "U2", AttackerSlot: "slot1", TargetSlot: "slot1",
	}
	s.Apply(&board.Snapshot{Version: 2, Players: players, Notifications: []notification.Notification{
		{ID: "atk1", Type: notification.TypeAttackDeclared, Payload: atk},
	}})
	await(t, idle, "idle after declaration")

	locked := s.LockedSlots()
	if _, ok := locked["player-slot1"]; !ok {
		t.Fatal("attacker not locked")
	}
	if _, ok := locked["opponent-slot1"]; !ok {
		t.Fatal("target not locked")
	}

	// Server already removed the destroyed target
	after := map[string]board.PlayerState{
		"p1": players["p1"],
		"p2": {Zones: map[string]board.ZoneState{"slot1": {}}},
	}
	s.Apply(&board.Snapshot{Version: 3, Players: after})
	if sl, ok := findSlot(s.SlotsForRender(), "opponent-slot1"); !ok || sl.Unit == nil || sl.Unit.UID != "U2" {
		t.Errorf("locked target should still render, got %+v", sl)
	}

	s.Apply(&board.Snapshot{Version: 4, Players: after, Notifications: []notification.Notification{
		{ID: "b1", Type: notification.TypeBattleResolved, Payload: &notification.BattleResolvedPayload{
			AttackPayload: *atk, AttackNotificationID: "atk1",
			Result: notification.BattleResult{DefenderDestroyed: true},
		}},
	}})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.WaitIdle(ctx); err != nil {
		t.Fatal(err)
	}

	if len(s.LockedSlots()) != 0 {
		t.Errorf("locks remain: %v", s.LockedSlots())
	}
	if sl, _ := findSlot(s.SlotsForRender(), "opponent-slot1"); sl.Unit != nil {
		t.Errorf("destroyed target still drawn: %+v", sl)
	}
}

func TestUnversionedSnapshotKeepsStaleGuard(t *testing.T) {
	rec := stagetest.New()
	s, _ := newTestSession(t, rec)

	board5 := map[string]board.PlayerState{"p1": {Zones: map[string]board.ZoneState{"slot1": {Unit: unit("A", 1, 1)}}}}
	s.Apply(&board.Snapshot{Version: 5, Players: board5})
	s.Apply(&board.Snapshot{Version: 0, Players: board5})

	stale := &board.Snapshot{
		Version: 3,
		Players: map[string]board.PlayerState{"p1": {Zones: map[string]board.ZoneState{"slot1": {}}}},
		Notifications: []notification.Notification{
			{ID: "n3", Type: notification.TypeCardPlayed, Payload: &notification.CardPlayedPayload{PlayerID: "p1", CardUID: "A", SlotID: "slot1"}},
		},
	}
	if n := s.Apply(stale); n != 0 {
		t.Errorf("snapshot older than v5 queued %d events", n)
	}
	sl, ok := findSlot(s.SlotsForRender(), "player-slot1")
	if !ok || !sl.HasCard("A") {
		t.Errorf("stale board replaced the v5 board: %+v", sl)
	}
}
