package battle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/clock"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
	"github.com/AnsonYua/cardGameMobile-sub001/stage/stagetest"
	"github.com/AnsonYua/cardGameMobile-sub001/targeting"
)

type fixture struct {
	engine *Engine
	stage  *stagetest.Recorder
	clock  *clock.MockTimeProvider
	view   View
	cues   *countingCues
}

type countingCues struct{ impact, destroy int }

func (c *countingCues) PlayImpact()  { c.impact++ }
func (c *countingCues) PlayDestroy() { c.destroy++ }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	resolve := board.SelfSide("p1")
	layout := board.NewLayout(120, 40)
	rec := stagetest.New()
	clk := clock.NewMockTimeProvider(time.Unix(1000, 0))
	cues := &countingCues{}

	e := NewEngine(context.Background(), DefaultConfig(), Deps{
		Stage:   rec,
		Clock:   clk,
		Resolve: resolve,
		Cues:    cues,
	})

	return &fixture{
		engine: e,
		stage:  rec,
		clock:  clk,
		cues:   cues,
		view: View{
			Slots: []board.Slot{
				{Owner: board.OwnerPlayer, SlotID: "slot1", Unit: &board.CardView{UID: "U1", Name: "Striker", CardID: "ST01"}},
				{Owner: board.OwnerOpponent, SlotID: "slot1", Unit: &board.CardView{UID: "U2", Name: "Guard"}},
			},
			Positions: layout.Positions(),
			SlotSize:  layout.SlotSize(),
			Targeting: targeting.NewContext(resolve, layout),
		},
	}
}

func atk1() (notification.Notification, *notification.AttackPayload) {
	p := &notification.AttackPayload{
		AttackerCardUID:   "U1",
		AttackerSlot:      "slot1",
		AttackingPlayerID: "p1",
		DefendingPlayerID: "p2",
		TargetCardUID:     "U2",
		TargetSlot:        "slot1",
	}
	return notification.Notification{ID: "atk1", Type: notification.TypeAttackDeclared, Payload: p}, p
}

func resolution(attackID string, result notification.BattleResult) (notification.Notification, *notification.BattleResolvedPayload) {
	_, ap := atk1()
	p := &notification.BattleResolvedPayload{AttackPayload: *ap, AttackNotificationID: attackID, Result: result}
	return notification.Notification{ID: "res-" + attackID, Type: notification.TypeBattleResolved, Payload: p}, p
}

func waitIdle(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.WaitIdle(ctx); err != nil {
		t.Fatalf("WaitIdle: %v", err)
	}
}

func TestCaptureAttackStoresSeedsAndLocks(t *testing.T) {
	f := newFixture(t)
	note, p := atk1()

	if _, err := f.engine.CaptureAttack(note, p, f.view); err != nil {
		t.Fatalf("CaptureAttack: %v", err)
	}

	snap, ok := f.engine.Pending("atk1")
	if !ok {
		t.Fatal("atk1 not pending")
	}
	if snap.Attacker.Card.UID != "U1" || snap.Attacker.Owner != board.OwnerPlayer {
		t.Errorf("attacker seed = %+v", snap.Attacker)
	}
	if snap.Attacker.Card.TextureKey != "card-ST01" {
		t.Errorf("attacker texture = %q", snap.Attacker.Card.TextureKey)
	}
	if snap.Target == nil || snap.Target.Card.UID != "U2" || !snap.Target.IsOpponent {
		t.Fatalf("target seed = %+v", snap.Target)
	}
	if want := f.view.Positions["opponent-slot1"]; snap.TargetPoint != want {
		t.Errorf("target point = %v, want %v", snap.TargetPoint, want)
	}
	if state, _ := f.engine.State("atk1"); state != StateDeclared {
		t.Errorf("state = %s, want declared", state)
	}

	locked := f.engine.LockedSlots()
	for _, k := range []string{"player-slot1", "opponent-slot1"} {
		if _, ok := locked[k]; !ok {
			t.Errorf("%s not locked", k)
		}
	}
}

func TestResolveDefenderDestroyed(t *testing.T) {
	f := newFixture(t)
	note, p := atk1()
	if _, err := f.engine.CaptureAttack(note, p, f.view); err != nil {
		t.Fatal(err)
	}
	snap, _ := f.engine.Pending("atk1")

	done := make(chan struct{})
	rn, rp := resolution("atk1", notification.BattleResult{DefenderDestroyed: true})
	if err := f.engine.ResolveBattle(context.Background(), rn, rp, func() { close(done) }); err != nil {
		t.Fatalf("ResolveBattle: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("onDone never called")
	}

	creates := f.stage.CallsOf("create")
	if len(creates) != 2 {
		t.Fatalf("created %d sprites, want 2", len(creates))
	}
	att, tgt := creates[0].Handle, creates[1].Handle

	var fadedTarget bool
	for _, c := range f.stage.CallsOf("effect") {
		if c.Effect.Kind == stage.EffectFadeOut && c.Effect.Sprite == tgt {
			fadedTarget = true
		}
		if c.Effect.Kind == stage.EffectFadeOut && c.Effect.Sprite == att {
			t.Error("surviving attacker must not fade")
		}
	}
	if !fadedTarget {
		t.Error("target was not faded")
	}

	moves := f.stage.CallsOf("move")
	if len(moves) != 2 || moves[0].Point != snap.TargetPoint || moves[1].Point != snap.Attacker.Position {
		t.Errorf("attacker moves = %+v, want to target then back to origin", moves)
	}

	if len(f.engine.LockedSlots()) != 0 {
		t.Errorf("locks remain: %v", f.engine.LockedSlots())
	}
	if _, ok := f.engine.Pending("atk1"); ok {
		t.Error("atk1 still cached")
	}
	if f.stage.Hidden("player-slot1") || f.stage.Hidden("opponent-slot1") {
		t.Error("slot visibility not restored")
	}
	if f.stage.LiveSprites() != 0 {
		t.Errorf("%d sprites leaked", f.stage.LiveSprites())
	}
	if f.cues.impact != 1 || f.cues.destroy != 1 {
		t.Errorf("cues impact=%d destroy=%d", f.cues.impact, f.cues.destroy)
	}
}

func TestResolveAttackerDestroyedFades(t *testing.T) {
	f := newFixture(t)
	note, p := atk1()
	_, _ = f.engine.CaptureAttack(note, p, f.view)

	rn, rp := resolution("atk1", notification.BattleResult{AttackerDestroyed: true})
	_ = f.engine.ResolveBattle(context.Background(), rn, rp, nil)
	waitIdle(t, f.engine)

	creates := f.stage.CallsOf("create")
	att, tgt := creates[0].Handle, creates[1].Handle
	var fadedAttacker, pulsedTarget bool
	for _, c := range f.stage.CallsOf("effect") {
		switch {
		case c.Effect.Kind == stage.EffectFadeOut && c.Effect.Sprite == att:
			fadedAttacker = true
		case c.Effect.Kind == stage.EffectPulse && c.Effect.Sprite == tgt:
			pulsedTarget = true
		}
	}
	if !fadedAttacker || !pulsedTarget {
		t.Errorf("fadedAttacker=%v pulsedTarget=%v", fadedAttacker, pulsedTarget)
	}
	if n := len(f.stage.CallsOf("move")); n != 1 {
		t.Errorf("destroyed attacker moved %d times, want 1", n)
	}
}

func TestResolveFailureStillCleansUp(t *testing.T) {
	f := newFixture(t)
	f.stage.FailMove = errors.New("tween broke")
	note, p := atk1()
	_, _ = f.engine.CaptureAttack(note, p, f.view)

	rn, rp := resolution("atk1", notification.BattleResult{})
	if err := f.engine.ResolveBattle(context.Background(), rn, rp, nil); err != nil {
		t.Fatal(err)
	}
	waitIdle(t, f.engine)

	if len(f.engine.LockedSlots()) != 0 {
		t.Error("locks not released after failure")
	}
	if _, ok := f.engine.Pending("atk1"); ok {
		t.Error("cache entry not deleted after failure")
	}
	if f.stage.Hidden("player-slot1") {
		t.Error("visibility not restored after failure")
	}
	if f.stage.LiveSprites() != 0 {
		t.Error("sprites leaked after failure")
	}
}

func TestResolveWithoutPendingReleasesInferredLocks(t *testing.T) {
	f := newFixture(t)
	note, p := atk1()
	_, _ = f.engine.CaptureAttack(note, p, f.view)

	called := false
	rn, rp := resolution("other", notification.BattleResult{})
	if err := f.engine.ResolveBattle(context.Background(), rn, rp, func() { called = true }); err != nil {
		t.Fatal(err)
	}
	if !called {
		t.Error("onDone should run immediately")
	}
	if len(f.engine.LockedSlots()) != 0 {
		t.Errorf("inferred locks remain: %v", f.engine.LockedSlots())
	}
	if len(f.stage.Calls()) != 0 {
		t.Error("nothing visual should play without a pending snapshot")
	}
}

func TestStaleTargetIsKept(t *testing.T) {
	f := newFixture(t)
	note, p := atk1()
	_, _ = f.engine.CaptureAttack(note, p, f.view)

	// Newer read: target unit gone from both boards, but the payload still names it
	f.view.Slots = f.view.Slots[:1]
	p2 := *p
	p2.TargetSlot = ""
	snap, err := f.engine.CaptureAttack(note, &p2, f.view)
	if err != nil {
		t.Fatalf("recapture: %v", err)
	}
	if snap.Target == nil || snap.Target.Card.UID != "U2" {
		t.Errorf("previous target dropped: %+v", snap.Target)
	}
	if _, ok := f.engine.LockedSlots()["opponent-slot1"]; !ok {
		t.Error("kept target should stay locked")
	}
}

func TestPayloadSeedFallback(t *testing.T) {
	f := newFixture(t)
	f.view.Slots = nil
	note, p := atk1()
	p.AttackerName = "Striker"
	p.TargetName = "Guard"

	snap, err := f.engine.CaptureAttack(note, p, f.view)
	if err != nil {
		t.Fatalf("CaptureAttack: %v", err)
	}
	if snap.Attacker.Card.Name != "Striker" || snap.Attacker.Card.TextureKey != "card-U1" {
		t.Errorf("payload seed = %+v", snap.Attacker.Card)
	}
	if snap.Target == nil || snap.Target.Card.UID != "U2" {
		t.Fatalf("payload target seed = %+v", snap.Target)
	}

	locked := f.engine.LockedSlots()
	if len(locked) != 2 {
		t.Fatalf("locked %d keys, want 2: %v", len(locked), locked)
	}
	if !locked["player-slot1"].HasCard("U1") || !locked["opponent-slot1"].HasCard("U2") {
		t.Errorf("locked slots not built from seeds: %+v", locked)
	}

	rn, rp := resolution("atk1", notification.BattleResult{})
	if err := f.engine.ResolveBattle(context.Background(), rn, rp, nil); err != nil {
		t.Fatal(err)
	}
	waitIdle(t, f.engine)
	if len(f.engine.LockedSlots()) != 0 {
		t.Errorf("locks remain after resolution: %v", f.engine.LockedSlots())
	}
}

func TestEmptiedTargetSlotReadsPreviousBoard(t *testing.T) {
	f := newFixture(t)
	f.view.Previous = f.view.Slots
	f.view.Slots = []board.Slot{
		f.view.Previous[0],
		{Owner: board.OwnerOpponent, SlotID: "slot1"},
	}
	note, p := atk1()

	snap, err := f.engine.CaptureAttack(note, p, f.view)
	if err != nil {
		t.Fatalf("CaptureAttack: %v", err)
	}
	if snap.Target == nil || snap.Target.Card.UID != "U2" || snap.Target.Card.Name != "Guard" {
		t.Fatalf("target seed = %+v", snap.Target)
	}
	locked, ok := f.engine.LockedSlots()["opponent-slot1"]
	if !ok || !locked.HasCard("U2") {
		t.Errorf("opponent-slot1 lock = %+v (locked=%v)", locked, ok)
	}
}

func TestEmptiedAttackerSlotReadsPreviousBoard(t *testing.T) {
	f := newFixture(t)
	f.view.Previous = f.view.Slots
	f.view.Slots = []board.Slot{
		{Owner: board.OwnerPlayer, SlotID: "slot1"},
		f.view.Previous[1],
	}
	note, p := atk1()

	snap, err := f.engine.CaptureAttack(note, p, f.view)
	if err != nil {
		t.Fatalf("CaptureAttack: %v", err)
	}
	if snap.Attacker.Card.Name != "Striker" || snap.Attacker.Card.TextureKey != "card-ST01" {
		t.Errorf("attacker seed = %+v", snap.Attacker.Card)
	}
	locked, ok := f.engine.LockedSlots()["player-slot1"]
	if !ok || locked.IsEmpty() || !locked.HasCard("U1") {
		t.Errorf("player-slot1 lock = %+v (locked=%v)", locked, ok)
	}
}

func TestRedirectUpdatesPendingAttack(t *testing.T) {
	f := newFixture(t)
	f.view.Slots = append(f.view.Slots, board.Slot{
		Owner: board.OwnerOpponent, SlotID: "slot2", Unit: &board.CardView{UID: "U3", Name: "Decoy"},
	})
	note, p := atk1()
	if _, err := f.engine.CaptureAttack(note, p, f.view); err != nil {
		t.Fatal(err)
	}

	redirect := &notification.AttackPayload{
		AttackerCardUID:   "U1",
		AttackerSlot:      "slot1",
		AttackingPlayerID: "p1",
		DefendingPlayerID: "p2",
		TargetCardUID:     "U3",
		TargetSlot:        "slot2",
	}
	rd := notification.Notification{ID: "rd1", Type: notification.TypeAttackRedirected, Payload: redirect}
	snap, err := f.engine.CaptureAttack(rd, redirect, f.view)
	if err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if want := f.view.Positions["opponent-slot2"]; snap.TargetPoint != want {
		t.Errorf("redirected target point = %v, want %v", snap.TargetPoint, want)
	}

	if _, ok := f.engine.Pending("rd1"); ok {
		t.Error("redirect opened a second pending attack")
	}
	pend, ok := f.engine.Pending("atk1")
	if !ok || pend.Target == nil || pend.Target.Card.UID != "U3" {
		t.Fatalf("atk1 after redirect = %+v (pending=%v)", pend.Target, ok)
	}
	if state, _ := f.engine.State("atk1"); state != StateDeclared {
		t.Errorf("state = %s, want declared", state)
	}

	locked := f.engine.LockedSlots()
	if len(locked) != 2 {
		t.Errorf("locked = %v, want attacker and new target", locked)
	}
	for _, k := range []string{"player-slot1", "opponent-slot2"} {
		if _, ok := locked[k]; !ok {
			t.Errorf("%s not locked", k)
		}
	}
	if _, ok := locked["opponent-slot1"]; ok {
		t.Error("old target still locked after redirect")
	}

	rn, rp := resolution("atk1", notification.BattleResult{DefenderDestroyed: true})
	if err := f.engine.ResolveBattle(context.Background(), rn, rp, nil); err != nil {
		t.Fatal(err)
	}
	waitIdle(t, f.engine)

	creates := f.stage.CallsOf("create")
	if len(creates) != 2 || creates[1].Seed.Card.UID != "U3" {
		t.Errorf("resolution sprites = %+v", creates)
	}
	moves := f.stage.CallsOf("move")
	if len(moves) == 0 || moves[0].Point != f.view.Positions["opponent-slot2"] {
		t.Errorf("attacker did not fly to the redirected target: %+v", moves)
	}
	if len(f.engine.LockedSlots()) != 0 {
		t.Errorf("locks remain: %v", f.engine.LockedSlots())
	}
	if _, ok := f.engine.Pending("atk1"); ok {
		t.Error("atk1 still pending after resolution")
	}
}

func TestMissingGeometryTakesNoLock(t *testing.T) {
	f := newFixture(t)
	f.view.Positions = board.Positions{}
	note, p := atk1()

	if _, err := f.engine.CaptureAttack(note, p, f.view); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("err = %v, want ErrNoGeometry", err)
	}
	if len(f.engine.LockedSlots()) != 0 {
		t.Error("lock taken without geometry")
	}
}

func TestExpiredAttackIsAbandoned(t *testing.T) {
	f := newFixture(t)
	note, p := atk1()
	_, _ = f.engine.CaptureAttack(note, p, f.view)

	f.clock.Advance(16 * time.Second)
	if n := f.engine.Sweep(); n != 1 {
		t.Fatalf("Sweep evicted %d, want 1", n)
	}
	if len(f.engine.LockedSlots()) != 0 {
		t.Error("abandoned attack kept its locks")
	}
	if _, ok := f.engine.Pending("atk1"); ok {
		t.Error("abandoned attack still pending")
	}
}

func TestResolutionsRunFIFO(t *testing.T) {
	f := newFixture(t)
	f.stage.Delay = 5 * time.Millisecond

	note, p := atk1()
	_, _ = f.engine.CaptureAttack(note, p, f.view)
	note2 := notification.Notification{ID: "atk2", Type: notification.TypeAttackDeclared, Payload: p}
	_, _ = f.engine.CaptureAttack(note2, p, f.view)

	rn1, rp1 := resolution("atk1", notification.BattleResult{})
	rn2, rp2 := resolution("atk2", notification.BattleResult{})
	_ = f.engine.ResolveBattle(context.Background(), rn1, rp1, nil)
	_ = f.engine.ResolveBattle(context.Background(), rn2, rp2, nil)
	waitIdle(t, f.engine)

	var order []string
	for _, c := range f.stage.Calls() {
		if c.Op == "create" || c.Op == "destroy" {
			order = append(order, c.Op)
		}
	}
	want := []string{"create", "create", "destroy", "destroy", "create", "create", "destroy", "destroy"}
	if len(order) != len(want) {
		t.Fatalf("ops = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ops = %v, want %v", order, want)
		}
	}
	if len(f.engine.LockedSlots()) != 0 {
		t.Error("locks remain after both resolutions")
	}
}
