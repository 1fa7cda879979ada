// Package battle captures attack geometry at declaration and replays combat at resolution
package battle

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/looplab/fsm"
	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/cache"
	"github.com/AnsonYua/cardGameMobile-sub001/core"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
	"github.com/AnsonYua/cardGameMobile-sub001/status"
	"github.com/AnsonYua/cardGameMobile-sub001/targeting"
)

// ErrNoGeometry is returned when an attack has no resolvable attacker or target point
var ErrNoGeometry = errors.New("battle: attack geometry unresolved")

// Config holds the pending cache bounds and choreography timings
type Config struct {
	TTL      time.Duration
	Capacity int

	Flight time.Duration
	Return time.Duration
	Impact time.Duration
	Fade   time.Duration
	Pulse  time.Duration
}

// DefaultConfig returns the stock cache bounds and timings
func DefaultConfig() Config {
	return Config{
		TTL:      15 * time.Second,
		Capacity: 24,
		Flight:   350 * time.Millisecond,
		Return:   300 * time.Millisecond,
		Impact:   180 * time.Millisecond,
		Fade:     400 * time.Millisecond,
		Pulse:    250 * time.Millisecond,
	}
}

// Cues plays the audio accents of a battle; implemented by audio.SoundManager
type Cues interface {
	PlayImpact()
	PlayDestroy()
}

type pending struct {
	id         string
	attackerID string
	snap       Snapshot
	life       *fsm.FSM
}

// Deps are the collaborators of an Engine; Cues, Log and Status may be nil
type Deps struct {
	Stage   stage.Stage
	Clock   cache.Clock
	Resolve board.SideResolver
	Cues    Cues
	Log     logrus.FieldLogger
	Status  *status.Registry
}

type lockEntry struct {
	slot  board.Slot
	owner string // Attack id holding the lock
}

// Engine owns pending attacks, slot locks and the resolution FIFO
type Engine struct {
	cfg     Config
	stage   stage.Stage
	clock   cache.Clock
	resolve board.SideResolver
	cues    Cues
	log     logrus.FieldLogger
	ctx     context.Context

	pending *cache.TTLMap[string, *pending]

	mu    sync.Mutex
	locks map[string]lockEntry
	tail  chan struct{} // Done channel of the last queued resolution

	pendingGauge *atomic.Int64
	lockedGauge  *atomic.Int64
	resolved     *atomic.Int64
	abandoned    *atomic.Int64
}

// NewEngine creates an engine; ctx bounds every resolution job
func NewEngine(ctx context.Context, cfg Config, deps Deps) *Engine {
	reg := deps.Status
	if reg == nil {
		reg = status.NewRegistry()
	}
	done := make(chan struct{})
	close(done)

	e := &Engine{
		cfg:          cfg,
		stage:        deps.Stage,
		clock:        deps.Clock,
		resolve:      deps.Resolve,
		cues:         deps.Cues,
		log:          logging.OrDiscard(deps.Log),
		ctx:          ctx,
		pending:      cache.NewTTLMap[string, *pending](cfg.Capacity, cfg.TTL, deps.Clock),
		locks:        make(map[string]lockEntry),
		tail:         done,
		pendingGauge: reg.Counters.Get(status.BattlesPending),
		lockedGauge:  reg.Counters.Get(status.SlotsLocked),
		resolved:     reg.Counters.Get(status.BattlesResolved),
		abandoned:    reg.Counters.Get(status.BattlesAbandoned),
	}
	e.pending.OnEvict = e.abandon
	return e
}

// CaptureAttack records attacker and target geometry for a declared or redirected attack
// and locks their slots. A redirect updates the pending attack of the same attacker.
func (e *Engine) CaptureAttack(note notification.Notification, p *notification.AttackPayload, view View) (Snapshot, error) {
	id := e.attackKey(note, p)
	log := e.log.WithFields(logrus.Fields{"attack": id, "type": note.Type})

	snap, locks, hasPoint, ok := e.capture(p, view)
	if !ok {
		log.Debug("attacker geometry unresolved, nothing captured")
		return Snapshot{}, ErrNoGeometry
	}

	prev, had := e.pending.Get(id)
	if had && prev.snap.Target != nil && snap.Target == nil && p.NamesTarget() {
		// Transient missing-slot read; keep the target we saw before
		t := *prev.snap.Target
		snap.Target = &t
		if !hasPoint {
			snap.TargetPoint, hasPoint = prev.snap.TargetPoint, true
		}
		if k := board.Key(t.Owner, t.SlotID); t.SlotID != "" {
			if _, locked := locks[k]; !locked {
				locks[k] = lockSlot(board.Slot{}, false, t)
			}
		}
		log.Debug("kept previous target")
	}

	if !hasPoint {
		if snap.Target == nil {
			log.Debug("target geometry unresolved, nothing captured")
			return Snapshot{}, ErrNoGeometry
		}
		snap.TargetPoint = snap.Target.Position
	}

	entry := &pending{id: id, attackerID: p.AttackerCardUID, snap: snap}
	if had && prev.life.Current() == StateDeclared {
		entry.life = prev.life
	} else {
		entry.life = newLifecycle(func(state string) {
			log.WithField("state", state).Debug("attack lifecycle")
		})
	}

	if old, replaced := e.pending.Set(id, entry); replaced {
		e.releaseStale(id, old.snap, locks)
	}
	e.lock(id, locks)
	e.sweep()

	log.WithField("locks", len(locks)).Debug("attack captured")
	return snap, nil
}

func (e *Engine) attackKey(note notification.Notification, p *notification.AttackPayload) string {
	if note.Type == notification.TypeAttackRedirected && p.AttackerCardUID != "" {
		for _, k := range e.pending.Keys() {
			if pend, ok := e.pending.Get(k); ok && pend.attackerID == p.AttackerCardUID && pend.life.Current() == StateDeclared {
				return k
			}
		}
	}
	return note.ID
}

// capture resolves seeds and the slots to lock
// ok is false when the attacker cannot be placed; hasPoint reports a resolved target point
func (e *Engine) capture(p *notification.AttackPayload, v View) (snap Snapshot, locks map[string]board.Slot, hasPoint, ok bool) {
	resolve := v.Targeting.ResolveSide
	locks = make(map[string]board.Slot, 2)

	attacker := targeting.AttackerOwner(p, v.Slots, resolve)
	attSlot, attFound := findSlot(v, p.AttackerCardUID, func(s []board.Slot) (board.Slot, bool) {
		return targeting.ResolveAttackerSlot(p, s, attacker)
	})

	if attFound {
		pos, has := v.Positions[attSlot.Key()]
		if !has {
			return Snapshot{}, nil, false, false
		}
		seed, fromSlot := slotSeed(attSlot, p.AttackerCardUID, pos, v.SlotSize)
		if !fromSlot {
			seed = payloadSeed(attSlot.Owner, attSlot.SlotID, p.AttackerCardUID, p.AttackerName, pos, v.SlotSize)
		}
		snap.Attacker = seed
		locks[attSlot.Key()] = lockSlot(attSlot, fromSlot, seed)
	} else {
		slotID := p.AttackerSlotID()
		pos, has := v.Positions[board.Key(attacker, slotID)]
		if slotID == "" || !has {
			return Snapshot{}, nil, false, false
		}
		snap.Attacker = payloadSeed(attacker, slotID, p.AttackerCardUID, p.AttackerName, pos, v.SlotSize)
		locks[board.Key(attacker, slotID)] = lockSlot(board.Slot{}, false, snap.Attacker)
	}

	defender := targeting.DefenderOwner(p, snap.Attacker.Owner, resolve)
	snap.TargetPoint, hasPoint = targeting.ResolveAttackTarget(p, v.Slots, v.Positions, defender, v.Targeting)
	if !hasPoint && len(v.Previous) > 0 {
		snap.TargetPoint, hasPoint = targeting.ResolveAttackTarget(p, v.Previous, v.Positions, defender, v.Targeting)
	}

	if p.TargetsBase() || p.TargetsShield() {
		return snap, locks, hasPoint, true
	}

	tgtSlot, found := findSlot(v, p.TargetUID(), func(s []board.Slot) (board.Slot, bool) {
		return targeting.ResolveTargetSlot(p, s, defender)
	})
	if found {
		if pos, has := v.Positions[tgtSlot.Key()]; has {
			if seed, fromSlot := slotSeed(tgtSlot, p.TargetUID(), pos, v.SlotSize); fromSlot {
				snap.Target = &seed
				locks[tgtSlot.Key()] = lockSlot(tgtSlot, true, seed)
			}
		}
	} else if slotID := p.TargetSlotID(); p.TargetUID() != "" && slotID != "" {
		if pos, has := v.Positions[board.Key(defender, slotID)]; has {
			seed := payloadSeed(defender, slotID, p.TargetUID(), p.TargetName, pos, v.SlotSize)
			snap.Target = &seed
			locks[board.Key(defender, slotID)] = lockSlot(board.Slot{}, false, seed)
		}
	}
	return snap, locks, hasPoint, true
}

// ResolveBattle queues the choreography for a resolved battle and returns at hand-off
// onDone runs after the choreography and its cleanup, or immediately when nothing is pending
func (e *Engine) ResolveBattle(ctx context.Context, note notification.Notification, p *notification.BattleResolvedPayload, onDone func()) error {
	id := p.AttackNotificationID
	log := e.log.WithFields(logrus.Fields{"attack": id, "event": note.ID})

	pend, ok := e.pending.Get(id)
	if !ok || pend.life.Current() != StateDeclared {
		released := e.releaseInferred(id, &p.AttackPayload)
		log.WithField("released", released).Debug("no pending attack, nothing to replay")
		if onDone != nil {
			onDone()
		}
		return nil
	}

	if err := pend.life.Event(ctx, eventResolve); err != nil {
		// Lost a race with eviction; its locks are already gone
		if onDone != nil {
			onDone()
		}
		return fmt.Errorf("resolve attack %s: %w", id, err)
	}

	e.mu.Lock()
	prev := e.tail
	done := make(chan struct{})
	e.tail = done
	e.mu.Unlock()

	result := p.Result
	core.Go(func() {
		defer close(done)
		select {
		case <-prev:
		case <-e.ctx.Done():
		}
		e.runResolution(pend, result, onDone)
	})
	return nil
}

// runResolution plays one battle; cleanup always runs
func (e *Engine) runResolution(pend *pending, result notification.BattleResult, onDone func()) {
	ctx := e.ctx
	log := e.log.WithField("attack", pend.id)
	var (
		handles []stage.SpriteHandle
		hidden  []stage.SpriteSeed
	)

	defer func() {
		if r := recover(); r != nil {
			log.WithField("stack", string(debug.Stack())).Errorf("battle resolution panic: %v", r)
		}
		for _, h := range handles {
			e.stage.DestroySprite(h)
		}
		for _, s := range hidden {
			e.stage.SetSlotVisible(s.Owner, s.SlotID, true)
		}
		e.release(pend.id)
		e.pending.Delete(pend.id)
		if err := pend.life.Event(context.Background(), eventFinish); err != nil {
			log.WithError(err).Debug("finish transition")
		}
		e.resolved.Add(1)
		e.updatePendingGauge()
		e.sweep()
		if onDone != nil {
			onDone()
		}
	}()

	if err := e.choreograph(ctx, pend.snap, result, &handles, &hidden); err != nil {
		log.WithError(err).Warn("battle resolution failed")
	}
}

func (e *Engine) choreograph(ctx context.Context, snap Snapshot, result notification.BattleResult, handles *[]stage.SpriteHandle, hidden *[]stage.SpriteSeed) error {
	att, err := e.stage.CreateSprite(snap.Attacker)
	if err != nil {
		return fmt.Errorf("spawn attacker: %w", err)
	}
	*handles = append(*handles, att)
	e.hide(snap.Attacker, hidden)

	var tgt stage.SpriteHandle
	if snap.Target != nil {
		tgt, err = e.stage.CreateSprite(*snap.Target)
		if err != nil {
			return fmt.Errorf("spawn target: %w", err)
		}
		*handles = append(*handles, tgt)
		e.hide(*snap.Target, hidden)
	}

	if err := e.stage.MoveSprite(ctx, att, snap.TargetPoint, e.cfg.Flight); err != nil {
		return fmt.Errorf("attacker flight: %w", err)
	}
	if e.cues != nil {
		e.cues.PlayImpact()
	}
	if err := e.stage.PlayEffect(ctx, stage.Effect{Kind: stage.EffectImpact, Point: snap.TargetPoint, Duration: e.cfg.Impact}); err != nil {
		return fmt.Errorf("impact: %w", err)
	}

	if tgt != "" {
		if result.DefenderDestroyed {
			if e.cues != nil {
				e.cues.PlayDestroy()
			}
			err = e.stage.PlayEffect(ctx, stage.Effect{Kind: stage.EffectFadeOut, Sprite: tgt, Duration: e.cfg.Fade})
		} else {
			err = e.stage.PlayEffect(ctx, stage.Effect{Kind: stage.EffectPulse, Sprite: tgt, Duration: e.cfg.Pulse})
		}
		if err != nil {
			return fmt.Errorf("target outcome: %w", err)
		}
	}

	if result.AttackerDestroyed {
		if e.cues != nil {
			e.cues.PlayDestroy()
		}
		if err := e.stage.PlayEffect(ctx, stage.Effect{Kind: stage.EffectFadeOut, Sprite: att, Duration: e.cfg.Fade}); err != nil {
			return fmt.Errorf("attacker fade: %w", err)
		}
		return nil
	}
	if err := e.stage.MoveSprite(ctx, att, snap.Attacker.Position, e.cfg.Return); err != nil {
		return fmt.Errorf("attacker return: %w", err)
	}
	return nil
}

func (e *Engine) hide(seed stage.SpriteSeed, hidden *[]stage.SpriteSeed) {
	if seed.SlotID == "" {
		return
	}
	e.stage.SetSlotVisible(seed.Owner, seed.SlotID, false)
	*hidden = append(*hidden, seed)
}

// WaitIdle blocks until every queued resolution has finished
func (e *Engine) WaitIdle(ctx context.Context) error {
	e.mu.Lock()
	tail := e.tail
	e.mu.Unlock()
	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the captured snapshot for an attack id
func (e *Engine) Pending(id string) (Snapshot, bool) {
	p, ok := e.pending.Get(id)
	if !ok {
		return Snapshot{}, false
	}
	return p.snap, true
}

// State returns the lifecycle state of a pending attack
func (e *Engine) State(id string) (string, bool) {
	p, ok := e.pending.Get(id)
	if !ok {
		return "", false
	}
	return p.life.Current(), true
}

// Sweep drops expired pending attacks, abandoning them
func (e *Engine) Sweep() int {
	return e.sweep()
}

func (e *Engine) sweep() int {
	n := e.pending.EvictExpired(e.clock.Now())
	e.updatePendingGauge()
	return n
}

// abandon is the eviction hook; only attacks still awaiting resolution are dropped
func (e *Engine) abandon(id string, p *pending) {
	if p.life.Current() != StateDeclared {
		return
	}
	if err := p.life.Event(context.Background(), eventAbandon); err != nil {
		e.log.WithError(err).WithField("attack", id).Debug("abandon transition")
		return
	}
	released := e.release(id)
	e.abandoned.Add(1)
	e.log.WithFields(logrus.Fields{"attack": id, "released": released}).Info("pending attack abandoned")
}

func (e *Engine) updatePendingGauge() {
	e.pendingGauge.Store(int64(e.pending.Len()))
}
