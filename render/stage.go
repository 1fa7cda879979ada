package render

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/cache"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
)

// tween is one timed visual; done closes when it completes, is cancelled or its sprite dies
type tween struct {
	start  time.Time
	dur    time.Duration
	done   chan struct{}
	closed bool
}

func newTween(now time.Time, d time.Duration) *tween {
	return &tween{start: now, dur: d, done: make(chan struct{})}
}

func (t *tween) progress(now time.Time) float64 {
	if t.closed || t.dur <= 0 {
		return 1
	}
	p := float64(now.Sub(t.start)) / float64(t.dur)
	return math.Max(0, math.Min(1, p))
}

// finish must be called with the stage lock held
func (t *tween) finish() {
	if !t.closed {
		t.closed = true
		close(t.done)
	}
}

type sprite struct {
	seed  stage.SpriteSeed
	pos   board.Point
	from  board.Point
	to    board.Point
	move  *tween
	fade  *tween
	pulse *tween
}

type activeEffect struct {
	fx stage.Effect
	tw *tween
}

// SpriteFrame is a sprite sampled at frame time
type SpriteFrame struct {
	Handle stage.SpriteHandle
	Seed   stage.SpriteSeed
	Pos    board.Point
	Alpha  float64 // 1 opaque, 0 gone
	Pulse  float64 // 0..1..0 over a pulse
}

// EffectFrame is a board effect sampled at frame time
type EffectFrame struct {
	Kind     stage.EffectKind
	Point    board.Point
	SlotKey  string
	Stat     string
	Delta    int
	Progress float64
}

// Frame is everything the sprite, effect and indicator renderers need for one frame
type Frame struct {
	Sprites   []SpriteFrame
	Effects   []EffectFrame
	Hidden    map[string]bool
	Arrow     bool
	ArrowFrom board.Point
	ArrowTo   board.Point
}

// SlotHidden reports whether the board renderer should skip a slot
func (f Frame) SlotHidden(key string) bool {
	return f.Hidden[key]
}

// Stage is the terminal stage: detached sprites, tweens and effects advanced by the frame loop
// Blocking calls return when Advance observes completion or ctx is done
type Stage struct {
	mu      sync.Mutex
	clock   cache.Clock
	layout  board.Layout
	sprites map[stage.SpriteHandle]*sprite
	order   []stage.SpriteHandle
	effects []*activeEffect
	hidden  map[string]bool

	arrow     bool
	arrowFrom board.Point
	arrowTo   board.Point
}

// NewStage creates an empty stage using layout for zone anchors
func NewStage(clock cache.Clock, layout board.Layout) *Stage {
	return &Stage{
		clock:   clock,
		layout:  layout,
		sprites: make(map[stage.SpriteHandle]*sprite),
		hidden:  make(map[string]bool),
	}
}

// CreateSprite spawns a sprite at seed.Position with a fresh uuid handle
func (s *Stage) CreateSprite(seed stage.SpriteSeed) (stage.SpriteHandle, error) {
	h := stage.SpriteHandle(uuid.NewString())
	s.mu.Lock()
	s.sprites[h] = &sprite{seed: seed, pos: seed.Position}
	s.order = append(s.order, h)
	s.mu.Unlock()
	return h, nil
}

// MoveSprite tweens linearly from the sprite's current point to `to`
// A new move replaces an unfinished one, which completes at its destination
func (s *Stage) MoveSprite(ctx context.Context, h stage.SpriteHandle, to board.Point, d time.Duration) error {
	s.mu.Lock()
	sp, ok := s.sprites[h]
	if !ok {
		s.mu.Unlock()
		return stage.ErrUnknownSprite
	}
	if sp.move != nil {
		sp.pos = sp.to
		sp.move.finish()
		sp.move = nil
	}
	if d <= 0 {
		sp.pos = to
		s.mu.Unlock()
		return ctx.Err()
	}
	tw := newTween(s.clock.Now(), d)
	sp.from, sp.to, sp.move = sp.pos, to, tw
	s.mu.Unlock()

	return s.wait(ctx, tw)
}

// DestroySprite removes the sprite and releases anyone waiting on it
func (s *Stage) DestroySprite(h stage.SpriteHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyLocked(h)
}

func (s *Stage) destroyLocked(h stage.SpriteHandle) {
	sp, ok := s.sprites[h]
	if !ok {
		return
	}
	for _, tw := range []*tween{sp.move, sp.fade, sp.pulse} {
		if tw != nil {
			tw.finish()
		}
	}
	delete(s.sprites, h)
	s.order = slices.DeleteFunc(s.order, func(o stage.SpriteHandle) bool { return o == h })
	s.effects = slices.DeleteFunc(s.effects, func(e *activeEffect) bool {
		if e.fx.Sprite == h && e.fx.Kind != stage.EffectImpact && e.fx.Kind != stage.EffectSlotPulse {
			e.tw.finish()
			return true
		}
		return false
	})
}

// SetSlotVisible shows or hides the real board slot
func (s *Stage) SetSlotVisible(owner board.Owner, slotID string, visible bool) {
	key := board.Key(owner, slotID)
	s.mu.Lock()
	if visible {
		delete(s.hidden, key)
	} else {
		s.hidden[key] = true
	}
	s.mu.Unlock()
}

// PlayEffect starts an effect and blocks until it completes
// Sprite effects on an unknown handle return stage.ErrUnknownSprite
func (s *Stage) PlayEffect(ctx context.Context, fx stage.Effect) error {
	s.mu.Lock()
	var sp *sprite
	if fx.Kind == stage.EffectFadeOut || fx.Kind == stage.EffectPulse {
		var ok bool
		if sp, ok = s.sprites[fx.Sprite]; !ok {
			s.mu.Unlock()
			return stage.ErrUnknownSprite
		}
	}
	if fx.Duration <= 0 {
		if fx.Kind == stage.EffectFadeOut {
			s.destroyLocked(fx.Sprite)
		}
		s.mu.Unlock()
		return ctx.Err()
	}

	tw := newTween(s.clock.Now(), fx.Duration)
	switch fx.Kind {
	case stage.EffectFadeOut:
		sp.fade = tw
	case stage.EffectPulse:
		sp.pulse = tw
	}
	s.effects = append(s.effects, &activeEffect{fx: fx, tw: tw})
	s.mu.Unlock()

	return s.wait(ctx, tw)
}

// SetAttackIndicator draws the arrow until cleared
func (s *Stage) SetAttackIndicator(from, to board.Point) {
	s.mu.Lock()
	s.arrow, s.arrowFrom, s.arrowTo = true, from, to
	s.mu.Unlock()
}

// ClearAttackIndicator removes the arrow
func (s *Stage) ClearAttackIndicator() {
	s.mu.Lock()
	s.arrow = false
	s.mu.Unlock()
}

func (s *Stage) wait(ctx context.Context, tw *tween) error {
	select {
	case <-tw.done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		tw.finish()
		s.mu.Unlock()
		return ctx.Err()
	}
}

// Advance completes every tween and effect due at now; called once per frame
func (s *Stage) Advance(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sp := range s.sprites {
		if sp.move != nil && sp.move.progress(now) >= 1 {
			sp.pos = sp.to
			sp.move.finish()
			sp.move = nil
		}
		if sp.pulse != nil && sp.pulse.progress(now) >= 1 {
			sp.pulse = nil
		}
	}

	var fading []stage.SpriteHandle
	kept := s.effects[:0]
	for _, e := range s.effects {
		if e.tw.progress(now) < 1 {
			kept = append(kept, e)
			continue
		}
		e.tw.finish()
		if e.fx.Kind == stage.EffectFadeOut {
			fading = append(fading, e.fx.Sprite)
		}
	}
	clear(s.effects[len(kept):])
	s.effects = kept

	for _, h := range fading {
		s.destroyLocked(h)
	}
}

// Frame samples the stage at now without completing anything
func (s *Stage) Frame(now time.Time) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := Frame{
		Sprites:   make([]SpriteFrame, 0, len(s.order)),
		Effects:   make([]EffectFrame, 0, len(s.effects)),
		Hidden:    make(map[string]bool, len(s.hidden)),
		Arrow:     s.arrow,
		ArrowFrom: s.arrowFrom,
		ArrowTo:   s.arrowTo,
	}
	for k := range s.hidden {
		f.Hidden[k] = true
	}
	for _, h := range s.order {
		sp := s.sprites[h]
		sf := SpriteFrame{Handle: h, Seed: sp.seed, Pos: sp.pos, Alpha: 1}
		if sp.move != nil {
			sf.Pos = sp.from.Lerp(sp.to, sp.move.progress(now))
		}
		if sp.fade != nil {
			sf.Alpha = 1 - sp.fade.progress(now)
		}
		if sp.pulse != nil {
			sf.Pulse = math.Sin(math.Pi * sp.pulse.progress(now))
		}
		f.Sprites = append(f.Sprites, sf)
	}
	for _, e := range s.effects {
		if e.fx.Kind != stage.EffectImpact && e.fx.Kind != stage.EffectSlotPulse {
			continue
		}
		f.Effects = append(f.Effects, EffectFrame{
			Kind:     e.fx.Kind,
			Point:    e.fx.Point,
			SlotKey:  e.fx.SlotKey,
			Stat:     e.fx.Stat,
			Delta:    e.fx.Delta,
			Progress: e.tw.progress(now),
		})
	}
	return f
}

// Close completes every pending visual so blocked animation routines return
func (s *Stage) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range slices.Clone(s.order) {
		s.destroyLocked(h)
	}
	for _, e := range s.effects {
		e.tw.finish()
	}
	s.effects = nil
	s.arrow = false
}

// Layout returns the geometry anchors are computed from
func (s *Stage) Layout() board.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout
}

// SetLayout replaces the geometry after a resize
func (s *Stage) SetLayout(l board.Layout) {
	s.mu.Lock()
	s.layout = l
	s.mu.Unlock()
}

func (s *Stage) BaseAnchor(isOpponent bool) (board.Point, bool) {
	return s.Layout().BaseAnchor(isOpponent)
}

func (s *Stage) ShieldAnchor(isOpponent bool) (board.Point, bool) {
	return s.Layout().ShieldAnchor(isOpponent)
}

func (s *Stage) CommandAnchor(isOpponent bool) (board.Point, bool) {
	return s.Layout().CommandAnchor(isOpponent)
}

func (s *Stage) HandAnchor(isOpponent bool) (board.Point, bool) {
	return s.Layout().HandAnchor(isOpponent)
}

var (
	_ stage.Stage   = (*Stage)(nil)
	_ stage.Anchors = (*Stage)(nil)
)
