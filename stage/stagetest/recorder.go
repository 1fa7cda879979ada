// Package stagetest provides a recording Stage for tests
package stagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
)

// Call is one recorded stage interaction
type Call struct {
	Op      string // create, move, destroy, visible, effect, indicator, clear
	Handle  stage.SpriteHandle
	Seed    stage.SpriteSeed
	Point   board.Point
	Owner   board.Owner
	SlotID  string
	Visible bool
	Effect  stage.Effect
}

// Recorder is a Stage that completes every visual immediately and records it
type Recorder struct {
	mu      sync.Mutex
	calls   []Call
	sprites map[stage.SpriteHandle]stage.SpriteSeed
	hidden  map[string]bool
	next    int

	// FailMove makes MoveSprite return this error
	FailMove error
	// FailEffect makes PlayEffect return this error
	FailEffect error
	// Delay is slept inside every blocking call
	Delay time.Duration
}

// New creates an empty Recorder
func New() *Recorder {
	return &Recorder{
		sprites: make(map[stage.SpriteHandle]stage.SpriteSeed),
		hidden:  make(map[string]bool),
	}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) wait(ctx context.Context) error {
	if r.Delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(r.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) CreateSprite(seed stage.SpriteSeed) (stage.SpriteHandle, error) {
	r.mu.Lock()
	r.next++
	h := stage.SpriteHandle(fmt.Sprintf("sprite-%d", r.next))
	r.sprites[h] = seed
	r.mu.Unlock()

	r.record(Call{Op: "create", Handle: h, Seed: seed, Point: seed.Position})
	return h, nil
}

func (r *Recorder) MoveSprite(ctx context.Context, h stage.SpriteHandle, to board.Point, d time.Duration) error {
	r.record(Call{Op: "move", Handle: h, Point: to})
	if r.FailMove != nil {
		return r.FailMove
	}
	r.mu.Lock()
	_, ok := r.sprites[h]
	r.mu.Unlock()
	if !ok {
		return stage.ErrUnknownSprite
	}
	return r.wait(ctx)
}

func (r *Recorder) DestroySprite(h stage.SpriteHandle) {
	r.mu.Lock()
	delete(r.sprites, h)
	r.mu.Unlock()
	r.record(Call{Op: "destroy", Handle: h})
}

func (r *Recorder) SetSlotVisible(owner board.Owner, slotID string, visible bool) {
	r.mu.Lock()
	if visible {
		delete(r.hidden, board.Key(owner, slotID))
	} else {
		r.hidden[board.Key(owner, slotID)] = true
	}
	r.mu.Unlock()
	r.record(Call{Op: "visible", Owner: owner, SlotID: slotID, Visible: visible})
}

func (r *Recorder) PlayEffect(ctx context.Context, fx stage.Effect) error {
	r.record(Call{Op: "effect", Effect: fx, Handle: fx.Sprite, Point: fx.Point})
	if r.FailEffect != nil {
		return r.FailEffect
	}
	if fx.Kind == stage.EffectFadeOut {
		r.mu.Lock()
		delete(r.sprites, fx.Sprite)
		r.mu.Unlock()
	}
	return r.wait(ctx)
}

func (r *Recorder) SetAttackIndicator(from, to board.Point) {
	r.record(Call{Op: "indicator", Point: to, Seed: stage.SpriteSeed{Position: from}})
}

func (r *Recorder) ClearAttackIndicator() {
	r.record(Call{Op: "clear"})
}

// Calls returns a copy of the recorded calls
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsOf returns recorded calls with the given op
func (r *Recorder) CallsOf(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// LiveSprites returns the number of sprites not yet destroyed
func (r *Recorder) LiveSprites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sprites)
}

// Hidden reports whether the slot is currently hidden
func (r *Recorder) Hidden(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hidden[key]
}

// SeedOf returns the seed a sprite was created with
func (r *Recorder) SeedOf(h stage.SpriteHandle) (stage.SpriteSeed, bool) {
	for _, c := range r.CallsOf("create") {
		if c.Handle == h {
			return c.Seed, true
		}
	}
	return stage.SpriteSeed{}, false
}
