package stage

import (
	"context"
	"errors"
	"time"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
)

// ErrUnknownSprite is returned when a handle does not name a live sprite
var ErrUnknownSprite = errors.New("stage: unknown sprite")

// SpriteSeed is the minimal data needed to spawn a detached card sprite
type SpriteSeed struct {
	Owner      board.Owner
	SlotID     string
	Card       board.CardView
	Position   board.Point
	Size       board.Size
	IsOpponent bool
}

// SpriteHandle identifies a detached sprite on the stage
type SpriteHandle string

// EffectKind selects the visual routine of an Effect
type EffectKind uint8

const (
	EffectImpact    EffectKind = iota // Flash at Point
	EffectFadeOut                     // Fade Sprite then destroy it
	EffectPulse                       // Brief scale pulse on Sprite
	EffectSlotPulse                   // Stat pulse on a board slot
)

// Effect is one timed visual effect
type Effect struct {
	Kind     EffectKind
	Sprite   SpriteHandle
	Point    board.Point
	SlotKey  string
	Stat     string
	Delta    int
	Duration time.Duration
}

// Stage is the visual collaborator the animation core drives
// Blocking methods return once the visual completes or ctx is done
type Stage interface {
	// CreateSprite spawns a detached sprite at seed.Position
	CreateSprite(seed SpriteSeed) (SpriteHandle, error)

	// MoveSprite tweens a sprite to the point over d
	MoveSprite(ctx context.Context, h SpriteHandle, to board.Point, d time.Duration) error

	// DestroySprite removes a sprite; unknown handles are ignored
	DestroySprite(h SpriteHandle)

	// SetSlotVisible shows or hides the real slot renderer for a slot
	SetSlotVisible(owner board.Owner, slotID string, visible bool)

	// PlayEffect runs a timed effect to completion
	PlayEffect(ctx context.Context, fx Effect) error

	// SetAttackIndicator draws the persistent attack arrow
	SetAttackIndicator(from, to board.Point)

	// ClearAttackIndicator removes the attack arrow
	ClearAttackIndicator()
}

// Anchors gives screen points for zones that are not board slots
// Each method reports false when the zone has no anchor
type Anchors interface {
	BaseAnchor(isOpponent bool) (board.Point, bool)
	ShieldAnchor(isOpponent bool) (board.Point, bool)
	CommandAnchor(isOpponent bool) (board.Point, bool)
	HandAnchor(isOpponent bool) (board.Point, bool)
}
