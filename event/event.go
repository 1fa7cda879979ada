// Package event turns ordered notifications into animation events
package event

import (
	"github.com/AnsonYua/cardGameMobile-sub001/notification"
)

// AnimationEvent is one queued animation, 1:1 with a notification
type AnimationEvent struct {
	ID   string
	Type notification.Type
	Note notification.Notification
	// CardUIDs lists every card the event touches, duplicates removed
	CardUIDs []string
}

// animatable is the closed set of notification types with a visual routine
var animatable = map[notification.Type]struct{}{
	notification.TypeCardPlayed:       {},
	notification.TypeAttackDeclared:   {},
	notification.TypeAttackRedirected: {},
	notification.TypeBattleResolved:   {},
	notification.TypeStatModified:     {},
}

// Animatable reports whether notifications of type t produce an animation
func Animatable(t notification.Type) bool {
	_, ok := animatable[t]
	return ok
}

// AnimatableTypes returns the allow-list in a fixed order
func AnimatableTypes() []notification.Type {
	return []notification.Type{
		notification.TypeCardPlayed,
		notification.TypeAttackDeclared,
		notification.TypeAttackRedirected,
		notification.TypeBattleResolved,
		notification.TypeStatModified,
	}
}

// New wraps a single notification
func New(n notification.Notification) AnimationEvent {
	return AnimationEvent{
		ID:       n.ID,
		Type:     n.Type,
		Note:     n,
		CardUIDs: n.CardUIDs(),
	}
}

// Build keeps animatable notifications with an id, preserving order
func Build(notes []notification.Notification) []AnimationEvent {
	out := make([]AnimationEvent, 0, len(notes))
	for _, n := range notes {
		if n.ID == "" || !Animatable(n.Type) {
			continue
		}
		out = append(out, New(n))
	}
	return out
}

// IsAttack reports declared and redirected attacks
func (e AnimationEvent) IsAttack() bool {
	return e.Type == notification.TypeAttackDeclared || e.Type == notification.TypeAttackRedirected
}

// Touches reports whether the event references the card uid
func (e AnimationEvent) Touches(uid string) bool {
	for _, u := range e.CardUIDs {
		if u == uid {
			return true
		}
	}
	return false
}
