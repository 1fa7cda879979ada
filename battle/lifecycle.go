package battle

import (
	"context"

	"github.com/looplab/fsm"
)

// Attack lifecycle states
const (
	StateDeclared  = "declared"
	StateResolving = "resolving"
	StateResolved  = "resolved"
	StateAbandoned = "abandoned"
)

const (
	eventResolve = "resolve"
	eventFinish  = "finish"
	eventAbandon = "abandon"
)

// newLifecycle builds the per-attack state machine
// declared -> resolving -> resolved, or declared -> abandoned on cache eviction
func newLifecycle(onEnter func(state string)) *fsm.FSM {
	return fsm.NewFSM(
		StateDeclared,
		fsm.Events{
			{Name: eventResolve, Src: []string{StateDeclared}, Dst: StateResolving},
			{Name: eventFinish, Src: []string{StateResolving}, Dst: StateResolved},
			{Name: eventAbandon, Src: []string{StateDeclared}, Dst: StateAbandoned},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				if onEnter != nil {
					onEnter(e.Dst)
				}
			},
		},
	)
}
