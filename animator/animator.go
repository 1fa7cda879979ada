// Package animator holds the per-type visual routines run by the sequencer
package animator

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AnsonYua/cardGameMobile-sub001/battle"
	"github.com/AnsonYua/cardGameMobile-sub001/board"
	"github.com/AnsonYua/cardGameMobile-sub001/logging"
	"github.com/AnsonYua/cardGameMobile-sub001/sequencer"
	"github.com/AnsonYua/cardGameMobile-sub001/stage"
)

// Config holds routine timings
type Config struct {
	PlayFlight time.Duration
	StatPulse  time.Duration
}

// DefaultConfig returns stock timings
func DefaultConfig() Config {
	return Config{
		PlayFlight: 400 * time.Millisecond,
		StatPulse:  350 * time.Millisecond,
	}
}

// Cues plays non-battle audio accents; implemented by audio.SoundManager
type Cues interface {
	PlayCardPlayed()
	PlayPulse()
}

// Deps are the collaborators shared by every routine
// Cues and Log may be nil
type Deps struct {
	Stage   stage.Stage
	Anchors stage.Anchors
	Battle  *battle.Engine
	Cues    Cues
	Log     logrus.FieldLogger
}

// indicator tracks which attack currently owns the arrow
// A finishing battle clears it only if no newer attack replaced it
type indicator struct {
	mu    sync.Mutex
	owner string
	stage stage.Stage
}

func (i *indicator) set(owner string, from, to board.Point) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.owner = owner
	i.stage.SetAttackIndicator(from, to)
}

func (i *indicator) clear(owner string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.owner != owner {
		return
	}
	i.owner = ""
	i.stage.ClearAttackIndicator()
}

// NewRouter registers every routine on a fresh router
func NewRouter(cfg Config, deps Deps) *sequencer.Router[battle.View] {
	deps.Log = logging.OrDiscard(deps.Log)
	arrow := &indicator{stage: deps.Stage}

	r := sequencer.NewRouter[battle.View]()
	r.Register(&CardPlayed{cfg: cfg, deps: deps})
	r.Register(&AttackDeclared{deps: deps, arrow: arrow})
	r.Register(&BattleResolved{deps: deps, arrow: arrow})
	r.Register(&StatModified{cfg: cfg, deps: deps})
	return r
}
