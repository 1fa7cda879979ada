// Package feed delivers game snapshots to the session from a replay file or a live websocket
package feed

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
)

// ErrClosed is returned when the feed service is used after Stop
var ErrClosed = errors.New("feed: closed")

// Source produces snapshots until it is exhausted, fails or ctx is done
// Run returns nil on clean end of input
type Source interface {
	Run(ctx context.Context, out chan<- *board.Snapshot) error
}

// NewSource builds the source cfg.Mode selects
func NewSource(cfg Config) (Source, error) {
	switch cfg.Mode {
	case ModeReplay:
		if cfg.ReplayFile == "" {
			return nil, errors.New("feed: replay mode needs a replay file")
		}
		return NewReplayFile(cfg.ReplayFile, cfg.ReplayInterval), nil
	case ModeWebSocket:
		if cfg.Address == "" {
			return nil, errors.New("feed: websocket mode needs an address")
		}
		return NewWebSocketSource(cfg), nil
	}
	return nil, fmt.Errorf("feed: unsupported mode %v", cfg.Mode)
}

// send delivers one snapshot unless ctx ends first
func send(ctx context.Context, out chan<- *board.Snapshot, snap *board.Snapshot) error {
	select {
	case out <- snap:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
