package feed

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the snapshot source
type Mode uint8

const (
	ModeReplay    Mode = iota // JSON-lines file
	ModeWebSocket             // Live server connection
)

func (m Mode) String() string {
	if m == ModeWebSocket {
		return "websocket"
	}
	return "replay"
}

// ParseMode accepts "replay" or "websocket" (alias "ws")
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replay":
		return ModeReplay, nil
	case "websocket", "ws":
		return ModeWebSocket, nil
	}
	return 0, fmt.Errorf("feed: unknown mode %q", s)
}

// Config holds snapshot feed configuration
type Config struct {
	Mode Mode

	// Address is the websocket URL, e.g. ws://localhost:8080/game
	Address string

	// ReplayFile is a JSON-lines file, one snapshot per line
	ReplayFile string

	// ReplayInterval spaces replayed snapshots; zero sends them back to back
	ReplayInterval time.Duration

	// Timing
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// ReadLimit caps one websocket frame in bytes
	ReadLimit int64

	// Buffer is the snapshot channel capacity
	Buffer int
}

// DefaultConfig returns replay defaults suitable for demos
func DefaultConfig() Config {
	return Config{
		Mode:           ModeReplay,
		Address:        "ws://localhost:8080/game",
		ReplayFile:     "testdata/replay.jsonl",
		ReplayInterval: 1500 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    60 * time.Second,
		ReadLimit:      4 << 20,
		Buffer:         16,
	}
}
