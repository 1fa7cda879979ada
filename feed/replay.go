package feed

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
)

const maxReplayLine = 4 << 20

// ReplaySource replays JSON-lines snapshots at a fixed interval
// Blank lines and lines starting with '#' are skipped
type ReplaySource struct {
	open     func() (io.ReadCloser, error)
	interval time.Duration
}

// NewReplayFile replays the file at path
func NewReplayFile(path string, interval time.Duration) *ReplaySource {
	return &ReplaySource{
		open:     func() (io.ReadCloser, error) { return os.Open(path) },
		interval: interval,
	}
}

// NewReplayReader replays r; it is read once
func NewReplayReader(r io.Reader, interval time.Duration) *ReplaySource {
	return &ReplaySource{
		open:     func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		interval: interval,
	}
}

func (s *ReplaySource) Run(ctx context.Context, out chan<- *board.Snapshot) error {
	rc, err := s.open()
	if err != nil {
		return fmt.Errorf("open replay: %w", err)
	}
	defer rc.Close()

	var tick <-chan time.Time
	if s.interval > 0 {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 64*1024), maxReplayLine)
	line, sent := 0, 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}
		snap, err := board.DecodeSnapshot(raw)
		if err != nil {
			return fmt.Errorf("replay line %d: %w", line, err)
		}

		if sent > 0 && tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := send(ctx, out, snap); err != nil {
			return err
		}
		sent++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read replay: %w", err)
	}
	return nil
}
