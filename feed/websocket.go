package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnsonYua/cardGameMobile-sub001/board"
)

// WebSocketSource reads JSON snapshot frames from one server connection
// A dropped connection ends Run; reconnecting is the caller's decision
type WebSocketSource struct {
	cfg    Config
	dialer *websocket.Dialer
}

// NewWebSocketSource creates a source dialing cfg.Address
func NewWebSocketSource(cfg Config) *WebSocketSource {
	return &WebSocketSource{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.ConnectTimeout,
			ReadBufferSize:   64 * 1024,
		},
	}
}

func (s *WebSocketSource) Run(ctx context.Context, out chan<- *board.Snapshot) error {
	dialCtx := ctx
	if s.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, s.cfg.ConnectTimeout)
		defer cancel()
	}
	conn, _, err := s.dialer.DialContext(dialCtx, s.cfg.Address, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.cfg.Address, err)
	}
	defer conn.Close()

	if s.cfg.ReadLimit > 0 {
		conn.SetReadLimit(s.cfg.ReadLimit)
	}

	// Unblock ReadMessage when ctx ends
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	for {
		if s.cfg.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read snapshot: %w", err)
		}
		if kind != websocket.TextMessage && kind != websocket.BinaryMessage {
			continue
		}

		snap, err := board.DecodeSnapshot(data)
		if err != nil {
			return err
		}
		if err := send(ctx, out, snap); err != nil {
			return err
		}
	}
}
