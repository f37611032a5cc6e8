package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSSource streams raw feed lines from the live exchange WebSocket. Each
// frame is one wire record in the same envelope format as the capture
// files, so the decoder is shared with replay.
type WSSource struct {
	url            string
	channel        string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	// mu guards conn; the ping loop and the reconnecting read loop both
	// write on it
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSSource creates a live WebSocket feed source.
func NewWSSource(url, channel string, reconnectDelay, pingInterval time.Duration) *WSSource {
	return &WSSource{
		url:            url,
		channel:        channel,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

func (s *WSSource) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	if s.channel != "" {
		sub := map[string]string{"type": "subscribe", "channel": s.channel}
		if err := conn.WriteJSON(sub); err != nil {
			_ = conn.Close()
			return fmt.Errorf("ws subscribe %s: %w", s.channel, err)
		}
	}
	s.setConn(conn)
	return nil
}

func (s *WSSource) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *WSSource) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *WSSource) ping() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.WriteMessage(websocket.PingMessage, nil)
	}
}

func (s *WSSource) Lines(ctx context.Context) (<-chan string, <-chan error) {
	lines := make(chan string, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.ping()
			}
		}
	}()

	// read loop with reconnect
	go func() {
		defer close(lines)
		defer close(errs)

		for {
			conn := s.current()
			if conn == nil {
				if err := s.connect(ctx); err != nil {
					select {
					case <-ctx.Done():
						return
					case <-time.After(s.reconnectDelay):
						continue
					}
				}
				conn = s.current()
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				errs <- fmt.Errorf("ws read: %w", err)
				_ = conn.Close()
				s.setConn(nil)
				continue
			}
			select {
			case <-ctx.Done():
				return
			case lines <- string(b):
			}
		}
	}()

	return lines, errs
}

func (s *WSSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
