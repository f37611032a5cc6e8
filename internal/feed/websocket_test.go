package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// Exercises the full client path against a local server: dial,
// subscribe, receive a frame, with the ping loop running alongside the
// reader on the shared connection.
func TestWSSourceStreamsFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		var sub map[string]string
		if err := conn.ReadJSON(&sub); err != nil {
			t.Errorf("read subscribe: %v", err)
			return
		}
		if sub["type"] != "subscribe" || sub["channel"] != "busd" {
			t.Errorf("subscribe frame = %v", sub)
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"timestamp":1}`)); err != nil {
			return
		}
		// keep reading so pings are answered until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	src := NewWSSource(url, "busd", 10*time.Millisecond, 5*time.Millisecond)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines, _ := src.Lines(ctx)
	select {
	case line := <-lines:
		if line != `{"timestamp":1}` {
			t.Fatalf("line = %q", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}
}

func TestWSSourceCloseBeforeConnect(t *testing.T) {
	src := NewWSSource("ws://127.0.0.1:0", "", time.Second, time.Second)
	if err := src.Close(); err != nil {
		t.Fatalf("close without connection: %v", err)
	}
}
