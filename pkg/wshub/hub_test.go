package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	"github.com/gorilla/websocket"
)

func TestHubBroadcastToTopic(t *testing.T) {
	hub := NewConnHub(logger.New(io.Discard, "test", logger.LevelError))
	registered := make(chan *Conn, 1)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewConn(context.Background(), "session-1", raw)
		if err := hub.Add(c); err != nil {
			t.Errorf("Add: %v", err)
		}
		registered <- c
		_ = c.Listen(nil)
		_ = hub.Delete(c)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not registered")
	}

	if got := hub.Count("session-1"); got != 1 {
		t.Fatalf("Count = %d, want 1", got)
	}
	if n := hub.Broadcast("other", map[string]string{"type": "noop"}); n != 0 {
		t.Fatalf("broadcast to empty topic delivered %d", n)
	}
	if n := hub.Broadcast("session-1", map[string]string{"type": "sample"}); n != 1 {
		t.Fatalf("delivered = %d, want 1", n)
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]string
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg["type"] != "sample" {
		t.Fatalf("unexpected message %v", msg)
	}

	hub.CloseTopic("session-1")
	if got := hub.Count("session-1"); got != 0 {
		t.Fatalf("Count after CloseTopic = %d", got)
	}
}
