package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/Temutjin2k/govv-tracker/pkg/logger"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
	"github.com/google/uuid"
)

var (
	ErrEmptyConn      = errors.New("connection is empty")
	ErrConnIsNotFound = errors.New("connection not found")
)

// ConnectionHub groups websocket connections by topic and fans messages out to them.
type ConnectionHub struct {
	topics map[string]map[uuid.UUID]*Conn
	l      logger.Logger
	mu     sync.Mutex
}

func NewConnHub(l logger.Logger) *ConnectionHub {
	return &ConnectionHub{
		topics: make(map[string]map[uuid.UUID]*Conn),
		l:      l,
	}
}

// Add registers conn under its topic.
func (h *ConnectionHub) Add(conn *Conn) error {
	if conn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.topics[conn.topic]
	if !ok {
		set = make(map[uuid.UUID]*Conn)
		h.topics[conn.topic] = set
	}
	set[conn.id] = conn

	return nil
}

// Delete removes and closes the connection.
func (h *ConnectionHub) Delete(conn *Conn) error {
	if conn == nil {
		return ErrEmptyConn
	}

	h.mu.Lock()
	set, ok := h.topics[conn.topic]
	if ok {
		_, ok = set[conn.id]
		delete(set, conn.id)
		if len(set) == 0 {
			delete(h.topics, conn.topic)
		}
	}
	h.mu.Unlock()

	if err := conn.Close(); err != nil {
		h.l.Debug(wrap.WithAction(context.Background(), "ws_connection_delete"),
			"failed to close conn", "conn_id", conn.id, "err", err.Error())
	}

	if !ok {
		return ErrConnIsNotFound
	}
	return nil
}

// Broadcast sends msg to every connection of the topic. Connections that fail are dropped.
// Returns the number of successful deliveries.
func (h *ConnectionHub) Broadcast(topic string, msg any) int {
	conns := h.snapshot(topic)

	delivered := 0
	for _, c := range conns {
		if err := c.Send(msg); err != nil {
			h.l.Debug(wrap.WithAction(context.Background(), "ws_broadcast"),
				"dropping viewer", "conn_id", c.id, "topic", topic, "err", err.Error())
			_ = h.Delete(c)
			continue
		}
		delivered++
	}
	return delivered
}

// Count returns the number of connections subscribed to topic.
func (h *ConnectionHub) Count(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.topics[topic])
}

// CloseTopic disconnects every viewer of topic.
func (h *ConnectionHub) CloseTopic(topic string) {
	for _, c := range h.snapshot(topic) {
		_ = h.Delete(c)
	}
}

// Close disconnects every connection.
func (h *ConnectionHub) Close() {
	h.mu.Lock()
	var all []*Conn
	for _, set := range h.topics {
		for _, c := range set {
			all = append(all, c)
		}
	}
	h.mu.Unlock()

	for _, c := range all {
		_ = h.Delete(c)
	}

	h.l.Info(wrap.WithAction(context.Background(), "hub_close"), "all websocket connections closed gracefully")
}

func (h *ConnectionHub) snapshot(topic string) []*Conn {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.topics[topic]
	out := make([]*Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}
