package ws

import (
	"encoding/json"
	"sync"
)

// Client is one WebSocket connection subscribed to a key (a sender email).
type Client struct {
	Key    string
	Send   chan []byte
	Hub    *Hub
	mu     sync.Mutex
	closed bool
}

func NewClient(key string) *Client {
	return &Client{Key: key, Send: make(chan []byte, 64)}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.Hub != nil {
		c.Hub.unregister(c)
	}
	close(c.Send)
}

// Hub tracks live clients by key and fans payloads out to them.
type Hub struct {
	mu    sync.RWMutex
	byKey map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{byKey: make(map[string]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.Hub = h
	if h.byKey[c.Key] == nil {
		h.byKey[c.Key] = make(map[*Client]struct{})
	}
	h.byKey[c.Key][c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byKey[c.Key]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byKey, c.Key)
		}
	}
}

// Publish sends payload as JSON to every client registered under key. Slow
// clients with a full buffer miss the message instead of blocking the caller.
func (h *Hub) Publish(key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.byKey[key] {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *Hub) ClientCount(key string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byKey[key])
}
