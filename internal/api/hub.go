package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/logging"
)

// Frame types exchanged over /api/v1/ws.
const (
	FrameSubscribe   = "subscribe"
	FrameUnsubscribe = "unsubscribe"
	FramePing        = "ping"
	FramePong        = "pong"
	FrameEvent       = "event"
	FrameAck         = "ack"
	FrameError       = "error"
)

// Frame is one WebSocket message in either direction.
type Frame struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// ChannelList is the payload of subscribe and unsubscribe frames.
type ChannelList struct {
	Channels []string `json:"channels"`
}

func encodeFrame(f Frame) ([]byte, error) {
	f.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return json.Marshal(f)
}

// Hub tracks WebSocket clients and which channels each one listens on.
//
// Thread Safety: all methods are safe for concurrent use. The hub's lock
// guards both indexes; clients hold no lock of their own.
type Hub struct {
	cfg    config.WebSocketConfig
	logger *logging.Logger

	mu        sync.RWMutex
	clients   map[*wsClient]struct{}
	listeners map[string]map[*wsClient]struct{}
}

// NewHub creates an empty hub.
func NewHub(cfg config.WebSocketConfig, logger *logging.Logger) *Hub {
	return &Hub{
		cfg:       cfg,
		logger:    logger,
		clients:   make(map[*wsClient]struct{}),
		listeners: make(map[string]map[*wsClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", n)
}

// unregister drops c from every index. Only the call that finds c closes
// its send queue, so concurrent shutdown paths cannot double-close.
func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	_, known := h.clients[c]
	if known {
		delete(h.clients, c)
		for ch, set := range h.listeners {
			delete(set, c)
			if len(set) == 0 {
				delete(h.listeners, ch)
			}
		}
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if known {
		h.logger.Debug("websocket client disconnected", "clients", n)
	}
}

func (h *Hub) subscribe(c *wsClient, channels ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for _, ch := range channels {
		set := h.listeners[ch]
		if set == nil {
			set = make(map[*wsClient]struct{})
			h.listeners[ch] = set
		}
		set[c] = struct{}{}
	}
}

func (h *Hub) unsubscribe(c *wsClient, channels ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range channels {
		if set := h.listeners[ch]; set != nil {
			delete(set, c)
			if len(set) == 0 {
				delete(h.listeners, ch)
			}
		}
	}
}

// Broadcast sends payload as an event frame to every client listening on
// channel. Clients whose queue is full miss the frame.
func (h *Hub) Broadcast(channel string, payload any) {
	data, err := encodeFrame(Frame{Type: FrameEvent, Channel: channel, Payload: payload})
	if err != nil {
		h.logger.Error("failed to encode broadcast", "channel", channel, "error", err)
		return
	}

	h.mu.RLock()
	sent := 0
	for c := range h.listeners[channel] {
		if c.enqueue(data) {
			sent++
		}
	}
	h.mu.RUnlock()

	if sent > 0 {
		h.logger.Debug("broadcast sent", "channel", channel, "recipients", sent)
	}
}

// reply queues a frame for c alone. It is a no-op once c is unregistered.
func (h *Hub) reply(c *wsClient, f Frame) {
	data, err := encodeFrame(f)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; ok {
		c.enqueue(data)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ListenerCount returns the number of clients listening on channel.
func (h *Hub) ListenerCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[channel])
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			c.conn.Close()
		}
	}
	h.clients = make(map[*wsClient]struct{})
	h.listeners = make(map[string]map[*wsClient]struct{})
}
