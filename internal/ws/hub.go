package ws

import (
	"encoding/json"
	"sync"

	"github.com/t9fiction/Solana-Task-Manager/internal/logger"
	"github.com/t9fiction/Solana-Task-Manager/internal/service"
)

// Hub fans committed task events out to websocket subscribers. A subscriber
// may restrict its stream to a single author address.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logger.Debug("ws subscriber registered", "wallet", c.Wallet, "filter", c.AuthorFilter)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// PublishTaskEvent implements service.EventPublisher. Slow subscribers are
// skipped rather than blocking the transition path.
func (h *Hub) PublishTaskEvent(evt service.TaskEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		logger.Error("ws marshal event", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.AuthorFilter != "" && c.AuthorFilter != evt.Author {
			continue
		}
		select {
		case c.send <- payload:
		default:
			logger.Warn("ws subscriber lagging, dropping event", "wallet", c.Wallet)
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
