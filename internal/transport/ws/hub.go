// Package ws streams trace records to WebSocket observers.
//
// Observers are read-only: every applied record is pushed to each
// connected client as one JSON text frame, and anything a client sends is
// discarded. A client that cannot keep up is disconnected rather than
// allowed to stall the simulation.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/gearbox/internal/trace"
)

var (
	// ErrHubBusy is returned by Record when the broadcast buffer is full.
	ErrHubBusy = errors.New("observer hub busy, record dropped")

	// ErrHubClosed is returned by Record after Run has exited.
	ErrHubClosed = errors.New("observer hub closed")
)

const broadcastBuffer = 256

// Hub maintains the set of active observers and broadcasts records to
// them. It implements trace.Sink.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.Mutex
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run handles registrations and broadcasts until ctx is cancelled. All
// client send channels are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for c := range h.clients {
			close(c.send)
			delete(h.clients, c)
		}
		h.mu.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("observer hub shutting down")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			slog.Info("observer connected", "remote", c.remote, "observers", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				slog.Info("observer disconnected", "remote", c.remote)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slog.Warn("observer too slow, disconnecting", "remote", c.remote)
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Record queues rec for every observer. It never blocks the caller.
func (h *Hub) Record(rec trace.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- payload:
		return nil
	default:
		return ErrHubBusy
	}
}

// ClientCount returns the number of connected observers.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) join(ctx context.Context, c *client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) leave(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
