// Package realtime fans committed changes out to websocket clients and
// carries chat and read receipts from them.
package realtime

import (
	"context"
	"log"

	"github.com/npezzotti/meetup/internal/stats"
	"github.com/npezzotti/meetup/internal/types"
)

const hubQueueSize = 1024

// Hub owns the set of connected clients. All membership changes and
// deliveries happen on the Run goroutine.
type Hub struct {
	log            *log.Logger
	stats          stats.StatsProvider
	clients        map[*Client]struct{}
	registerChan   chan *Client
	deRegisterChan chan *Client
	changeChan     chan types.Change
	stop           chan struct{}
	done           chan struct{}
}

var _ types.Publisher = (*Hub)(nil)

func NewHub(logger *log.Logger, st stats.StatsProvider) *Hub {
	return &Hub{
		log:            logger,
		stats:          st,
		clients:        make(map[*Client]struct{}),
		registerChan:   make(chan *Client),
		deRegisterChan: make(chan *Client),
		changeChan:     make(chan types.Change, hubQueueSize),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.registerChan:
			h.log.Printf("adding connection for participant %d", client.participantId)
			h.clients[client] = struct{}{}
			h.stats.Incr(stats.NumActiveClients)
		case client := <-h.deRegisterChan:
			if _, ok := h.clients[client]; ok {
				h.log.Printf("removing connection for participant %d", client.participantId)
				delete(h.clients, client)
				h.stats.Decr(stats.NumActiveClients)
			}
		case change := <-h.changeChan:
			for c := range h.clients {
				c.deliver(change)
			}
		case <-h.stop:
			h.log.Println("closing client connections")
			for c := range h.clients {
				c.stopClient()
			}
			close(h.done)
			return
		}
	}
}

// Publish queues a change for delivery. It never blocks; changes are dropped
// when the queue is full.
func (h *Hub) Publish(change types.Change) {
	select {
	case h.changeChan <- change:
	default:
		h.log.Printf("change queue full, dropping %s %s", change.Type, change.Table)
	}
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.registerChan <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) deRegister(c *Client) {
	select {
	case h.deRegisterChan <- c:
	case <-h.done:
	}
}

// Shutdown stops the hub and every client, waiting for the Run loop to exit
// or ctx to end.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.log.Println("received shutdown signal")
	close(h.stop)

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
