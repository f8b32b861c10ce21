package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/soar/inputmap/internal/input"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster listens for input snapshots and broadcasts them to the hub.
type Broadcaster struct {
	hub     *Hub
	changes <-chan input.Snapshot

	mu        sync.Mutex
	lastState input.Snapshot
	hasState  bool
	seq       int64
}

func NewBroadcaster(h *Hub, changes <-chan input.Snapshot) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		changes: changes,
	}
}

// Run starts the broadcaster loop until ctx is cancelled or the snapshot
// channel closes. Should be run in a goroutine.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var deltaCount int64

	for {
		select {
		case <-ctx.Done():
			return

		case state, ok := <-b.changes:
			if !ok {
				return
			}

			b.mu.Lock()
			first := !b.hasState
			delta := input.ComputeDelta(b.lastState, state)
			b.lastState = state
			b.hasState = true
			if delta.IsEmpty() {
				b.mu.Unlock()
				continue
			}
			b.seq++
			seq := b.seq
			b.mu.Unlock()

			deltaCount++

			// Send full sync periodically
			if first || deltaCount >= deltaCountSync {
				b.broadcast(NewFullMessage(seq, &state))
				deltaCount = 0
			} else {
				b.broadcast(NewDeltaMessage(seq, delta))
			}

		case <-ticker.C:
			b.mu.Lock()
			if !b.hasState {
				b.mu.Unlock()
				continue
			}
			b.seq++
			msg := NewFullMessage(b.seq, &b.lastState)
			data, err := json.Marshal(msg)
			b.mu.Unlock()
			if err != nil {
				log.Printf("Error marshaling full message: %v", err)
				continue
			}
			b.hub.Broadcast(data)
		}
	}
}

// SendInitialState sends the current full state to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client) {
	b.mu.Lock()
	if !b.hasState {
		b.mu.Unlock()
		return
	}
	b.seq++
	msg := NewFullMessage(b.seq, &b.lastState)
	data, err := json.Marshal(msg)
	b.mu.Unlock()
	if err != nil {
		log.Printf("Error marshaling initial state: %v", err)
		return
	}
	c.Send(data)
}

func (b *Broadcaster) broadcast(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msg.Type, err)
		return
	}
	b.hub.Broadcast(data)
}
