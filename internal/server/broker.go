package server

import (
	"encoding/json"
	"sync"

	"github.com/playperu/geoquest/internal/quiz"
)

// Broker is an in-process pub/sub for quiz events, keyed by player token.
// Both the SSE and the WebSocket streams subscribe to it.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given player.
func (b *Broker) Subscribe(token string) chan []byte {
	ch := make(chan []byte, 32)
	b.mu.Lock()
	if b.subs[token] == nil {
		b.subs[token] = make(map[chan []byte]struct{})
	}
	b.subs[token][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(token string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[token], ch)
	if len(b.subs[token]) == 0 {
		delete(b.subs, token)
	}
	b.mu.Unlock()
}

// Drop closes every subscription of the given player, ending their streams.
func (b *Broker) Drop(token string) {
	b.mu.Lock()
	for ch := range b.subs[token] {
		close(ch)
	}
	delete(b.subs, token)
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given player. It never
// blocks: orchestrators call it with their lock held.
func (b *Broker) Publish(token string, event quiz.Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[token] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
