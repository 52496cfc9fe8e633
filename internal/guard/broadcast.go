package guard

import (
	"sync"
)

const EventExtensionToggled = "EXTENSION_TOGGLED"

type Event struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

// Broadcaster fans events out to every connected tab.
type Broadcaster struct {
	sync.RWMutex
	clients map[chan Event]bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[chan Event]bool)}
}

func (b *Broadcaster) Subscribe() chan Event {
	b.Lock()
	defer b.Unlock()

	ch := make(chan Event, 10)
	b.clients[ch] = true
	return ch
}

func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.Lock()
	defer b.Unlock()

	if b.clients[ch] {
		delete(b.clients, ch)
		close(ch)
	}
}

func (b *Broadcaster) Broadcast(event Event) {
	b.RLock()
	defer b.RUnlock()

	for ch := range b.clients {
		select {
		case ch <- event:
		default:
			// Skip if the client is not consuming fast enough
		}
	}
}

func (b *Broadcaster) Clients() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.clients)
}
