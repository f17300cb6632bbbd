// Package boltbroker fans out Session events (one per Run/PullAll cycle)
// to interested subscribers — the CLI's live-tail display, the N+1
// detector — without the Session itself knowing who's listening.
package boltbroker

import (
	"sync"
	"time"

	"github.com/Gudahtt/bolt/packstream"
)

// Event describes one completed Run/PullAll (or DiscardAll) cycle.
type Event struct {
	SessionID           string
	Statement           string
	NormalizedStatement string
	Parameters          packstream.Value
	StartTime           time.Time
	Duration            time.Duration
	RecordCount         int
	Error               string
	NPlus1              bool
}

// subscriberBuffer bounds how many undelivered events a slow subscriber
// tolerates before the broker starts dropping for it.
const subscriberBuffer = 64

// Broker fans out Events to any number of subscribers.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// New creates an empty Broker.
func New() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new listener and returns its channel plus an
// unsubscribe function the caller must call when done listening.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	unsub := func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, unsub
}

// Publish delivers ev to every current subscriber. A subscriber whose
// buffer is full has the event dropped rather than blocking the
// publisher.
func (b *Broker) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close unsubscribes and closes every subscriber channel. Call this when
// shutting the broker down for good; Publish after Close is a no-op.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		close(ch)
	}
	b.subs = make(map[chan Event]struct{})
}
