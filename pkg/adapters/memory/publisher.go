package memory

import (
	"context"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// Publisher implements ports.PubSub in memory, fanning snapshots out to subscribers
// of the same session. Safe for concurrent use.
//
// Delivery never blocks the builder: a subscriber whose buffer is full misses
// intermediate snapshots and receives the next one that fits.
type Publisher struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	buffer int
}

type subscriber struct {
	ch   chan *domain.Snapshot
	once sync.Once
}

// NewPublisher creates an in-memory publisher. buffer is the per-subscriber channel
// capacity; values below 1 are raised to 1.
func NewPublisher(buffer int) *Publisher {
	if buffer < 1 {
		buffer = 1
	}
	return &Publisher{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
	}
}

// Publish delivers a deep copy of snap to every subscriber of its session.
func (p *Publisher) Publish(ctx context.Context, snap *domain.Snapshot) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for sub := range p.subs[snap.SessionID] {
		copied := *snap
		copied.Forest = snap.Forest.Clone()
		select {
		case sub.ch <- &copied:
		default:
		}
	}
	return nil
}

// Subscribe registers a subscriber until ctx is canceled.
func (p *Publisher) Subscribe(ctx context.Context, sessionID string) (<-chan *domain.Snapshot, error) {
	sub := &subscriber{ch: make(chan *domain.Snapshot, p.buffer)}

	p.mu.Lock()
	if p.subs[sessionID] == nil {
		p.subs[sessionID] = make(map[*subscriber]struct{})
	}
	p.subs[sessionID][sub] = struct{}{}
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.mu.Lock()
		delete(p.subs[sessionID], sub)
		if len(p.subs[sessionID]) == 0 {
			delete(p.subs, sessionID)
		}
		p.mu.Unlock()
		sub.once.Do(func() { close(sub.ch) })
	}()

	return sub.ch, nil
}

// Subscribers returns how many subscribers are attached to sessionID.
func (p *Publisher) Subscribers(sessionID string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs[sessionID])
}
