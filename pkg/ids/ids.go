// Package ids generates element identifiers.
package ids

import (
	"strconv"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/google/uuid"
)

// Generator produces element IDs that are unique for the lifetime of a session.
type Generator interface {
	// Next returns a fresh ID for an element of type t.
	Next(t domain.ElementType) string
	// Reset starts a new session. IDs handed out before Reset may be reused after it.
	Reset()
}

// Counter issues short, readable IDs made of the type prefix and a per-type
// monotonic counter: c1, c2, t1, ... Safe for concurrent use.
type Counter struct {
	mu     sync.Mutex
	counts map[domain.ElementType]int
}

// NewCounter creates a counter starting at 1 for every type.
func NewCounter() *Counter {
	return &Counter{counts: make(map[domain.ElementType]int)}
}

func (c *Counter) Next(t domain.ElementType) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[t]++
	return t.Prefix() + strconv.Itoa(c.counts[t])
}

func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts = make(map[domain.ElementType]int)
}

// UUID issues random version 4 UUIDs prefixed with the type tag (t-3f2a...).
// Reset is a no-op: random IDs never repeat in practice.
type UUID struct{}

func (UUID) Next(t domain.ElementType) string {
	return t.Prefix() + "-" + uuid.NewString()
}

func (UUID) Reset() {}

// New returns the generator registered under strategy ("counter" or "uuid").
// An empty strategy selects the counter.
func New(strategy string) (Generator, bool) {
	switch strategy {
	case "", "counter":
		return NewCounter(), true
	case "uuid":
		return UUID{}, true
	}
	return nil, false
}
