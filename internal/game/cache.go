package game

import "sync"

const sessionCapacity = 50

// sessionCache maps round ids to their answer keys. The collection is bounded:
// inserting past capacity evicts the earliest-inserted surviving entry, by
// insertion order rather than access order.
type sessionCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]SessionRound
	order    []string
}

func newSessionCache(capacity int) *sessionCache {
	return &sessionCache{
		capacity: capacity,
		entries:  make(map[string]SessionRound),
	}
}

func (c *sessionCache) put(round SessionRound) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[round.RoundID]; !exists {
		c.order = append(c.order, round.RoundID)
	}
	c.entries[round.RoundID] = round

	for len(c.entries) > c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
}

// get is a non-destructive peek.
func (c *sessionCache) get(roundID string) (SessionRound, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	round, ok := c.entries[roundID]
	return round, ok
}

// takeAndInvalidate atomically reads and deletes an entry so a round can be
// judged exactly once.
func (c *sessionCache) takeAndInvalidate(roundID string) (SessionRound, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	round, ok := c.entries[roundID]
	if !ok {
		return SessionRound{}, false
	}
	delete(c.entries, roundID)
	for i, id := range c.order {
		if id == roundID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return round, true
}

func (c *sessionCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
