package api

import "time"

// cacheEntry holds one fetched response and when it was fetched.
type cacheEntry[T any] struct {
	data      T
	fetchedAt time.Time
	populated bool
}

func (e *cacheEntry[T]) isFresh(now time.Time, ttl time.Duration) bool {
	return e.populated && now.Sub(e.fetchedAt) < ttl
}

func (e *cacheEntry[T]) store(data T, now time.Time) {
	e.data = data
	e.fetchedAt = now
	e.populated = true
}

func (e *cacheEntry[T]) clear() {
	var zero T
	e.data = zero
	e.fetchedAt = time.Time{}
	e.populated = false
}

// CacheState describes one cache for diagnostics.
type CacheState struct {
	Populated bool
	FetchedAt time.Time
	Fresh     bool
}

// CacheStats reports the goal and current cache states at the client's current time.
func (c *Client) CacheStats() (goal CacheState, current CacheState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	goal = CacheState{
		Populated: c.goal.populated,
		FetchedAt: c.goal.fetchedAt,
		Fresh:     c.goal.isFresh(now, c.cfg.GoalTTL),
	}
	current = CacheState{
		Populated: c.current.populated,
		FetchedAt: c.current.fetchedAt,
		Fresh:     c.current.isFresh(now, c.cfg.CurrentTTL),
	}
	return goal, current
}
