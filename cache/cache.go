// Package cache is the read-side cache between the presentation layer and
// the task repository: last successful result per query key, explicit
// invalidation on mutation, and at most one in-flight fetch per key.
package cache

import (
	"context"
	"sync"
	"time"

	"remindo/todo"
)

// TasksKey is the query key for the task list.
const TasksKey = "tasks"

type entry struct {
	tasks     []todo.Task
	fetchedAt time.Time
}

type call struct {
	done  chan struct{}
	tasks []todo.Task
	err   error
}

// Cache maps query keys to their last successful fetch. It is constructed
// explicitly and passed to whoever issues reads; there is no package-level
// instance.
type Cache struct {
	staleAfter time.Duration
	now        func() time.Time

	mu       sync.Mutex
	entries  map[string]entry
	inflight map[string]*call
}

// New creates a cache. staleAfter is the window during which a cached value
// is served without refetching; zero or negative means every read refetches
// (the value then only serves coalescing).
func New(staleAfter time.Duration) *Cache {
	return &Cache{
		staleAfter: staleAfter,
		now:        time.Now,
		entries:    map[string]entry{},
		inflight:   map[string]*call{},
	}
}

// Get returns the cached value for key when it is still fresh; otherwise it
// invokes fetch. Concurrent callers of a stale key share one fetch and its
// result. Failed fetches are not cached.
func (c *Cache) Get(ctx context.Context, key string, fetch func(context.Context) ([]todo.Task, error)) ([]todo.Task, error) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok && c.staleAfter > 0 && c.now().Sub(e.fetchedAt) < c.staleAfter {
		c.mu.Unlock()
		return e.tasks, nil
	}

	if inflight, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.tasks, inflight.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	fetching := &call{done: make(chan struct{})}
	c.inflight[key] = fetching
	c.mu.Unlock()

	fetching.tasks, fetching.err = fetch(ctx)
	close(fetching.done)

	c.mu.Lock()
	delete(c.inflight, key)
	if fetching.err == nil {
		c.entries[key] = entry{tasks: fetching.tasks, fetchedAt: c.now()}
	}
	c.mu.Unlock()

	return fetching.tasks, fetching.err
}

// Invalidate drops the cached value for key, forcing the next Get to fetch.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
