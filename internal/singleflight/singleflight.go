package singleflight

import (
	"sync"
)

// Group coalesces concurrent searches for the same cache key so a burst of
// identical reads produces a single upstream request. Duplicate callers wait
// for the owner and receive the same response bytes.
type Group struct {
	mu sync.Mutex
	m  map[string]*call
}

// call represents an active or completed fetch.
type call struct {
	wg   sync.WaitGroup
	body []byte
	err  error
}

// New creates a new singleflight Group.
func New() *Group {
	return &Group{
		m: make(map[string]*call),
	}
}

// Do executes fn, making sure that only one execution is in-flight for a
// given key at a time. The boolean result reports whether the caller shared
// another caller's fetch instead of performing its own.
func (g *Group) Do(key string, fn func() ([]byte, error)) ([]byte, bool, error) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.body, true, c.err
	}

	c := &call{}
	c.wg.Add(1)
	g.m[key] = c
	g.mu.Unlock()

	c.body, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()

	return c.body, false, c.err
}

// Forget removes the key from the group's map, allowing a future call with
// the same key to execute even if a previous call is still in progress.
func (g *Group) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
