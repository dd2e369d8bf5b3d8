// Package plancache caches optimized logical plans by normalized SQL
// text, using the teacher's LRU library (hashicorp/golang-lru is a
// transitive dependency of the teacher's raft stack, promoted here to
// a direct, exercised one) so a repeated statement reuses its plan
// instead of being planned and optimized again. pkg/driver still parses
// every statement and caches SELECT plans only.
package plancache

import (
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/coldframe/coldframe/pkg/logical"
)

// Cache is an LRU of normalized SQL text to its optimized logical plan.
type Cache struct {
	lru *lru.Cache
}

// New builds a Cache holding at most capacity entries. A capacity of
// zero or less disables caching: Get always misses, Put is a no-op.
func New(capacity int) *Cache {
	if capacity <= 0 {
		return &Cache{}
	}
	l, err := lru.New(capacity)
	if err != nil {
		// lru.New only fails for size <= 0, already excluded above.
		panic(err)
	}
	return &Cache{lru: l}
}

// Key normalizes sql into a cache key: trimmed and collapsed to a
// single canonical form so whitespace differences don't cause misses.
func Key(sql string) string {
	return strings.Join(strings.Fields(sql), " ")
}

// Get looks up the optimized plan for a normalized key.
func (c *Cache) Get(key string) (logical.Plan, bool) {
	if c.lru == nil {
		return nil, false
	}
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.(logical.Plan), true
}

// Put stores the optimized plan for a normalized key, evicting the
// least recently used entry if the cache is at capacity.
func (c *Cache) Put(key string, plan logical.Plan) {
	if c.lru == nil {
		return
	}
	c.lru.Add(key, plan)
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	if c.lru == nil {
		return 0
	}
	return c.lru.Len()
}
