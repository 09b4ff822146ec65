package zenobjects

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
)

// InMemoryRecordCache is a sharded in-memory RecordCache. Entry keys carry a
// resource tag prefix so a whole resource's search results can be dropped or
// marked stale in one call.
type InMemoryRecordCache struct {
	shards    []*cacheShard
	numShards int
}

type cacheShard struct {
	mu    sync.RWMutex
	store map[string]*RecordCacheEntry
}

// NewInMemoryRecordCache creates an empty cache.
func NewInMemoryRecordCache() *InMemoryRecordCache {
	numShards := 16
	shards := make([]*cacheShard, numShards)
	for i := range shards {
		shards[i] = &cacheShard{
			store: make(map[string]*RecordCacheEntry),
		}
	}
	return &InMemoryRecordCache{
		shards:    shards,
		numShards: numShards,
	}
}

func (c *InMemoryRecordCache) getShard(key string) *cacheShard {
	hash := fnv.New32a()
	hash.Write([]byte(key))
	return c.shards[hash.Sum32()%uint32(c.numShards)]
}

// Get returns the entry stored under key, if any. Staleness is the caller's
// predicate; expired entries are still returned so a refetch can fall back to
// them on failure.
func (c *InMemoryRecordCache) Get(key string) (*RecordCacheEntry, bool) {
	shard := c.getShard(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()

	entry, exists := shard.store[key]
	if !exists {
		return nil, false
	}
	return entry, true
}

// Set stores an entry under key.
func (c *InMemoryRecordCache) Set(key string, entry *RecordCacheEntry) {
	shard := c.getShard(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()

	shard.store[key] = entry
}

// InvalidateTag removes every entry stored under the tag's key prefix.
func (c *InMemoryRecordCache) InvalidateTag(tag string) {
	prefix := tag + ":"
	for _, shard := range c.shards {
		shard.mu.Lock()
		for key := range shard.store {
			if strings.HasPrefix(key, prefix) {
				delete(shard.store, key)
			}
		}
		shard.mu.Unlock()
	}
}

// MarkStale flips every entry under the tag's key prefix to stale without
// dropping it, so readers still see data while the next Search refetches.
func (c *InMemoryRecordCache) MarkStale(tag string) {
	prefix := tag + ":"
	for _, shard := range c.shards {
		shard.mu.Lock()
		for key, entry := range shard.store {
			if strings.HasPrefix(key, prefix) {
				stale := *entry
				stale.Stale = true
				shard.store[key] = &stale
			}
		}
		shard.mu.Unlock()
	}
}

// Clear removes all entries.
func (c *InMemoryRecordCache) Clear() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.store = make(map[string]*RecordCacheEntry)
		shard.mu.Unlock()
	}
}

// Len returns the number of cached entries.
func (c *InMemoryRecordCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.store)
		shard.mu.RUnlock()
	}
	return total
}

// cacheKey builds the deterministic entry key for a resource's search: the
// resource tag plus a hash of the effective filter. Identical resource keys
// and filters share cached results across store instances.
func cacheKey(tag string, filter Filter) string {
	encoded, err := json.Marshal(filter)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%v", filter))
	}
	hash := fnv.New64a()
	hash.Write(encoded)
	return fmt.Sprintf("%s:%x", tag, hash.Sum64())
}

// signalHub broadcasts tag invalidation signals to subscribed readers.
// Sends are non-blocking: a subscriber that has not drained its channel keeps
// its single pending signal, which is enough to trigger one refetch.
type signalHub struct {
	mu   sync.Mutex
	subs map[string][]chan struct{}
}

func newSignalHub() *signalHub {
	return &signalHub{
		subs: make(map[string][]chan struct{}),
	}
}

// Subscribe registers a reader for signals on tag.
func (h *signalHub) Subscribe(tag string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[tag] = append(h.subs[tag], ch)
	h.mu.Unlock()
	return ch
}

// Broadcast signals every subscriber of tag without blocking.
func (h *signalHub) Broadcast(tag string) {
	h.mu.Lock()
	subs := h.subs[tag]
	h.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
