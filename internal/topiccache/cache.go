// Package topiccache keeps the latest known payload for each topic id,
// fetching through the API client on first access. Handlers block on Get
// until the value resolves; concurrent gets for the same id share one
// in-flight fetch.
package topiccache

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/grouptalk-dev/grouptalk/shared/domain"
	"github.com/grouptalk-dev/grouptalk/shared/logger"
)

// Fetcher is the single remote read the cache is built on.
type Fetcher interface {
	GetTopic(ctx context.Context, id domain.TopicId) (domain.Topic, error)
}

type Cache struct {
	fetcher Fetcher

	mu      sync.RWMutex
	entries map[domain.TopicId]*domain.Topic

	flight singleflight.Group
}

func New(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher: fetcher,
		entries: make(map[domain.TopicId]*domain.Topic),
	}
}

// Get returns the cached topic for id, fetching it on first access.
// Entries are strictly per-id; fetch errors are propagated, never cached,
// so a later Get issues a fresh fetch.
func (c *Cache) Get(ctx context.Context, id domain.TopicId) (*domain.Topic, error) {
	c.mu.RLock()
	topic, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return topic, nil
	}

	v, err, shared := c.flight.Do(strconv.FormatInt(id, 10), func() (any, error) {
		// A Set may have landed while we waited for the flight slot.
		c.mu.RLock()
		cached, ok := c.entries[id]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		fetched, err := c.fetcher.GetTopic(ctx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[id] = &fetched
		c.mu.Unlock()
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Log.Debug("topic fetch deduplicated", "topic", id)
	}
	return v.(*domain.Topic), nil
}

// Set injects a value for id without a network round trip.
// Subsequent Gets observe it immediately.
func (c *Cache) Set(id domain.TopicId, topic domain.Topic) {
	c.mu.Lock()
	c.entries[id] = &topic
	c.mu.Unlock()
}

// Invalidate drops the entry for id; the next Get refetches.
func (c *Cache) Invalidate(id domain.TopicId) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}
