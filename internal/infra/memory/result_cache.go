package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"lms-client/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ResultCache caches merged per-assessment result rows with a TTL so a view
// that aggregates repeatedly within its lifetime does not re-hit the bulk
// results endpoint. Clear is the teardown hook for views that must start
// cold next time.
type ResultCache struct {
	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedRows
}

type cachedRows struct {
	rows      []domain.EnrichedResult
	expiresAt time.Time
}

func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:   ttl,
		clock: time.Now,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
		cache: make(map[string]cachedRows),
	}
}

// Fetch returns the cached rows for an assessment, or runs load once (even
// under concurrent callers) and caches its output.
func (c *ResultCache) Fetch(ctx context.Context, assessmentID string, load func(context.Context) ([]domain.EnrichedResult, error)) ([]domain.EnrichedResult, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[assessmentID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.rows, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(assessmentID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[assessmentID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.rows, nil
		}
		c.mu.RUnlock()

		rows, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[assessmentID] = cachedRows{
			rows:      rows,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.EnrichedResult), nil
}

// Clear drops every cached assessment so the next pass fetches fresh.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cachedRows)
}

func (c *ResultCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
