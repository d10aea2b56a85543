package stores

import (
	"context"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/rentora/ability"
)

// CachedRecordSource is a read-through cache in front of another RecordSource,
// typically SQLRecordStore. Missing records are cached too, so repeated checks
// against a deleted record do not hit the database every time.
type CachedRecordSource struct {
	source ability.RecordSource
	cache  *ristretto.Cache
	ttl    time.Duration
}

// negative marks a cached "record does not exist" entry.
type negative struct{}

func NewCachedRecordSource(source ability.RecordSource, cfg ability.CacheConfig) (*CachedRecordSource, error) {
	maxEntries := cfg.RecordMaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	ttl := time.Duration(cfg.RecordTTL) * time.Millisecond
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CachedRecordSource{source: source, cache: cache, ttl: ttl}, nil
}

func cacheKey(ref ability.RecordRef) string {
	return string(ref.Type) + "/" + ref.ID
}

func (c *CachedRecordSource) LoadRecord(ctx context.Context, ref ability.RecordRef) (ability.Record, error) {
	key := cacheKey(ref)
	if v, ok := c.cache.Get(key); ok {
		if _, miss := v.(negative); miss {
			return nil, nil
		}
		return v.(ability.Record), nil
	}
	rec, err := c.source.LoadRecord(ctx, ref)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		c.cache.SetWithTTL(key, negative{}, 1, c.ttl)
		return nil, nil
	}
	c.cache.SetWithTTL(key, rec, 1, c.ttl)
	return rec, nil
}

// Invalidate drops the cached entry for ref, if any. Call after a write that
// changes the record.
func (c *CachedRecordSource) Invalidate(ref ability.RecordRef) {
	c.cache.Del(cacheKey(ref))
}

// Wait blocks until buffered cache writes are applied. Admission is
// asynchronous, so callers that need read-your-write behavior must wait.
func (c *CachedRecordSource) Wait() {
	c.cache.Wait()
}

// Close releases the cache's background goroutines.
func (c *CachedRecordSource) Close() {
	c.cache.Close()
}
