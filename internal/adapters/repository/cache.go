package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/artmap/internal/adapters/mq/queue"
	"github.com/okian/artmap/internal/adapters/sparql"
	"github.com/okian/artmap/internal/domain/model"
	"github.com/okian/artmap/pkg/logger"
	"github.com/okian/artmap/pkg/metrics"
)

// Fetch origins, used as metric labels.
const (
	OriginPrefetch = "prefetch"
	OriginOnDemand = "on_demand"
)

// Fetcher loads the painters of a movement from the query endpoint.
type Fetcher interface {
	Painters(ctx context.Context, movement model.MovementID) (model.ResultSet, error)
}

// Enqueuer accepts prefetch jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, j queue.Job) error
}

// MemoryCache is the in-process Cache. Concurrent fetches of the same
// movement share one request.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[model.MovementID]model.ResultSet

	fetcher Fetcher
	queue   Enqueuer
	group   singleflight.Group
	logger  logger.Logger
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an empty cache backed by fetcher.
func NewMemoryCache(fetcher Fetcher, opts ...Option) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[model.MovementID]model.ResultSet),
		fetcher: fetcher,
		logger:  logger.Current().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	metrics.UpdateCacheEntries(0)
	return c
}

// Get returns a copy of the cached result set for id.
func (c *MemoryCache) Get(ctx context.Context, id model.MovementID) (model.ResultSet, bool) {
	c.mu.RLock()
	rs, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok {
		metrics.RecordCacheMiss()
		return model.ResultSet{}, false
	}
	metrics.RecordCacheHit()
	return rs.Clone(), true
}

// Store saves rs under id. The last writer wins.
func (c *MemoryCache) Store(ctx context.Context, id model.MovementID, rs model.ResultSet) {
	if id.Empty() {
		c.logger.Warn(ctx, "refusing to cache result without movement id")
		return
	}
	rs = rs.Clone()
	rs.Movement = id
	if rs.FetchedAt.IsZero() {
		rs.FetchedAt = time.Now()
	}

	c.mu.Lock()
	c.entries[id] = rs
	n := len(c.entries)
	c.mu.Unlock()

	metrics.RecordCacheStore()
	metrics.UpdateCacheEntries(n)
}

// GetOrFetch returns the cached result set or fetches it on demand. Each
// call records exactly one hit or one miss.
func (c *MemoryCache) GetOrFetch(ctx context.Context, id model.MovementID) (model.ResultSet, bool, error) {
	if rs, ok := c.Get(ctx, id); ok {
		return rs, true, nil
	}
	rs, err := c.fetch(ctx, id, OriginOnDemand)
	return rs, false, err
}

// Load fetches id unconditionally and stores it on success. Prefetch
// workers call it.
func (c *MemoryCache) Load(ctx context.Context, id model.MovementID) (model.ResultSet, error) {
	return c.fetch(ctx, id, OriginPrefetch)
}

func (c *MemoryCache) fetch(ctx context.Context, id model.MovementID, origin string) (model.ResultSet, error) {
	if id.Empty() {
		return model.ResultSet{}, ErrEmptyMovement
	}
	// The shared fetch outlives any one caller; a caller that gives up
	// returns early and the others still get the result.
	ch := c.group.DoChan(id.String(), func() (any, error) {
		fctx := sparql.WithOrigin(context.WithoutCancel(ctx), origin)
		rs, err := c.fetcher.Painters(fctx, id)
		if err != nil {
			return nil, err
		}
		c.Store(fctx, id, rs)
		return rs, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return model.ResultSet{}, fmt.Errorf("fetch %s: %w", id, ctx.Err())
	case res = <-ch:
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		c.logger.Warn(ctx, "fetch failed",
			logger.String("movement", id.String()),
			logger.String("origin", origin),
			logger.Error(err),
		)
		return model.ResultSet{}, fmt.Errorf("fetch %s: %w", id, err)
	}
	if shared {
		c.logger.Debug(ctx, "joined in-flight fetch", logger.String("movement", id.String()))
	}
	return v.(model.ResultSet).Clone(), nil
}

// PrefetchAll queues one job per id. Each job stores its result
// independently, in whatever order they finish.
func (c *MemoryCache) PrefetchAll(ctx context.Context, ids []model.MovementID) (int, error) {
	if c.queue == nil {
		return 0, ErrNoQueue
	}
	var (
		accepted int
		errs     []error
	)
	for _, id := range ids {
		if id.Empty() {
			errs = append(errs, ErrEmptyMovement)
			continue
		}
		if err := c.queue.Enqueue(ctx, queue.Job{Movement: id, EnqueuedAt: time.Now()}); err != nil {
			errs = append(errs, err)
			continue
		}
		accepted++
	}
	c.logger.Info(ctx, "prefetch scheduled",
		logger.Int("accepted", accepted),
		logger.Int("requested", len(ids)),
	)
	return accepted, errors.Join(errs...)
}

// Len returns the number of cached movements.
func (c *MemoryCache) Len(ctx context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Movements returns the cached movement ids in lexical order.
func (c *MemoryCache) Movements(ctx context.Context) []model.MovementID {
	c.mu.RLock()
	ids := make([]model.MovementID, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
