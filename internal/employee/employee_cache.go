package employee

import (
	"context"
	"strconv"
	"sync"
	"time"

	"employee-service/internal/shared/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ListCacheName = "employees"
	ByIDCacheName = "employees_by_id"
)

type (
	ListLoader func(ctx context.Context) ([]EmployeeResponse, error)
	ByIDLoader func(ctx context.Context, id string) (EmployeeResponse, error)
)

// Cache holds the full-list snapshot and the per-id projections.
//
// The list is never patched: any write drops it and the next read reloads
// everything. By-id entries are written through on update. A loader result
// is only stored when no write touched the same shape while it was running,
// so a completed write always wins over a slower concurrent read.
type Cache interface {
	GetAll(ctx context.Context, load ListLoader) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string, load ByIDLoader) (EmployeeResponse, error)
	InvalidateAll()
	PutByID(id string, resp EmployeeResponse)
}

type CacheOption func(*memoryCache)

// WithTTL expires entries after ttl. Zero keeps them until the next write.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *memoryCache) {
		c.ttl = ttl
	}
}

func WithClock(now func() time.Time) CacheOption {
	return func(c *memoryCache) {
		c.now = now
	}
}

func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *memoryCache) {
		if logger != nil {
			c.logger = logger.Named("employee.cache")
		}
	}
}

type listEntry struct {
	items    []EmployeeResponse
	storedAt time.Time
}

type byIDEntry struct {
	resp     EmployeeResponse
	storedAt time.Time
}

type memoryCache struct {
	mu sync.RWMutex

	list    *listEntry
	listGen uint64

	byID    map[string]byIDEntry
	byIDGen uint64

	ttl    time.Duration
	now    func() time.Time
	sf     singleflight.Group
	logger *zap.Logger
}

func NewCache(opts ...CacheOption) Cache {
	c := &memoryCache{
		byID:   make(map[string]byIDEntry),
		now:    time.Now,
		logger: zap.L().Named("employee.cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *memoryCache) GetAll(ctx context.Context, load ListLoader) ([]EmployeeResponse, error) {
	c.mu.RLock()
	entry, gen := c.list, c.listGen
	c.mu.RUnlock()

	if entry != nil && c.fresh(entry.storedAt) {
		metrics.CacheLookups.WithLabelValues(ListCacheName, metrics.ResultHit).Inc()
		return cloneList(entry.items), nil
	}
	metrics.CacheLookups.WithLabelValues(ListCacheName, metrics.ResultMiss).Inc()

	// Keyed by generation: callers arriving after a write never join a
	// load that started before it.
	// Shared by every caller of this generation; one caller going away
	// must not fail the others.
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.sf.Do("all:"+strconv.FormatUint(gen, 10), func() (any, error) {
		items, err := load(loadCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.listGen == gen {
			c.list = &listEntry{items: cloneList(items), storedAt: c.now()}
		} else {
			c.logger.Debug("list reload discarded, cache written meanwhile",
				zap.Uint64("loaded_gen", gen),
				zap.Uint64("current_gen", c.listGen),
			)
		}
		c.mu.Unlock()

		return items, nil
	})
	if err != nil {
		return nil, err
	}

	return cloneList(v.([]EmployeeResponse)), nil
}

func (c *memoryCache) GetByID(ctx context.Context, id string, load ByIDLoader) (EmployeeResponse, error) {
	c.mu.RLock()
	entry, ok := c.byID[id]
	gen := c.byIDGen
	c.mu.RUnlock()

	if ok && c.fresh(entry.storedAt) {
		metrics.CacheLookups.WithLabelValues(ByIDCacheName, metrics.ResultHit).Inc()
		return entry.resp, nil
	}
	metrics.CacheLookups.WithLabelValues(ByIDCacheName, metrics.ResultMiss).Inc()

	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.sf.Do("id:"+id+":"+strconv.FormatUint(gen, 10), func() (any, error) {
		resp, err := load(loadCtx, id)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.byIDGen == gen {
			c.byID[id] = byIDEntry{resp: resp, storedAt: c.now()}
		}
		c.mu.Unlock()

		return resp, nil
	})
	if err != nil {
		return EmployeeResponse{}, err
	}

	return v.(EmployeeResponse), nil
}

func (c *memoryCache) InvalidateAll() {
	c.mu.Lock()
	c.list = nil
	c.listGen++
	c.mu.Unlock()

	metrics.CacheInvalidations.WithLabelValues(ListCacheName).Inc()
}

func (c *memoryCache) PutByID(id string, resp EmployeeResponse) {
	c.mu.Lock()
	c.byID[id] = byIDEntry{resp: resp, storedAt: c.now()}
	c.byIDGen++
	c.mu.Unlock()

	metrics.CacheInvalidations.WithLabelValues(ByIDCacheName).Inc()
}

func (c *memoryCache) fresh(storedAt time.Time) bool {
	return c.ttl <= 0 || c.now().Sub(storedAt) < c.ttl
}

func cloneList(items []EmployeeResponse) []EmployeeResponse {
	if items == nil {
		return nil
	}
	out := make([]EmployeeResponse, len(items))
	copy(out, items)
	return out
}
