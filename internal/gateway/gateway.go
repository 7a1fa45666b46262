package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/l0p7/innkeeper/internal/gateway/cache"
	"github.com/l0p7/innkeeper/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultTTL        = 5 * time.Minute
)

// ErrInvalidation marks a write that reached the record store but whose cache
// clear failed. The write's value is still returned alongside it.
var ErrInvalidation = errors.New("gateway: cache invalidation failed")

// Op is one call against the record store.
type Op[T any] func(ctx context.Context) (T, error)

// Policy tunes the retry loop and cache freshness window.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	TTL        time.Duration
}

// DefaultPolicy returns three attempts, a one second backoff unit and a five
// minute TTL.
func DefaultPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, BaseDelay: DefaultBaseDelay, TTL: DefaultTTL}
}

func (p Policy) normalized() Policy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.TTL <= 0 {
		p.TTL = DefaultTTL
	}
	return p
}

// Options configures a Gateway. Zero values select the defaults: an in-memory
// cache, retry on every error, no single-flight, the wall clock.
type Options struct {
	Policy       Policy
	Cache        cache.Store
	IsRetryable  func(error) bool
	SingleFlight bool
	Metrics      *metrics.Recorder
	Now          func() time.Time
	OnRetry      func(RetryEvent)
}

// Gateway fronts a record store with bounded retry and a read-through cache
// that is cleared in full after every successful write.
type Gateway struct {
	cache       cache.Store
	policy      atomic.Pointer[Policy]
	isRetryable func(error) bool
	metrics     *metrics.Recorder
	now         func() time.Time
	onRetry     func(RetryEvent)
	flight      *singleflight.Group

	// mu orders populates against clears. Populates hold the read lock and
	// drop their value when generation moved since their fetch started.
	mu         sync.RWMutex
	generation uint64
}

// New builds a Gateway owning opts.Cache (or a fresh memory cache).
func New(opts Options) *Gateway {
	g := &Gateway{
		cache:       opts.Cache,
		isRetryable: opts.IsRetryable,
		metrics:     opts.Metrics,
		now:         opts.Now,
		onRetry:     opts.OnRetry,
	}
	if g.cache == nil {
		g.cache = cache.NewMemory()
	}
	if g.isRetryable == nil {
		g.isRetryable = retryEverything
	}
	if g.now == nil {
		g.now = time.Now
	}
	if opts.SingleFlight {
		g.flight = &singleflight.Group{}
	}
	g.SetPolicy(opts.Policy)
	return g
}

// Policy returns the policy currently in force.
func (g *Gateway) Policy() Policy {
	return *g.policy.Load()
}

// SetPolicy swaps the policy for subsequent operations. Calls already in their
// retry loop keep the policy they started with.
func (g *Gateway) SetPolicy(p Policy) {
	p = p.normalized()
	g.policy.Store(&p)
}

// Read returns the cached value for key while it is fresh. Otherwise it runs
// op through the retry policy and caches a successful result.
//
// Entries are stored as JSON. A miss returns the value op produced, while a
// hit returns a copy decoded from the entry. The two differ for types that do
// not round-trip through encoding/json; unexported fields, for one, are zero
// on a hit. Mutating a returned value never changes the cache.
func Read[T any](ctx context.Context, g *Gateway, key string, op Op[T]) (T, error) {
	start := g.now()
	if value, ok := lookup[T](ctx, g, key); ok {
		g.metrics.ObserveGatewayRead(key, metrics.ReadHit, g.now().Sub(start))
		return value, nil
	}

	var (
		value T
		err   error
	)
	if g.flight != nil {
		value, err = sharedFetch(ctx, g, key, op)
	} else {
		value, err = fetch(ctx, g, key, op)
	}
	if err != nil {
		g.metrics.ObserveGatewayRead(key, metrics.ReadError, g.now().Sub(start))
		return value, err
	}
	g.metrics.ObserveGatewayRead(key, metrics.ReadMiss, g.now().Sub(start))
	return value, nil
}

// Write runs op through the retry policy. On success the whole cache is
// cleared before the value is returned; on failure the cache is untouched.
func Write[T any](ctx context.Context, g *Gateway, op Op[T]) (T, error) {
	start := g.now()
	value, err := retry(ctx, g, metrics.GatewayOperationWrite, "", op)
	if err != nil {
		g.metrics.ObserveGatewayWrite(metrics.WriteError, g.now().Sub(start))
		return value, err
	}
	// The record store already changed, so clear even if the caller gave up.
	invalidateErr := g.Invalidate(context.WithoutCancel(ctx))
	g.metrics.ObserveGatewayWrite(metrics.WriteOK, g.now().Sub(start))
	return value, invalidateErr
}

// Invalidate drops every cached entry. Reads that started fetching before the
// call will not populate the cache with their result.
func (g *Gateway) Invalidate(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	g.metrics.ObserveGatewayInvalidation()
	if err := g.cache.Clear(ctx); err != nil {
		g.metrics.ObserveCacheError("clear")
		return fmt.Errorf("%w: %w", ErrInvalidation, err)
	}
	return nil
}

// Size reports the number of entries held by the cache backend, stale ones
// included until they are next read.
func (g *Gateway) Size(ctx context.Context) (int64, error) {
	return g.cache.Size(ctx)
}

// Close releases the cache backend.
func (g *Gateway) Close(ctx context.Context) error {
	return g.cache.Close(ctx)
}

func lookup[T any](ctx context.Context, g *Gateway, key string) (T, bool) {
	var zero T
	entry, ok, err := g.cache.Lookup(ctx, key)
	if err != nil {
		g.metrics.ObserveCacheError("lookup")
		return zero, false
	}
	if !ok {
		return zero, false
	}
	if g.now().Sub(entry.StoredAt) > g.Policy().TTL {
		g.evict(ctx, key)
		return zero, false
	}
	var value T
	if err := json.Unmarshal(entry.Payload, &value); err != nil {
		g.evict(ctx, key)
		return zero, false
	}
	return value, true
}

func (g *Gateway) evict(ctx context.Context, key string) {
	if err := g.cache.Delete(ctx, key); err != nil {
		g.metrics.ObserveCacheError("delete")
	}
}

func fetch[T any](ctx context.Context, g *Gateway, key string, op Op[T]) (T, error) {
	g.mu.RLock()
	generation := g.generation
	g.mu.RUnlock()

	value, err := retry(ctx, g, metrics.GatewayOperationRead, key, op)
	if err != nil {
		return value, err
	}
	g.populate(ctx, key, generation, value)
	return value, nil
}

// sharedFetch collapses concurrent misses on key onto one fetch. Followers
// share the leader's context, so a cancelled leader fails them too.
func sharedFetch[T any](ctx context.Context, g *Gateway, key string, op Op[T]) (T, error) {
	var zero T
	shared, err, _ := g.flight.Do(key, func() (any, error) {
		return fetch(ctx, g, key, op)
	})
	if err != nil {
		return zero, err
	}
	if shared == nil {
		return zero, nil
	}
	value, ok := shared.(T)
	if !ok {
		return zero, fmt.Errorf("gateway: key %q shared by reads of %T and %T", key, shared, zero)
	}
	return value, nil
}

func (g *Gateway) populate(ctx context.Context, key string, generation uint64, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		g.metrics.ObserveCacheError("encode")
		return
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.generation != generation {
		return
	}
	entry := cache.Entry{Payload: payload, StoredAt: g.now()}
	if err := g.cache.Store(context.WithoutCancel(ctx), key, entry); err != nil {
		g.metrics.ObserveCacheError("store")
	}
}
