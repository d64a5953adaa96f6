package history

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/layershare/pkg/cache"
	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/layer"
	"github.com/matzehuels/layershare/pkg/observability"
)

// DefaultTTL is how long fetched histories stay cached. Tags are mutable,
// so entries must expire.
const DefaultTTL = 24 * time.Hour

// CachedProvider serves histories from a cache and fills it from the
// wrapped provider on a miss. Cache failures never fail a fetch.
type CachedProvider struct {
	inner    Provider
	cache    cache.Cache
	keyer    cache.Keyer
	ttl      time.Duration
	platform string
}

// CacheOptions configures [NewCachedProvider].
type CacheOptions struct {
	Keyer    cache.Keyer   // nil uses cache.NewDefaultKeyer()
	TTL      time.Duration // 0 uses DefaultTTL
	Platform string        // part of the key: one tag differs per platform
}

// NewCachedProvider wraps inner with c.
func NewCachedProvider(inner Provider, c cache.Cache, opts CacheOptions) *CachedProvider {
	if c == nil {
		c = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &CachedProvider{
		inner:    inner,
		cache:    c,
		keyer:    opts.Keyer,
		ttl:      opts.TTL,
		platform: opts.Platform,
	}
}

// Name returns the wrapped provider's name.
func (p *CachedProvider) Name() string { return p.inner.Name() }

// Unwrap returns the wrapped provider.
func (p *CachedProvider) Unwrap() Provider { return p.inner }

// History returns the cached history of ref or fetches and caches it.
func (p *CachedProvider) History(ctx context.Context, ref string) ([]layer.Record, error) {
	key := p.keyer.HistoryKey(p.inner.Name(), ref, cache.HistoryKeyOpts{Platform: p.platform})

	var records []layer.Record
	if p.load(ctx, "history", key, &records) {
		return records, nil
	}

	records, err := p.inner.History(ctx, ref)
	if err != nil {
		return nil, err
	}
	p.store(ctx, "history", key, records)
	return records, nil
}

// Tags returns the cached tag list of repository or fetches it when the
// wrapped provider can list tags.
func (p *CachedProvider) Tags(ctx context.Context, repository string) ([]string, error) {
	lister, ok := p.inner.(TagLister)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "provider %s cannot list tags", p.inner.Name())
	}
	key := p.keyer.TagsKey(p.inner.Name(), repository)

	var tags []string
	if p.load(ctx, "tags", key, &tags) {
		return tags, nil
	}

	tags, err := lister.Tags(ctx, repository)
	if err != nil {
		return nil, err
	}
	p.store(ctx, "tags", key, tags)
	return tags, nil
}

// Close closes the wrapped provider.
func (p *CachedProvider) Close() error {
	return Close(p.inner)
}

func (p *CachedProvider) load(ctx context.Context, keyType, key string, v any) bool {
	hooks := observability.Cache()
	data, hit, err := p.cache.Get(ctx, key)
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		hooks.OnCacheMiss(ctx, keyType)
		return false
	}
	hooks.OnCacheHit(ctx, keyType)
	return true
}

func (p *CachedProvider) store(ctx context.Context, keyType, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if p.cache.Set(ctx, key, data, p.ttl) == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

var (
	_ Provider  = (*CachedProvider)(nil)
	_ TagLister = (*CachedProvider)(nil)
)
