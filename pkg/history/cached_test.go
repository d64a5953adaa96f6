package history

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/layershare/pkg/cache"
	"github.com/matzehuels/layershare/pkg/errors"
	"github.com/matzehuels/layershare/pkg/layer"
	"github.com/matzehuels/layershare/pkg/observability"
)

type countingProvider struct {
	records map[string][]layer.Record
	calls   int
}

func (p *countingProvider) Name() string { return "fake" }

func (p *countingProvider) History(_ context.Context, ref string) ([]layer.Record, error) {
	p.calls++
	recs, ok := p.records[ref]
	if !ok {
		return nil, errors.New(errors.ErrCodeImageNotFound, "no such image %s", ref)
	}
	return recs, nil
}

type countingLister struct {
	countingProvider
	tags []string
}

func (p *countingLister) Tags(context.Context, string) ([]string, error) {
	p.calls++
	return p.tags, nil
}

type cacheCounter struct {
	observability.NoopCacheHooks
	mu               sync.Mutex
	hits, miss, sets int
}

func (c *cacheCounter) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func (c *cacheCounter) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.miss++
}

func (c *cacheCounter) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
}

func TestCachedProvider_History(t *testing.T) {
	hooks := &cacheCounter{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	inner := &countingProvider{records: map[string][]layer.Record{
		"app:1": {{ID: "a", Size: 10, CreatedBy: "ADD"}, {ID: "b", Size: 5, CreatedBy: "RUN", Tags: []string{"app:1"}}},
	}}
	mem, _ := cache.NewMemoryCache(8)
	p := NewCachedProvider(inner, mem, CacheOptions{TTL: time.Hour})
	ctx := context.Background()

	first, err := p.History(ctx, "app:1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.History(ctx, "app:1")
	if err != nil {
		t.Fatal(err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if len(second) != len(first) || second[1].Tags[0] != "app:1" || second[0].Size != 10 {
		t.Errorf("cached records = %+v, want %+v", second, first)
	}
	if hooks.miss != 1 || hooks.hits != 1 || hooks.sets != 1 {
		t.Errorf("hooks: hits=%d miss=%d sets=%d, want 1/1/1", hooks.hits, hooks.miss, hooks.sets)
	}
	if p.Name() != "fake" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestCachedProvider_ErrorsNotCached(t *testing.T) {
	inner := &countingProvider{}
	mem, _ := cache.NewMemoryCache(8)
	p := NewCachedProvider(inner, mem, CacheOptions{})

	for range 2 {
		if _, err := p.History(context.Background(), "app:missing"); !errors.Is(err, errors.ErrCodeImageNotFound) {
			t.Fatalf("err = %v", err)
		}
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, failed fetches must not be cached", inner.calls)
	}
	if mem.Len() != 0 {
		t.Errorf("cache holds %d entries", mem.Len())
	}
}

func TestCachedProvider_PlatformInKey(t *testing.T) {
	inner := &countingProvider{records: map[string][]layer.Record{"app:1": {{ID: "a"}}}}
	mem, _ := cache.NewMemoryCache(8)
	ctx := context.Background()

	_, _ = NewCachedProvider(inner, mem, CacheOptions{Platform: "linux/amd64"}).History(ctx, "app:1")
	_, _ = NewCachedProvider(inner, mem, CacheOptions{Platform: "linux/arm64"}).History(ctx, "app:1")
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, platforms must not share entries", inner.calls)
	}
}

func TestCachedProvider_Tags(t *testing.T) {
	inner := &countingLister{tags: []string{"1", "2"}}
	p := NewCachedProvider(inner, nil, CacheOptions{})
	tags, err := p.Tags(context.Background(), "app")
	if err != nil || len(tags) != 2 {
		t.Fatalf("Tags() = %v, %v", tags, err)
	}

	noTags := NewCachedProvider(&countingProvider{}, nil, CacheOptions{})
	if _, err := noTags.Tags(context.Background(), "app"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}
