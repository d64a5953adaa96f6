package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/layershare/pkg/cache"
	"github.com/matzehuels/layershare/pkg/history"
	"github.com/matzehuels/layershare/pkg/layer"
	"github.com/matzehuels/layershare/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating fetch and caching logic.
//
// The Runner is stateless except for the provider, cache and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options when the provider and cache are safe
// for concurrent use.
type Runner struct {
	Provider history.Provider
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger

	// TTL of cached histories. Zero uses history.DefaultTTL.
	TTL time.Duration

	// Platform is part of history cache keys; set it to the platform the
	// provider was created with.
	Platform string
}

// NewRunner creates a runner for the given provider.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(p history.Provider, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Provider: p,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute runs the complete fetch → merge → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	opts.Provider = r.Provider.Name()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID: uuid.NewString(),
		Refs:  opts.Refs(),
	}
	logger := r.Logger.With("run", result.RunID[:8])

	// Stage 1: Fetch
	fetchStart := time.Now()
	chains, err := r.fetch(ctx, logger, result.Refs, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.Images = len(chains)
	for _, c := range chains {
		if c.Empty() {
			result.Stats.EmptyImages++
		}
		result.Stats.Records += c.Len()
		result.Stats.StoredBytes += c.Size()
	}

	logger.Info("fetched histories",
		"images", result.Stats.Images,
		"layers", result.Stats.Records,
		"duration", result.Stats.FetchTime)

	// Stage 2: Merge
	mergeStart := time.Now()
	result.Forest = Build(ctx, chains, opts.MergeStrategy())
	result.Stats.MergeTime = time.Since(mergeStart)
	result.Stats.Forest = layer.ComputeStats(result.Forest)

	logger.Info("merged chains",
		"roots", result.Stats.Forest.Roots,
		"layers", result.Stats.Forest.Nodes,
		"shared", layer.FormatSize(result.Stats.SharedBytes()),
		"duration", result.Stats.MergeTime)

	if result.Forest.Empty() {
		logger.Warn("no layer history found, nothing to draw")
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := Render(ctx, result.Forest, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch reads the history of every ref in order and builds one chain per
// ref. The first failing ref aborts the fetch.
func (r *Runner) Fetch(ctx context.Context, refs []string, refresh bool) ([]layer.Chain, error) {
	return r.fetch(ctx, r.Logger, refs, refresh)
}

func (r *Runner) fetch(ctx context.Context, logger *log.Logger, refs []string, refresh bool) ([]layer.Chain, error) {
	p := r.Provider
	if !refresh {
		p = history.NewCachedProvider(r.Provider, r.Cache, history.CacheOptions{
			Keyer:    r.Keyer,
			TTL:      r.TTL,
			Platform: r.Platform,
		})
	}

	hooks := observability.Pipeline()
	chains := make([]layer.Chain, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hooks.OnFetchStart(ctx, p.Name(), ref)
		start := time.Now()
		records, err := p.History(ctx, ref)
		hooks.OnFetchComplete(ctx, p.Name(), ref, len(records), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ref, err)
		}

		if len(records) == 0 {
			logger.Warn("image has no history", "ref", ref)
		} else {
			logger.Debug("fetched history", "ref", ref, "layers", len(records), "duration", time.Since(start))
		}
		chains = append(chains, layer.BuildChain(ref, records))
	}
	return chains, nil
}

// Build merges chains in order and rolls up sizes.
func Build(ctx context.Context, chains []layer.Chain, strategy layer.Strategy) layer.Forest {
	start := time.Now()
	f := layer.Merge(chains, layer.WithStrategy(strategy))
	layer.Rollup(f)
	observability.Pipeline().OnMerge(ctx, len(chains), len(f), time.Since(start))
	return f
}
