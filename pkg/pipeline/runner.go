package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/conceptmap/pkg/cache"
	"github.com/matzehuels/conceptmap/pkg/concept"
	"github.com/matzehuels/conceptmap/pkg/layout"
	"github.com/matzehuels/conceptmap/pkg/observability"
	"github.com/matzehuels/conceptmap/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching logic lives in one place.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute loads opts.Path and runs layout and render on it.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	loadStart := time.Now()
	doc, err := Load(opts.Path)
	if err != nil {
		return nil, err
	}
	loadTime := time.Since(loadStart)
	r.Logger.Debug("loaded concept map", "path", opts.Path, "nodes", len(doc.Map.Nodes), "duration", loadTime)

	result, err := r.ExecuteDocument(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ExecuteDocument runs layout and render on a document already in memory.
func (r *Runner) ExecuteDocument(ctx context.Context, doc concept.Document, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{
		Document: doc,
		Stats: Stats{
			NodeCount: len(doc.Map.Nodes),
			EdgeCount: len(doc.Map.Edges),
		},
	}

	layoutStart := time.Now()
	res, hash, layoutHit, err := r.layout(ctx, doc.Map, opts.ResolveMaxLevels(doc), opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = res
	result.GraphHash = hash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"topic", doc.Map.Topic,
		"concepts", len(res.Concepts),
		"edges", len(res.Edges),
		"max_levels", res.MaxLevels,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo computes the layout of doc with caching and reports
// whether it came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, doc concept.Document, opts Options) (layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}
	res, _, hit, err := r.layout(ctx, doc.Map, opts.ResolveMaxLevels(doc), opts)
	return res, hit, err
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, doc concept.Document, opts Options) (layout.Result, error) {
	res, _, err := r.LayoutWithCacheInfo(ctx, doc, opts)
	return res, err
}

func (r *Runner) layout(ctx context.Context, g concept.Graph, maxLevels int, opts Options) (layout.Result, string, bool, error) {
	graphData, err := concept.MarshalGraph(g)
	if err != nil {
		return layout.Result{}, "", false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	graphHash := cache.Hash(graphData)
	maxLevels = layout.ClampMaxLevels(maxLevels)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts(maxLevels))
	cacheHooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := render.UnmarshalLayout(data); err == nil {
				cacheHooks.OnCacheHit(ctx, cache.KeyTypeLayout)
				return cached, graphHash, true, nil
			}
			// Undecodable entries are recomputed and overwritten.
		} else if err != nil {
			r.Logger.Warn("cache read failed", "key", cache.KeyTypeLayout, "err", err)
		}
		cacheHooks.OnCacheMiss(ctx, cache.KeyTypeLayout)
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.Topic, len(g.Nodes))
	start := time.Now()
	res := ComputeLayout(g, maxLevels, opts)
	hooks.OnLayoutComplete(ctx, g.Topic, maxLevels, time.Since(start), nil)

	if data, err := render.MarshalLayout(res); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout); err == nil {
			cacheHooks.OnCacheSet(ctx, cache.KeyTypeLayout, len(data))
		} else {
			r.Logger.Warn("cache write failed", "key", cache.KeyTypeLayout, "err", err)
		}
	}
	return res, graphHash, false, nil
}

// RenderWithCacheInfo renders res in every requested format with caching.
// The hit flag is set only when every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := render.MarshalLayout(res)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if _, seen := artifacts[format]; seen || slices.Contains(missing, format) {
			continue
		}
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, cache.KeyTypeArtifact)
				artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, cache.KeyTypeArtifact)
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	sub := opts
	sub.Formats = missing
	rendered, err := RenderFromLayout(ctx, res, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err == nil {
			cacheHooks.OnCacheSet(ctx, cache.KeyTypeArtifact, len(data))
		}
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, res, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
