package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintower/pkg/cache"
	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/family"
	"github.com/matzehuels/kintower/pkg/graph"
	"github.com/matzehuels/kintower/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger: it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options as long as the family graphs they pass in
// are not shared.
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

// Load reads a family file. Parsed families are cached by file content, so
// an edited file always misses.
func (r *Runner) Load(ctx context.Context, path string) (g *family.Graph, hit bool, err error) {
	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, path)
	defer func() {
		people := 0
		if g != nil {
			people = g.Len()
		}
		observability.Pipeline().OnLoadComplete(ctx, path, people, time.Since(start), err)
	}()

	if err := errors.ValidateFamilyFilename(path); err != nil {
		return nil, false, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.Wrap(errors.ErrCodeFileNotFound, err, "family file %s not found", path)
		}
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}

	format := graph.FormatOf(path)
	key := r.Keyer.GraphKey(cache.Hash(raw), cache.GraphKeyOpts{Format: format})
	if data, ok := r.get(ctx, key, cache.KeyTypeGraph); ok {
		if cached, err := graph.UnmarshalFamily(data); err == nil {
			return cached, true, nil
		}
	}

	g, err = graph.ReadFamily(bytes.NewReader(raw), format)
	if err != nil {
		return nil, false, err
	}
	if data, err := graph.MarshalFamily(g); err == nil {
		r.set(ctx, key, cache.KeyTypeGraph, data, cache.TTLGraph)
	}

	r.Logger.Debug("loaded family", "path", path, "people", g.Len())
	return g, false, nil
}

// Layout computes the diagram around the primary person with caching and
// reports whether it came from the cache.
func (r *Runner) Layout(ctx context.Context, g *family.Graph, opts Options) (l graph.Layout, hit bool, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return graph.Layout{}, false, err
	}

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, opts.Primary, g.Len())
	defer func() {
		observability.Pipeline().OnLayoutComplete(ctx, opts.Primary, time.Since(start), err)
	}()

	familyData, err := graph.MarshalFamily(g)
	if err != nil {
		return graph.Layout{}, false, fmt.Errorf("serialize family for cache key: %w", err)
	}
	key := r.Keyer.LayoutKey(cache.Hash(familyData), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, ok := r.get(ctx, key, cache.KeyTypeLayout); ok {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				return cached, true, nil
			}
			// unreadable entries are recomputed
		}
	}

	l, err = GenerateLayout(g, opts, r.Logger)
	if err != nil {
		return graph.Layout{}, false, err
	}
	if data, err := graph.MarshalLayout(l); err == nil {
		r.set(ctx, key, cache.KeyTypeLayout, data, cache.TTLLayout)
	}
	return l, false, nil
}

// Render generates artifacts with caching. Only formats missing from the
// cache are rendered; hit is true when every format was cached.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	defer func() {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	layoutData, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts = make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.get(ctx, key, cache.KeyTypeArtifact); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := RenderLayout(ctx, l, renderOpts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.set(ctx, key, cache.KeyTypeArtifact, data, cache.TTLArtifact)
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// Execute runs the layout → render pipeline on a loaded family.
func (r *Runner) Execute(ctx context.Context, g *family.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}
	result.Stats.People = g.Len()

	layoutStart := time.Now()
	l, layoutHit, err := r.Layout(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Nodes = len(l.Nodes())
	result.Stats.Connectors = len(l.Connectors)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"primary", l.Primary,
		"nodes", result.Stats.Nodes,
		"connectors", result.Stats.Connectors,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.Render(ctx, l, opts)
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

// ExecuteFile loads path and runs Execute on it.
func (r *Runner) ExecuteFile(ctx context.Context, path string, opts Options) (*Result, error) {
	loadStart := time.Now()
	g, loadHit, err := r.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	loadTime := time.Since(loadStart)

	result, err := r.Execute(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	result.CacheInfo.LoadHit = loadHit
	return result, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads key and reports the outcome to the cache hooks. Cache errors
// count as misses.
func (r *Runner) get(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) set(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}
