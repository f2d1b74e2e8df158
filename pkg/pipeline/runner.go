package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/artifact"
	"github.com/matzehuels/stacksize/pkg/cache"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/observability"
	"github.com/matzehuels/stacksize/pkg/profile"
	"github.com/matzehuels/stacksize/pkg/report"
	"github.com/matzehuels/stacksize/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; multiple
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

// Execute runs load, resolve and size for every profile.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	idx, stats, err := r.LoadIndex(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	result := &Result{
		Index:       idx,
		Resolutions: make(map[string]*apt.Resolution),
		Stats:       stats,
	}

	estimates := make([]Estimate, len(opts.Profiles))
	resolveStart := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)
	for i, p := range opts.Profiles {
		g.Go(func() error {
			est, err := r.Estimate(gctx, idx, stats.IndexDigest, p, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Name, err)
			}
			estimates[i] = est
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	result.Stats.ResolveTime = time.Since(resolveStart)

	rep := report.New(opts.Source.String())
	rep.IndexDigest = stats.IndexDigest
	for _, est := range estimates {
		rep.Rows = append(rep.Rows, est.Row)
		if est.Hit {
			result.CacheInfo.Hits = append(result.CacheInfo.Hits, est.Row.Profile)
		} else {
			result.CacheInfo.Misses = append(result.CacheInfo.Misses, est.Row.Profile)
			result.Resolutions[est.Row.Profile] = est.Resolution
		}
	}
	result.Report = rep

	opts.Logger.Info("estimated profiles",
		"profiles", len(rep.Rows),
		"cached", len(result.CacheInfo.Hits),
		"duration", result.Stats.ResolveTime)
	return result, nil
}

// LoadIndex fetches and parses every document of opts.Source. A source
// that fails only partially is logged and tolerated unless opts.Strict is
// set.
func (r *Runner) LoadIndex(ctx context.Context, opts Options) (*apt.Index, Stats, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, Stats{}, err
	}

	name := opts.Source.String()
	hooks := observability.Pipeline()
	hooks.OnIndexLoadStart(ctx, name)

	start := time.Now()
	idx := apt.NewIndex()
	ls, err := source.Load(ctx, idx, opts.Source, func(f string, args ...any) {
		opts.Logger.Debugf(f, args...)
	})
	stats := Stats{
		Documents:   ls.Documents,
		Records:     ls.Records,
		Skipped:     ls.Skipped,
		IndexDigest: ls.Digest,
		LoadTime:    time.Since(start),
	}
	hooks.OnIndexLoadComplete(ctx, name, ls.Records, stats.LoadTime, err)

	if err != nil {
		if ctx.Err() != nil || opts.Strict {
			return nil, stats, err
		}
		opts.Logger.Warn("package index incomplete", "source", name, "codes", errors.Codes(err), "err", err)
	}
	if idx.Len() == 0 {
		if opts.Strict {
			return nil, stats, errors.New(errors.ErrCodeIndexUnavailable, "no packages parsed from %s", name)
		}
		opts.Logger.Warn("package index is empty; every estimate will be zero", "source", name)
	}

	opts.Logger.Info("loaded package index",
		"documents", stats.Documents,
		"packages", idx.Len(),
		"virtual", idx.VirtualLen(),
		"duration", stats.LoadTime)
	return idx, stats, nil
}

// Estimate is one profile's result.
type Estimate struct {
	Row        report.Row
	Resolution *apt.Resolution // nil on a cache hit
	Hit        bool
}

// Estimate sizes one profile against idx. digest identifies the index
// contents for caching; an empty digest disables the cache.
func (r *Runner) Estimate(ctx context.Context, idx *apt.Index, digest string, p profile.Profile, opts Options) (Estimate, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Estimate{}, err
	}
	logger := opts.Logger.With("profile", p.Name)

	key := r.Keyer.EstimateKey(digest, cache.EstimateKeyOpts{
		Profile:  p.Name,
		Packages: p.Packages,
		R:        p.R,
		Artifact: p.Quarto,
		Source:   opts.Artifacts.Name(),
	})
	cacheHooks := observability.Cache()
	if digest != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var row report.Row
			if json.Unmarshal(data, &row) == nil {
				cacheHooks.OnCacheHit(ctx, "estimate")
				row.Cached = true
				logger.Debug("estimate from cache")
				return Estimate{Row: row, Hit: true}, nil
			}
		}
		cacheHooks.OnCacheMiss(ctx, "estimate")
	}

	hooks := observability.Pipeline()
	hooks.OnResolveStart(ctx, p.Name, len(p.Packages))
	start := time.Now()
	res := apt.NewResolver(idx, apt.Options{
		Logger: func(f string, args ...any) { logger.Debugf(f, args...) },
	}).Resolve(p.Packages)
	hooks.OnResolveComplete(ctx, p.Name, res.Len(), res.Size(), time.Since(start))

	artifactBytes, cacheable := int64(0), digest != ""
	if p.Quarto != "" {
		n, fallback, err := artifact.Lookup(ctx, opts.Artifacts, p.Quarto)
		switch {
		case err == nil:
			artifactBytes = n
			if fallback {
				logger.Warn("artifact size from fallback source", "artifact", p.Quarto, "source", opts.Artifacts.Name())
				cacheable = false
			}
		case opts.Strict || ctx.Err() != nil:
			return Estimate{}, err
		default:
			logger.Warn("artifact size unavailable, counting 0", "artifact", p.Quarto, "err", err)
			cacheable = false
		}
	}

	row := report.NewRow(p, res.Len(), res.Size(), artifactBytes)
	row.Dropped = res.Dropped
	if len(res.Dropped) > 0 {
		logger.Debug("unresolvable names omitted", "names", res.Dropped)
	}

	if cacheable {
		if data, err := json.Marshal(row); err == nil {
			if r.Cache.Set(ctx, key, data, cache.TTLEstimate) == nil {
				cacheHooks.OnCacheSet(ctx, "estimate", len(data))
			}
		}
	}
	return Estimate{Row: row, Resolution: res}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

