// Package artifact sizes non-package artifacts, such as the Quarto
// bundle, that setup scripts install outside apt.
//
// A [SizeSource] maps an artifact key ("latest", "prerelease") to a size
// in bytes. [Static] carries measured sizes and never fails for the keys
// it knows; [GitHub] asks the release API; [Chain] tries sources in order
// and [Cached] memoizes any source in a cache.Cache.
package artifact

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/matzehuels/stacksize/pkg/cache"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/profile"
)

const mib = 1024 * 1024

// SizeSource reports the installed footprint of an artifact.
type SizeSource interface {
	Size(ctx context.Context, key string) (int64, error)
	Name() string
}

// Static is a fixed key to size table.
type Static map[string]int64

// DefaultStatic returns the sizes measured for Quarto 1.8.26 (latest) and
// 1.9.16 (prerelease).
func DefaultStatic() Static {
	return Static{
		profile.QuartoLatest:     381 * mib,
		profile.QuartoPrerelease: 388 * mib,
	}
}

// Name implements SizeSource.
func (Static) Name() string { return "static" }

// Size implements SizeSource.
func (s Static) Size(_ context.Context, key string) (int64, error) {
	if n, ok := s[key]; ok {
		return n, nil
	}
	return 0, errors.New(errors.ErrCodeArtifactUnavailable, "no static size for artifact %q", key)
}

// Chain returns the first successful answer of its sources.
type Chain []SizeSource

// Name implements SizeSource.
func (c Chain) Name() string {
	if len(c) == 0 {
		return "chain"
	}
	return c[0].Name()
}

// Size implements SizeSource. When every source fails the errors are
// joined; a cancelled context stops the chain.
func (c Chain) Size(ctx context.Context, key string) (int64, error) {
	n, _, err := c.lookup(ctx, key)
	return n, err
}

// lookup also returns the index of the source that answered.
func (c Chain) lookup(ctx context.Context, key string) (int64, int, error) {
	var errs []error
	for i, s := range c {
		n, err := s.Size(ctx, key)
		if err == nil {
			return n, i, nil
		}
		if ctx.Err() != nil {
			return 0, -1, ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if len(errs) == 0 {
		return 0, -1, errors.New(errors.ErrCodeArtifactUnavailable, "no artifact sources configured")
	}
	return 0, -1, errors.Wrap(errors.ErrCodeArtifactUnavailable, stderrors.Join(errs...), "artifact %q", key)
}

// Lookup sizes key with s and reports whether the answer came from a
// fallback rather than the source s is named after. Only a [Chain] has
// fallbacks.
func Lookup(ctx context.Context, s SizeSource, key string) (n int64, fallback bool, err error) {
	if c, ok := s.(Chain); ok {
		size, i, lerr := c.lookup(ctx, key)
		return size, i > 0, lerr
	}
	n, err = s.Size(ctx, key)
	return n, false, err
}

// Cached memoizes another source under Keyer.ArtifactKey.
type Cached struct {
	Source  SizeSource
	Cache   cache.Cache
	Keyer   cache.Keyer
	TTL     time.Duration
	Refresh bool
}

// NewCached wraps src with the default keyer and TTL.
func NewCached(src SizeSource, c cache.Cache) *Cached {
	return &Cached{Source: src, Cache: c, Keyer: cache.NewDefaultKeyer(), TTL: cache.TTLArtifact}
}

// Name implements SizeSource.
func (c *Cached) Name() string { return c.Source.Name() }

// Size implements SizeSource.
func (c *Cached) Size(ctx context.Context, key string) (int64, error) {
	ck := c.Keyer.ArtifactKey(c.Source.Name(), key)
	if !c.Refresh {
		if data, ok, _ := c.Cache.Get(ctx, ck); ok {
			if n, err := strconv.ParseInt(string(data), 10, 64); err == nil {
				return n, nil
			}
		}
	}
	n, err := c.Source.Size(ctx, key)
	if err != nil {
		return 0, err
	}
	_ = c.Cache.Set(ctx, ck, []byte(strconv.FormatInt(n, 10)), c.TTL)
	return n, nil
}
