// Package archive fetches Packages indexes from a Debian or Ubuntu mirror.
//
// For every suite and component it downloads
//
//	<mirror>/dists/<suite>/<component>/binary-<arch>/Packages.xz
//
// falling back to the other compressions when a mirror does not publish
// the first one. Downloads run in parallel; documents are returned in
// suite-major, component-minor order regardless of completion order, so
// later suites (noble-updates) override earlier ones (noble) when parsed.
//
// When a [Verifier] is configured, each suite's InRelease is checked
// against the keyring and every downloaded index must match the SHA256
// listed there.
package archive

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stacksize/pkg/cache"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/integrations"
	"github.com/matzehuels/stacksize/pkg/source"
)

// Defaults match the ubuntu:24.04 image the setup scripts target.
const (
	DefaultMirror = "http://archive.ubuntu.com/ubuntu"
	DefaultArch   = "amd64"
)

var (
	DefaultSuites       = []string{"noble", "noble-updates"}
	DefaultComponents   = []string{"main", "universe"}
	DefaultCompressions = []source.Compression{source.CompressionXZ, source.CompressionGZIP, source.CompressionNone}
)

// Options configures an Archive. Zero values select the defaults above.
type Options struct {
	Mirror       string
	Suites       []string
	Components   []string
	Arch         string
	Compressions []source.Compression

	// Verifier enables InRelease signature verification and implies
	// Checksums.
	Verifier *Verifier
	// Checksums fetches InRelease without checking its signature and
	// compares every index against the SHA256 it lists.
	Checksums bool

	Cache   cache.Cache
	Keyer   cache.Keyer
	Refresh bool // bypass cached downloads

	// Parallel bounds concurrent downloads (default 4).
	Parallel int

	// Logger receives progress messages. Optional.
	Logger func(string, ...any)

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Archive is a source.Source backed by a mirror.
type Archive struct {
	opts   Options
	client *integrations.Client
	keyer  cache.Keyer
	logf   func(string, ...any)
}

var _ source.Source = (*Archive)(nil)

// New validates opts and returns an Archive.
func New(opts Options) (*Archive, error) {
	if opts.Mirror == "" {
		opts.Mirror = DefaultMirror
	}
	opts.Mirror = strings.TrimSuffix(opts.Mirror, "/")
	if err := errors.ValidateURL(opts.Mirror); err != nil {
		return nil, err
	}
	if len(opts.Suites) == 0 {
		opts.Suites = DefaultSuites
	}
	if len(opts.Components) == 0 {
		opts.Components = DefaultComponents
	}
	if opts.Arch == "" {
		opts.Arch = DefaultArch
	}
	if len(opts.Compressions) == 0 {
		opts.Compressions = DefaultCompressions
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 4
	}
	for _, name := range append(append([]string{opts.Arch}, opts.Suites...), opts.Components...) {
		if !validSegment(name) {
			return nil, errors.New(errors.ErrCodeInvalidSource, "invalid suite, component or arch %q", name)
		}
	}

	keyer := opts.Keyer
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	client := integrations.NewClient(opts.Cache, "mirror", cache.TTLIndex, nil)
	client.SetKeyer(keyer)
	if opts.HTTPClient != nil {
		client.SetHTTPClient(opts.HTTPClient)
	}

	logf := opts.Logger
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Archive{opts: opts, client: client, keyer: keyer, logf: logf}, nil
}

// String implements source.Source.
func (a *Archive) String() string {
	return fmt.Sprintf("%s [%s] %s/%s", a.opts.Mirror, strings.Join(a.opts.Suites, " "),
		strings.Join(a.opts.Components, ","), a.opts.Arch)
}

// IndexPath returns the path of a component's index below dists/<suite>/.
func (a *Archive) IndexPath(component string, c source.Compression) string {
	return fmt.Sprintf("%s/binary-%s/Packages%s", component, a.opts.Arch, c.Extension())
}

func (a *Archive) suiteURL(suite, rel string) string {
	return integrations.JoinURL(a.opts.Mirror, "dists", suite, rel)
}

// URLs lists the preferred index URL of every suite and component.
func (a *Archive) URLs() []string {
	var urls []string
	for _, s := range a.opts.Suites {
		for _, c := range a.opts.Components {
			urls = append(urls, a.suiteURL(s, a.IndexPath(c, a.opts.Compressions[0])))
		}
	}
	return urls
}

// Documents implements source.Source. Each suite/component that cannot be
// fetched (or fails verification) contributes an INDEX_UNAVAILABLE (or
// SIGNATURE_INVALID / CHECKSUM_MISMATCH) error; the others are returned.
func (a *Archive) Documents(ctx context.Context) ([]source.Document, error) {
	releases, relErrs := a.fetchReleases(ctx)

	type slot struct {
		doc source.Document
		ok  bool
		err error
	}
	slots := make([]slot, len(a.opts.Suites)*len(a.opts.Components))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Parallel)
	for si, suite := range a.opts.Suites {
		if relErrs[si] != nil {
			for ci := range a.opts.Components {
				slots[si*len(a.opts.Components)+ci].err = relErrs[si]
			}
			continue
		}
		for ci, component := range a.opts.Components {
			i := si*len(a.opts.Components) + ci
			g.Go(func() error {
				doc, err := a.fetchIndex(gctx, suite, component, releases[si])
				slots[i] = slot{doc: doc, ok: err == nil, err: err}
				return nil
			})
		}
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		docs []source.Document
		errs []error
	)
	for _, s := range slots {
		if s.ok {
			docs = append(docs, s.doc)
		} else if s.err != nil {
			errs = append(errs, s.err)
		}
	}
	return docs, stderrors.Join(errs...)
}

// fetchReleases downloads InRelease for every suite when verification or
// checksums are enabled. The result slices are indexed like opts.Suites.
func (a *Archive) fetchReleases(ctx context.Context) ([]*Release, []error) {
	releases := make([]*Release, len(a.opts.Suites))
	errs := make([]error, len(a.opts.Suites))
	if a.opts.Verifier == nil && !a.opts.Checksums {
		return releases, errs
	}

	var wg sync.WaitGroup
	for i, suite := range a.opts.Suites {
		wg.Add(1)
		go func() {
			defer wg.Done()
			releases[i], errs[i] = a.fetchRelease(ctx, suite)
		}()
	}
	wg.Wait()
	return releases, errs
}

func (a *Archive) fetchRelease(ctx context.Context, suite string) (*Release, error) {
	url := a.suiteURL(suite, "InRelease")
	data, _, err := a.client.CachedBytes(ctx, a.keyer.IndexKey(url), a.opts.Refresh, func() ([]byte, error) {
		return a.client.GetBytes(ctx, url)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndexUnavailable, err, "fetch %s", url)
	}
	var plain []byte
	if a.opts.Verifier != nil {
		if plain, err = a.opts.Verifier.Verify(data); err != nil {
			return nil, fmt.Errorf("%s: %w", suite, err)
		}
		a.logf("verified %s", url)
	} else if plain, err = unsignedPlaintext(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s", url)
	}
	return ParseRelease(string(plain)), nil
}

// fetchIndex tries each compression in turn. Only "not found" moves on to
// the next one; any other failure is final.
func (a *Archive) fetchIndex(ctx context.Context, suite, component string, rel *Release) (source.Document, error) {
	var lastErr error
	for _, c := range a.opts.Compressions {
		path := a.IndexPath(component, c)
		if rel != nil {
			if _, listed := rel.Files[path]; !listed {
				continue
			}
		}
		url := a.suiteURL(suite, path)

		data, hit, err := a.get(ctx, url, a.opts.Refresh)
		if stderrors.Is(err, cache.ErrNotFound) {
			lastErr = err
			continue
		}
		if err != nil {
			return source.Document{}, errors.Wrap(errors.ErrCodeIndexUnavailable, err, "fetch %s", url)
		}

		if rel != nil {
			if err := checkFile(rel, path, data); err != nil {
				if !hit {
					return source.Document{}, err
				}
				// A stale cached copy from before the last mirror update.
				if data, _, err = a.get(ctx, url, true); err != nil {
					return source.Document{}, errors.Wrap(errors.ErrCodeIndexUnavailable, err, "fetch %s", url)
				}
				if err := checkFile(rel, path, data); err != nil {
					return source.Document{}, err
				}
			}
		}

		a.logf("fetched %s (%d bytes, cached=%t)", url, len(data), hit)
		return source.Document{Name: url, Data: data}, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no Packages index for %s/binary-%s listed in Release", component, a.opts.Arch)
	}
	return source.Document{}, errors.Wrap(errors.ErrCodeIndexUnavailable, lastErr, "%s/%s", suite, component)
}

func (a *Archive) get(ctx context.Context, url string, refresh bool) ([]byte, bool, error) {
	return a.client.CachedBytes(ctx, a.keyer.IndexKey(url), refresh, func() ([]byte, error) {
		return a.client.GetBytes(ctx, url)
	})
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, "/\\?#% \t")
}
