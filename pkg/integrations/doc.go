// Package integrations provides the HTTP clients stacksize uses to talk to
// the outside world.
//
// # Overview
//
// The shared [Client] type wraps an *http.Client with caching via
// [cache.Cache], retries via [cache.RetryWithBackoff] and default headers.
// Remote collaborators build on it:
//
//   - the mirror fetcher in pkg/source/archive downloads Packages indexes
//     with [Client.CachedBytes]
//   - [github] reads release assets to size the Quarto download
//
// # Client Pattern
//
//	c := integrations.NewClient(backend, "github", cache.TTLArtifact, headers)
//	var rel release
//	err := c.Cached(ctx, "quarto-dev/quarto-cli/latest", false, &rel, func() error {
//	    return c.Get(ctx, url, &rel)
//	})
//
// [github]: github.com/matzehuels/stacksize/pkg/integrations/github
// [cache.Cache]: github.com/matzehuels/stacksize/pkg/cache.Cache
// [cache.RetryWithBackoff]: github.com/matzehuels/stacksize/pkg/cache.RetryWithBackoff
package integrations
