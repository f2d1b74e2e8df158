// Package httputil holds the HTTP plumbing shared by every outbound client
// in stacksize: the mirror fetcher and the GitHub releases client.
//
// # Overview
//
//   - [NewClient]: an *http.Client with a timeout and the stacksize
//     User-Agent on every request
//   - [CheckStatus]: maps response codes onto the sentinel errors of
//     [cache] so that transient failures are retried and 404s are not
//   - [ReadBody]: reads a response body with an upper size bound
//
// # Retry
//
// Errors returned by [CheckStatus] for 5xx and 429 responses are wrapped
// with [cache.Retryable]; pair them with [cache.RetryWithBackoff]:
//
//	err := cache.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return cache.Retryable(err)
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
//
// [cache]: github.com/matzehuels/stacksize/pkg/cache
// [cache.Retryable]: github.com/matzehuels/stacksize/pkg/cache.Retryable
// [cache.RetryWithBackoff]: github.com/matzehuels/stacksize/pkg/cache.RetryWithBackoff
package httputil
