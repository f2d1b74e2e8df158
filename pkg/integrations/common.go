package integrations

import (
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/stacksize/pkg/cache"
	"github.com/matzehuels/stacksize/pkg/httputil"
)

const httpTimeout = httputil.DefaultTimeout

var (
	// ErrNotFound is returned when a remote resource doesn't exist.
	ErrNotFound = cache.ErrNotFound

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = cache.ErrNetwork
)

// NewHTTPClient creates an HTTP client with the standard timeout.
func NewHTTPClient() *http.Client {
	return httputil.NewClient(httpTimeout)
}

// DefaultTTL is used by clients that are not given an explicit TTL.
const DefaultTTL = 24 * time.Hour

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// JoinURL joins a base URL and path segments with single slashes.
func JoinURL(base string, parts ...string) string {
	u, err := url.JoinPath(base, parts...)
	if err != nil {
		return base
	}
	return u
}
