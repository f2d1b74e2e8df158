package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/stacksize/pkg/buildinfo"
	"github.com/matzehuels/stacksize/pkg/cache"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/observability"
)

// DefaultTimeout bounds a single request. Packages.xz for noble/universe
// is around 20 MB, so this is generous on purpose.
const DefaultTimeout = 2 * time.Minute

// MaxBodySize caps how much of a response ReadBody will accept.
const MaxBodySize = 512 << 20

// NewClient returns an *http.Client that sets the stacksize User-Agent.
// A zero timeout selects DefaultTimeout.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &Transport{},
	}
}

// Transport adds a User-Agent header to requests that lack one and reports
// every round trip to the registered observability.HTTP hooks.
type Transport struct {
	// Base is the underlying RoundTripper; nil means http.DefaultTransport.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", buildinfo.UserAgent())
	}

	ctx, hooks := req.Context(), observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// CheckStatus classifies a response status.
//
//   - 200: nil
//   - 404, 410: cache.ErrNotFound
//   - 429: retryable *errors.RateLimitedError (Retry-After honored in the message)
//   - 5xx: retryable cache.ErrNetwork
//   - anything else: cache.ErrNetwork
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound || code == http.StatusGone:
		return cache.ErrNotFound
	case code == http.StatusTooManyRequests:
		retry, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return cache.Retryable(&errors.RateLimitedError{RetryAfter: retry})
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}

// ReadBody reads at most MaxBodySize bytes and fails if the body is larger.
func ReadBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBodySize+1))
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	if len(data) > MaxBodySize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxBodySize)
	}
	return data, nil
}
