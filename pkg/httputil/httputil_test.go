package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/stacksize/pkg/cache"
	serrors "github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/observability"
)

func TestTransportSetsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	resp, err := NewClient(0).Get(srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()
	if !strings.HasPrefix(got, "stacksize/") {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestTransportKeepsExplicitUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom/1")
	resp, err := NewClient(0).Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if got != "custom/1" {
		t.Errorf("User-Agent = %q, want custom/1", got)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		header    http.Header
		wantErr   error
		retryable bool
	}{
		{name: "200 OK", code: 200},
		{name: "404", code: 404, wantErr: cache.ErrNotFound},
		{name: "410", code: 410, wantErr: cache.ErrNotFound},
		{name: "500", code: 500, wantErr: cache.ErrNetwork, retryable: true},
		{name: "503", code: 503, wantErr: cache.ErrNetwork, retryable: true},
		{name: "403", code: 403, wantErr: cache.ErrNetwork},
		{name: "429", code: 429, header: http.Header{"Retry-After": {"30"}}, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStatus(&http.Response{StatusCode: tt.code, Header: tt.header})
			if tt.code == 200 {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if got := cache.IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestCheckStatusRateLimited(t *testing.T) {
	err := CheckStatus(&http.Response{StatusCode: 429, Header: http.Header{"Retry-After": {"30"}}})
	var rl *serrors.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("err = %T, want RateLimitedError", err)
	}
	if rl.RetryAfter != 30 {
		t.Errorf("RetryAfter = %d, want 30", rl.RetryAfter)
	}
}

func TestReadBody(t *testing.T) {
	data, err := ReadBody(strings.NewReader("Package: a\n"))
	if err != nil || string(data) != "Package: a\n" {
		t.Errorf("ReadBody = %q, %v", data, err)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) OnRequest(_ context.Context, method, _, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "request "+method+" "+path)
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, "response "+http.StatusText(status)+" "+path)
}

func TestTransportReportsToHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	resp, err := NewClient(0).Get(srv.URL + "/dists/noble/InRelease")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	resp.Body.Close()

	want := []string{"request GET /dists/noble/InRelease", "response Not Found /dists/noble/InRelease"}
	if strings.Join(hooks.events, "|") != strings.Join(want, "|") {
		t.Errorf("events = %q, want %q", hooks.events, want)
	}
}
