package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/stacksize/pkg/cache"
	"github.com/matzehuels/stacksize/pkg/integrations"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// ErrNoMatchingAsset is returned when a release has no asset for the
// requested platform.
var ErrNoMatchingAsset = errors.New("no matching release asset")

// Client reads release metadata from the GitHub API.
// It handles HTTP requests with caching, automatic retries, and optional
// authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client backed by c. Pass an empty token
// for unauthenticated requests (60 requests per hour).
func NewClient(c cache.Cache, token string, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return &Client{
		Client:  integrations.NewClient(c, "github", cacheTTL, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another API root (GitHub Enterprise or a
// test server).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// LatestRelease returns the newest stable release of owner/repo.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string, refresh bool) (*Release, error) {
	key := owner + "/" + repo + "/latest"

	var rel Release
	err := c.Cached(ctx, key, refresh, &rel, func() error {
		url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
		return c.Get(ctx, url, &rel)
	})
	if err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: no release for github repo %s/%s", err, owner, repo)
		}
		return nil, err
	}
	return &rel, nil
}

// LatestPrerelease returns the newest non-draft prerelease of owner/repo,
// falling back to the latest stable release when none is listed on the
// first page.
func (c *Client) LatestPrerelease(ctx context.Context, owner, repo string, refresh bool) (*Release, error) {
	key := owner + "/" + repo + "/releases"

	var rels []Release
	err := c.Cached(ctx, key, refresh, &rels, func() error {
		url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=30", c.baseURL, owner, repo)
		return c.Get(ctx, url, &rels)
	})
	if err != nil {
		return nil, err
	}
	for i := range rels {
		if rels[i].Prerelease && !rels[i].Draft {
			return &rels[i], nil
		}
	}
	return c.LatestRelease(ctx, owner, repo, refresh)
}

// FindAsset returns the first asset whose name ends with suffix, for example
// "linux-amd64.deb".
func FindAsset(rel *Release, suffix string) (*Asset, error) {
	for i := range rel.Assets {
		if strings.HasSuffix(rel.Assets[i].Name, suffix) {
			return &rel.Assets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no *%s", ErrNoMatchingAsset, rel.TagName, suffix)
}
