// Package cache provides the byte cache shared by every stacksize stage.
//
// Three things are cached: raw HTTP bodies (compressed Packages indexes,
// GitHub release metadata), artifact sizes, and finished per-profile
// estimates. All of them go through the same [Cache] interface so the CLI
// can use a [FileCache] under ~/.cache/stacksize while a shared server
// points at Redis or MongoDB.
//
// Keys are built by a [Keyer]; wrap one in a [ScopedKeyer] to give a
// deployment its own namespace.
package cache

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with (nil, false, nil); an error means the backend
// itself failed. A ttl of zero means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default lifetimes per entry kind.
const (
	TTLHTTP     = 24 * time.Hour
	TTLIndex    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLEstimate = 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey keys a raw HTTP response within a client namespace.
	HTTPKey(namespace, key string) string
	// IndexKey keys a fetched (still compressed) Packages document.
	IndexKey(url string) string
	// ArtifactKey keys the size of a non-package artifact.
	ArtifactKey(source, key string) string
	// EstimateKey keys one profile's estimate against one index state.
	EstimateKey(indexHash string, opts EstimateKeyOpts) string
}

// EstimateKeyOpts is everything besides the index that changes an estimate.
type EstimateKeyOpts struct {
	Profile  string   `json:"profile"`
	Packages []string `json:"packages"`
	R        bool     `json:"r,omitempty"`
	Artifact string   `json:"artifact,omitempty"`
	Source   string   `json:"source,omitempty"`
}

// DefaultKeyer produces readable, prefixed keys. Variable-length inputs
// are hashed so keys stay short and safe for every backend.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// IndexKey implements Keyer.
func (DefaultKeyer) IndexKey(url string) string {
	return hashKey("index", url)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(source, key string) string {
	return fmt.Sprintf("artifact:%s:%s", source, key)
}

// EstimateKey implements Keyer. Package order does not matter.
func (DefaultKeyer) EstimateKey(indexHash string, opts EstimateKeyOpts) string {
	opts.Packages = slices.Clone(opts.Packages)
	slices.Sort(opts.Packages)
	return hashKey("estimate", indexHash, opts)
}
