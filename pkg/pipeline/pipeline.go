// Package pipeline provides the estimation pipeline shared by the CLI and
// the HTTP server.
//
// # Architecture
//
// A run has three stages:
//
//  1. Load: fetch every Packages document from a [source.Source] and parse
//     it into one [apt.Index]
//  2. Resolve: compute each profile's install closure against the index,
//     in parallel
//  3. Size: add the profile's non-package artifact and assemble a
//     [report.Report]
//
// Per-profile estimates are cached under the digest of the parsed
// documents, so a rerun against an unchanged mirror skips resolution.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:   src,
//	    Profiles: profile.Defaults(),
//	})
//	if err != nil {
//	    return err
//	}
//	result.Report.WriteMarkdown(os.Stdout)
//
// Stages can be run on their own: [Runner.LoadIndex] builds an index and
// [Runner.Estimate] sizes one profile against it.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/artifact"
	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/profile"
	"github.com/matzehuels/stacksize/pkg/report"
	"github.com/matzehuels/stacksize/pkg/source"
)

// DefaultParallel bounds concurrent profile resolutions.
const DefaultParallel = 4

// Output formats understood by the CLI and server.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// ValidFormats lists the report formats in display order.
var ValidFormats = []string{FormatTable, FormatMarkdown, FormatJSON}

// ValidateFormat checks that format is a known report format.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats...)
}

// Options configures one pipeline run.
type Options struct {
	// Source provides the Packages documents. Required.
	Source source.Source

	// Profiles to estimate, in report order. Empty means profile.Defaults().
	Profiles []profile.Profile

	// Artifacts sizes each profile's Quarto key. Nil means the static table.
	Artifacts artifact.SizeSource

	// Refresh recomputes estimates even when cached.
	Refresh bool

	// Strict turns collaborator failures (a missing index, an artifact
	// without a size) into errors instead of warnings.
	Strict bool

	// Parallel bounds concurrent resolutions (default DefaultParallel).
	Parallel int

	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == nil {
		return errors.New(errors.ErrCodeInvalidSource, "no package index source configured")
	}
	if len(o.Profiles) == 0 {
		o.Profiles = profile.Defaults()
	}
	for _, p := range o.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if o.Artifacts == nil {
		o.Artifacts = artifact.DefaultStatic()
	}
	if o.Parallel <= 0 {
		o.Parallel = DefaultParallel
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Report holds one row per profile, in Options.Profiles order.
	Report *report.Report

	// Index is the parsed package index, shared read-only.
	Index *apt.Index

	// Resolutions holds the closure per profile name. Profiles whose
	// estimate came from the cache have no entry.
	Resolutions map[string]*apt.Resolution

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Documents   int
	Records     int
	Skipped     int
	IndexDigest string
	LoadTime    time.Duration
	ResolveTime time.Duration
}

// CacheInfo tracks which profile estimates came from the cache.
type CacheInfo struct {
	Hits   []string
	Misses []string
}
