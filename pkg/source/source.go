// Package source supplies the Packages documents an [apt.Index] is built
// from.
//
// A [Source] returns raw documents, possibly compressed. [Load] decompresses
// them by file extension (or magic bytes), parses them in order into an
// index and returns a digest that identifies the resulting index state, so
// later stages can key caches on it.
//
// Two implementations live in subpackages:
//
//   - local: files on disk, including apt's own /var/lib/apt/lists
//   - archive: a Debian or Ubuntu mirror over HTTP, with optional
//     InRelease signature and checksum verification
//
// [apt.Index]: github.com/matzehuels/stacksize/pkg/apt.Index
package source

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/stacksize/pkg/apt"
	"github.com/matzehuels/stacksize/pkg/cache"
)

// Document is one Packages file as delivered by a source.
type Document struct {
	Name string // File name or URL; its extension selects decompression
	Data []byte // Raw, possibly compressed, contents
}

// Source produces Packages documents in the order they should be parsed.
//
// Documents may return a partial result together with an error when some
// documents could not be obtained; callers decide whether that is fatal.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
	String() string
}

// LoadStats summarizes a Load call.
type LoadStats struct {
	Documents int    // Documents parsed
	Records   int    // Records stored, summed over documents
	Skipped   int    // Stanzas without a Package field
	Digest    string // Hash over every parsed document, in order
}

// Load fetches every document from src and parses it into idx. Documents
// that fail to decompress are skipped and reported. The returned error
// joins the source error (if any) with decompression failures; idx holds
// everything that could be parsed either way.
func Load(ctx context.Context, idx *apt.Index, src Source, logf func(string, ...any)) (LoadStats, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}

	var stats LoadStats
	docs, srcErr := src.Documents(ctx)
	if ctx.Err() != nil {
		return stats, ctx.Err()
	}

	errs := []error{srcErr}
	digests := make([]string, 0, len(docs))
	for _, doc := range docs {
		data, err := Decompress(doc.Name, doc.Data)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", doc.Name, err))
			continue
		}
		ps, err := idx.Parse(bytes.NewReader(data))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", doc.Name, err))
			continue
		}
		logf("parsed %s: %d records, %d skipped", doc.Name, ps.Records, ps.Skipped)
		stats.Documents++
		stats.Records += ps.Records
		stats.Skipped += ps.Skipped
		digests = append(digests, cache.Hash(data))
	}
	stats.Digest = cache.HashStrings(digests...)
	return stats, stderrors.Join(errs...)
}
