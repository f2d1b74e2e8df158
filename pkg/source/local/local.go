// Package local reads Packages documents from the filesystem.
package local

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/stacksize/pkg/errors"
	"github.com/matzehuels/stacksize/pkg/source"
)

// Source reads the given files in order. A directory contributes every
// regular file in it whose name looks like a Packages index
// ("Packages", "Packages.xz", "..._binary-amd64_Packages", ...), sorted by
// name; this makes /var/lib/apt/lists usable as is.
type Source struct {
	paths []string
}

// New returns a source over paths.
func New(paths ...string) *Source {
	return &Source{paths: paths}
}

// String implements source.Source.
func (s *Source) String() string {
	return "local:" + strings.Join(s.paths, ",")
}

// Documents implements source.Source. Missing or unreadable paths are
// reported as FILE_NOT_FOUND errors after all readable files are returned.
func (s *Source) Documents(ctx context.Context) ([]source.Document, error) {
	var (
		docs []source.Document
		errs []error
	)
	for _, p := range s.paths {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		files, err := expand(p)
		if err != nil {
			errs = append(errs, errors.Wrap(errors.ErrCodeFileNotFound, err, "index %s", p))
			continue
		}
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				errs = append(errs, errors.Wrap(errors.ErrCodeFileNotFound, err, "index %s", f))
				continue
			}
			docs = append(docs, source.Document{Name: f, Data: data})
		}
	}
	return docs, stderrors.Join(errs...)
}

func expand(p string) ([]string, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{p}, nil
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsPackagesFile(e.Name()) {
			files = append(files, filepath.Join(p, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// IsPackagesFile reports whether a file name looks like a Packages index,
// optionally compressed.
func IsPackagesFile(name string) bool {
	base := name
	for _, ext := range []string{".xz", ".gz", ".zst"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base == "Packages" || strings.HasSuffix(base, "_Packages")
}
