package apt

import (
	"bufio"
	"errors"
	"slices"
	"strings"
	"testing"
)

const samplePackages = `Package: test-package
Version: 1.0.0-1
Architecture: amd64
Installed-Size: 120
Depends: libc6 (>= 2.31), libssl3 (>= 3.0.0)
Pre-Depends: dpkg (>= 1.17.5)
Provides: virtual-package, other-virtual (= 1.0)
Description: A test package for unit testing
 with a long description that spans
 several lines.

Package: another-package
Version: 2.1.0-1ubuntu1
Architecture: all
Depends: debconf (>= 0.5) | debconf-2.0,
 libfoo1,
 libbar2 [amd64]
Description: Another test package

Version: 9.9
Architecture: amd64
Installed-Size: 5
`

func TestIndexParse(t *testing.T) {
	idx := NewIndex()
	stats, err := idx.Parse(strings.NewReader(samplePackages))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if stats.Records != 2 {
		t.Errorf("Records = %d, want 2", stats.Records)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}

	rec, ok := idx.Lookup("test-package")
	if !ok {
		t.Fatal("test-package not found")
	}
	if rec.InstalledSize != 120*1024 {
		t.Errorf("InstalledSize = %d, want %d", rec.InstalledSize, 120*1024)
	}
	wantDeps := []string{"libc6 (>= 2.31)", "libssl3 (>= 3.0.0)", "dpkg (>= 1.17.5)"}
	if !slices.Equal(rec.Depends, wantDeps) {
		t.Errorf("Depends = %q, want %q", rec.Depends, wantDeps)
	}
}

func TestIndexParseDependsContinuation(t *testing.T) {
	idx := NewIndex()
	idx.ParseString(samplePackages)

	rec, ok := idx.Lookup("another-package")
	if !ok {
		t.Fatal("another-package not found")
	}
	want := []string{"debconf (>= 0.5) | debconf-2.0", "libfoo1", "libbar2 [amd64]"}
	if !slices.Equal(rec.Depends, want) {
		t.Errorf("Depends = %q, want %q", rec.Depends, want)
	}
	if rec.InstalledSize != 0 {
		t.Errorf("InstalledSize = %d, want 0 when field is absent", rec.InstalledSize)
	}
}

func TestIndexParseIgnoresOtherContinuations(t *testing.T) {
	doc := "Package: a\nPre-Depends: x,\n y\nProvides: v1,\n v2\n"
	idx := NewIndex()
	idx.ParseString(doc)

	rec, _ := idx.Lookup("a")
	if !slices.Equal(rec.Depends, []string{"x"}) {
		t.Errorf("Depends = %q, want only the first Pre-Depends line", rec.Depends)
	}
	if !idx.IsVirtual("v1") {
		t.Error("v1 should be provided")
	}
	if idx.IsVirtual("v2") {
		t.Error("continuation of Provides should be ignored")
	}
}

func TestIndexProviders(t *testing.T) {
	idx := NewIndex()
	idx.ParseString(samplePackages)

	if got := idx.Providers("virtual-package"); !slices.Equal(got, []string{"test-package"}) {
		t.Errorf("Providers(virtual-package) = %v", got)
	}
	if got := idx.Providers("other-virtual"); !slices.Equal(got, []string{"test-package"}) {
		t.Errorf("Providers(other-virtual) = %v, version qualifier should be dropped", got)
	}
	if got := idx.Providers("missing"); len(got) != 0 {
		t.Errorf("Providers(missing) = %v, want empty", got)
	}
	if !idx.Known("virtual-package") || !idx.Known("test-package") || idx.Known("missing") {
		t.Error("Known() mismatch")
	}
}

func TestIndexProvidersOrderAndDedup(t *testing.T) {
	doc := `Package: cdebconf
Provides: debconf-2.0

Package: debconf
Provides: debconf-2.0

Package: cdebconf
Provides: debconf-2.0
`
	idx := NewIndex()
	idx.ParseString(doc)

	want := []string{"cdebconf", "debconf"}
	if got := idx.Providers("debconf-2.0"); !slices.Equal(got, want) {
		t.Errorf("Providers = %v, want %v", got, want)
	}

	got := idx.Providers("debconf-2.0")
	got[0] = "mutated"
	if idx.Providers("debconf-2.0")[0] != "cdebconf" {
		t.Error("Providers should return a copy")
	}
}

func TestIndexParseLastWins(t *testing.T) {
	idx := NewIndex()
	idx.ParseString("Package: a\nInstalled-Size: 1\n")
	idx.ParseString("Package: a\nInstalled-Size: 2\nDepends: b\n")

	if idx.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", idx.Len())
	}
	if got := idx.Size("a"); got != 2048 {
		t.Errorf("Size(a) = %d, want 2048", got)
	}
	rec, _ := idx.Lookup("a")
	if len(rec.Depends) != 1 {
		t.Errorf("Depends = %v, want the second document's value", rec.Depends)
	}
}

func TestIndexParseSameDocumentTwice(t *testing.T) {
	idx := NewIndex()
	idx.ParseString(samplePackages)
	idx.ParseString(samplePackages)

	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}
	if got := idx.Providers("virtual-package"); len(got) != 1 {
		t.Errorf("Providers = %v, want a single entry", got)
	}
}

func TestIndexParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantSize int64
	}{
		{"negative size", "Package: a\nInstalled-Size: -4\n", 0},
		{"garbage size", "Package: a\nInstalled-Size: lots\n", 0},
		{"no colon line", "Package: a\nthis line is junk\nInstalled-Size: 3\n", 3072},
		{"crlf", "Package: a\r\nInstalled-Size: 7\r\n", 7168},
		{"padded", "Package:   a  \nInstalled-Size:  8 \n", 8192},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := NewIndex()
			idx.ParseString(tt.doc)
			if !idx.Has("a") {
				t.Fatal("package a should be parsed")
			}
			if got := idx.Size("a"); got != tt.wantSize {
				t.Errorf("Size = %d, want %d", got, tt.wantSize)
			}
		})
	}
}

func TestIndexParseEmpty(t *testing.T) {
	idx := NewIndex()
	stats, err := idx.ParseString("\n\n   \n")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Records != 0 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestIndexParseReadError(t *testing.T) {
	idx := NewIndex()
	if _, err := idx.Parse(failingReader{}); err == nil {
		t.Error("Parse() should surface read errors")
	}
}

func TestIndexParseLineTooLong(t *testing.T) {
	idx := NewIndex()
	doc := "Package: a\nInstalled-Size: 1\n\nPackage: b\nDescription: " +
		strings.Repeat("x", maxLineSize) + "\n\nPackage: c\n"
	_, err := idx.ParseString(doc)
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("ParseString() error = %v, want bufio.ErrTooLong", err)
	}
	if !idx.Has("a") || idx.Has("c") {
		t.Errorf("names = %v, want only records before the long line", idx.Names())
	}
}

func TestIndexTotalSize(t *testing.T) {
	idx := NewIndex()
	idx.ParseString("Package: a\nInstalled-Size: 1\n\nPackage: b\nInstalled-Size: 2\n")

	if got := idx.TotalSize([]string{"a", "b", "a", "missing"}); got != 3*1024 {
		t.Errorf("TotalSize = %d, want %d", got, 3*1024)
	}
	if got := idx.Names(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v", got)
	}
}
