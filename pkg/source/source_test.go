package source

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/stacksize/pkg/apt"
)

const plainDoc = "Package: a\nInstalled-Size: 1\nDepends: b\n\nPackage: b\nInstalled-Size: 2\n"

func TestDecompressRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionGZIP, CompressionXZ, CompressionZSTD} {
		t.Run(string(c)+"/ext", func(t *testing.T) {
			data, err := Compress(c, []byte(plainDoc))
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			out, err := Decompress("Packages"+c.Extension(), data)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if string(out) != plainDoc {
				t.Errorf("round trip mismatch: %q", out)
			}
		})
		t.Run(string(c)+"/magic", func(t *testing.T) {
			data, _ := Compress(c, []byte(plainDoc))
			if got := Detect("archive_noble_main_binary-amd64_Packages", data); got != c {
				t.Errorf("Detect = %q, want %q", got, c)
			}
		})
	}
}

func TestDecompressCorrupt(t *testing.T) {
	if _, err := Decompress("Packages.xz", []byte("not xz")); err == nil {
		t.Error("expected error for corrupt xz")
	}
	if _, err := Decompress("Packages.gz", []byte("not gzip")); err == nil {
		t.Error("expected error for corrupt gzip")
	}
}

func TestParseCompression(t *testing.T) {
	tests := map[string]Compression{
		"xz": CompressionXZ, ".gz": CompressionGZIP, "zst": CompressionZSTD,
		"zstd": CompressionZSTD, "": CompressionNone, ".bz2": CompressionNone,
	}
	for in, want := range tests {
		if got := ParseCompression(in); got != want {
			t.Errorf("ParseCompression(%q) = %q, want %q", in, got, want)
		}
	}
}

type fakeSource struct {
	docs []Document
	err  error
}

func (f fakeSource) Documents(context.Context) ([]Document, error) { return f.docs, f.err }
func (f fakeSource) String() string                                  { return "fake" }

func TestLoad(t *testing.T) {
	gz, _ := Compress(CompressionGZIP, []byte(plainDoc))
	override := []byte("Package: b\nInstalled-Size: 5\n")
	src := fakeSource{docs: []Document{
		{Name: "main/Packages.gz", Data: gz},
		{Name: "updates/Packages", Data: override},
	}}

	idx := apt.NewIndex()
	var logged int
	stats, err := Load(context.Background(), idx, src, func(string, ...any) { logged++ })
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if stats.Documents != 2 || stats.Records != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if logged != 2 {
		t.Errorf("logged %d lines, want 2", logged)
	}
	if got := idx.Size("b"); got != 5*1024 {
		t.Errorf("later document should win: Size(b) = %d", got)
	}
	if stats.Digest == "" {
		t.Error("Digest should be set")
	}
}

func TestLoadDigestTracksContent(t *testing.T) {
	load := func(doc string) string {
		stats, _ := Load(context.Background(), apt.NewIndex(),
			fakeSource{docs: []Document{{Name: "Packages", Data: []byte(doc)}}}, nil)
		return stats.Digest
	}
	if load(plainDoc) != load(plainDoc) {
		t.Error("digest should be deterministic")
	}
	if load(plainDoc) == load("Package: z\n") {
		t.Error("digest should change with content")
	}
}

func TestLoadPartialFailure(t *testing.T) {
	srcErr := errors.New("mirror down")
	src := fakeSource{
		docs: []Document{
			{Name: "bad.xz", Data: []byte("garbage")},
			{Name: "good", Data: []byte(plainDoc)},
		},
		err: srcErr,
	}

	idx := apt.NewIndex()
	stats, err := Load(context.Background(), idx, src, nil)
	if !errors.Is(err, srcErr) {
		t.Errorf("err = %v, want to include source error", err)
	}
	if stats.Documents != 1 || idx.Len() != 2 {
		t.Errorf("good document should still be parsed: stats=%+v len=%d", stats, idx.Len())
	}
	if !bytes.Contains([]byte(err.Error()), []byte("bad.xz")) {
		t.Errorf("err should name the failing document: %v", err)
	}
}
