package source

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression identifies the encoding of a Packages document.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGZIP Compression = "gz"
	CompressionXZ   Compression = "xz"
	CompressionZSTD Compression = "zst"
)

// Extension returns the file suffix for c, including the dot.
func (c Compression) Extension() string {
	if c == CompressionNone {
		return ""
	}
	return "." + string(c)
}

// ParseCompression maps a suffix ("xz", ".gz", ...) to a Compression.
func ParseCompression(s string) Compression {
	switch strings.TrimPrefix(s, ".") {
	case "gz":
		return CompressionGZIP
	case "xz":
		return CompressionXZ
	case "zst", "zstd":
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

var (
	magicXZ   = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicGZIP = []byte{0x1f, 0x8b}
	magicZSTD = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Detect picks the compression for a document: by extension when name has
// a known one, otherwise by magic bytes.
func Detect(name string, data []byte) Compression {
	if c := ParseCompression(path.Ext(name)); c != CompressionNone {
		return c
	}
	switch {
	case bytes.HasPrefix(data, magicXZ):
		return CompressionXZ
	case bytes.HasPrefix(data, magicGZIP):
		return CompressionGZIP
	case bytes.HasPrefix(data, magicZSTD):
		return CompressionZSTD
	}
	return CompressionNone
}

// Decompress returns the plain contents of a document.
func Decompress(name string, data []byte) ([]byte, error) {
	switch c := Detect(name, data); c {
	case CompressionNone:
		return data, nil
	case CompressionXZ:
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		return readAll(r, "xz")
	case CompressionGZIP:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		return readAll(r, "gzip")
	case CompressionZSTD:
		d, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer d.Close()
		out, err := d.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
}

// Compress encodes data with c. It exists for tests and for writing
// fixture mirrors.
func Compress(c Compression, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionXZ:
		w, err := xz.NewWriter(&buf)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressionGZIP:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case CompressionZSTD:
		w, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		out := w.EncodeAll(data, nil)
		_ = w.Close()
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", c)
	}
	return buf.Bytes(), nil
}

func readAll(r io.Reader, kind string) ([]byte, error) {
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return out, nil
}
