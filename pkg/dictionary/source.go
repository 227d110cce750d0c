package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies how a source file is wrapped on disk.
type Compression uint8

const (
	NoCompression Compression = iota
	GzipCompression
	ZstdCompression
	LZ4Compression
	SnappyCompression
)

// String returns the human-readable name of the compression type.
func (c Compression) String() string {
	switch c {
	case NoCompression:
		return "none"
	case GzipCompression:
		return "gzip"
	case ZstdCompression:
		return "zstd"
	case LZ4Compression:
		return "lz4"
	case SnappyCompression:
		return "snappy"
	default:
		return fmt.Sprintf("Unknown(%d)", c)
	}
}

var (
	gzipMagic   = []byte{0x1f, 0x8b}
	zstdMagic   = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic    = []byte{0x04, 0x22, 0x4d, 0x18}
	snappyMagic = []byte("\xff\x06\x00\x00sNaPpY")
)

var compressionExts = map[string]bool{
	".gz":  true,
	".zst": true,
	".lz4": true,
	".sz":  true,
}

// DetectCompression inspects the leading magic bytes of data.
func DetectCompression(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		return GzipCompression
	case bytes.HasPrefix(data, zstdMagic):
		return ZstdCompression
	case bytes.HasPrefix(data, lz4Magic):
		return LZ4Compression
	case bytes.HasPrefix(data, snappyMagic):
		return SnappyCompression
	default:
		return NoCompression
	}
}

// TrimCompressionExt strips one known compression suffix from path.
func TrimCompressionExt(path string) string {
	ext := filepath.Ext(path)
	if compressionExts[strings.ToLower(ext)] {
		return strings.TrimSuffix(path, ext)
	}
	return path
}

// ReadSource reads the whole file at path into memory and decompresses it
// when it carries a gzip, zstd, lz4 or framed snappy header.
func ReadSource(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	data, err := Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decompress dictionary %s: %w", path, err)
	}
	return data, nil
}

// Decompress returns data unwrapped according to its detected compression.
// Data without a recognised header is returned unchanged.
func Decompress(data []byte) ([]byte, error) {
	switch c := DetectCompression(data); c {
	case NoCompression:
		return data, nil

	case GzipCompression:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = r.Close() }()
		return io.ReadAll(r)

	case ZstdCompression:
		decoder, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decoder: %w", err)
		}
		defer decoder.Close()
		return decoder.DecodeAll(data, nil)

	case LZ4Compression:
		return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))

	case SnappyCompression:
		return io.ReadAll(snappy.NewReader(bytes.NewReader(data)))

	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}
