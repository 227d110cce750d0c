package dictionary

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "dog\t<b>dog</b> a pet\ncat\tmeow\n"

func gzipBytes(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

func lz4Bytes(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func snappyBytes(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	w := snappy.NewBufferedWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestReadSourceDecompresses(t *testing.T) {
	plain := []byte(sample)
	tests := []struct {
		name string
		file string
		data []byte
		want Compression
	}{
		{"plain", "dict.txt", plain, NoCompression},
		{"gzip", "dict.txt.gz", gzipBytes(t, plain), GzipCompression},
		{"zstd", "dict.txt.zst", zstdBytes(t, plain), ZstdCompression},
		{"lz4", "dict.txt.lz4", lz4Bytes(t, plain), LZ4Compression},
		{"snappy", "dict.txt.sz", snappyBytes(t, plain), SnappyCompression},
	}
	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCompression(tt.data))

			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			got, err := ReadSource(path)
			require.NoError(t, err)
			assert.Equal(t, sample, string(got))

			parse, err := ParserFor("", path)
			require.NoError(t, err)
			d, err := parse(got)
			require.NoError(t, err)
			assert.Len(t, d.Keys(), 2)
		})
	}
}

func TestReadSourceMissingFile(t *testing.T) {
	_, err := ReadSource(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecompressCorruptGzip(t *testing.T) {
	_, err := Decompress([]byte{0x1f, 0x8b, 0x00})
	require.Error(t, err)
}

func TestTrimCompressionExt(t *testing.T) {
	assert.Equal(t, "a/dict.json", TrimCompressionExt("a/dict.json.gz"))
	assert.Equal(t, "a/dict.json", TrimCompressionExt("a/dict.json"))
	assert.Equal(t, "dict.txt", TrimCompressionExt("dict.txt.ZST"))
}
