package input

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abcSHA256 = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func TestDetectCompression(t *testing.T) {
	tests := map[string]Compression{
		"data.csv":       CompressionNone,
		"data.csv.gz":    CompressionGzip,
		"data.CSV.GZIP":  CompressionGzip,
		"data.csv.bz2":   CompressionBzip2,
		"data.csv.bzip2": CompressionBzip2,
		"noext":          CompressionNone,
	}
	for name, want := range tests {
		assert.Equal(t, want, DetectCompression(name), name)
	}
}

func TestOpenStdin(t *testing.T) {
	src, err := Open("-", CompressionAuto, strings.NewReader("abc"))
	require.NoError(t, err)
	defer src.Close()

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, StdioName, src.Name)
	assert.Equal(t, CompressionNone, src.Compression)
	assert.Equal(t, abcSHA256, src.SHA256())
}

func TestOpenStripsByteOrderMark(t *testing.T) {
	src, err := NewSource("bom", strings.NewReader("\xef\xbb\xbfid,tags\n"), CompressionNone)
	require.NoError(t, err)

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "id,tags\n", string(data))
}

func TestOpenShortInput(t *testing.T) {
	src, err := NewSource("short", strings.NewReader("a"), CompressionNone)
	require.NoError(t, err)

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestOpenGzipFile(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("id\n1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "rows.csv.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	src, err := Open(path, CompressionAuto, nil)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, CompressionGzip, src.Compression)
	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "id\n1\n", string(data))
}

func TestOpenGzipRejectsPlainData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n1\n"), 0644))

	_, err := Open(path, CompressionGzip, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

func TestOpenUnknownCompression(t *testing.T) {
	_, err := NewSource("x", strings.NewReader(""), Compression("zstd"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zstd")
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"), CompressionAuto, nil)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestSinkFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ldjson")

	sink, err := Create(path, nil)
	require.NoError(t, err)
	_, err = io.WriteString(sink, "abc")
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, abcSHA256, sink.SHA256())
}

func TestSinkStdout(t *testing.T) {
	var out bytes.Buffer

	sink, err := Create("", &out)
	require.NoError(t, err)
	_, err = io.WriteString(sink, "abc")
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, "abc", out.String())
	assert.Equal(t, StdioName, sink.Name)
}

func TestSourceDigestOnlyAfterEndOfStream(t *testing.T) {
	src, err := NewSource("abc", strings.NewReader("abc"), CompressionNone)
	require.NoError(t, err)

	buf := make([]byte, 1)
	_, err = src.Read(buf)
	require.NoError(t, err)
	assert.Empty(t, src.SHA256(), "a prefix must not be reported as the input digest")

	_, err = io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, abcSHA256, src.SHA256())
}

func TestSourceGzipDigestCoversCompressedBytes(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("id\n1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	raw := buf.Bytes()

	src, err := NewSource("rows.csv.gz", bytes.NewReader(raw), CompressionGzip)
	require.NoError(t, err)
	_, err = io.ReadAll(src)
	require.NoError(t, err)

	plain, err := NewSource("raw", bytes.NewReader(raw), CompressionNone)
	require.NoError(t, err)
	_, err = io.ReadAll(plain)
	require.NoError(t, err)

	assert.Equal(t, plain.SHA256(), src.SHA256())
}

func TestSourceCloseReleasesDecoderAndFile(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("id\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "rows.csv.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	src, err := Open(path, CompressionAuto, nil)
	require.NoError(t, err)
	require.NotNil(t, src.decoder)
	require.NotNil(t, src.closer)

	require.NoError(t, src.Close())
	assert.Nil(t, src.decoder)
	assert.Nil(t, src.closer)
	// A second Close is a no-op.
	require.NoError(t, src.Close())
}
