package input

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Compression names the decoder applied to a Source.
type Compression string

const (
	CompressionAuto  Compression = "auto"
	CompressionNone  Compression = "none"
	CompressionGzip  Compression = "gzip"
	CompressionBzip2 Compression = "bzip2"
)

// ValidCompressions lists the accepted Compression values.
var ValidCompressions = []Compression{CompressionAuto, CompressionNone, CompressionGzip, CompressionBzip2}

// StdioName selects standard input or output instead of a file.
const StdioName = "-"

var bom = []byte{0xef, 0xbb, 0xbf}

// DetectCompression infers the compression of a file from its extension.
func DetectCompression(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".gzip":
		return CompressionGzip
	case ".bz2", ".bzip2":
		return CompressionBzip2
	}
	return CompressionNone
}

// IsStdio reports whether name selects standard input or output.
func IsStdio(name string) bool {
	return name == "" || name == StdioName
}

// Source is a decoded input stream.
type Source struct {
	// Name is the file path, or "-" for standard input.
	Name string

	// Compression is the decoder in use, never CompressionAuto.
	Compression Compression

	reader  io.Reader
	decoder io.Closer // gzip reader, closed before closer
	closer  io.Closer
	digest  hash.Hash
	eof     bool
}

// Open opens the named file, or stdin when name is empty or "-".
// CompressionAuto (or "") detects compression from the file extension.
func Open(name string, compr Compression, stdin io.Reader) (*Source, error) {
	if IsStdio(name) {
		return NewSource(StdioName, stdin, compr)
	}

	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	if compr == "" || compr == CompressionAuto {
		compr = DetectCompression(name)
	}

	src, err := NewSource(name, f, compr)
	if err != nil {
		f.Close()
		return nil, err
	}
	src.closer = f
	return src, nil
}

// NewSource wraps r. The caller keeps ownership of r; Close does not close it.
// CompressionAuto is treated as CompressionNone since there is no name to
// inspect.
func NewSource(name string, r io.Reader, compr Compression) (*Source, error) {
	s := &Source{Name: name, digest: sha256.New()}
	raw := io.TeeReader(r, s.digest)

	switch compr {
	case "", CompressionAuto, CompressionNone:
		s.Compression = CompressionNone
		s.reader = raw
	case CompressionGzip:
		gr, err := gzip.NewReader(raw)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream %s: %w", name, err)
		}
		s.Compression = CompressionGzip
		s.reader = gr
		s.decoder = gr
	case CompressionBzip2:
		s.Compression = CompressionBzip2
		s.reader = bzip2.NewReader(raw)
	default:
		return nil, fmt.Errorf("unknown compression type %q: must be one of %v", compr, ValidCompressions)
	}

	br := bufio.NewReader(s.reader)
	if head, err := br.Peek(len(bom)); err == nil && bytes.Equal(head, bom) {
		br.Discard(len(bom))
	}
	s.reader = br

	slog.Debug("opened input", "name", name, "compression", s.Compression)
	return s, nil
}

// Read implements io.Reader.
func (s *Source) Read(p []byte) (int, error) {
	n, err := s.reader.Read(p)
	if err == io.EOF {
		s.eof = true
	}
	return n, err
}

// SHA256 returns the hex digest of the raw input, before decompression.
// It is empty until the stream has been read to the end, so an aborted run
// never reports the digest of a prefix.
func (s *Source) SHA256() string {
	if !s.eof {
		return ""
	}
	return hex.EncodeToString(s.digest.Sum(nil))
}

// Close closes the decompressor and the underlying file, if Open created one.
func (s *Source) Close() error {
	var errs []error
	if s.decoder != nil {
		errs = append(errs, s.decoder.Close())
		s.decoder = nil
	}
	if s.closer != nil {
		errs = append(errs, s.closer.Close())
		s.closer = nil
	}
	return errors.Join(errs...)
}
