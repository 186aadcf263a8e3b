package input

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
)

// Sink is an output stream that records a digest of what it wrote.
type Sink struct {
	// Name is the file path, or "-" for standard output.
	Name string

	w      io.Writer
	closer io.Closer
	digest hash.Hash
}

// Create creates or truncates the named file, or writes to stdout when name
// is empty or "-".
func Create(name string, stdout io.Writer) (*Sink, error) {
	if IsStdio(name) {
		return NewSink(StdioName, stdout), nil
	}

	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	s := NewSink(name, f)
	s.closer = f
	return s, nil
}

// NewSink wraps w. Close does not close w.
func NewSink(name string, w io.Writer) *Sink {
	s := &Sink{Name: name, digest: sha256.New()}
	s.w = io.MultiWriter(w, s.digest)
	return s
}

// Write implements io.Writer.
func (s *Sink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// SHA256 returns the hex digest of the bytes written so far.
func (s *Sink) SHA256() string {
	return hex.EncodeToString(s.digest.Sum(nil))
}

// Close closes the underlying file, if Create opened one.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
