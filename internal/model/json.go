package model

import (
	"bytes"

	json "github.com/goccy/go-json"
	"golang.org/x/text/unicode/norm"
)

// StringEncoder appends JSON string literals to a byte slice.
//
// Escaping follows standard JSON rules with HTML escaping disabled, so
// <, > and & are written verbatim. When NFC is set, strings are normalized
// to Unicode NFC before encoding.
//
// A StringEncoder reuses an internal buffer and is not safe for concurrent use.
type StringEncoder struct {
	buf bytes.Buffer
	enc *json.Encoder
	nfc bool
}

// NewStringEncoder creates a StringEncoder.
func NewStringEncoder(nfc bool) *StringEncoder {
	e := &StringEncoder{nfc: nfc}
	e.enc = json.NewEncoder(&e.buf)
	e.enc.SetEscapeHTML(false)
	return e
}

// Append appends the JSON encoding of s to dst.
func (e *StringEncoder) Append(dst []byte, s string) ([]byte, error) {
	if e.nfc {
		s = norm.NFC.String(s)
	}

	e.buf.Reset()
	if err := e.enc.Encode(s); err != nil {
		return dst, err
	}

	// The encoder terminates every value with a newline.
	out := e.buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return append(dst, out...), nil
}

// MarshalString returns s as a JSON string literal without HTML escaping.
func MarshalString(s string) ([]byte, error) {
	return NewStringEncoder(false).Append(nil, s)
}
