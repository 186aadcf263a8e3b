package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain prefixes for content hashes.
// The version suffix allows changing the encoding later.
const (
	DomainSchema = "csv2ldj/schema/v1"
)

// HashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func HashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SchemaHash computes a content hash for a schema.
// Two schemas declaring the same fields with the same flags hash equally,
// regardless of declaration order.
func SchemaHash(s *Schema) (string, error) {
	data, err := CanonicalSchema(s)
	if err != nil {
		return "", fmt.Errorf("SchemaHash: %w", err)
	}
	return HashWithDomain(DomainSchema, data), nil
}

// CanonicalSchema renders a schema as compact JSON with fields sorted by
// name and keys in fixed order.
func CanonicalSchema(s *Schema) ([]byte, error) {
	fields := s.Fields()
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	enc := NewStringEncoder(true)
	out := []byte{'['}
	for i, f := range fields {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, `{"multivalued":`...)
		out = appendBool(out, f.Multivalued)
		out = append(out, `,"name":`...)
		var err error
		out, err = enc.Append(out, f.Name)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out = append(out, `,"required":`...)
		out = appendBool(out, f.Required)
		out = append(out, '}')
	}
	out = append(out, ']')
	return out, nil
}

func appendBool(dst []byte, b bool) []byte {
	if b {
		return append(dst, "true"...)
	}
	return append(dst, "false"...)
}
