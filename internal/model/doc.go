// Package model provides the shared data types for csv2ldj.
//
// This package contains the schema model, header maps, the error taxonomy
// and the JSON string encoding used by the record writer. All other internal
// packages import model; model imports nothing internal.
//
// Key constraints:
//   - A Schema is built once and never mutated afterwards
//   - Values are always emitted as JSON strings or arrays of strings
//   - HeaderMap iteration follows the header's column order
package model
