package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind categorizes conversion errors.
type Kind string

const (
	// KindSchemaNotFound indicates the schema source could not be opened.
	KindSchemaNotFound Kind = "SCHEMA_NOT_FOUND"

	// KindSchemaParse indicates a malformed schema entry, usually a flag
	// that is neither "true" nor "false".
	KindSchemaParse Kind = "SCHEMA_PARSE_ERROR"

	// KindEmptySchema indicates the schema source declared no fields.
	KindEmptySchema Kind = "EMPTY_SCHEMA"

	// KindEmptyHeader indicates the input has no header row or no named columns.
	KindEmptyHeader Kind = "EMPTY_HEADER"

	// KindDuplicateHeader indicates a non-blank header name repeats.
	KindDuplicateHeader Kind = "DUPLICATE_HEADER"

	// KindInvalidHeaders indicates header names missing from the schema.
	KindInvalidHeaders Kind = "INVALID_HEADERS"

	// KindUnexpectedMultiValue indicates a single-valued cell contains the
	// cell-value delimiter.
	KindUnexpectedMultiValue Kind = "UNEXPECTED_MULTI_VALUE"

	// KindMissingRequiredFields indicates a partially filled row left
	// required fields blank.
	KindMissingRequiredFields Kind = "MISSING_REQUIRED_FIELDS"

	// KindMalformedInput indicates delimited text that cannot be tokenized.
	KindMalformedInput Kind = "MALFORMED_INPUT"

	// KindIO indicates a read or write failure on the input or output.
	KindIO Kind = "IO_ERROR"
)

// Kinds lists every Kind.
var Kinds = []Kind{
	KindSchemaNotFound,
	KindSchemaParse,
	KindEmptySchema,
	KindEmptyHeader,
	KindDuplicateHeader,
	KindInvalidHeaders,
	KindUnexpectedMultiValue,
	KindMissingRequiredFields,
	KindMalformedInput,
	KindIO,
}

// ValidKind reports whether k is one of Kinds.
func ValidKind(k Kind) bool {
	for _, kind := range Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Error is the single error type surfaced by schema loading and conversion.
//
// Every failure aborts the run; Error carries enough context to report all
// offending items at once.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description listing every offender.
	Message string

	// Row is the 1-based data row (header excluded), 0 when not row-scoped.
	Row int

	// Line is the physical input line where the row started, 0 when unknown.
	Line int

	// Fields lists offending field or header names, sorted.
	Fields []string

	// Record is the raw row content for row-level failures.
	Record string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FieldsOf returns the offending names carried by err, if any.
func FieldsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// NewSchemaNotFoundError creates an Error for an unreadable schema source.
func NewSchemaNotFoundError(path string, err error) *Error {
	return &Error{
		Kind:    KindSchemaNotFound,
		Message: fmt.Sprintf("could not open schema file at path %q, please provide a valid schema file path", path),
		Err:     err,
	}
}

// NewSchemaParseError creates an Error for a malformed schema entry.
func NewSchemaParseError(path string, line int, msg string) *Error {
	e := &Error{Kind: KindSchemaParse, Line: line}
	if line > 0 {
		e.Message = fmt.Sprintf("%s:%d: %s", path, line, msg)
	} else {
		e.Message = fmt.Sprintf("%s: %s", path, msg)
	}
	return e
}

// NewFlagError creates a SchemaParseError for a flag that is neither
// "true" nor "false".
func NewFlagError(path string, line int, field, flag, value string) *Error {
	e := NewSchemaParseError(path, line,
		fmt.Sprintf("please use either 'true' or 'false' to define the value of %q for field %q (got %q)", flag, field, value))
	e.Fields = []string{field}
	return e
}

// NewEmptySchemaError creates an Error for a schema without fields.
// An empty path means the schema was not read from a file.
func NewEmptySchemaError(path string) *Error {
	if path == "" {
		return &Error{
			Kind:    KindEmptySchema,
			Message: "the schema declares no fields",
		}
	}
	return &Error{
		Kind:    KindEmptySchema,
		Message: fmt.Sprintf("could not parse any field from the schema file at %q", path),
	}
}

// NewEmptyHeaderError creates an Error for a missing or blank header row.
func NewEmptyHeaderError() *Error {
	return &Error{
		Kind:    KindEmptyHeader,
		Message: "no headers in CSV input available, add (schema conform) headers first",
	}
}

// NewDuplicateHeaderError creates an Error for a repeated header name.
func NewDuplicateHeaderError(name string, header []string) *Error {
	return &Error{
		Kind:    KindDuplicateHeader,
		Message: fmt.Sprintf("the header contains a duplicate name %q", name),
		Fields:  []string{name},
		Record:  FormatRecord(header),
		Line:    1,
	}
}

// NewInvalidHeadersError creates an Error listing every header name that
// the schema does not declare.
func NewInvalidHeadersError(names []string) *Error {
	sorted := sortedCopy(names)
	return &Error{
		Kind:    KindInvalidHeaders,
		Message: fmt.Sprintf("there are invalid headers in CSV input (please fix them): %s", quoteList(sorted)),
		Fields:  sorted,
		Line:    1,
	}
}

// NewUnexpectedMultiValueError creates an Error for a single-valued field
// whose cell contains the cell-value delimiter.
func NewUnexpectedMultiValueError(row, line int, field string, record []string) *Error {
	return &Error{
		Kind:    KindUnexpectedMultiValue,
		Message: fmt.Sprintf("field %q contains multiple values, but is not multivalued, in record %s", field, FormatRecord(record)),
		Row:     row,
		Line:    line,
		Fields:  []string{field},
		Record:  FormatRecord(record),
	}
}

// NewMissingRequiredFieldsError creates an Error naming every required
// field a row left blank.
func NewMissingRequiredFieldsError(row, line int, fields []string, record []string) *Error {
	sorted := sortedCopy(fields)
	return &Error{
		Kind: KindMissingRequiredFields,
		Message: fmt.Sprintf("the fields %s are marked as required in the schema definition, but are not contained in the record %s",
			quoteList(sorted), FormatRecord(record)),
		Row:    row,
		Line:   line,
		Fields: sorted,
		Record: FormatRecord(record),
	}
}

// NewMalformedInputError wraps a tokenizer failure.
func NewMalformedInputError(line int, err error) *Error {
	return &Error{
		Kind:    KindMalformedInput,
		Message: fmt.Sprintf("malformed CSV input at line %d", line),
		Line:    line,
		Err:     err,
	}
}

// NewIOError wraps a read or write failure.
func NewIOError(op string, err error) *Error {
	return &Error{
		Kind:    KindIO,
		Message: op,
		Err:     err,
	}
}

// FormatRecord renders a raw row for diagnostics.
func FormatRecord(record []string) string {
	return "[" + strings.Join(record, ", ") + "]"
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

func sortedCopy(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
