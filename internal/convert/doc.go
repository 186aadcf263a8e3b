// Package convert turns header-bearing CSV into schema-validated
// line-delimited JSON.
//
// # Pipeline
//
//  1. The first record is the header. ResolveHeader maps each named column
//     to its index and rejects repeated names.
//  2. ValidateHeader binds every header name to its schema Field and reports
//     all undeclared names at once.
//  3. Every following record becomes one compact JSON object on its own line,
//     in input order, with keys in header column order.
//
// # Cells
//
//   - A null or blank cell is omitted from the object.
//   - A multivalued cell is split on the cell-value delimiter and written as
//     an array of its non-blank segments; if no segment survives the field is
//     omitted.
//   - A single-valued cell that contains the delimiter aborts the run with
//     UNEXPECTED_MULTI_VALUE.
//   - Values are always JSON strings; nothing is coerced.
//
// # Required fields
//
// When the schema declares required fields and a row fills at least one cell,
// every required field must be filled too, otherwise the run aborts with
// MISSING_REQUIRED_FIELDS. A row with no filled cell is written as {} and is
// not checked.
//
// Conversion is single-threaded and stops at the first error. Rows converted
// before the failure are flushed; the failing row is never written.
package convert
