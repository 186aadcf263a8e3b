// Package csvscan reads delimited text one record at a time.
//
// The default dialect is comma separated, double-quote quoted, backslash
// escaped, with whitespace around each field ignored:
//
//	id, tags ,  "a, quoted value" ,\"escaped\"
//
// reads as ["id", "tags", "a, quoted value", "\"escaped\""].
//
// Inside and outside quotes a backslash takes the next character literally
// when it is a separator, quote or backslash; \n, \r, \t, \b and \f produce
// the control character; any other escape is kept verbatim (both runes).
// A doubled quote inside a quoted field is a literal quote. Quoted fields may
// span lines. Empty lines between records are skipped.
package csvscan
