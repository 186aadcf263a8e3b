// Package input opens the byte streams a conversion reads and writes.
//
// A Source is a named file or standard input, optionally gzip or bzip2
// compressed, with a leading UTF-8 byte order mark removed. A Sink is a named
// file or standard output. Both record a SHA-256 digest of the raw bytes that
// passed through them so a run can be identified later.
package input
