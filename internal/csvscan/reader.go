package csvscan

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var (
	// ErrUnterminatedQuote is returned when input ends inside a quoted field.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")

	// ErrTextAfterQuote is returned when a closing quote is followed by
	// something other than whitespace, a separator or a line break.
	ErrTextAfterQuote = errors.New("invalid char between encapsulated token and delimiter")

	// ErrEscapeAtEOF is returned when input ends right after an escape character.
	ErrEscapeAtEOF = errors.New("escape character at end of input")
)

// ParseError reports the position of a syntax error.
type ParseError struct {
	StartLine int // line where the record starts
	Line      int // line where the error occurred
	Field     int // 1-based field index within the record
	Err       error
}

func (e *ParseError) Error() string {
	if e.StartLine != e.Line {
		return fmt.Sprintf("record on line %d; line %d, field %d: %v", e.StartLine, e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("line %d, field %d: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Dialect configures the separators of a Reader.
// A zero Quote or Escape disables quoting or escaping.
type Dialect struct {
	Comma     rune
	Quote     rune
	Escape    rune
	TrimSpace bool
}

// Default is the dialect of conversion input.
var Default = Dialect{Comma: ',', Quote: '"', Escape: '\\', TrimSpace: true}

// Plain is a comma separated dialect without quoting or escaping.
var Plain = Dialect{Comma: ','}

// Reader reads records from delimited text.
type Reader struct {
	br      *bufio.Reader
	dialect Dialect

	line       int // current physical line, 1-based
	recordLine int // line where the last record started
	field      int // field index within the current record
}

// NewReader returns a Reader using the Default dialect.
func NewReader(r io.Reader) *Reader {
	return NewDialectReader(r, Default)
}

// NewDialectReader returns a Reader for the given dialect.
func NewDialectReader(r io.Reader, d Dialect) *Reader {
	return &Reader{
		br:      bufio.NewReader(r),
		dialect: d,
		line:    1,
	}
}

// Line returns the line on which the most recently read record started.
func (r *Reader) Line() int {
	return r.recordLine
}

// Read reads one record. It returns io.EOF when no records remain.
func (r *Reader) Read() ([]string, error) {
	if err := r.skipEmptyLines(); err != nil {
		return nil, err
	}

	r.recordLine = r.line
	r.field = 0

	var record []string
	for {
		r.field++
		value, end, err := r.readField()
		if err != nil {
			return nil, err
		}
		record = append(record, value)
		if end {
			return record, nil
		}
	}
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func (r *Reader) skipEmptyLines() error {
	for {
		c, _, err := r.br.ReadRune()
		if err != nil {
			return err
		}
		if r.newline(c) {
			continue
		}
		return r.br.UnreadRune()
	}
}

// next returns the next rune; eof is true at end of input.
func (r *Reader) next() (c rune, eof bool, err error) {
	c, _, err = r.br.ReadRune()
	if err == io.EOF {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, err
	}
	return c, false, nil
}

// newline reports whether c ends a line, consuming the LF of a CRLF pair.
func (r *Reader) newline(c rune) bool {
	switch c {
	case '\n':
		r.line++
		return true
	case '\r':
		if n, _, err := r.br.ReadRune(); err == nil && n != '\n' {
			_ = r.br.UnreadRune()
		}
		r.line++
		return true
	}
	return false
}

func (r *Reader) isSpace(c rune) bool {
	return c != '\n' && c != '\r' && unicode.IsSpace(c)
}

func (r *Reader) parseError(err error) error {
	return &ParseError{StartLine: r.recordLine, Line: r.line, Field: r.field, Err: err}
}

// readField reads one field; end is true when the field closed the record.
func (r *Reader) readField() (value string, end bool, err error) {
	d := r.dialect

	c, eof, err := r.next()
	if err != nil {
		return "", false, err
	}
	for d.TrimSpace && !eof && r.isSpace(c) {
		if c, eof, err = r.next(); err != nil {
			return "", false, err
		}
	}

	if eof {
		return "", true, nil
	}
	if d.Quote != 0 && c == d.Quote {
		return r.readQuoted()
	}

	var b strings.Builder
	for {
		switch {
		case c == d.Comma:
			return r.finishSimple(&b), false, nil
		case r.newline(c):
			return r.finishSimple(&b), true, nil
		case d.Escape != 0 && c == d.Escape:
			if err := r.readEscape(&b); err != nil {
				return "", false, err
			}
		default:
			b.WriteRune(c)
		}

		if c, eof, err = r.next(); err != nil {
			return "", false, err
		}
		if eof {
			return r.finishSimple(&b), true, nil
		}
	}
}

func (r *Reader) finishSimple(b *strings.Builder) string {
	if r.dialect.TrimSpace {
		return strings.TrimRightFunc(b.String(), r.isSpace)
	}
	return b.String()
}

func (r *Reader) readQuoted() (string, bool, error) {
	d := r.dialect
	var b strings.Builder

	for {
		c, eof, err := r.next()
		if err != nil {
			return "", false, err
		}
		if eof {
			return "", false, r.parseError(ErrUnterminatedQuote)
		}

		switch {
		case d.Escape != 0 && d.Escape != d.Quote && c == d.Escape:
			if err := r.readEscape(&b); err != nil {
				return "", false, err
			}

		case c == d.Quote:
			n, eof, err := r.next()
			if err != nil {
				return "", false, err
			}
			if !eof && n == d.Quote {
				b.WriteRune(d.Quote)
				continue
			}

			// Closing quote: only whitespace may precede the separator.
			for !eof && r.isSpace(n) {
				if n, eof, err = r.next(); err != nil {
					return "", false, err
				}
			}
			switch {
			case eof:
				return b.String(), true, nil
			case n == d.Comma:
				return b.String(), false, nil
			case r.newline(n):
				return b.String(), true, nil
			}
			return "", false, r.parseError(ErrTextAfterQuote)

		default:
			if c == '\n' {
				r.line++
			}
			b.WriteRune(c)
		}
	}
}

// readEscape resolves the rune following an escape character.
func (r *Reader) readEscape(b *strings.Builder) error {
	d := r.dialect

	c, eof, err := r.next()
	if err != nil {
		return err
	}
	if eof {
		return r.parseError(ErrEscapeAtEOF)
	}

	switch c {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case '\n', '\r', '\t', '\b', '\f':
		if c == '\n' {
			r.line++
		}
		b.WriteRune(c)
	default:
		if c == d.Comma || c == d.Quote || c == d.Escape {
			b.WriteRune(c)
			return nil
		}
		b.WriteRune(d.Escape)
		b.WriteRune(c)
	}
	return nil
}
