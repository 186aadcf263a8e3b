package convert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/csv2ldj/internal/csvscan"
	"github.com/roach88/csv2ldj/internal/model"
)

// Options configures a Converter.
type Options struct {
	// Delimiter separates values inside a cell. Empty means DefaultDelimiter.
	Delimiter string

	// Mode selects how Delimiter is interpreted. Empty means ModeChars.
	Mode DelimiterMode

	// StrictHeader rejects repeated blank header cells.
	StrictHeader bool

	// NFC normalizes keys and values to Unicode NFC before encoding.
	NFC bool

	// Logger receives the run summary. Nil means slog.Default().
	Logger *slog.Logger
}

// Result summarizes one conversion run.
type Result struct {
	// RowsRead counts data rows read, header excluded, including a failing row.
	RowsRead int64 `json:"rows_read"`

	// RowsWritten counts JSON lines written.
	RowsWritten int64 `json:"rows_written"`

	// Fields lists the header names conversion was attempted for, in header
	// order. There is no guarantee every record contains every field.
	Fields []string `json:"fields"`
}

// Converter converts CSV streams against one schema.
// A Converter is not safe for concurrent use.
type Converter struct {
	schema   *model.Schema
	splitter Splitter
	opts     Options
	logger   *slog.Logger
	enc      *model.StringEncoder
}

// New creates a Converter for schema.
func New(schema *model.Schema, opts Options) (*Converter, error) {
	if schema.Len() == 0 {
		return nil, model.NewEmptySchemaError("")
	}
	if opts.Delimiter == "" {
		opts.Delimiter = DefaultDelimiter
	}

	sp, err := NewSplitter(opts.Delimiter, opts.Mode)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Converter{
		schema:   schema,
		splitter: sp,
		opts:     opts,
		logger:   logger,
		enc:      model.NewStringEncoder(opts.NFC),
	}, nil
}

// Convert reads CSV from r and writes one JSON object per data row to w.
//
// This is the single entry point for callers that already hold a schema:
// it builds a Converter and runs it once. Neither r nor w is closed.
func Convert(r io.Reader, schema *model.Schema, w io.Writer, opts Options) (*Result, error) {
	c, err := New(schema, opts)
	if err != nil {
		return nil, err
	}
	return c.Convert(r, w)
}

// header holds the resolved header of one run.
type header struct {
	columns  []model.Column
	fields   model.FieldMap
	required []string
}

// CheckHeader reads only the header row of r and validates it against the
// schema. It returns the resolved header map.
func (c *Converter) CheckHeader(r io.Reader) (*model.HeaderMap, error) {
	hm, _, err := c.readHeader(csvscan.NewReader(r))
	return hm, err
}

func (c *Converter) readHeader(cr *csvscan.Reader) (*model.HeaderMap, *header, error) {
	row, err := cr.Read()
	if err == io.EOF {
		return nil, nil, model.NewEmptyHeaderError()
	}
	if err != nil {
		return nil, nil, readError(err)
	}

	hm, err := ResolveHeader(row, c.opts.StrictHeader)
	if err != nil {
		return nil, nil, err
	}

	fields, err := ValidateHeader(hm, c.schema)
	if err != nil {
		return nil, nil, err
	}

	return hm, &header{
		columns:  hm.Columns(),
		fields:   fields,
		required: c.schema.RequiredFields(),
	}, nil
}

// Convert reads CSV from r and writes line-delimited JSON to w.
//
// The returned Result is non-nil whenever the header was accepted, also
// when a later row fails, so callers can report partial counts.
func (c *Converter) Convert(r io.Reader, w io.Writer) (*Result, error) {
	cr := csvscan.NewReader(r)

	hm, h, err := c.readHeader(cr)
	if err != nil {
		return nil, err
	}

	res := &Result{Fields: hm.Names()}
	bw := bufio.NewWriter(w)
	var line []byte

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, c.abort(bw, readError(err))
		}
		res.RowsRead++

		line, err = c.appendRecord(line[:0], h, record, int(res.RowsRead), cr.Line())
		if err != nil {
			return res, c.abort(bw, err)
		}

		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return res, model.NewIOError("write output", err)
		}
		res.RowsWritten++
	}

	if err := bw.Flush(); err != nil {
		return res, model.NewIOError("flush output", err)
	}

	c.logSummary(res)
	return res, nil
}

// abort flushes the rows already converted and returns cause.
func (c *Converter) abort(bw *bufio.Writer, cause error) error {
	if err := bw.Flush(); err != nil {
		c.logger.Error("flushing converted rows failed", "error", err)
	}
	return cause
}

func (c *Converter) logSummary(res *Result) {
	c.logger.Info("read records", "count", res.RowsRead)
	c.logger.Info("wrote records", "count", res.RowsWritten)
	c.logger.Info("tried to write fields (no guarantee that they occur in all records)", "fields", res.Fields)
}

// appendRecord appends the JSON object for one data row to dst.
func (c *Converter) appendRecord(dst []byte, h *header, record []string, row, line int) ([]byte, error) {
	var (
		err    error
		filled = make(map[string]bool, len(h.columns))
		first  = true
	)

	dst = append(dst, '{')
	for _, col := range h.columns {
		cell, ok := cellAt(record, col.Index)
		if !ok || isBlank(cell) {
			continue
		}
		filled[col.Name] = true

		var vals []string
		if h.fields[col.Name].Multivalued {
			if vals = values(c.splitter, cell); len(vals) == 0 {
				continue
			}
		} else if c.splitter.Contains(cell) {
			return dst, model.NewUnexpectedMultiValueError(row, line, col.Name, record)
		}

		if !first {
			dst = append(dst, ',')
		}
		first = false

		if dst, err = c.enc.Append(dst, col.Name); err != nil {
			return dst, fmt.Errorf("encode key %q: %w", col.Name, err)
		}
		dst = append(dst, ':')

		if vals == nil {
			dst, err = c.enc.Append(dst, cell)
		} else {
			dst, err = c.appendArray(dst, vals)
		}
		if err != nil {
			return dst, fmt.Errorf("encode value of %q: %w", col.Name, err)
		}
	}
	dst = append(dst, '}')

	if len(h.required) > 0 && len(filled) > 0 {
		var missing []string
		for _, name := range h.required {
			if !filled[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return dst, model.NewMissingRequiredFieldsError(row, line, missing, record)
		}
	}

	return dst, nil
}

func (c *Converter) appendArray(dst []byte, vals []string) ([]byte, error) {
	var err error
	dst = append(dst, '[')
	for i, v := range vals {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = c.enc.Append(dst, v); err != nil {
			return dst, err
		}
	}
	return append(dst, ']'), nil
}

// cellAt returns the cell at index; ok is false when the row is too short.
func cellAt(record []string, index int) (string, bool) {
	if index < 0 || index >= len(record) {
		return "", false
	}
	return record[index], true
}

func readError(err error) error {
	var pe *csvscan.ParseError
	if errors.As(err, &pe) {
		return model.NewMalformedInputError(pe.Line, err)
	}
	return model.NewIOError("read input", err)
}
