package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Status is the outcome of a run.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Run is one ledger record.
type Run struct {
	Seq       int64     `json:"seq"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Input      string `json:"input"`
	Output     string `json:"output"`
	SchemaPath string `json:"schema_path"`
	SchemaHash string `json:"schema_hash"`
	Delimiter  string `json:"delimiter"`

	RowsRead    int64    `json:"rows_read"`
	RowsWritten int64    `json:"rows_written"`
	Fields      []string `json:"fields"`

	Status       Status `json:"status"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`

	InputSHA256  string `json:"input_sha256,omitempty"`
	OutputSHA256 string `json:"output_sha256,omitempty"`
}

const runColumns = `seq, id, created_at, input, output, schema_path, schema_hash, delimiter,
	rows_read, rows_written, fields, status, error_kind, error_message, input_sha256, output_sha256`

// WriteRun appends run to the ledger and returns it with Seq, ID and
// CreatedAt assigned. An empty ID is filled from the id generator and an
// empty Status defaults to StatusOK.
func (s *Store) WriteRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = s.ids.Generate()
	}
	if run.Status == "" {
		run.Status = StatusOK
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}
	run.CreatedAt = run.CreatedAt.UTC()
	if run.Fields == nil {
		run.Fields = []string{}
	}

	fields, err := json.Marshal(run.Fields)
	if err != nil {
		return Run{}, fmt.Errorf("write run: marshal fields: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.Seq,
		run.ID,
		run.CreatedAt.Format(time.RFC3339Nano),
		run.Input,
		run.Output,
		run.SchemaPath,
		run.SchemaHash,
		run.Delimiter,
		run.RowsRead,
		run.RowsWritten,
		string(fields),
		string(run.Status),
		run.ErrorKind,
		run.ErrorMessage,
		run.InputSHA256,
		run.OutputSHA256,
	)
	if err != nil {
		return Run{}, fmt.Errorf("write run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("write run: commit: %w", err)
	}
	return run, nil
}

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
// A limit <= 0 returns every run. Returns an empty slice (not nil) when the
// ledger is empty.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC, id COLLATE BINARY DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run       Run
		createdAt string
		fields    string
		status    string
	)
	err := sc.Scan(
		&run.Seq,
		&run.ID,
		&createdAt,
		&run.Input,
		&run.Output,
		&run.SchemaPath,
		&run.SchemaHash,
		&run.Delimiter,
		&run.RowsRead,
		&run.RowsWritten,
		&fields,
		&status,
		&run.ErrorKind,
		&run.ErrorMessage,
		&run.InputSHA256,
		&run.OutputSHA256,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Run{}, fmt.Errorf("scan run %s: created_at: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(fields), &run.Fields); err != nil {
		return Run{}, fmt.Errorf("scan run %s: fields: %w", run.ID, err)
	}
	run.Status = Status(status)
	return run, nil
}
