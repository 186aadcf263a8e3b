package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/csv2ldj/internal/testutil"
)

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temp dir with deterministic ids
// and timestamps.
func createTestStore(t *testing.T, ids ...string) *Store {
	t.Helper()
	if len(ids) == 0 {
		ids = testutil.SequentialIDs("run", 16)
	}
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithIDGenerator(testutil.NewFixedGenerator(ids...)),
		WithClock(testutil.NewStepClock(testEpoch, time.Minute).Now),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a successful run with minimal fields.
func createTestRun(input string, rows int64) Run {
	return Run{
		Input:       input,
		Output:      "-",
		SchemaPath:  "schema.csv",
		SchemaHash:  "hash",
		Delimiter:   `/\(\)`,
		RowsRead:    rows,
		RowsWritten: rows,
		Fields:      []string{"id", "tags"},
	}
}
