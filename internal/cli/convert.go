package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/csv2ldj/internal/convert"
	"github.com/roach88/csv2ldj/internal/input"
	"github.com/roach88/csv2ldj/internal/model"
	"github.com/roach88/csv2ldj/internal/schema"
	"github.com/roach88/csv2ldj/internal/store"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	Schema        string
	SchemaFormat  string
	Input         string
	Output        string
	Delimiter     string
	DelimiterMode string
	Compression   string
	StrictHeader  bool
	NFC           bool
	Ledger        string

	// IDGenerator allows overriding the ledger run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// ConvertSummary is the result payload of the convert command.
type ConvertSummary struct {
	Input        string   `json:"input"`
	Output       string   `json:"output"`
	Schema       string   `json:"schema"`
	SchemaHash   string   `json:"schema_hash"`
	RowsRead     int64    `json:"rows_read"`
	RowsWritten  int64    `json:"rows_written"`
	Fields       []string `json:"fields"`
	InputSHA256  string   `json:"input_sha256"`
	OutputSHA256 string   `json:"output_sha256"`
}

func (s ConvertSummary) String() string {
	return fmt.Sprintf("✓ Wrote %d of %d records from %s to %s", s.RowsWritten, s.RowsRead, s.Input, s.Output)
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	return newConvertCommand(&ConvertOptions{RootOptions: rootOpts})
}

func newConvertCommand(opts *ConvertOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert CSV to line-delimited JSON",
		Long: `Convert a CSV stream into line-delimited JSON, one object per data row.

The first row is the header. Every header name must be declared in the
schema. Blank cells are omitted, multivalued fields become arrays, and a
row that fills any field must fill every required one. The first invalid
row aborts the run; rows before it are kept.

The run summary and logs go to stderr, so stdout carries only JSON lines
when no --output is given.

Exit codes:
  0 - All rows converted
  1 - Input rejected (header or row validation failed)
  2 - Command error (missing schema, unreadable input, bad flags)

Examples:
  csv2ldj convert --schema fields.csv --input records.csv --output records.ldjson
  csv2ldj convert -s fields.yaml < records.csv.gz --compression gzip
  csv2ldj convert -s fields.csv -i records.csv -d ';' --delimiter-mode literal
  csv2ldj convert -s fields.csv -i records.csv --ledger runs.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "path to the schema file (required)")
	cmd.Flags().StringVar(&opts.SchemaFormat, "schema-format", string(schema.FormatAuto), "schema format (auto|csv|yaml|cue)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "CSV input file (default stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.Delimiter, "delimiter", "d", convert.DefaultDelimiter, "cell value delimiter for multivalued fields")
	cmd.Flags().StringVar(&opts.DelimiterMode, "delimiter-mode", string(convert.ModeChars), "delimiter interpretation (chars|regexp|literal)")
	cmd.Flags().StringVar(&opts.Compression, "compression", string(input.CompressionAuto), "input compression (auto|none|gzip|bzip2)")
	cmd.Flags().BoolVar(&opts.StrictHeader, "strict-header", false, "reject repeated blank header cells")
	cmd.Flags().BoolVar(&opts.NFC, "nfc", false, "normalize keys and values to Unicode NFC")
	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "record the run in this SQLite ledger (default $"+LedgerEnv+")")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runConvert(opts *ConvertOptions, cmd *cobra.Command) error {
	// Summaries share stderr with logs; stdout may carry the records.
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.ErrOrStderr(),
		Verbose: opts.Verbose,
	}
	logger := setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	if !validCompression(opts.Compression) {
		return reportCommandError(formatter, ErrCodeInvalidFlag,
			fmt.Sprintf("invalid compression %q: must be one of %v", opts.Compression, input.ValidCompressions))
	}

	s, err := schema.LoadFormat(opts.Schema, schema.Format(opts.SchemaFormat))
	if err != nil {
		return reportError(formatter, err)
	}
	schemaHash, err := model.SchemaHash(s)
	if err != nil {
		return reportError(formatter, err)
	}

	conv, err := convert.New(s, convert.Options{
		Delimiter:    opts.Delimiter,
		Mode:         convert.DelimiterMode(opts.DelimiterMode),
		StrictHeader: opts.StrictHeader,
		NFC:          opts.NFC,
		Logger:       logger,
	})
	if err != nil {
		return reportCommandError(formatter, ErrCodeInvalidFlag, err.Error())
	}

	src, err := input.Open(opts.Input, input.Compression(opts.Compression), cmd.InOrStdin())
	if err != nil {
		return reportCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("cannot open input: %v", err))
	}
	defer src.Close()

	sink, err := input.Create(opts.Output, cmd.OutOrStdout())
	if err != nil {
		return reportCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("cannot create output: %v", err))
	}

	res, convErr := conv.Convert(src, sink)
	if err := sink.Close(); err != nil && convErr == nil {
		convErr = model.NewIOError("close output", err)
	}

	summary := ConvertSummary{
		Input:        src.Name,
		Output:       sink.Name,
		Schema:       opts.Schema,
		SchemaHash:   schemaHash,
		InputSHA256:  src.SHA256(),
		OutputSHA256: sink.SHA256(),
		Fields:       []string{},
	}
	if res != nil {
		summary.RowsRead = res.RowsRead
		summary.RowsWritten = res.RowsWritten
		summary.Fields = res.Fields
	}

	runID, ledgerErr := recordRun(cmd.Context(), opts, summary, convErr)
	if ledgerErr != nil {
		logger.Error("recording run failed", "ledger", ledgerPath(opts.Ledger), "error", ledgerErr)
	}

	if convErr != nil {
		return reportError(formatter, convErr)
	}
	if ledgerErr != nil {
		return reportCommandError(formatter, ErrCodeLedger, ledgerErr.Error())
	}

	if opts.Format == "json" {
		return formatter.Respond(CLIResponse{Status: "ok", Data: summary, RunID: runID})
	}
	return formatter.Success(summary)
}

// recordRun appends the run to the ledger, when one is configured.
func recordRun(ctx context.Context, opts *ConvertOptions, summary ConvertSummary, convErr error) (string, error) {
	path := ledgerPath(opts.Ledger)
	if path == "" {
		return "", nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var storeOpts []store.Option
	if opts.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(opts.IDGenerator))
	}
	st, err := store.Open(path, storeOpts...)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run := store.Run{
		Input:        summary.Input,
		Output:       summary.Output,
		SchemaPath:   summary.Schema,
		SchemaHash:   summary.SchemaHash,
		Delimiter:    opts.Delimiter,
		RowsRead:     summary.RowsRead,
		RowsWritten:  summary.RowsWritten,
		Fields:       summary.Fields,
		Status:       store.StatusOK,
		InputSHA256:  summary.InputSHA256,
		OutputSHA256: summary.OutputSHA256,
	}
	if convErr != nil {
		run.Status = store.StatusFailed
		run.ErrorKind = string(model.KindOf(convErr))
		run.ErrorMessage = convErr.Error()
	}

	written, err := st.WriteRun(ctx, run)
	if err != nil {
		return "", err
	}
	slog.Debug("recorded run", "id", written.ID, "seq", written.Seq)
	return written.ID, nil
}

func validCompression(c string) bool {
	for _, v := range input.ValidCompressions {
		if string(v) == c {
			return true
		}
	}
	return false
}
