package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/csv2ldj/internal/convert"
	"github.com/roach88/csv2ldj/internal/input"
	"github.com/roach88/csv2ldj/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Schema       string
	SchemaFormat string
	Input        string
	Compression  string
	StrictHeader bool
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Schema string   `json:"schema"`
	Fields int      `json:"fields"`
	Input  string   `json:"input,omitempty"`
	Header []string `json:"header,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Input == "" {
		return fmt.Sprintf("✓ Schema valid (%d fields)", r.Fields)
	}
	return fmt.Sprintf("✓ Schema valid (%d fields), header of %s valid (%d columns)", r.Fields, r.Input, len(r.Header))
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a schema and, optionally, an input header",
		Long: `Load a schema and report whether it is valid.

With --input, also resolve the header row of the input and check every
name against the schema without converting any data row. Use "-" to read
the input from stdin.

Exit codes:
  0 - Valid
  1 - Schema or header invalid
  2 - Command error (schema or input not found)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Schema, "schema", "s", "", "path to the schema file (required)")
	cmd.Flags().StringVar(&opts.SchemaFormat, "schema-format", string(schema.FormatAuto), "schema format (auto|csv|yaml|cue)")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "CSV input whose header to check")
	cmd.Flags().StringVar(&opts.Compression, "compression", string(input.CompressionAuto), "input compression (auto|none|gzip|bzip2)")
	cmd.Flags().BoolVar(&opts.StrictHeader, "strict-header", false, "reject repeated blank header cells")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	if !validCompression(opts.Compression) {
		return reportCommandError(formatter, ErrCodeInvalidFlag,
			fmt.Sprintf("invalid compression %q: must be one of %v", opts.Compression, input.ValidCompressions))
	}

	s, err := schema.LoadFormat(opts.Schema, schema.Format(opts.SchemaFormat))
	if err != nil {
		return reportError(formatter, err)
	}
	formatter.VerboseLog("Loaded %d field(s) from %s", s.Len(), opts.Schema)

	result := ValidationResult{Valid: true, Schema: opts.Schema, Fields: s.Len()}

	if opts.Input != "" {
		conv, err := convert.New(s, convert.Options{StrictHeader: opts.StrictHeader})
		if err != nil {
			return reportError(formatter, err)
		}

		src, err := input.Open(opts.Input, input.Compression(opts.Compression), cmd.InOrStdin())
		if err != nil {
			return reportCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("cannot open input: %v", err))
		}
		defer src.Close()

		header, err := conv.CheckHeader(src)
		if err != nil {
			return reportError(formatter, err)
		}
		result.Input = src.Name
		result.Header = header.Names()
	}

	return formatter.Success(result)
}
