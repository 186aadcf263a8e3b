package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/csv2ldj/internal/model"
	"github.com/roach88/csv2ldj/internal/schema"
)

// SchemaResult describes a loaded schema.
type SchemaResult struct {
	Path     string        `json:"path"`
	Format   string        `json:"format"`
	Hash     string        `json:"hash"`
	Required []string      `json:"required"`
	Fields   []model.Field `json:"fields"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "schema <path>",
		Short: "Print a schema in declaration order",
		Long: `Load a schema file and print its fields in declaration order together
with the schema content hash recorded in the run ledger.

Examples:
  csv2ldj schema fields.csv
  csv2ldj schema fields.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], schema.Format(format), cmd)
		},
	}

	cmd.Flags().StringVar(&format, "schema-format", string(schema.FormatAuto), "schema format (auto|csv|yaml|cue)")

	return cmd
}

func runSchema(opts *RootOptions, path string, format schema.Format, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	setupLogging(opts, cmd.ErrOrStderr())

	s, err := schema.LoadFormat(path, format)
	if err != nil {
		return reportError(formatter, err)
	}
	hash, err := model.SchemaHash(s)
	if err != nil {
		return reportError(formatter, err)
	}

	if format == "" || format == schema.FormatAuto {
		format = schema.DetectFormat(path)
	}
	result := SchemaResult{
		Path:     path,
		Format:   string(format),
		Hash:     hash,
		Required: s.RequiredFields(),
		Fields:   s.Fields(),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMULTIVALUED\tREQUIRED")
	for _, f := range result.Fields {
		fmt.Fprintf(w, "%s\t%t\t%t\n", f.Name, f.Multivalued, f.Required)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d field(s), required: %s\nhash: %s\n",
		len(result.Fields), strings.Join(result.Required, ", "), result.Hash)
	return nil
}
