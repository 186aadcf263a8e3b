package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// LedgerEnv names the environment variable that supplies the run ledger
// path when --ledger is not given.
const LedgerEnv = "CSV2LDJ_LEDGER"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the csv2ldj CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "csv2ldj",
		Short: "Convert CSV to schema-validated line-delimited JSON",
		Long: `Convert CSV records into line-delimited JSON, one object per row,
validated against a field schema that declares which fields are
multivalued and which are required.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints errors that are not *ExitError
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// ledgerPath returns the --ledger flag value, falling back to LedgerEnv.
func ledgerPath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(LedgerEnv)
}
