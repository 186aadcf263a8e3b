package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/csv2ldj/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Ledger string
	Limit  int
	RunID  string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion runs",
		Long: `List the conversion runs recorded in a run ledger, newest first.

With --run, print a single run in full.

Examples:
  csv2ldj history --ledger runs.db
  csv2ldj history --ledger runs.db --limit 5 --format json
  csv2ldj history --ledger runs.db --run 0190a3c2-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Ledger, "ledger", "", "SQLite run ledger (default $"+LedgerEnv+")")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum number of runs to list (0 for all)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a single run by id")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	setupLogging(opts.RootOptions, cmd.ErrOrStderr())

	path := ledgerPath(opts.Ledger)
	if path == "" {
		return reportCommandError(formatter, ErrCodeInvalidFlag, "no ledger given: use --ledger or $"+LedgerEnv)
	}
	// Opening would create an empty ledger; a typo should not.
	if _, err := os.Stat(path); err != nil {
		return reportCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("ledger not found: %s", path))
	}

	st, err := store.Open(path)
	if err != nil {
		return reportCommandError(formatter, ErrCodeLedger, err.Error())
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if errors.Is(err, sql.ErrNoRows) {
			return reportCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("run not found: %s", opts.RunID))
		}
		if err != nil {
			return reportCommandError(formatter, ErrCodeLedger, err.Error())
		}
		if opts.Format == "json" {
			return formatter.Success(run)
		}
		printRun(cmd, run)
		return nil
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return reportCommandError(formatter, ErrCodeLedger, err.Error())
	}
	formatter.VerboseLog("Read %d run(s) from %s", len(runs), path)

	if opts.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tID\tCREATED\tSTATUS\tREAD\tWRITTEN\tINPUT")
	for _, r := range runs {
		status := string(r.Status)
		if r.ErrorKind != "" {
			status += " (" + r.ErrorKind + ")"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			r.Seq, r.ID, r.CreatedAt.Format(time.RFC3339), status, r.RowsRead, r.RowsWritten, r.Input)
	}
	return w.Flush()
}

func printRun(cmd *cobra.Command, r store.Run) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run %s (seq %d)\n", r.ID, r.Seq)
	fmt.Fprintf(w, "  created:  %s\n", r.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  status:   %s\n", r.Status)
	if r.ErrorKind != "" {
		fmt.Fprintf(w, "  error:    [%s] %s\n", r.ErrorKind, r.ErrorMessage)
	}
	fmt.Fprintf(w, "  input:    %s %s\n", r.Input, r.InputSHA256)
	fmt.Fprintf(w, "  output:   %s %s\n", r.Output, r.OutputSHA256)
	fmt.Fprintf(w, "  schema:   %s %s\n", r.SchemaPath, r.SchemaHash)
	fmt.Fprintf(w, "  rows:     %d read, %d written\n", r.RowsRead, r.RowsWritten)
	fmt.Fprintf(w, "  fields:   %s\n", strings.Join(r.Fields, ", "))
}
