// Command csv2ldj converts CSV to schema-validated line-delimited JSON.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/csv2ldj/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			// Cobra usage errors and bad global flags.
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(cli.ExitCommandError)
		}
		os.Exit(exitErr.Code)
	}
}
