package cli

import (
	"bytes"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const booksSchema = `id,false,true
title
authors,true
`

// execute runs cmd with args and stdin, returning what it wrote.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// lastJSON decodes the last non-empty line of s, skipping log lines
// written before it.
func lastJSON(t *testing.T, s string) CLIResponse {
	t.Helper()
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	require.NotEmpty(t, lines)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &resp), "output: %s", s)
	return resp
}

// dataMap re-decodes a response payload as a generic map.
func dataMap(t *testing.T, resp CLIResponse) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", resp.Data)
	return m
}
