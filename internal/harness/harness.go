package harness

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/roach88/csv2ldj/internal/convert"
	"github.com/roach88/csv2ldj/internal/model"
	"github.com/roach88/csv2ldj/internal/schema"
)

// Run executes a scenario and returns the result.
//
// An error is returned only when the scenario itself cannot be executed,
// for example because its schema does not load. Conversion errors are part
// of the result and checked against Expect.
func Run(scenario *Scenario) (*Result, error) {
	s, err := loadSchema(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	opts := convert.Options{
		Delimiter:    scenario.Delimiter,
		Mode:         convert.DelimiterMode(scenario.DelimiterMode),
		StrictHeader: scenario.StrictHeader,
		NFC:          scenario.NFC,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	conv, err := convert.New(s, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to configure conversion: %w", err)
	}

	var out bytes.Buffer
	res, convErr := conv.Convert(strings.NewReader(scenario.Input), &out)

	result := NewResult()
	result.Output = splitLines(out.String())
	if res != nil {
		result.RowsRead = res.RowsRead
		result.RowsWritten = res.RowsWritten
	}
	if convErr != nil {
		result.ErrorKind = string(model.KindOf(convErr))
		result.ErrorFields = model.FieldsOf(convErr)
		if result.ErrorKind == "" {
			return nil, fmt.Errorf("conversion failed: %w", convErr)
		}
	}

	checkExpect(scenario.Expect, result, convErr)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

func loadSchema(scenario *Scenario) (*model.Schema, error) {
	if scenario.SchemaFile != "" {
		return schema.Load(scenario.SchemaFile)
	}
	return schema.Parse(strings.NewReader(scenario.Schema), scenario.Name+".schema")
}

// checkExpect compares the run against the expect block.
func checkExpect(expect Expect, result *Result, convErr error) {
	switch {
	case expect.Error == "" && convErr != nil:
		result.AddError(fmt.Sprintf("expected success, got %v", convErr))
	case expect.Error != "" && convErr == nil:
		result.AddError(fmt.Sprintf("expected error %s, conversion succeeded", expect.Error))
	case expect.Error != "" && expect.Error != result.ErrorKind:
		result.AddError(fmt.Sprintf("expected error %s, got %v", expect.Error, convErr))
	}

	if len(expect.Fields) > 0 && !reflect.DeepEqual(expect.Fields, result.ErrorFields) {
		result.AddError(fmt.Sprintf("expected error fields %v, got %v", expect.Fields, result.ErrorFields))
	}

	if expect.Output != nil {
		if err := compareLines(expect.Output, result.Output); err != nil {
			result.AddError(err.Error())
		}
	}

	if expect.RowsRead != nil && *expect.RowsRead != result.RowsRead {
		result.AddError(fmt.Sprintf("expected rows_read %d, got %d", *expect.RowsRead, result.RowsRead))
	}
	if expect.RowsWritten != nil && *expect.RowsWritten != result.RowsWritten {
		result.AddError(fmt.Sprintf("expected rows_written %d, got %d", *expect.RowsWritten, result.RowsWritten))
	}
}

// compareLines compares JSON lines in order. Whitespace in the expected
// lines is ignored; key order and string encoding must match the output
// byte for byte.
func compareLines(expected, actual []string) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("expected %d output lines, got %d: %v", len(expected), len(actual), actual)
	}

	for i := range expected {
		var want bytes.Buffer
		if err := json.Compact(&want, []byte(expected[i])); err != nil {
			return fmt.Errorf("expect.output[%d]: %w", i, err)
		}
		got, err := decodeLine(actual[i])
		if err != nil {
			return fmt.Errorf("output line %d is not valid JSON: %w", i+1, err)
		}
		if want.String() == actual[i] {
			continue
		}

		wantObj, err := decodeLine(want.String())
		if err != nil {
			return fmt.Errorf("expect.output[%d]: %w", i, err)
		}
		if reflect.DeepEqual(wantObj, got) {
			return fmt.Errorf("output line %d: same fields, different key order or encoding: expected %s, got %s", i+1, want.String(), actual[i])
		}
		return fmt.Errorf("output line %d: expected %s, got %s", i+1, want.String(), actual[i])
	}
	return nil
}

func decodeLine(line string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
