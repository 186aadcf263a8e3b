package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/csv2ldj/internal/convert"
	"github.com/roach88/csv2ldj/internal/model"
)

// Scenario defines a conversion test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is an inline schema in the canonical CSV format.
	Schema string `yaml:"schema,omitempty"`

	// SchemaFile is a schema file path (csv, yaml or cue), relative to the
	// scenario file. Exactly one of Schema and SchemaFile must be set.
	SchemaFile string `yaml:"schema_file,omitempty"`

	// Input is the CSV text to convert, header row first.
	Input string `yaml:"input"`

	// Delimiter overrides the default cell-value delimiter.
	Delimiter string `yaml:"delimiter,omitempty"`

	// DelimiterMode is one of chars, regexp or literal.
	DelimiterMode string `yaml:"delimiter_mode,omitempty"`

	// StrictHeader rejects repeated blank header cells.
	StrictHeader bool `yaml:"strict_header,omitempty"`

	// NFC normalizes keys and values before encoding.
	NFC bool `yaml:"nfc,omitempty"`

	// Expect is the required outcome of the run.
	Expect Expect `yaml:"expect"`

	// Assertions validate the written lines.
	// Supported types: line_count, output_contains, field_absent
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect describes the outcome of a conversion.
type Expect struct {
	// Output lists the JSON lines written, in order. Lines are compared as
	// JSON values, so key order and spacing do not matter.
	Output []string `yaml:"output,omitempty"`

	// Error is the error kind the run must abort with, e.g.
	// MISSING_REQUIRED_FIELDS. Empty means the run must succeed.
	Error string `yaml:"error,omitempty"`

	// Fields lists the offending names the error must carry.
	Fields []string `yaml:"fields,omitempty"`

	// RowsRead and RowsWritten are checked when set.
	RowsRead    *int64 `yaml:"rows_read,omitempty"`
	RowsWritten *int64 `yaml:"rows_written,omitempty"`
}

// Assertion validates the written lines.
type Assertion struct {
	// Type specifies the assertion type:
	// - "line_count": exactly Count lines were written
	// - "output_contains": some line holds every key of Record with equal values
	// - "field_absent": no line has the key Field
	Type string `yaml:"type"`

	// Count is the expected number of lines (used by line_count).
	Count int `yaml:"count,omitempty"`

	// Record is the expected subset of a line (used by output_contains).
	Record map[string]interface{} `yaml:"record,omitempty"`

	// Field is the key that must never be written (used by field_absent).
	Field string `yaml:"field,omitempty"`
}

// Assertion type constants.
const (
	AssertLineCount      = "line_count"
	AssertOutputContains = "output_contains"
	AssertFieldAbsent    = "field_absent"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// SchemaFile is resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.SchemaFile != "" && !filepath.IsAbs(scenario.SchemaFile) {
		scenario.SchemaFile = filepath.Join(filepath.Dir(path), scenario.SchemaFile)
	}
	if scenario.SchemaFile != "" {
		if _, err := os.Stat(scenario.SchemaFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: schema file not found: %s", scenario.SchemaFile)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Schema == "" && s.SchemaFile == "":
		return fmt.Errorf("one of schema or schema_file is required")
	case s.Schema != "" && s.SchemaFile != "":
		return fmt.Errorf("schema and schema_file are mutually exclusive")
	}

	if s.DelimiterMode != "" && !validMode(s.DelimiterMode) {
		return fmt.Errorf("delimiter_mode %q: must be one of %v", s.DelimiterMode, convert.ValidModes)
	}

	if s.Expect.Error == "" && s.Expect.Output == nil {
		return fmt.Errorf("expect: one of output or error is required")
	}
	if s.Expect.Error == "" && len(s.Expect.Fields) > 0 {
		return fmt.Errorf("expect: fields requires error")
	}
	if s.Expect.Error != "" && !model.ValidKind(model.Kind(s.Expect.Error)) {
		return fmt.Errorf("expect: unknown error kind %q", s.Expect.Error)
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validMode(mode string) bool {
	for _, m := range convert.ValidModes {
		if string(m) == mode {
			return true
		}
	}
	return false
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertLineCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for line_count", index)
		}
	case AssertOutputContains:
		if len(a.Record) == 0 {
			return fmt.Errorf("assertions[%d]: record is required for output_contains", index)
		}
	case AssertFieldAbsent:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for field_absent", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
