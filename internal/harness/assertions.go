package harness

import (
	"fmt"
	"reflect"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the written output to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Output   []string // Written lines for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nOutput:\n")
	for i, line := range e.Output {
		fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
	}

	return buf.String()
}

// assertLineCount checks that exactly Count lines were written.
func assertLineCount(output []string, assertion Assertion) error {
	if len(output) != assertion.Count {
		return &AssertionError{
			Type:     AssertLineCount,
			Expected: fmt.Sprintf("%d lines", assertion.Count),
			Actual:   fmt.Sprintf("%d lines", len(output)),
			Output:   output,
		}
	}
	return nil
}

// assertOutputContains checks that some line holds the expected record
// (subset match).
func assertOutputContains(output []string, assertion Assertion) error {
	for _, line := range output {
		obj, err := decodeLine(line)
		if err != nil {
			continue
		}
		if matchRecord(obj, assertion.Record) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertOutputContains,
		Expected: fmt.Sprintf("a line containing %v", assertion.Record),
		Actual:   "not found in output",
		Output:   output,
	}
}

// assertFieldAbsent checks that no line has the field as a key.
func assertFieldAbsent(output []string, assertion Assertion) error {
	for i, line := range output {
		obj, err := decodeLine(line)
		if err != nil {
			continue
		}
		if _, ok := obj[assertion.Field]; ok {
			return &AssertionError{
				Type:     AssertFieldAbsent,
				Expected: fmt.Sprintf("no line with key %q", assertion.Field),
				Actual:   fmt.Sprintf("line %d has it", i+1),
				Output:   output,
			}
		}
	}
	return nil
}

// matchRecord checks if actual contains all expected keys (subset match).
// Extra keys in actual are ignored.
func matchRecord(actual, expected map[string]interface{}) bool {
	for key, expectedVal := range expected {
		actualVal, exists := actual[key]
		if !exists {
			return false
		}
		if !valuesEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// valuesEqual compares a decoded JSON value with a YAML value.
// YAML sequences decode as []interface{} just like JSON arrays, and every
// converted value is a string, so DeepEqual is sufficient.
func valuesEqual(actual, expected interface{}) bool {
	if actual == nil && expected == nil {
		return true
	}
	if actual == nil || expected == nil {
		return false
	}
	return reflect.DeepEqual(actual, expected)
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertLineCount:
			err = assertLineCount(result.Output, assertion)
		case AssertOutputContains:
			err = assertOutputContains(result.Output, assertion)
		case AssertFieldAbsent:
			err = assertFieldAbsent(result.Output, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
