package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/csv2ldj/internal/model"
)

// Error codes for CLI responses.
const (
	// Command errors (E00x)
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeInvalidFlag = "E002" // Invalid flag value
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeTestFailed  = "E008" // One or more scenarios failed
	ErrCodeLedger      = "E009" // Run ledger error

	// Schema errors (E10x)
	ErrCodeSchemaNotFound = "E101"
	ErrCodeSchemaParse    = "E102"
	ErrCodeEmptySchema    = "E103"

	// Data errors (E11x)
	ErrCodeEmptyHeader           = "E110"
	ErrCodeDuplicateHeader       = "E111"
	ErrCodeInvalidHeaders        = "E112"
	ErrCodeUnexpectedMultiValue  = "E113"
	ErrCodeMissingRequiredFields = "E114"
	ErrCodeMalformedInput        = "E115"
	ErrCodeIO                    = "E116"
)

var kindCodes = map[model.Kind]string{
	model.KindSchemaNotFound:        ErrCodeSchemaNotFound,
	model.KindSchemaParse:           ErrCodeSchemaParse,
	model.KindEmptySchema:           ErrCodeEmptySchema,
	model.KindEmptyHeader:           ErrCodeEmptyHeader,
	model.KindDuplicateHeader:       ErrCodeDuplicateHeader,
	model.KindInvalidHeaders:        ErrCodeInvalidHeaders,
	model.KindUnexpectedMultiValue:  ErrCodeUnexpectedMultiValue,
	model.KindMissingRequiredFields: ErrCodeMissingRequiredFields,
	model.KindMalformedInput:        ErrCodeMalformedInput,
	model.KindIO:                    ErrCodeIO,
}

// CodeForKind maps an error kind to its CLI error code.
func CodeForKind(kind model.Kind) string {
	if code, ok := kindCodes[kind]; ok {
		return code
	}
	return ErrCodeGeneric
}

// exitCodeForKind separates environment problems (exit 2) from data that
// failed validation (exit 1).
func exitCodeForKind(kind model.Kind) int {
	switch kind {
	case model.KindSchemaNotFound, model.KindIO, "":
		return ExitCommandError
	default:
		return ExitFailure
	}
}

// ErrorDetails is the details payload of a conversion error.
type ErrorDetails struct {
	Kind   model.Kind `json:"kind"`
	Row    int        `json:"row,omitempty"`
	Line   int        `json:"line,omitempty"`
	Fields []string   `json:"fields,omitempty"`
	Record string     `json:"record,omitempty"`
}

// reportError writes err through the formatter and returns the matching
// ExitError. Errors that are not *model.Error are reported as generic
// command errors.
func reportError(f *OutputFormatter, err error) error {
	var me *model.Error
	if !errors.As(err, &me) {
		_ = f.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeGeneric, err)
	}

	code := CodeForKind(me.Kind)
	details := ErrorDetails{
		Kind:   me.Kind,
		Row:    me.Row,
		Line:   me.Line,
		Fields: me.Fields,
		Record: me.Record,
	}
	_ = f.Error(code, me.Error(), details)
	return WrapExitError(exitCodeForKind(me.Kind), code, err)
}

// reportCommandError writes a command-level error and returns it with exit code 2.
func reportCommandError(f *OutputFormatter, code, message string) error {
	_ = f.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
