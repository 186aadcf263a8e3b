package schema

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/csv2ldj/internal/csvscan"
	"github.com/roach88/csv2ldj/internal/model"
)

// Format selects a schema parser.
type Format string

const (
	FormatAuto Format = "auto"
	FormatCSV  Format = "csv"
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// ValidFormats lists the accepted Format values.
var ValidFormats = []Format{FormatAuto, FormatCSV, FormatYAML, FormatCUE}

const (
	flagTrue        = "true"
	flagFalse       = "false"
	flagMultivalued = "multivalued"
	flagRequired    = "required"
)

// DetectFormat picks a Format from the file extension.
// Unknown extensions use the canonical CSV format.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".cue":
		return FormatCUE
	default:
		return FormatCSV
	}
}

// Load reads the schema at path, detecting its format from the extension.
func Load(path string) (*model.Schema, error) {
	return LoadFormat(path, FormatAuto)
}

// LoadFormat reads the schema at path in the given format.
//
// Returns a SchemaNotFound error if the file cannot be read, SchemaParse if
// an entry is malformed, and EmptySchema if no field is declared.
func LoadFormat(path string, format Format) (*model.Schema, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewSchemaNotFoundError(path, err)
	}

	var s *model.Schema
	switch format {
	case FormatCSV:
		s, err = Parse(bytes.NewReader(data), path)
	case FormatYAML:
		s, err = ParseYAML(bytes.NewReader(data), path)
	case FormatCUE:
		s, err = ParseCUE(data, path)
	default:
		return nil, model.NewSchemaParseError(path, 0, fmt.Sprintf("unknown schema format %q", format))
	}
	if err != nil {
		return nil, err
	}

	slog.Info("parsed schema", "path", path, "format", string(format), "fields", s.Len())
	return s, nil
}

// Parse reads the canonical comma separated format from r.
// name identifies the source in error messages.
func Parse(r io.Reader, name string) (*model.Schema, error) {
	cr := csvscan.NewDialectReader(r, csvscan.Plain)

	var fields []model.Field
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, model.NewSchemaParseError(name, cr.Line(), err.Error())
		}

		field, err := parseRecord(name, cr.Line(), record)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	return build(name, fields)
}

func parseRecord(name string, line int, record []string) (model.Field, error) {
	field := model.Field{Name: record[0]}
	if strings.TrimSpace(field.Name) == "" {
		return model.Field{}, model.NewSchemaParseError(name, line, "field name is required")
	}

	var err error
	if len(record) >= 2 {
		if field.Multivalued, err = parseFlag(name, line, field.Name, flagMultivalued, record[1]); err != nil {
			return model.Field{}, err
		}
	}
	if len(record) >= 3 {
		if field.Required, err = parseFlag(name, line, field.Name, flagRequired, record[2]); err != nil {
			return model.Field{}, err
		}
	}
	return field, nil
}

// parseFlag accepts exactly "true" or "false"; blank means false.
func parseFlag(name string, line int, field, flag, value string) (bool, error) {
	switch {
	case strings.TrimSpace(value) == "":
		return false, nil
	case value == flagTrue:
		return true, nil
	case value == flagFalse:
		return false, nil
	}
	return false, model.NewFlagError(name, line, field, flag, value)
}

// build validates the collected fields and materializes the schema.
func build(name string, fields []model.Field) (*model.Schema, error) {
	if len(fields) == 0 {
		return nil, model.NewEmptySchemaError(name)
	}
	return model.NewSchema(fields...), nil
}
