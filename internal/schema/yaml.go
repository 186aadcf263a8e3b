package schema

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/csv2ldj/internal/model"
)

// document is the shape of YAML and CUE schema files.
type document struct {
	Fields []model.Field `yaml:"fields" json:"fields"`
}

// ParseYAML reads a YAML schema document:
//
//	fields:
//	  - name: id
//	    required: true
//	  - name: tags
//	    multivalued: true
//
// Unknown keys are rejected.
func ParseYAML(r io.Reader, name string) (*model.Schema, error) {
	var doc document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, model.NewEmptySchemaError(name)
		}
		return nil, model.NewSchemaParseError(name, yamlErrorLine(err), fmt.Sprintf("failed to parse YAML: %v", err))
	}

	for i, f := range doc.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, model.NewSchemaParseError(name, 0, fmt.Sprintf("fields[%d]: name is required", i))
		}
	}

	return build(name, doc.Fields)
}

// yamlErrorLine extracts the first line number from a yaml.TypeError.
func yamlErrorLine(err error) int {
	var te *yaml.TypeError
	if !errors.As(err, &te) || len(te.Errors) == 0 {
		return 0
	}
	var line int
	if _, scanErr := fmt.Sscanf(te.Errors[0], "line %d:", &line); scanErr != nil {
		return 0
	}
	return line
}
