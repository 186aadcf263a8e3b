package convert

import (
	"strings"

	"github.com/roach88/csv2ldj/internal/model"
)

// ResolveHeader maps the cells of a header row to their column index.
//
// Blank cells all map to the blank name "", which no schema declares, so
// ValidateHeader rejects them. A later blank cell overwrites the index of an
// earlier one unless strict is set, in which case repeated blank cells fail
// like any other duplicate. Returns EMPTY_HEADER for a row without cells and
// DUPLICATE_HEADER when a non-blank name repeats.
func ResolveHeader(header []string, strict bool) (*model.HeaderMap, error) {
	if len(header) == 0 {
		return nil, model.NewEmptyHeaderError()
	}

	seen := make(map[string]bool, len(header))
	blank := -1 // position of the blank column in columns
	columns := make([]model.Column, 0, len(header))

	for i, name := range header {
		if isBlank(name) {
			if blank < 0 {
				blank = len(columns)
				columns = append(columns, model.Column{Name: "", Index: i})
				continue
			}
			if strict {
				return nil, model.NewDuplicateHeaderError("", header)
			}
			columns[blank].Index = i
			continue
		}

		if seen[name] {
			return nil, model.NewDuplicateHeaderError(name, header)
		}
		seen[name] = true
		columns = append(columns, model.Column{Name: name, Index: i})
	}

	return model.NewHeaderMap(columns), nil
}

// ValidateHeader binds every header name to its schema Field.
// Returns INVALID_HEADERS listing every name the schema does not declare.
func ValidateHeader(header *model.HeaderMap, schema *model.Schema) (model.FieldMap, error) {
	if header.Len() == 0 {
		return nil, model.NewEmptyHeaderError()
	}

	fields := make(model.FieldMap, header.Len())
	var invalid []string
	for _, name := range header.Names() {
		f, ok := schema.Lookup(name)
		if !ok {
			invalid = append(invalid, name)
			continue
		}
		fields[name] = f
	}

	if len(invalid) > 0 {
		return nil, model.NewInvalidHeadersError(invalid)
	}
	return fields, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
