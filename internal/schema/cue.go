package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/csv2ldj/internal/model"
)

// cueDefinition constrains CUE schema files. #Field is closed, so
// misspelled keys are rejected.
const cueDefinition = `
#Field: {
	name:        string & !=""
	multivalued: *false | bool
	required:    *false | bool
}

fields: [...#Field]
`

// ParseCUE reads a CUE schema document:
//
//	fields: [
//		{name: "id", required: true},
//		{name: "tags", multivalued: true},
//	]
func ParseCUE(data []byte, name string) (*model.Schema, error) {
	ctx := cuecontext.New()

	def := ctx.CompileString(cueDefinition, cue.Filename("csv2ldj-schema.cue"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("compile schema definition: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, cueParseError(name, err)
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueParseError(name, err)
	}

	var doc document
	if err := unified.Decode(&doc); err != nil {
		return nil, cueParseError(name, err)
	}

	return build(name, doc.Fields)
}

// cueParseError converts a CUE error into a SchemaParse error, keeping
// the line of the first reported position.
func cueParseError(name string, err error) error {
	line := 0
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		if pos := errs[0].Position(); pos.IsValid() {
			line = pos.Line()
		}
	}
	return model.NewSchemaParseError(name, line, cueerrors.Details(err, nil))
}
