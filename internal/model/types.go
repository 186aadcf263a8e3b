package model

// Field describes the validation rules of one named field.
type Field struct {
	Name        string `json:"name" yaml:"name"`
	Multivalued bool   `json:"multivalued" yaml:"multivalued"`
	Required    bool   `json:"required" yaml:"required"`
}

// Schema maps field names to their Field rules.
// Declaration order is kept for display; lookups are by name.
type Schema struct {
	fields map[string]Field
	order  []string
}

// NewSchema builds a Schema from fields in declaration order.
// When a name repeats, the last declaration wins but keeps the position
// of the first one.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if _, ok := s.fields[f.Name]; !ok {
			s.order = append(s.order, f.Name)
		}
		s.fields[f.Name] = f
	}
	return s
}

// Len returns the number of declared fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Lookup returns the Field declared under name.
func (s *Schema) Lookup(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	f, ok := s.fields[name]
	return f, ok
}

// Names returns the declared field names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.order))
	for i, name := range s.order {
		out[i] = s.fields[name]
	}
	return out
}

// RequiredFields returns the names of required fields in declaration order.
// The result is empty when no field is required.
func (s *Schema) RequiredFields() []string {
	var out []string
	for _, f := range s.Fields() {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Column is one resolved header cell.
type Column struct {
	Name  string
	Index int
}

// HeaderMap maps header names to zero-based column indexes.
type HeaderMap struct {
	columns []Column
	index   map[string]int
}

// NewHeaderMap builds a HeaderMap from columns in header order.
// Callers are responsible for rejecting duplicates beforehand.
func NewHeaderMap(columns []Column) *HeaderMap {
	h := &HeaderMap{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(h.columns, columns)
	for _, c := range columns {
		h.index[c.Name] = c.Index
	}
	return h
}

// Len returns the number of mapped columns.
func (h *HeaderMap) Len() int {
	if h == nil {
		return 0
	}
	return len(h.columns)
}

// Index returns the column index of name.
func (h *HeaderMap) Index(name string) (int, bool) {
	if h == nil {
		return 0, false
	}
	i, ok := h.index[name]
	return i, ok
}

// Columns returns the mapped columns in header order.
func (h *HeaderMap) Columns() []Column {
	if h == nil {
		return nil
	}
	out := make([]Column, len(h.columns))
	copy(out, h.columns)
	return out
}

// Names returns the mapped header names in header order.
func (h *HeaderMap) Names() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.columns))
	for i, c := range h.columns {
		out[i] = c.Name
	}
	return out
}

// FieldMap binds every header name to its Field rules.
type FieldMap map[string]Field
