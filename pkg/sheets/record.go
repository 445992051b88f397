package sheets

import "github.com/spf13/cast"

// Record is one output row: named values in insertion order.
type Record struct {
	Fields []string
	Values map[string]any
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{Values: make(map[string]any)}
}

// Set assigns field, appending it to the field order on first use.
func (r *Record) Set(field string, v any) {
	if r.Values == nil {
		r.Values = make(map[string]any)
	}
	if _, ok := r.Values[field]; !ok {
		r.Fields = append(r.Fields, field)
	}
	r.Values[field] = v
}

// Get returns the value of field.
func (r *Record) Get(field string) (any, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Strings renders the values in field order.
func (r *Record) Strings() []string {
	out := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		out[i] = FormatValue(r.Values[f])
	}
	return out
}

// FormatValue coerces a cell to the string written to the sheet. Floats
// carry no trailing zeros; nil is blank.
func FormatValue(v any) string {
	return cast.ToString(v)
}
