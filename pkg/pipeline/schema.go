package pipeline

import "carprice/pkg/data"

// Schema records the feature columns seen at fit time, split by dtype.
type Schema struct {
	Numeric     []string
	Categorical []string
}

// InferSchema types every column of f: numeric when all present values parse
// as numbers, categorical otherwise. Numeric-looking codes stay numeric.
func InferSchema(f *data.Frame) Schema {
	return Schema{Numeric: f.NumericColumns(), Categorical: f.CategoricalColumns()}
}

// Columns returns all feature columns, numeric first.
func (s Schema) Columns() []string {
	out := make([]string, 0, len(s.Numeric)+len(s.Categorical))
	out = append(out, s.Numeric...)
	return append(out, s.Categorical...)
}
