package pipeline

import (
	"fmt"

	"carprice/pkg/data"
	"carprice/pkg/dataprep"
	"carprice/pkg/stats"
)

// ColumnTransformer turns a raw frame into a design matrix: the numeric
// block (median impute, standardize) followed by the categorical block
// (most-frequent impute, one-hot encode).
type ColumnTransformer struct {
	Schema Schema

	Median  *dataprep.MedianImputer
	Scaler  *stats.StandardScaler
	Mode    *dataprep.ModeImputer
	Encoder *dataprep.OneHotEncoder
}

// NewColumnTransformer returns an unfitted transformer.
func NewColumnTransformer() *ColumnTransformer {
	return &ColumnTransformer{
		Median:  dataprep.NewMedianImputer(),
		Scaler:  stats.NewStandardScaler(),
		Mode:    dataprep.NewModeImputer(),
		Encoder: dataprep.NewOneHotEncoder(),
	}
}

// fillSteps replaces steps gob left nil (an empty step decodes as absent).
func (c *ColumnTransformer) fillSteps() {
	if c.Median == nil {
		c.Median = dataprep.NewMedianImputer()
	}
	if c.Scaler == nil {
		c.Scaler = stats.NewStandardScaler()
	}
	if c.Mode == nil {
		c.Mode = dataprep.NewModeImputer()
	}
	if c.Encoder == nil {
		c.Encoder = dataprep.NewOneHotEncoder()
	}
}

// FitTransform fits every step on f under schema and returns the design
// matrix of f. The schema is decided by the caller so that a dtype never
// depends on which rows happen to reach the fit.
func (c *ColumnTransformer) FitTransform(f *data.Frame, schema Schema) ([][]float64, error) {
	c.Schema = schema
	num, cat, err := c.split(f)
	if err != nil {
		return nil, err
	}
	filled, err := c.Median.FitTransform(num)
	if err != nil {
		return nil, err
	}
	scaled, err := c.Scaler.FitTransform(filled)
	if err != nil {
		return nil, err
	}
	modes, err := c.Mode.FitTransform(cat)
	if err != nil {
		return nil, err
	}
	encoded, err := c.Encoder.FitTransform(modes)
	if err != nil {
		return nil, err
	}
	return c.assemble(scaled, encoded), nil
}

// Transform encodes f with the fitted steps. f must carry every column of
// the schema; extra columns are ignored.
func (c *ColumnTransformer) Transform(f *data.Frame) ([][]float64, error) {
	num, cat, err := c.split(f)
	if err != nil {
		return nil, err
	}
	scaled := c.Scaler.Transform(c.Median.Transform(num))
	encoded := c.Encoder.Transform(c.Mode.Transform(cat))
	return c.assemble(scaled, encoded), nil
}

// assemble joins the numeric and categorical blocks row by row.
func (c *ColumnTransformer) assemble(scaled, encoded [][]float64) [][]float64 {
	out := make([][]float64, len(scaled))
	for i := range out {
		row := make([]float64, 0, len(c.Schema.Numeric)+c.Encoder.Width())
		if len(c.Schema.Numeric) > 0 {
			row = append(row, scaled[i]...)
		}
		if len(c.Schema.Categorical) > 0 {
			row = append(row, encoded[i]...)
		}
		out[i] = row
	}
	return out
}

// FeatureNames names the columns of the design matrix.
func (c *ColumnTransformer) FeatureNames() []string {
	names := append([]string(nil), c.Schema.Numeric...)
	return append(names, c.Encoder.FeatureNames(c.Schema.Categorical)...)
}

// split extracts the numeric block as floats (NaN for missing) and the
// categorical block as raw strings.
func (c *ColumnTransformer) split(f *data.Frame) ([][]float64, [][]string, error) {
	for _, col := range c.Schema.Columns() {
		if !f.Has(col) {
			return nil, nil, fmt.Errorf("pipeline: missing feature column %q", col)
		}
	}

	num := make([][]float64, f.Len())
	for i := range num {
		num[i] = make([]float64, len(c.Schema.Numeric))
	}
	for j, col := range c.Schema.Numeric {
		values, err := f.Float(col)
		if err != nil {
			return nil, nil, fmt.Errorf("pipeline: %w", err)
		}
		for i, v := range values {
			num[i][j] = v
		}
	}

	catFrame, err := f.Select(c.Schema.Categorical)
	if err != nil {
		return nil, nil, fmt.Errorf("pipeline: %w", err)
	}
	return num, catFrame.Rows, nil
}
