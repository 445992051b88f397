package pipeline

import (
	"errors"
	"fmt"
	"time"

	"carprice/pkg/data"
	"carprice/pkg/model"
)

// Pipeline chains the column preprocessing and a regressor so raw feature
// rows go in and prices come out.
type Pipeline struct {
	Preprocessor *ColumnTransformer
	Regressor    model.Regressor

	// Metadata, informational only.
	Target     string
	Kind       string
	TrainedAt  time.Time
	TrainRows  int
	Evaluation *model.Evaluation
}

// New returns an unfitted pipeline around reg.
func New(kind string, reg model.Regressor) *Pipeline {
	return &Pipeline{Preprocessor: NewColumnTransformer(), Regressor: reg, Kind: kind}
}

// Fit fits the preprocessing on f under schema, then the regressor on the
// transformed rows.
func (p *Pipeline) Fit(f *data.Frame, y []float64, schema Schema) error {
	if f.Len() == 0 {
		return errors.New("pipeline: no rows to fit")
	}
	if f.Len() != len(y) {
		return fmt.Errorf("pipeline: %d rows but %d targets", f.Len(), len(y))
	}
	X, err := p.Preprocessor.FitTransform(f, schema)
	if err != nil {
		return err
	}
	if err := p.Regressor.Fit(X, y); err != nil {
		return err
	}
	p.TrainRows = f.Len()
	p.TrainedAt = time.Now().UTC()
	return nil
}

// Predict scores the rows of f.
func (p *Pipeline) Predict(f *data.Frame) ([]float64, error) {
	if p.Preprocessor == nil || p.Regressor == nil {
		return nil, errors.New("pipeline: not fitted")
	}
	X, err := p.Preprocessor.Transform(f)
	if err != nil {
		return nil, err
	}
	return p.Regressor.Predict(X), nil
}

// Features returns the raw feature columns the pipeline expects.
func (p *Pipeline) Features() []string {
	return p.Preprocessor.Schema.Columns()
}
