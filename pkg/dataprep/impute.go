package dataprep

import (
	"math"

	"carprice/pkg/data"
	"carprice/pkg/stats"
)

// ---------- Numeric imputation ----------

// MedianImputer replaces NaN entries of each numeric column with the
// column median seen at fit time. A column with no values imputes 0.
type MedianImputer struct {
	Medians []float64
}

func NewMedianImputer() *MedianImputer { return &MedianImputer{} }

// Fit learns one median per column of X (NaN marks a missing value).
func (m *MedianImputer) Fit(X [][]float64) error {
	if len(X) == 0 {
		return nil
	}
	c := len(X[0])
	m.Medians = make([]float64, c)
	col := make([]float64, len(X))
	for j := 0; j < c; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		present := stats.DropNaN(col)
		if len(present) > 0 {
			m.Medians[j] = stats.Median(present)
		}
	}
	return nil
}

// Transform returns a copy of X with NaN entries filled.
func (m *MedianImputer) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		r := make([]float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) && j < len(m.Medians) {
				v = m.Medians[j]
			}
			r[j] = v
		}
		out[i] = r
	}
	return out
}

// FitTransform fits on X and returns X with its gaps filled.
func (m *MedianImputer) FitTransform(X [][]float64) ([][]float64, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X), nil
}

// ---------- Categorical imputation ----------

// ModeImputer replaces missing categorical cells with the most frequent
// value of the column seen at fit time.
type ModeImputer struct {
	Modes []string
}

func NewModeImputer() *ModeImputer { return &ModeImputer{} }

// Fit learns one mode per column of X.
func (m *ModeImputer) Fit(X [][]string) error {
	if len(X) == 0 {
		return nil
	}
	c := len(X[0])
	m.Modes = make([]string, c)
	for j := 0; j < c; j++ {
		present := make([]string, 0, len(X))
		for i := range X {
			if !data.IsMissing(X[i][j]) {
				present = append(present, X[i][j])
			}
		}
		m.Modes[j] = stats.ModeString(present)
	}
	return nil
}

// Transform returns a copy of X with missing cells filled.
func (m *ModeImputer) Transform(X [][]string) [][]string {
	out := make([][]string, len(X))
	for i, row := range X {
		r := make([]string, len(row))
		for j, v := range row {
			if data.IsMissing(v) && j < len(m.Modes) {
				v = m.Modes[j]
			}
			r[j] = v
		}
		out[i] = r
	}
	return out
}

func (m *ModeImputer) FitTransform(X [][]string) ([][]string, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X), nil
}
