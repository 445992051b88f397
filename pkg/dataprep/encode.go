package dataprep

import "sort"

// OneHotEncoder one-hot encodes categorical columns. Categories are sorted per
// column; a value not seen at fit time encodes to an all-zero block.
type OneHotEncoder struct {
	Categories [][]string

	lookup []map[string]int
}

func NewOneHotEncoder() *OneHotEncoder { return &OneHotEncoder{} }

// Fit collects the categories of each column of X.
func (e *OneHotEncoder) Fit(X [][]string) error {
	if len(X) == 0 {
		return nil
	}
	c := len(X[0])
	e.Categories = make([][]string, c)
	for j := 0; j < c; j++ {
		seen := map[string]struct{}{}
		for i := range X {
			seen[X[i][j]] = struct{}{}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		e.Categories[j] = cats
	}
	e.lookup = nil
	return nil
}

// Width is the number of output features.
func (e *OneHotEncoder) Width() int {
	w := 0
	for _, cats := range e.Categories {
		w += len(cats)
	}
	return w
}

// FeatureNames returns "column=value" names for the encoded features.
func (e *OneHotEncoder) FeatureNames(columns []string) []string {
	names := make([]string, 0, e.Width())
	for j, cats := range e.Categories {
		for _, v := range cats {
			names = append(names, columns[j]+"="+v)
		}
	}
	return names
}

// Transform encodes X.
func (e *OneHotEncoder) Transform(X [][]string) [][]float64 {
	e.buildLookup()
	width := e.Width()
	out := make([][]float64, len(X))
	for i, row := range X {
		vec := make([]float64, width)
		offset := 0
		for j, cats := range e.Categories {
			if k, ok := e.lookup[j][row[j]]; ok {
				vec[offset+k] = 1
			}
			offset += len(cats)
		}
		out[i] = vec
	}
	return out
}

func (e *OneHotEncoder) FitTransform(X [][]string) ([][]float64, error) {
	if err := e.Fit(X); err != nil {
		return nil, err
	}
	return e.Transform(X), nil
}

// buildLookup is lazy so a gob-decoded encoder works without a refit.
func (e *OneHotEncoder) buildLookup() {
	if len(e.lookup) == len(e.Categories) {
		return
	}
	e.lookup = make([]map[string]int, len(e.Categories))
	for j, cats := range e.Categories {
		m := make(map[string]int, len(cats))
		for k, v := range cats {
			m[v] = k
		}
		e.lookup[j] = m
	}
}
