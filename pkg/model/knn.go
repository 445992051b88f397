package model

import (
	"errors"
	"runtime"
	"sort"
	"sync"
)

// KNNRegressor predicts the mean target of the K nearest training rows,
// by squared Euclidean distance. Ties in distance go to the earlier row.
type KNNRegressor struct {
	K int
	X [][]float64
	Y []float64
}

// NewKNNRegressor creates an unfitted model using k neighbours.
func NewKNNRegressor(k int) *KNNRegressor {
	return &KNNRegressor{K: k}
}

// Fit stores the training rows.
func (m *KNNRegressor) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New("knn: empty X")
	}
	if len(X) != len(y) {
		return errors.New("knn: X and y length mismatch")
	}
	if m.K < 1 {
		return errors.New("knn: need at least one neighbour")
	}
	m.X = X
	m.Y = y
	return nil
}

// Predict scores rows of X in parallel, one chunk per CPU.
func (m *KNNRegressor) Predict(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}

	out := make([]float64, len(X))
	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (len(X) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, len(X))
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				out[i] = m.predictSingle(X[i])
			}
		}(start, end)
	}

	wg.Wait()
	return out
}

func (m *KNNRegressor) predictSingle(xi []float64) float64 {
	if len(m.X) == 0 {
		return 0
	}
	type pair struct {
		d float64
		v float64
	}

	// nbrs stays sorted by distance and holds at most K entries
	nbrs := make([]pair, 0, m.K+1)
	for j, xj := range m.X {
		d := euclidSquared(xi, xj)
		if len(nbrs) == m.K && d >= nbrs[len(nbrs)-1].d {
			continue
		}
		pos := sort.Search(len(nbrs), func(a int) bool { return nbrs[a].d > d })
		nbrs = append(nbrs, pair{})
		copy(nbrs[pos+1:], nbrs[pos:])
		nbrs[pos] = pair{d: d, v: m.Y[j]}
		if len(nbrs) > m.K {
			nbrs = nbrs[:m.K]
		}
	}

	sum := 0.0
	for _, p := range nbrs {
		sum += p.v
	}
	return sum / float64(len(nbrs))
}

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
