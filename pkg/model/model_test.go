package model

import (
	"bytes"
	"encoding/gob"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearData(n int, seed int64) ([][]float64, []float64) {
	r := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		a, b := r.Float64()*10, r.Float64()*5
		X[i] = []float64{a, b}
		y[i] = 3*a - 2*b + 7
	}
	return X, y
}

func TestLinearRegressionExactFit(t *testing.T) {
	X, y := linearData(50, 1)
	m := NewLinearRegression()
	require.NoError(t, m.Fit(X, y))

	assert.InDelta(t, 3.0, m.Coef[0], 1e-8)
	assert.InDelta(t, -2.0, m.Coef[1], 1e-8)
	assert.InDelta(t, 7.0, m.Intercept, 1e-8)
	assert.InDelta(t, 0.0, RMSE(y, m.Predict(X)), 1e-8)
}

func TestLinearRegressionCollinear(t *testing.T) {
	// a full one-hot block is collinear with the intercept
	X := [][]float64{{1, 0}, {0, 1}, {1, 0}, {0, 1}}
	y := []float64{10, 20, 10, 20}
	m := NewLinearRegression()
	require.NoError(t, m.Fit(X, y))
	assert.InDeltaSlice(t, y, m.Predict(X), 1e-8)
}

func TestLinearRegressionConstantFeatures(t *testing.T) {
	X := [][]float64{{1}, {1}, {1}}
	m := NewLinearRegression()
	require.NoError(t, m.Fit(X, []float64{1, 2, 6}))
	assert.InDelta(t, 3.0, m.Predict([][]float64{{5}})[0], 1e-12)
}

func TestLinearRegressionErrors(t *testing.T) {
	m := NewLinearRegression()
	assert.Error(t, m.Fit(nil, nil))
	assert.Error(t, m.Fit([][]float64{{1}}, []float64{1, 2}))
	assert.Error(t, m.Fit([][]float64{{1}, {1, 2}}, []float64{1, 2}))
}

func TestDecisionTreeStepFunction(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}, {10}, {11}, {12}}
	y := []float64{5, 5, 5, 50, 50, 50}
	tree := NewDecisionTreeRegressor()
	require.NoError(t, tree.Fit(X, y))

	assert.False(t, tree.Root.Leaf)
	assert.InDelta(t, 6.5, tree.Root.Threshold, 1e-12)
	assert.Equal(t, []float64{5, 50}, tree.Predict([][]float64{{0}, {100}}))
}

func TestDecisionTreeMaxDepth(t *testing.T) {
	X, y := linearData(40, 2)
	tree := NewDecisionTreeRegressor(WithMaxDepth(1))
	require.NoError(t, tree.Fit(X, y))
	require.False(t, tree.Root.Leaf)
	assert.True(t, tree.Root.Left.Leaf)
	assert.True(t, tree.Root.Right.Leaf)
}

func TestRandomForestDeterministic(t *testing.T) {
	X, y := linearData(60, 3)
	a := NewRandomForestRegressor(WithNEstimators(15), WithForestSeed(9))
	b := NewRandomForestRegressor(WithNEstimators(15), WithForestSeed(9))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.Predict(X), b.Predict(X))
	assert.Less(t, RMSE(y, a.Predict(X)), 5.0)
}

func TestNewRegressorForestMaxDepth(t *testing.T) {
	X, y := linearData(40, 2)
	reg, err := NewRegressor(KindForest, Params{Trees: 4, MaxDepth: 1, Seed: 3})
	require.NoError(t, err)
	rf := reg.(*RandomForestRegressor)
	assert.Equal(t, 1, rf.MaxDepth)
	assert.Equal(t, int64(3), rf.RandomState)

	require.NoError(t, rf.Fit(X, y))
	for _, tree := range rf.Trees {
		if tree.Root.Leaf {
			continue
		}
		assert.True(t, tree.Root.Left.Leaf)
		assert.True(t, tree.Root.Right.Leaf)
	}
}

func TestRandomForestErrors(t *testing.T) {
	assert.Error(t, NewRandomForestRegressor().Fit(nil, nil))
	assert.Error(t, NewRandomForestRegressor(WithNEstimators(0)).Fit([][]float64{{1}}, []float64{1}))
}

func TestRegressorGobRoundTrip(t *testing.T) {
	X, y := linearData(30, 4)
	for _, kind := range []string{KindLinear, KindForest, KindKNN} {
		reg, err := NewRegressor(kind, Params{Trees: 5, Neighbors: 3})
		require.NoError(t, err)
		require.NoError(t, reg.Fit(X, y))

		var buf bytes.Buffer
		require.NoError(t, gob.NewEncoder(&buf).Encode(&reg))
		var back Regressor
		require.NoError(t, gob.NewDecoder(&buf).Decode(&back))
		assert.Equal(t, reg.Predict(X), back.Predict(X), kind)
	}
}

func TestNewRegressorUnknown(t *testing.T) {
	_, err := NewRegressor("svm", Params{})
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{1, 2, 3, 6}

	assert.InDelta(t, 1.0, MSE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 0.5, MAE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 1.0, RMSE(yTrue, yPred), 1e-12)
	assert.InDelta(t, 1-4.0/5.0, R2(yTrue, yPred), 1e-12)

	ev := Evaluate(yTrue, yPred)
	assert.Equal(t, 4, ev.N)
	assert.InDelta(t, 0.5, ev.MAE, 1e-12)

	assert.Equal(t, 0.0, R2([]float64{2, 2}, []float64{1, 3}))
	assert.False(t, math.IsNaN(MAE(nil, nil)))
}

func TestKNNRegressor(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {10}, {11}}
	y := []float64{1, 2, 3, 100, 200}
	m := NewKNNRegressor(2)
	require.NoError(t, m.Fit(X, y))

	assert.Equal(t, []float64{1.5, 150}, m.Predict([][]float64{{0.2}, {10.6}}))
	// fewer rows than K averages them all
	small := NewKNNRegressor(10)
	require.NoError(t, small.Fit(X, y))
	assert.InDelta(t, 61.2, small.Predict([][]float64{{5}})[0], 1e-12)

	assert.Error(t, NewKNNRegressor(0).Fit(X, y))
	assert.Error(t, NewKNNRegressor(1).Fit(X, y[:2]))
}
