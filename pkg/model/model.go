package model

import (
	"encoding/gob"
	"fmt"
)

// Regressor is a supervised model predicting a continuous target.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Regressor families accepted by NewRegressor.
const (
	KindLinear = "linear"
	KindForest = "forest"
	KindKNN    = "knn"
)

// Params holds the hyperparameters NewRegressor passes on. Zero values keep
// each model's defaults.
type Params struct {
	Trees     int
	MaxDepth  int
	Seed      int64
	Neighbors int
}

// DefaultNeighbors is the K used by a knn regressor when Params leaves it unset.
const DefaultNeighbors = 5

func init() {
	// Pipelines store their regressor behind the interface.
	gob.Register(&LinearRegression{})
	gob.Register(&RandomForestRegressor{})
	gob.Register(&DecisionTreeRegressor{})
	gob.Register(&KNNRegressor{})
}

// NewRegressor returns an unfitted regressor of the given family.
func NewRegressor(kind string, p Params) (Regressor, error) {
	switch kind {
	case KindLinear, "":
		return NewLinearRegression(), nil
	case KindForest:
		var opts []RandomForestOption
		if p.Trees > 0 {
			opts = append(opts, WithNEstimators(p.Trees))
		}
		if p.MaxDepth > 0 {
			opts = append(opts, WithForestMaxDepth(p.MaxDepth))
		}
		if p.Seed != 0 {
			opts = append(opts, WithForestSeed(p.Seed))
		}
		return NewRandomForestRegressor(opts...), nil
	case KindKNN:
		k := p.Neighbors
		if k < 1 {
			k = DefaultNeighbors
		}
		return NewKNNRegressor(k), nil
	default:
		return nil, fmt.Errorf("model: unknown regressor %q (want %q, %q or %q)", kind, KindLinear, KindForest, KindKNN)
	}
}
