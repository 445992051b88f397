package model

import (
	"errors"
	"math/rand"
	"sort"
)

// ---------------------------
// Types & options
// ---------------------------

// DecisionTreeRegressor is a CART-style regression tree using the
// squared-error criterion.
type DecisionTreeRegressor struct {
	// Hyperparameters / options
	MaxDepth            int     // maximum depth (root depth = 0). 0 => no limit
	MinSamplesSplit     int     // minimum samples to attempt a split
	MinSamplesLeaf      int     // minimum samples required in each leaf
	MaxFeatures         int     // 0 => all features, >0 => features sampled per split
	MinImpurityDecrease float64 // minimal weighted impurity decrease to accept a split
	RandomState         int64   // seed for feature subsampling

	Root *TreeNode
}

// TreeNode is a node of a fitted tree. Fields are exported for gob.
type TreeNode struct {
	Leaf      bool
	Feature   int
	Threshold float64 // x <= Threshold => Left
	Value     float64 // mean target of the samples reaching the node
	N         int
	Left      *TreeNode
	Right     *TreeNode
}

// Option functional config
type Option func(*DecisionTreeRegressor)

func WithMaxDepth(d int) Option { return func(t *DecisionTreeRegressor) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesSplit = n }
}
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeRegressor) { t.MinSamplesLeaf = n }
}
func WithMaxFeatures(k int) Option { return func(t *DecisionTreeRegressor) { t.MaxFeatures = k } }
func WithRandomState(seed int64) Option {
	return func(t *DecisionTreeRegressor) { t.RandomState = seed }
}

// NewDecisionTreeRegressor returns a regressor with sensible defaults.
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	d := &DecisionTreeRegressor{
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     0,
		RandomState:     0,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---------------------------
// Public API: Fit / FitIndices / Predict
// ---------------------------

// Fit trains the tree on every row of X.
func (t *DecisionTreeRegressor) Fit(X [][]float64, y []float64) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.FitIndices(X, y, idx)
}

// FitIndices trains the tree on the rows of X selected by idx. Indices may
// repeat, which is how bootstrap samples are passed without copying X.
func (t *DecisionTreeRegressor) FitIndices(X [][]float64, y []float64, idx []int) error {
	if len(X) == 0 || len(idx) == 0 {
		return errors.New("dtree: empty X")
	}
	if len(y) != len(X) {
		return errors.New("dtree: X and y length mismatch")
	}
	p := len(X[0])
	for i := range X {
		if len(X[i]) != p {
			return errors.New("dtree: inconsistent number of features in X rows")
		}
	}
	rnd := rand.New(rand.NewSource(t.RandomState))
	work := append([]int(nil), idx...)
	t.Root = t.buildNode(X, y, work, 0, p, rnd)
	return nil
}

// Predict returns the leaf mean reached by each row of X.
func (t *DecisionTreeRegressor) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i := range X {
		out[i] = t.predictSingle(X[i])
	}
	return out
}

// ---------------------------
// Internal builders & helpers
// ---------------------------

type splitResult struct {
	gain      float64
	feature   int
	threshold float64
	pos       int // split position in the feature-sorted index slice
}

func (t *DecisionTreeRegressor) buildNode(X [][]float64, y []float64, idx []int, depth, p int, rnd *rand.Rand) *TreeNode {
	sum, sumSq := 0.0, 0.0
	pure := true
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
		if y[i] != y[idx[0]] {
			pure = false
		}
	}
	n := float64(len(idx))
	node := &TreeNode{Leaf: true, Value: sum / n, N: len(idx)}
	parentSSE := sumSq - sum*sum/n

	if pure || len(idx) < t.MinSamplesSplit || len(idx) < 2*t.MinSamplesLeaf {
		return node
	}
	if t.MaxDepth > 0 && depth >= t.MaxDepth {
		return node
	}

	featIndices := make([]int, p)
	for j := 0; j < p; j++ {
		featIndices[j] = j
	}
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		for i := 0; i < t.MaxFeatures; i++ {
			j := i + rnd.Intn(p-i)
			featIndices[i], featIndices[j] = featIndices[j], featIndices[i]
		}
		featIndices = featIndices[:t.MaxFeatures]
		sort.Ints(featIndices)
	}

	best := splitResult{feature: -1}
	for _, f := range featIndices {
		r := t.findBestSplitForFeature(X, y, idx, f, parentSSE)
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}
	if best.feature < 0 || best.gain/n <= t.MinImpurityDecrease {
		return node
	}

	sortByFeature(X, idx, best.feature)
	left := append([]int(nil), idx[:best.pos]...)
	right := append([]int(nil), idx[best.pos:]...)

	node.Leaf = false
	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Left = t.buildNode(X, y, left, depth+1, p, rnd)
	node.Right = t.buildNode(X, y, right, depth+1, p, rnd)
	return node
}

// findBestSplitForFeature scans every threshold between distinct values of
// feature f using running sums. It reorders idx.
func (t *DecisionTreeRegressor) findBestSplitForFeature(X [][]float64, y []float64, idx []int, f int, parentSSE float64) splitResult {
	result := splitResult{feature: -1}
	sortByFeature(X, idx, f)

	total, totalSq := 0.0, 0.0
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	n := len(idx)
	minLeaf := t.MinSamplesLeaf
	if minLeaf < 1 {
		minLeaf = 1
	}

	leftSum, leftSq := 0.0, 0.0
	for s := 1; s < n; s++ {
		yi := y[idx[s-1]]
		leftSum += yi
		leftSq += yi * yi
		if s < minLeaf || n-s < minLeaf {
			continue
		}
		lo, hi := X[idx[s-1]][f], X[idx[s]][f]
		if lo == hi {
			continue
		}
		nl, nr := float64(s), float64(n-s)
		rightSum, rightSq := total-leftSum, totalSq-leftSq
		sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
		gain := parentSSE - sse
		if gain > result.gain {
			result = splitResult{gain: gain, feature: f, threshold: (lo + hi) / 2, pos: s}
		}
	}
	return result
}

// sortByFeature orders idx by X[.][f], breaking ties by row index so the
// result does not depend on the incoming order.
func sortByFeature(X [][]float64, idx []int, f int) {
	sort.Slice(idx, func(a, b int) bool {
		va, vb := X[idx[a]][f], X[idx[b]][f]
		if va != vb {
			return va < vb
		}
		return idx[a] < idx[b]
	})
}

func (t *DecisionTreeRegressor) predictSingle(x []float64) float64 {
	node := t.Root
	if node == nil {
		return 0
	}
	for !node.Leaf {
		if x[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}
