package loader

import "math/rand"

// TrainTestSplit shuffles row positions 0..n-1 with a seeded source and
// splits them by ratio. The test part holds floor(n*testRatio) rows, but at
// least one row when n > 1 and testRatio > 0, and never all rows.
func TrainTestSplit(n int, testRatio float64, seed int64) (train, test []int) {
	indices := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	if nTest == 0 && testRatio > 0 && n > 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 0 {
		nTest = 0
	}
	return indices[nTest:], indices[:nTest]
}

// Gather returns the elements of xs at the given positions.
func Gather[T any](xs []T, positions []int) []T {
	out := make([]T, len(positions))
	for i, p := range positions {
		out[i] = xs[p]
	}
	return out
}
