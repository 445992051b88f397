package dataprep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carprice/pkg/data"
)

func TestMedianImputer(t *testing.T) {
	nan := math.NaN()
	X := [][]float64{{1, nan}, {nan, nan}, {3, nan}, {10, nan}}

	m := NewMedianImputer()
	out, err := m.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []float64{3, 0}, m.Medians)
	assert.Equal(t, 3.0, out[1][0])
	assert.Equal(t, 0.0, out[0][1])
	assert.True(t, math.IsNaN(X[1][0]), "input is not modified")
}

func TestModeImputer(t *testing.T) {
	X := [][]string{{"Toyota"}, {""}, {"Honda"}, {"Toyota"}, {"NA"}}
	m := NewModeImputer()
	out, err := m.FitTransform(X)
	require.NoError(t, err)

	assert.Equal(t, []string{"Toyota"}, m.Modes)
	assert.Equal(t, "Toyota", out[1][0])
	assert.Equal(t, "Toyota", out[4][0])
	assert.Equal(t, "Honda", out[2][0])
}

func TestOneHotEncoder(t *testing.T) {
	X := [][]string{{"Toyota", "Petrol"}, {"Honda", "Diesel"}, {"Toyota", "Hybrid"}}
	e := NewOneHotEncoder()
	require.NoError(t, e.Fit(X))

	assert.Equal(t, 5, e.Width())
	assert.Equal(t,
		[]string{"make=Honda", "make=Toyota", "fuel=Diesel", "fuel=Hybrid", "fuel=Petrol"},
		e.FeatureNames([]string{"make", "fuel"}))

	out := e.Transform([][]string{{"Toyota", "Petrol"}, {"Nissan", "Diesel"}})
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, out[0])
	// unknown make encodes to zeros
	assert.Equal(t, []float64{0, 0, 1, 0, 0}, out[1])
}

func TestOneHotEncoderFitTransform(t *testing.T) {
	e := NewOneHotEncoder()
	out, err := e.FitTransform([][]string{{"b"}, {"a"}})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 1}, {1, 0}}, out)
}

func TestOneHotEncoderWithoutLookup(t *testing.T) {
	e := &OneHotEncoder{Categories: [][]string{{"a", "b"}}}
	assert.Equal(t, [][]float64{{0, 1}}, e.Transform([][]string{{"b"}}))
}

func history() *data.Frame {
	return data.NewFrame(
		[]string{"Make", "Year", "Mileage", "Engine"},
		[][]string{
			{"Toyota", "2015", "82000", "1500"},
			{"Honda", "2012", "120000", "1500"},
			{"Suzuki", "2019", "", "1500"},
			{"Nissan", "2010", "5", "1500"},
		},
	)
}

func TestSynthesizerGenerate(t *testing.T) {
	s := NewSynthesizer(7)
	out, err := s.Generate(history(), 25)
	require.NoError(t, err)

	require.Equal(t, 25, out.Len())
	assert.Equal(t, []string{"Make", "Year", "Mileage", "Engine"}, out.Columns)

	for _, col := range []string{"Year", "Mileage", "Engine"} {
		values, err := out.Float(col)
		require.NoError(t, err)
		for _, v := range values {
			if !math.IsNaN(v) {
				assert.GreaterOrEqual(t, v, 0.0, col)
			}
		}
	}

	makes := map[string]bool{"Toyota": true, "Honda": true, "Suzuki": true, "Nissan": true}
	for _, m := range out.Column("Make") {
		assert.True(t, makes[m], m)
	}
}

func TestSynthesizerDeterministic(t *testing.T) {
	a, err := NewSynthesizer(3).Generate(history(), 10)
	require.NoError(t, err)
	b, err := NewSynthesizer(3).Generate(history(), 10)
	require.NoError(t, err)
	assert.Equal(t, a.Rows, b.Rows)
}

func TestSynthesizerNoiseScale(t *testing.T) {
	s := NewSynthesizer(1, WithNoiseFraction(0.5), WithConstantScale(2))
	assert.Equal(t, 2.0, s.noiseScale([]float64{4, 4, 4}))
	assert.Equal(t, 2.0, s.noiseScale([]float64{4}))
	assert.InDelta(t, 0.5*math.Sqrt(2), s.noiseScale([]float64{1, 3}), 1e-12)
}

func TestSynthesizerErrors(t *testing.T) {
	s := NewSynthesizer(1)
	_, err := s.Generate(data.NewFrame([]string{"Make"}, nil), 3)
	assert.Error(t, err)
	_, err = s.Generate(history(), 0)
	assert.Error(t, err)
}
