package dataprep

import (
	"errors"
	"math"
	"math/rand"
	"strconv"

	"carprice/pkg/data"
	"carprice/pkg/stats"
)

// Synthesizer derives new feature rows from historical ones: rows are drawn
// with replacement and every numeric cell gets independent Gaussian noise.
type Synthesizer struct {
	NoiseFraction float64 // noise std as a fraction of the column std
	ConstantScale float64 // noise std for constant columns
	rng           *rand.Rand
}

// SynthOption functional config for Synthesizer
type SynthOption func(*Synthesizer)

func WithNoiseFraction(f float64) SynthOption { return func(s *Synthesizer) { s.NoiseFraction = f } }
func WithConstantScale(v float64) SynthOption { return func(s *Synthesizer) { s.ConstantScale = v } }

// NewSynthesizer returns a Synthesizer seeded with seed.
func NewSynthesizer(seed int64, opts ...SynthOption) *Synthesizer {
	s := &Synthesizer{
		NoiseFraction: 0.02,
		ConstantScale: 1.0,
		rng:           rand.New(rand.NewSource(seed)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate returns n perturbed rows sampled from history. Numeric values are
// clamped to be non-negative; missing cells stay missing.
func (s *Synthesizer) Generate(history *data.Frame, n int) (*data.Frame, error) {
	if history == nil || history.Len() == 0 {
		return nil, errors.New("synth: no historical rows to sample from")
	}
	if n < 1 {
		return nil, errors.New("synth: sample count must be positive")
	}

	positions := make([]int, n)
	for i := range positions {
		positions[i] = s.rng.Intn(history.Len())
	}
	out := history.Take(positions)

	for _, col := range history.NumericColumns() {
		values, err := history.Float(col)
		if err != nil {
			return nil, err
		}
		scale := s.noiseScale(stats.DropNaN(values))
		j, _ := out.Index(col)
		for _, row := range out.Rows {
			v, _ := data.ParseFloat(row[j])
			if math.IsNaN(v) {
				continue
			}
			v = math.Max(0, v+s.rng.NormFloat64()*scale)
			row[j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return out, nil
}

func (s *Synthesizer) noiseScale(present []float64) float64 {
	std := stats.SampleStd(present)
	if math.IsNaN(std) || std == 0 {
		return s.ConstantScale
	}
	return std * s.NoiseFraction
}
