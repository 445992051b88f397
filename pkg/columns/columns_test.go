package columns

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name string
		cols []string
		want string
	}{
		{"exact", []string{"Make", "Selling Price", "price"}, "price"},
		{"alternate", []string{"Make", "What was the selling or buying price (LKR) ?"}, "What was the selling or buying price (LKR) ?"},
		{"substring", []string{"Make", "Year", "Asking Price"}, "Asking Price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTarget(tt.cols)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTargetMissing(t *testing.T) {
	_, err := ResolveTarget([]string{"Make", "Year", "Mileage"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTargetColumn))
}

func TestFeatureColumns(t *testing.T) {
	cols := []string{"Timestamp", "Make", "Year", "price", "IsPredicted", "Fuel Type", "Date of purchase"}
	assert.Equal(t, []string{"Make", "Year", "Fuel Type"}, FeatureColumns(cols))
}

func TestIsTimeLike(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Timestamp", true},
		{"Time of sale", true},
		{"Date", true},
		{"Date of purchase", true},
		{"purchase_date", true},
		{"Service dates", true},
		{"Updated mileage", false},
		{"Mandated inspection", false},
		{"Make", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTimeLike(tt.name), tt.name)
	}
}

func TestFeatureColumnsKeepsWordsContainingDate(t *testing.T) {
	cols := []string{"Make", "Updated mileage", "Date of purchase", "price"}
	assert.Equal(t, []string{"Make", "Updated mileage"}, FeatureColumns(cols))
}

func TestIsPredictedFlag(t *testing.T) {
	assert.True(t, IsPredictedFlag("IsPredicted"))
	assert.True(t, IsPredictedFlag(" is predicted "))
	assert.False(t, IsPredictedFlag("Predicted Price"))
}

func TestMatchHeader(t *testing.T) {
	fields := []string{"Make", "Year", PredictedPrice, PredictedFlag, Timestamp}
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Make", "Make", true},
		{"  make ", "Make", true},
		{"predicted price", PredictedPrice, true},
		{"Price (LKR)", PredictedPrice, true},
		{"Date", Timestamp, true},
		{"Submission time", Timestamp, true},
		{"Colour", "", false},
	}
	for _, tt := range tests {
		got, ok := MatchHeader(tt.header, fields)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestMatchHeaderFallbackNeedsField(t *testing.T) {
	_, ok := MatchHeader("Price", []string{"Make"})
	assert.False(t, ok)
}
