package trainer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carprice/pkg/columns"
	"carprice/pkg/config"
	"carprice/pkg/data"
	"carprice/pkg/loader"
	"carprice/pkg/logging"
	"carprice/pkg/pipeline"
)

func writeCSV(t *testing.T, dir, header string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, "responses.csv")
	content := header + "\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func surveyRows(n int) []string {
	makes := []string{"Toyota", "Honda", "Suzuki", "Nissan"}
	rows := make([]string, n)
	for i := range rows {
		year := 2008 + i%12
		price := (year-2000)*250000 + (i%4)*100000
		rows[i] = fmt.Sprintf("2024-01-%02d 10:00:00,%s,%d,%d,%d", i%28+1, makes[i%4], year, 20000+i*1500, price)
	}
	return rows
}

func testConfig(t *testing.T, src string) *config.Config {
	cfg := config.Default()
	cfg.SourceCSV = src
	cfg.ModelPath = filepath.Join(t.TempDir(), "models", "pipeline.gob")
	return cfg
}

func TestRunWithPriceColumn(t *testing.T) {
	src := writeCSV(t, t.TempDir(), "Timestamp,Make,Year,Mileage,price", surveyRows(40))
	cfg := testConfig(t, src)

	report, err := New(cfg, logging.Discard(), nil).Run(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(cfg.ModelPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, "price", report.Target)
	assert.Equal(t, 40, report.Rows)
	assert.Equal(t, []string{"Year", "Mileage"}, report.Schema.Numeric)
	assert.Equal(t, []string{"Make"}, report.Schema.Categorical)
	require.NotNil(t, report.Evaluation)
	assert.Equal(t, 8, report.Evaluation.N)

	p, err := pipeline.Load(cfg.ModelPath)
	require.NoError(t, err)
	assert.Equal(t, 40, p.TrainRows)
	assert.NotContains(t, p.Features(), "Timestamp")
}

func TestRunForestWithoutRefit(t *testing.T) {
	src := writeCSV(t, t.TempDir(), "Make,Year,Mileage,price", func() []string {
		var out []string
		for _, r := range surveyRows(30) {
			out = append(out, r[strings.Index(r, ",")+1:])
		}
		return out
	}())
	cfg := testConfig(t, src)
	cfg.Regressor = "forest"
	cfg.Trees = 10
	cfg.Refit = false

	report, err := New(cfg, logging.Discard(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, report.Rows)
}

func TestRunAlternateTargetAndDirtyPrices(t *testing.T) {
	header := "Make,Year,What was the selling or buying price (LKR) ?"
	rows := []string{
		`Toyota,2015,"4,500,000"`,
		`Honda,2012,Rs. 3900000`,
		`Suzuki,2018,`,
		`Nissan,2010,unknown`,
		`Toyota,2019,"LKR 6,100,000.00"`,
	}
	cfg := testConfig(t, writeCSV(t, t.TempDir(), header, rows))
	cfg.Evaluate = false

	report, err := New(cfg, logging.Discard(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "What was the selling or buying price (LKR) ?", report.Target)
	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, 2, report.DroppedRows)
	assert.Equal(t, 1, report.UnparsedPrices)
	assert.Nil(t, report.Evaluation)
}

// engineRows extends surveyRows with an engine capacity column; the row at
// odd gets a capacity written with its unit.
func engineRows(n, odd int) []string {
	rows := surveyRows(n)
	for i := range rows {
		engine := fmt.Sprint(1000 + (i%5)*200)
		if i == odd {
			engine = "1500cc"
		}
		parts := strings.Split(rows[i], ",")
		rows[i] = strings.Join(append(parts[:4:4], engine, parts[4]), ",")
	}
	return rows
}

func TestRunMixedTypeColumnEvaluates(t *testing.T) {
	// The "1500cc" row goes to the held-out split and to the training
	// split in turn; the column is typed from the whole file either way.
	train, test := loader.TrainTestSplit(40, 0.2, 42)
	for _, odd := range []int{test[0], train[0]} {
		src := writeCSV(t, t.TempDir(), "Timestamp,Make,Year,Mileage,Engine,price", engineRows(40, odd))
		cfg := testConfig(t, src)
		cfg.Evaluate = true
		cfg.TestRatio = 0.2
		cfg.Seed = 42

		report, err := New(cfg, logging.Discard(), nil).Run(context.Background())
		require.NoError(t, err, "odd row %d", odd)
		assert.Equal(t, []string{"Year", "Mileage"}, report.Schema.Numeric)
		assert.Equal(t, []string{"Make", "Engine"}, report.Schema.Categorical)
		require.NotNil(t, report.Evaluation)
	}
}

func TestRunSchemaIncludesUnpricedRows(t *testing.T) {
	rows := engineRows(30, 5)
	// the only non-numeric engine cell sits on a row without a price
	parts := strings.Split(rows[5], ",")
	parts[len(parts)-1] = ""
	rows[5] = strings.Join(parts, ",")
	src := writeCSV(t, t.TempDir(), "Timestamp,Make,Year,Mileage,Engine,price", rows)
	cfg := testConfig(t, src)

	report, err := New(cfg, logging.Discard(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 29, report.Rows)
	assert.Equal(t, 1, report.DroppedRows)
	assert.Equal(t, []string{"Make", "Engine"}, report.Schema.Categorical)

	p, err := pipeline.Load(cfg.ModelPath)
	require.NoError(t, err)
	preds, err := p.Predict(data.NewFrame(
		[]string{"Make", "Year", "Mileage", "Engine"},
		[][]string{{"Honda", "2015", "50000", "1500cc"}}))
	require.NoError(t, err)
	assert.Len(t, preds, 1)
}

func TestRunRejectsPricesWithUnits(t *testing.T) {
	rows := surveyRows(20)
	for _, i := range []int{3, 11} {
		parts := strings.Split(rows[i], ",")
		parts[len(parts)-1] = "15 lakhs"
		rows[i] = strings.Join(parts, ",")
	}
	src := writeCSV(t, t.TempDir(), "Timestamp,Make,Year,Mileage,price", rows)
	cfg := testConfig(t, src)
	cfg.Evaluate = false

	report, err := New(cfg, logging.Discard(), nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 18, report.Rows)
	assert.Equal(t, 2, report.DroppedRows)
	assert.Equal(t, 2, report.UnparsedPrices)
}

func TestRunMissingTarget(t *testing.T) {
	src := writeCSV(t, t.TempDir(), "Make,Year,Mileage", []string{"Toyota,2015,1000"})
	cfg := testConfig(t, src)

	_, err := New(cfg, logging.Discard(), nil).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, columns.ErrMissingTargetColumn))
	_, statErr := os.Stat(cfg.ModelPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunMissingFile(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "absent.csv"))
	_, err := New(cfg, logging.Discard(), nil).Run(context.Background())
	assert.True(t, errors.Is(err, data.ErrMissingFile))
}

func TestRunNoUsablePrices(t *testing.T) {
	src := writeCSV(t, t.TempDir(), "Make,price", []string{"Toyota,", "Honda,NA"})
	_, err := New(testConfig(t, src), logging.Discard(), nil).Run(context.Background())
	assert.ErrorContains(t, err, "no rows with a usable price")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1500000", 1500000, true},
		{" 12.5 ", 12.5, true},
		{"1,500,000", 1500000, true},
		{"Rs. 2,450,000.00", 2450000, true},
		{"Rs. 1,500,000/=", 1500000, true},
		{"1500000/-", 1500000, true},
		{"4500000 LKR", 4500000, true},
		{"15 lakhs", 0, false},
		{"1.5M", 0, false},
		{"2.3 million", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"ask me", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}
