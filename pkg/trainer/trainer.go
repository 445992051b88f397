// Package trainer fits the price pipeline on a historical survey CSV and
// writes the artifact the predictor consumes.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"carprice/pkg/columns"
	"carprice/pkg/config"
	"carprice/pkg/data"
	"carprice/pkg/loader"
	"carprice/pkg/model"
	"carprice/pkg/pipeline"
	"carprice/pkg/telemetry"
)

// amountRegexp captures the first number in a price cell, thousands separators included.
var amountRegexp = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// priceSuffixes may follow the amount of a price cell. Anything else after
// the number (a unit such as "lakhs" or "M") makes the cell unusable.
var priceSuffixes = map[string]bool{
	"":       true,
	"/=":     true,
	"/-":     true,
	"=":      true,
	"rs":     true,
	"lkr":    true,
	"rupees": true,
}

// Report summarizes a training run.
type Report struct {
	Target      string
	Rows        int
	DroppedRows int
	// UnparsedPrices counts price cells that had a value which could not
	// be read as a plain amount. They are among the dropped rows.
	UnparsedPrices int
	Schema         pipeline.Schema
	Evaluation     *model.Evaluation
	ModelPath      string
}

// Trainer runs the training stage.
type Trainer struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *telemetry.Metrics
}

// New returns a Trainer. metrics may be nil.
func New(cfg *config.Config, log *slog.Logger, metrics *telemetry.Metrics) *Trainer {
	if metrics == nil {
		metrics = telemetry.New()
	}
	return &Trainer{cfg: cfg, log: log, metrics: metrics}
}

// Run reads the source CSV, fits the pipeline and saves it to cfg.ModelPath.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	defer func() {
		t.metrics.RunDuration.WithLabelValues("train").Observe(time.Since(start).Seconds())
	}()

	report, err := t.run(ctx)
	if err != nil {
		t.metrics.RunFailures.WithLabelValues("train").Inc()
		return nil, err
	}
	return report, nil
}

func (t *Trainer) run(ctx context.Context) (*Report, error) {
	frame, err := data.ReadCSV(t.cfg.SourceCSV)
	if err != nil {
		return nil, err
	}
	t.log.Info("loaded training data", "path", t.cfg.SourceCSV, "rows", frame.Len(), "columns", len(frame.Columns))

	target, err := columns.ResolveTarget(frame.Columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.cfg.SourceCSV, err)
	}
	if target != columns.Target {
		t.log.Info("using alternate target column", "column", target)
	}

	y, keep, unparsed := parseTargets(frame.Column(target))
	if len(unparsed) > 0 {
		t.log.Warn("ignoring price cells that are not plain amounts",
			"cells", len(unparsed), "example", unparsed[0])
	}
	if dropped := frame.Len() - len(keep); dropped > 0 {
		t.log.Warn("dropping rows without a usable price", "rows", dropped)
	}
	if len(keep) == 0 {
		return nil, errors.New("trainer: no rows with a usable price")
	}

	var featureCols []string
	for _, c := range columns.FeatureColumns(frame.Columns) {
		if c != target {
			featureCols = append(featureCols, c)
		}
	}
	all, err := frame.Select(featureCols)
	if err != nil {
		return nil, err
	}
	// Column types come from every row of the file, priced or not, so that
	// a value seen in any row is encodable whatever subset gets fitted.
	schema := pipeline.InferSchema(all)
	features := all.Take(keep)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var eval *model.Evaluation
	var fitted *pipeline.Pipeline
	if t.cfg.Evaluate && features.Len() >= 2 {
		fitted, eval, err = t.evaluate(features, y, schema)
		if err != nil {
			return nil, err
		}
	} else if t.cfg.Evaluate {
		t.log.Warn("too few rows for a held-out split, skipping evaluation", "rows", features.Len())
	}

	if fitted == nil || t.cfg.Refit {
		fitted, err = t.fit(features, y, schema)
		if err != nil {
			return nil, err
		}
	}
	fitted.Target = target
	fitted.Evaluation = eval

	if err := fitted.Save(t.cfg.ModelPath); err != nil {
		return nil, err
	}
	t.metrics.TrainRows.Set(float64(fitted.TrainRows))
	t.log.Info("trained model saved",
		"path", t.cfg.ModelPath,
		"regressor", fitted.Kind,
		"numeric", len(fitted.Preprocessor.Schema.Numeric),
		"categorical", len(fitted.Preprocessor.Schema.Categorical),
		"rows", fitted.TrainRows)

	return &Report{
		Target:         target,
		Rows:           fitted.TrainRows,
		DroppedRows:    frame.Len() - len(keep),
		UnparsedPrices: len(unparsed),
		Schema:         fitted.Preprocessor.Schema,
		Evaluation:     eval,
		ModelPath:      t.cfg.ModelPath,
	}, nil
}

// evaluate fits on a seeded split and scores the held-out rows.
func (t *Trainer) evaluate(features *data.Frame, y []float64, schema pipeline.Schema) (*pipeline.Pipeline, *model.Evaluation, error) {
	train, test := loader.TrainTestSplit(features.Len(), t.cfg.TestRatio, t.cfg.Seed)
	p, err := t.fit(features.Take(train), loader.Gather(y, train), schema)
	if err != nil {
		return nil, nil, err
	}
	preds, err := p.Predict(features.Take(test))
	if err != nil {
		return nil, nil, err
	}
	eval := model.Evaluate(loader.Gather(y, test), preds)

	t.metrics.EvalMAE.Set(eval.MAE)
	t.metrics.EvalRMSE.Set(eval.RMSE)
	t.metrics.EvalR2.Set(eval.R2)
	t.log.Info("held-out evaluation",
		"test_rows", eval.N,
		"mae", round2(eval.MAE),
		"rmse", round2(eval.RMSE),
		"r2", strconv.FormatFloat(eval.R2, 'f', 4, 64))
	return p, &eval, nil
}

func (t *Trainer) fit(features *data.Frame, y []float64, schema pipeline.Schema) (*pipeline.Pipeline, error) {
	reg, err := model.NewRegressor(t.cfg.Regressor, model.Params{
		Trees:     t.cfg.Trees,
		MaxDepth:  t.cfg.MaxDepth,
		Seed:      t.cfg.Seed,
		Neighbors: t.cfg.Neighbors,
	})
	if err != nil {
		return nil, err
	}
	p := pipeline.New(t.cfg.Regressor, reg)
	if err := p.Fit(features, y, schema); err != nil {
		return nil, fmt.Errorf("trainer: fit: %w", err)
	}
	return p, nil
}

// parseTargets parses price cells, returning the values, the positions of
// the rows that had one and the non-missing cells that could not be read.
func parseTargets(cells []string) ([]float64, []int, []string) {
	var y []float64
	var keep []int
	var unparsed []string
	for i, c := range cells {
		v, ok := ParsePrice(c)
		switch {
		case ok:
			y = append(y, v)
			keep = append(keep, i)
		case !data.IsMissing(c):
			unparsed = append(unparsed, c)
		}
	}
	return y, keep, unparsed
}

// ParsePrice reads a price cell such as "1500000", "1,500,000",
// "Rs. 2,450,000.00" or "1,500,000/=". Missing cells and amounts followed by
// a unit ("15 lakhs", "1.5M") are rejected.
func ParsePrice(raw string) (float64, bool) {
	if data.IsMissing(raw) {
		return 0, false
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		return v, true
	}
	loc := amountRegexp.FindStringIndex(raw)
	if loc == nil {
		return 0, false
	}
	suffix := strings.ToLower(strings.TrimSpace(raw[loc[1]:]))
	suffix = strings.TrimSpace(strings.TrimSuffix(suffix, "."))
	if !priceSuffixes[suffix] {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw[loc[0]:loc[1]], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}
