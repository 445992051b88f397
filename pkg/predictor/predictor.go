// Package predictor scores new feature rows with a trained pipeline and
// appends them to the destination spreadsheet.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"carprice/pkg/columns"
	"carprice/pkg/config"
	"carprice/pkg/data"
	"carprice/pkg/dataprep"
	"carprice/pkg/pipeline"
	"carprice/pkg/sheets"
	"carprice/pkg/telemetry"
)

// TimestampLayout formats the generation time of a predicted row.
const TimestampLayout = "2006-01-02 15:04:05"

// PushJob is the push gateway job name of the prediction stage.
const PushJob = "carprice_predict"

// Row sources.
const (
	SourceFile      = "file"
	SourceSynthetic = "synthetic"
)

// Opener resolves the destination worksheet.
type Opener func(ctx context.Context, credentialsFile, target string) (sheets.Worksheet, error)

// Batch is the outcome of one run.
type Batch struct {
	RunID       string
	Source      string
	Rows        *data.Frame
	Predictions []float64
	Records     []*sheets.Record
	Appended    int
	Printed     bool
}

// Predictor runs the prediction stage.
type Predictor struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *telemetry.Metrics
	open    Opener
	out     io.Writer
	now     func() time.Time
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithOpener replaces the Google Sheets opener.
func WithOpener(o Opener) Option { return func(p *Predictor) { p.open = o } }

// WithOutput sets where the batch is printed when no destination is configured.
func WithOutput(w io.Writer) Option { return func(p *Predictor) { p.out = w } }

// WithClock sets the clock used for timestamps and the default noise seed.
func WithClock(now func() time.Time) Option { return func(p *Predictor) { p.now = now } }

// New returns a Predictor. metrics may be nil.
func New(cfg *config.Config, log *slog.Logger, metrics *telemetry.Metrics, opts ...Option) *Predictor {
	p := &Predictor{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		open:    openGoogle,
		out:     os.Stdout,
		now:     time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = telemetry.New()
	}
	return p
}

func openGoogle(ctx context.Context, credentialsFile, target string) (sheets.Worksheet, error) {
	return sheets.Open(ctx, credentialsFile, target)
}

// Run loads the artifact, sources rows, scores them and delivers the batch.
// The run's metrics are pushed when a push gateway is configured, so every
// scheduled tick is visible on its own.
func (p *Predictor) Run(ctx context.Context) (*Batch, error) {
	start := time.Now()
	batch := &Batch{RunID: uuid.NewString()}
	log := p.log.With("run_id", batch.RunID)

	err := p.run(ctx, log, batch)
	p.metrics.RunDuration.WithLabelValues("predict").Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.RunFailures.WithLabelValues("predict").Inc()
	}
	if perr := p.metrics.Push(p.cfg.PushgatewayURL, PushJob); perr != nil {
		log.Warn("push metrics", "error", perr)
	}
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (p *Predictor) run(ctx context.Context, log *slog.Logger, batch *Batch) error {
	target := p.cfg.Destination()
	if target == "" && p.cfg.OnMissingDestination != config.OnMissingPrint {
		return fmt.Errorf("%w: set SPREADSHEET_URL or SPREADSHEET_KEY, or ON_MISSING_DESTINATION=print",
			config.ErrMissingConfiguration)
	}

	pl, err := pipeline.Load(p.cfg.ModelPath)
	if err != nil {
		return err
	}
	log.Info("loaded model", "path", p.cfg.ModelPath, "regressor", pl.Kind, "trained_at", pl.TrainedAt)

	rows, source, err := p.sourceRows()
	if err != nil {
		return err
	}
	batch.Rows, batch.Source = rows, source
	p.metrics.RowsSourced.WithLabelValues(source).Add(float64(rows.Len()))
	log.Info("sourced rows", "source", source, "rows", rows.Len())

	preds, err := pl.Predict(rows)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	batch.Predictions = preds
	batch.Records = BuildRecords(rows, preds, p.now())
	p.metrics.RowsPredicted.Add(float64(len(preds)))

	if err := ctx.Err(); err != nil {
		return err
	}

	if target == "" {
		log.Warn("no destination configured, printing predictions")
		batch.Printed = true
		return PrintRecords(p.out, batch.Records)
	}

	ws, err := p.open(ctx, p.cfg.ServiceAccountFile, target)
	if err != nil {
		return err
	}
	n, err := sheets.NewAppender(log).Append(ctx, ws, batch.Records)
	if err != nil {
		return err
	}
	batch.Appended = n
	p.metrics.RowsAppended.Add(float64(n))
	return nil
}

// sourceRows returns the configured new-entries file when it exists, else
// synthetic rows drawn from the historical CSV.
func (p *Predictor) sourceRows() (*data.Frame, string, error) {
	if p.cfg.NewEntriesCSV != "" {
		f, err := data.ReadCSV(p.cfg.NewEntriesCSV)
		switch {
		case err == nil:
			if f.Len() > 0 {
				return f, SourceFile, nil
			}
			p.log.Warn("new entries file is empty, synthesizing rows", "path", p.cfg.NewEntriesCSV)
		case errors.Is(err, data.ErrMissingFile):
		default:
			return nil, "", err
		}
	}

	history, err := data.ReadCSV(p.cfg.SourceCSV)
	if err != nil {
		return nil, "", err
	}
	seed := p.cfg.NoiseSeed
	if seed == 0 {
		seed = p.now().UnixNano()
	}
	rows, err := dataprep.NewSynthesizer(seed).Generate(FeatureHistory(history), p.cfg.Samples)
	if err != nil {
		return nil, "", err
	}
	return rows, SourceSynthetic, nil
}

// FeatureHistory drops rows already flagged as predicted and every
// administrative column, leaving the pool synthetic rows are drawn from.
func FeatureHistory(history *data.Frame) *data.Frame {
	pool := history
	for _, c := range history.Columns {
		if !columns.IsPredictedFlag(c) {
			continue
		}
		j, _ := history.Index(c)
		pool = pool.Filter(func(row []string) bool { return !truthy(row[j]) })
	}
	var admin []string
	for _, c := range pool.Columns {
		if columns.IsAdministrative(c) {
			admin = append(admin, c)
		}
	}
	return pool.Drop(admin...)
}

func truthy(cell string) bool {
	s := strings.ToLower(strings.TrimSpace(cell))
	if s == "yes" || s == "y" {
		return true
	}
	b, err := cast.ToBoolE(s)
	return err == nil && b
}

// BuildRecords pairs every row with its prediction: the row's fields in
// column order, then the predicted price rounded to cents, the predicted
// flag and the generation time.
func BuildRecords(rows *data.Frame, preds []float64, at time.Time) []*sheets.Record {
	stamp := at.Format(TimestampLayout)
	out := make([]*sheets.Record, rows.Len())
	for i, row := range rows.Rows {
		rec := sheets.NewRecord()
		for j, c := range rows.Columns {
			rec.Set(c, row[j])
		}
		rec.Set(columns.PredictedPrice, math.Round(preds[i]*100)/100)
		rec.Set(columns.PredictedFlag, true)
		rec.Set(columns.Timestamp, stamp)
		out[i] = rec
	}
	return out
}

// PrintRecords writes records as CSV with a header row.
func PrintRecords(w io.Writer, records []*sheets.Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = r.Strings()
	}
	return data.WriteCSV(w, data.NewFrame(records[0].Fields, rows))
}
