package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "carprice"

// Metrics is a per-run registry. Batch jobs push it once at the end of a
// run instead of serving it.
type Metrics struct {
	Registry *prometheus.Registry

	RowsSourced   *prometheus.CounterVec
	RowsPredicted prometheus.Counter
	RowsAppended  prometheus.Counter
	RunFailures   *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec

	TrainRows prometheus.Gauge
	EvalMAE   prometheus.Gauge
	EvalRMSE  prometheus.Gauge
	EvalR2    prometheus.Gauge
}

// New registers every metric on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RowsSourced: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_sourced_total",
			Help:      "Feature rows obtained for scoring, by source (file or synthetic).",
		}, []string{"source"}),
		RowsPredicted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_predicted_total",
			Help:      "Rows scored by the pipeline.",
		}),
		RowsAppended: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_appended_total",
			Help:      "Rows appended to the destination sheet.",
		}),
		RunFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Failed runs by stage.",
		}, []string{"stage"}),
		RunDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full stage run.",
			Buckets:   []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		}, []string{"stage"}),
		TrainRows: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "train_rows",
			Help:      "Rows used by the last training fit.",
		}),
		EvalMAE: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "eval_mae",
			Help:      "Held-out mean absolute error of the last training run.",
		}),
		EvalRMSE: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "eval_rmse",
			Help:      "Held-out root mean squared error of the last training run.",
		}),
		EvalR2: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "eval_r2",
			Help:      "Held-out R2 of the last training run.",
		}),
	}
}

// Push sends the registry to a Prometheus push gateway under job.
// An empty url is a no-op.
func (m *Metrics) Push(url, job string) error {
	if url == "" {
		return nil
	}
	return push.New(url, job).Gatherer(m.Registry).Push()
}
