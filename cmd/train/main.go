// Command train fits the price pipeline on the historical CSV and writes the
// model artifact.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"carprice/pkg/config"
	"carprice/pkg/logging"
	"carprice/pkg/telemetry"
	"carprice/pkg/trainer"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.SourceCSV, "csv", cfg.SourceCSV, "historical survey CSV")
	flag.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "artifact output path")
	flag.StringVar(&cfg.Regressor, "regressor", cfg.Regressor, "linear, forest or knn")
	flag.IntVar(&cfg.Trees, "trees", cfg.Trees, "trees in the forest")
	flag.IntVar(&cfg.MaxDepth, "max-depth", cfg.MaxDepth, "forest tree depth, 0 for unlimited")
	flag.IntVar(&cfg.Neighbors, "neighbors", cfg.Neighbors, "neighbours averaged by knn")
	flag.BoolVar(&cfg.Evaluate, "evaluate", cfg.Evaluate, "report held-out MAE/RMSE/R2")
	flag.BoolVar(&cfg.Refit, "refit", cfg.Refit, "refit on all rows after evaluating")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "split and forest seed")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.DotEnv {
		log.Debug("loaded .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New()
	report, err := trainer.New(cfg, log, metrics).Run(ctx)
	if perr := metrics.Push(cfg.PushgatewayURL, "carprice_train"); perr != nil {
		log.Warn("push metrics", "error", perr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Printf("Saved %s model trained on %d rows (target %q) to %s\n",
		cfg.Regressor, report.Rows, report.Target, report.ModelPath)
	if ev := report.Evaluation; ev != nil {
		fmt.Printf("Held-out (%d rows): MAE=%.2f RMSE=%.2f R2=%.4f\n", ev.N, ev.MAE, ev.RMSE, ev.R2)
	}
}
