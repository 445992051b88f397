// Command predict scores new or synthetic rows with the trained pipeline and
// appends them to the destination spreadsheet, once or on a cron schedule.
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
	"carprice/pkg/predictor"
	"carprice/pkg/telemetry"
)

func main() {
	cfg := config.Load()

	flag.StringVar(&cfg.ModelPath, "model", cfg.ModelPath, "model artifact")
	flag.StringVar(&cfg.SourceCSV, "csv", cfg.SourceCSV, "historical CSV used for synthetic rows")
	flag.StringVar(&cfg.NewEntriesCSV, "new", cfg.NewEntriesCSV, "CSV of rows to score; synthetic rows when absent")
	flag.IntVar(&cfg.Samples, "samples", cfg.Samples, "synthetic rows per run")
	flag.Int64Var(&cfg.NoiseSeed, "noise-seed", cfg.NoiseSeed, "synthesis seed, 0 for time based")
	flag.StringVar(&cfg.SpreadsheetURL, "sheet", cfg.SpreadsheetURL, "destination spreadsheet URL")
	flag.StringVar(&cfg.OnMissingDestination, "on-missing-destination", cfg.OnMissingDestination, "abort or print")
	flag.StringVar(&cfg.Schedule, "schedule", cfg.Schedule, "cron spec for repeated runs")
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := telemetry.New()
	p := predictor.New(cfg, log, metrics)

	var err error
	if cfg.Schedule != "" {
		err = predictor.Scheduled(ctx, cfg.Schedule, p, log)
	} else {
		var batch *predictor.Batch
		batch, err = p.Run(ctx)
		if err == nil && !batch.Printed {
			fmt.Printf("Appended %d %s rows\n", batch.Appended, batch.Source)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
