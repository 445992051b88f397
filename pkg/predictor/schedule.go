package predictor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduled runs p on a cron spec until ctx is cancelled. Runs never
// overlap; a failed run is logged and the next tick proceeds.
func Scheduled(ctx context.Context, spec string, p *Predictor, log *slog.Logger) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		batch, err := p.Run(ctx)
		if err != nil {
			log.Error("scheduled prediction run failed", "error", err)
			return
		}
		log.Info("scheduled prediction run finished",
			"run_id", batch.RunID, "source", batch.Source,
			"rows", len(batch.Records), "appended", batch.Appended)
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("prediction scheduler started", "schedule", spec)
	<-ctx.Done()
	<-c.Stop().Done()
	log.Info("prediction scheduler stopped")
	return nil
}
