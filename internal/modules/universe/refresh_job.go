package universe

import (
	"context"

	"github.com/broadcast777/my-dividend-app/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// RefreshJob runs the batch smart update on a cron schedule. Progress goes
// through the same hub the HTTP trigger uses, so dashboard streams see
// scheduled runs too.
type RefreshJob struct {
	refresher *Refresher
	hub       *ProgressHub
	cache     *snapshots.Store
	log       zerolog.Logger
}

// NewRefreshJob creates the scheduled refresh job
func NewRefreshJob(refresher *Refresher, hub *ProgressHub, cache *snapshots.Store, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		refresher: refresher,
		hub:       hub,
		cache:     cache,
		log:       log.With().Str("job", "universe-refresh").Logger(),
	}
}

// Name implements scheduler.Job
func (j *RefreshJob) Name() string {
	return "universe-refresh"
}

// Run implements scheduler.Job
func (j *RefreshJob) Run() error {
	ctx := context.Background()

	summary, err := j.refresher.RefreshAll(ctx, "", func(done, total int, row RefreshRowResult) {
		j.hub.Publish(ProgressEvent{Done: done, Total: total, Row: row})
	})
	if err != nil {
		return err
	}

	if err := j.cache.Invalidate(ctx, snapshotKey); err != nil {
		j.log.Warn().Err(err).Msg("Snapshot invalidation failed")
	}

	j.log.Info().
		Int("total", summary.Total).
		Int("updated", summary.Updated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("Scheduled refresh completed")
	return nil
}
