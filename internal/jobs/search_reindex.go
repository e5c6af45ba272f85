package jobs

import (
	"context"
	"fmt"
	"time"

	"coach_marketplace_backend/internal/coachsearch"
	"coach_marketplace_backend/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CoachSyncer is the part of the search indexer the job drives.
type CoachSyncer interface {
	Enabled() bool
	SyncAll(ctx context.Context, source coachsearch.PublishedSource, batchSize int, refresh string) (coachsearch.SyncResult, error)
}

// SearchReindexJob periodically rebuilds the coaches index from the published profiles,
// repairing documents missed by best-effort indexing after publish.
type SearchReindexJob struct {
	syncer        CoachSyncer
	source        coachsearch.PublishedSource
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewSearchReindexJob creates a new SearchReindexJob.
func NewSearchReindexJob(
	syncer *coachsearch.Indexer,
	source coachsearch.PublishedSource,
	logger *zap.Logger,
	cfg *config.Config,
) *SearchReindexJob {
	cronLog := NewCronLogger(logger.Named("cron"))
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)

	return &SearchReindexJob{
		syncer:        syncer,
		source:        source,
		logger:        logger.Named("SearchReindexJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *SearchReindexJob) SetupAndStart() error {
	if !j.syncer.Enabled() {
		j.logger.Info("Search is disabled, reindex job will not run.")
		return nil
	}
	jobSpec := j.cfg.SearchReindexJobSchedule
	if jobSpec == "" {
		j.logger.Warn("Search reindex schedule not defined (SEARCH_REINDEX_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule search reindex job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Search reindex job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *SearchReindexJob) runJob() {
	j.logger.Info("Starting search reindex run...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := j.syncer.SyncAll(ctx, j.source, j.cfg.SearchReindexBatchSize, "false")
	if err != nil {
		j.logger.Error("Search reindex run failed", zap.Error(err), zap.Int("synced", result.Synced), zap.Int("failed", result.Failed))
		return
	}
	j.logger.Info("Search reindex run completed", zap.Int("synced", result.Synced), zap.Int("batches", result.Batches))
}

// Stop gracefully stops the cron scheduler.
func (j *SearchReindexJob) Stop() {
	if j.cronScheduler == nil {
		return
	}
	j.logger.Info("Stopping search reindex scheduler...")
	stopCtx := j.cronScheduler.Stop()
	select {
	case <-stopCtx.Done():
		j.logger.Info("Search reindex scheduler stopped gracefully.")
	case <-time.After(10 * time.Second):
		j.logger.Warn("Search reindex scheduler stop timed out.")
	}
}

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Debug(msg, cl.fields(keysAndValues...)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	cl.zl.Error(msg, append(cl.fields(keysAndValues...), zap.Error(err))...)
}

func (cl *cronLogger) fields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2+1)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprintf("%v", keysAndValues[i])
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(key, keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(key, "MISSING_VALUE"))
		}
	}
	return fields
}
