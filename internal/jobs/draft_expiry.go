// File: internal/jobs/draft_expiry.go
package jobs

import (
	"fmt"
	"time"

	"nujum_backend/internal/config"
	"nujum_backend/internal/signup"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DraftExpiryJob periodically purges abandoned signup drafts. Drafts are
// memory-only, so this is about bounding memory and shortening how long a
// stage-3 password can linger, not about storage hygiene.
type DraftExpiryJob struct {
	pipeline      *signup.Pipeline
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
}

// NewDraftExpiryJob creates a new DraftExpiryJob.
func NewDraftExpiryJob(
	pipeline *signup.Pipeline,
	logger *zap.Logger,
	cfg *config.Config,
) *DraftExpiryJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &DraftExpiryJob{
		pipeline:      pipeline,
		logger:        logger.Named("DraftExpiryJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *DraftExpiryJob) SetupAndStart() error {
	jobSpec := j.cfg.DraftExpiryJobSchedule // e.g. "@every 15m"
	if jobSpec == "" {
		j.logger.Warn("Draft expiry job schedule not defined (DRAFT_EXPIRY_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule draft expiry job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Draft expiry job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

func (j *DraftExpiryJob) runJob() {
	purged := j.pipeline.PurgeExpiredDrafts()
	j.logger.Info("Draft expiry job run completed", zap.Int("drafts_purged", purged))
}

// Stop gracefully stops the cron scheduler.
func (j *DraftExpiryJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping draft expiry job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Draft expiry job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Draft expiry job scheduler stop timed out.")
		}
	}
}

// cronLogger adapts zap.Logger to the cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
