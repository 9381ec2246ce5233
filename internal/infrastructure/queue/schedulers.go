package queue

import (
	"encoding/json"
	"time"

	"pricebook-backend/internal/config"
	"pricebook-backend/internal/shared"
	"pricebook-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisOpt asynq.RedisClientOpt, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerPurgeImportArchivesJob()
}

// ================================================
// JOB: Purge Import Archives (Daily at 3 AM UTC)
// ================================================
func (s *Scheduler) registerPurgeImportArchivesJob() error {
	payload, err := json.Marshal(shared.PurgeArchivesPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePurgeImportArchives, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.PurgeArchivesCron,
		task,
		asynq.Queue(shared.QueueImport),
		asynq.MaxRetry(2),
		asynq.Timeout(15*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register PurgeImportArchives job", err)
		return err
	}

	logger.Info("✓ Registered PurgeImportArchives", map[string]interface{}{
		"cron": s.jobConfig.PurgeArchivesCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
