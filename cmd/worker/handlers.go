package main

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	importJob "pricebook-backend/internal/domains/priceimport/job"
	"pricebook-backend/internal/shared"
	"pricebook-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	// Maintenance handlers; nil khi MinIO tắt
	purgeArchives *importJob.PurgeArchivesHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container, cfg *Config) *HandlerRegistry {
	registry := &HandlerRegistry{}

	if c.Storage == nil {
		log.Warn().Msg("[Worker] MinIO disabled, archive purge handler not registered")
		return registry
	}
	registry.purgeArchives = importJob.NewPurgeArchivesHandler(c.Storage, cfg.RetentionDays)
	return registry
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	if h.purgeArchives != nil {
		mux.HandleFunc(shared.TypePurgeImportArchives, h.purgeArchives.ProcessTask)
	}
}

// hasScheduledJobs: scheduler chỉ chạy khi có handler nhận task
func (h *HandlerRegistry) hasScheduledJobs() bool {
	return h.purgeArchives != nil
}
