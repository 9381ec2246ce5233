package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pricebook-backend/internal/shared"
)

// ArchivePurger xóa object cũ hơn cutoff dưới prefix
type ArchivePurger interface {
	PurgeOlderThan(ctx context.Context, prefix string, cutoff time.Time) (int, error)
}

// PurgeArchivesHandler xóa file import đã lưu trữ quá hạn
type PurgeArchivesHandler struct {
	purger        ArchivePurger
	retentionDays int
	now           func() time.Time
}

func NewPurgeArchivesHandler(purger ArchivePurger, retentionDays int) *PurgeArchivesHandler {
	return &PurgeArchivesHandler{
		purger:        purger,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// ProcessTask: payload rỗng => dùng retention của worker
func (h *PurgeArchivesHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.PurgeArchivesPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			log.Error().Err(err).Msg("Failed to unmarshal PurgeArchives payload")
			return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
		}
	}

	days := payload.RetentionDays
	if days <= 0 {
		days = h.retentionDays
	}
	if days <= 0 {
		log.Warn().Msg("Archive retention disabled, skipping purge")
		return nil
	}

	cutoff := h.now().UTC().AddDate(0, 0, -days)
	log.Info().
		Int("retention_days", days).
		Time("cutoff", cutoff).
		Msg("Purging import archives")

	removed, err := h.purger.PurgeOlderThan(ctx, shared.ArchivePrefix, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Failed to purge import archives")
		return fmt.Errorf("purge archives: %w", err)
	}

	log.Info().
		Int("removed", removed).
		Msg("Import archives purged")
	return nil
}
