package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricebook-backend/internal/shared"
)

type fakePurger struct {
	calls  int
	prefix string
	cutoff time.Time
	err    error
}

func (p *fakePurger) PurgeOlderThan(_ context.Context, prefix string, cutoff time.Time) (int, error) {
	p.calls++
	p.prefix = prefix
	p.cutoff = cutoff
	return 3, p.err
}

func fixedHandler(p ArchivePurger, days int) *PurgeArchivesHandler {
	h := NewPurgeArchivesHandler(p, days)
	h.now = func() time.Time { return time.Date(2026, 5, 31, 3, 0, 0, 0, time.UTC) }
	return h
}

func TestPurgeArchives_UsesConfiguredRetention(t *testing.T) {
	p := &fakePurger{}
	err := fixedHandler(p, 30).ProcessTask(context.Background(), asynq.NewTask(shared.TypePurgeImportArchives, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, shared.ArchivePrefix, p.prefix)
	assert.Equal(t, time.Date(2026, 5, 1, 3, 0, 0, 0, time.UTC), p.cutoff)
}

func TestPurgeArchives_PayloadOverridesRetention(t *testing.T) {
	p := &fakePurger{}
	task := asynq.NewTask(shared.TypePurgeImportArchives, []byte(`{"retentionDays":1}`))
	require.NoError(t, fixedHandler(p, 30).ProcessTask(context.Background(), task))
	assert.Equal(t, time.Date(2026, 5, 30, 3, 0, 0, 0, time.UTC), p.cutoff)
}

func TestPurgeArchives_Disabled(t *testing.T) {
	p := &fakePurger{}
	require.NoError(t, fixedHandler(p, 0).ProcessTask(context.Background(), asynq.NewTask(shared.TypePurgeImportArchives, nil)))
	assert.Zero(t, p.calls)
}

func TestPurgeArchives_Errors(t *testing.T) {
	err := fixedHandler(&fakePurger{}, 30).ProcessTask(context.Background(), asynq.NewTask(shared.TypePurgeImportArchives, []byte(`{`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = fixedHandler(&fakePurger{err: errors.New("boom")}, 30).ProcessTask(context.Background(), asynq.NewTask(shared.TypePurgeImportArchives, nil))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
