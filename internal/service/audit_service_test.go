package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/jobs"
)

type recordingAuditStore struct {
	mu      sync.Mutex
	entries []models.AuditLog
	fails   int
}

func (s *recordingAuditStore) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fails > 0 {
		s.fails--
		return assert.AnError
	}
	s.entries = append(s.entries, *log)
	return nil
}

func (s *recordingAuditStore) snapshot() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AuditLog(nil), s.entries...)
}

func TestAuditRecorderWritesInlineBeforeStart(t *testing.T) {
	store := &recordingAuditStore{}
	recorder := NewAuditRecorder(store, nil, jobs.QueueConfig{})

	require.NoError(t, recorder.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionCreate, Resource: "payments"}))

	entries := store.snapshot()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].CreatedAt.IsZero())
}

func TestAuditRecorderFlushesOnStop(t *testing.T) {
	store := &recordingAuditStore{fails: 1}
	recorder := NewAuditRecorder(store, nil, jobs.QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	recorder.Start(context.Background())

	entry := &models.AuditLog{Action: models.AuditActionDelete, Resource: "students"}
	require.NoError(t, recorder.CreateAuditLog(context.Background(), entry))
	entry.Resource = "mutated"
	recorder.Stop()

	entries := store.snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "students", entries[0].Resource)
}
