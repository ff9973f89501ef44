package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bus-fleet-api/internal/models"
	"github.com/noah-isme/bus-fleet-api/pkg/jobs"
)

const auditJobType = "audit_log"

type auditStore interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// AuditRecorder writes audit entries off the request path. When the queue is
// not running or is full the entry is written inline.
type AuditRecorder struct {
	store  auditStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditRecorder builds a recorder around a worker queue.
func NewAuditRecorder(store auditStore, logger *zap.Logger, cfg jobs.QueueConfig) *AuditRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Logger == nil {
		cfg.Logger = logger
	}
	r := &AuditRecorder{store: store, logger: logger}
	r.queue = jobs.NewQueue("audit", r.handle, cfg)
	return r
}

// Start launches the writers.
func (r *AuditRecorder) Start(ctx context.Context) {
	r.queue.Start(ctx)
}

// Stop flushes queued entries.
func (r *AuditRecorder) Stop() {
	r.queue.Stop()
}

// CreateAuditLog queues the entry for writing.
func (r *AuditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	entry := *log
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := r.queue.Enqueue(jobs.Job{Type: auditJobType, Payload: &entry}); err != nil {
		r.logger.Debug("audit queue unavailable, writing inline", zap.Error(err))
		return r.store.CreateAuditLog(ctx, &entry)
	}
	return nil
}

func (r *AuditRecorder) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.store.CreateAuditLog(writeCtx, entry)
}
