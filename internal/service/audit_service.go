package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tawhid3482/geniustutors-console/internal/editor"
	"github.com/tawhid3482/geniustutors-console/internal/models"
	"github.com/tawhid3482/geniustutors-console/pkg/jobs"
)

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditConfig configures the background audit writer.
type AuditConfig struct {
	Workers    int
	Retries    int
	BufferSize int
	RetryDelay time.Duration
}

// Actor identifies who performed an audited action.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// AuditService writes audit records asynchronously through a worker queue.
type AuditService struct {
	repo    auditRepository
	metrics *MetricsService
	logger  *zap.Logger
	queue   *jobs.Queue[models.AuditLog]
	now     func() time.Time
}

// NewAuditService constructs an AuditService. Call Start before recording.
func NewAuditService(repo auditRepository, metrics *MetricsService, logger *zap.Logger, cfg AuditConfig) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	s := &AuditService{repo: repo, metrics: metrics, logger: logger, now: time.Now}
	s.queue = jobs.NewQueue("audit", s.write, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the writer workers.
func (s *AuditService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains buffered records.
func (s *AuditService) Stop(ctx context.Context) {
	s.queue.Stop(ctx)
}

func (s *AuditService) write(ctx context.Context, job jobs.Job[models.AuditLog]) error {
	log := job.Payload
	if err := s.repo.Create(ctx, &log); err != nil {
		s.metrics.RecordAudit("retry")
		return err
	}
	s.metrics.RecordAudit("written")
	return nil
}

// Record enqueues log without blocking. A full queue drops the record.
func (s *AuditService) Record(log models.AuditLog) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now().UTC()
	}
	err := s.queue.TryEnqueue(jobs.Job[models.AuditLog]{ID: log.ID, Payload: log})
	if err == nil {
		return
	}
	s.metrics.RecordAudit("dropped")
	level := s.logger.Warn
	if errors.Is(err, jobs.ErrQueueClosed) {
		level = s.logger.Error
	}
	level("audit record dropped",
		zap.String("action", log.Action),
		zap.String("resource", log.Resource),
		zap.Error(err))
}

// RecordApplied audits a mutation the backend accepted.
func (s *AuditService) RecordApplied(actor Actor, kind models.EntityKind, applied editor.Applied) {
	action := models.AuditActionEntityUpdate
	if applied.Action == editor.ActionDelete {
		action = models.AuditActionEntityDelete
	}
	entityID := applied.EntityID
	log := models.AuditLog{
		Action:     action,
		Resource:   string(kind),
		ResourceID: &entityID,
		OldValues:  s.encode(applied.Original),
		NewValues:  s.encode(applied.Changes),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if actor.UserID != "" {
		userID := actor.UserID
		log.UserID = &userID
	}
	s.Record(log)
}

// List returns recent audit records.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	return s.repo.List(ctx, filter)
}

// Stats exposes queue counters.
func (s *AuditService) Stats() jobs.Stats {
	return s.queue.Stats()
}

func (s *AuditService) encode(fields editor.Fields) []byte {
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		s.logger.Warn("encode audit fields", zap.Error(err))
		return nil
	}
	return raw
}
