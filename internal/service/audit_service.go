package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campushub/portal/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditStore persists append-only audit entries.
type AuditStore interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]*model.AuditLog, error)
}

// Summarizer is the opaque external summarization service.
type Summarizer interface {
	Summarize(ctx context.Context, logs string) (*model.AuditSummary, error)
}

type AuditService struct {
	store      AuditStore
	summarizer Summarizer
	logger     *zap.Logger
}

func NewAuditService(store AuditStore, summarizer Summarizer, logger *zap.Logger) *AuditService {
	return &AuditService{
		store:      store,
		summarizer: summarizer,
		logger:     logger,
	}
}

// Record appends an audit entry. Failures are logged, never propagated: a
// lost audit line must not fail the operation that produced it.
func (s *AuditService) Record(ctx context.Context, actor, action, details string, level model.AuditLevel) {
	entry := &model.AuditLog{
		ID:        uuid.NewString(),
		Actor:     actor,
		Action:    action,
		Details:   details,
		Level:     level,
		Timestamp: time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		s.logger.Error("Failed to record audit entry",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// List returns the newest entries, most recent first.
func (s *AuditService) List(ctx context.Context, limit int) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	entries, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, model.NewStorageError("list audit logs", err)
	}
	return entries, nil
}

// Summarize formats the newest entries as text and asks the external service
// for a summary and a list of potential security issues.
func (s *AuditService) Summarize(ctx context.Context, limit int) (*model.AuditSummary, error) {
	if s.summarizer == nil {
		return nil, fmt.Errorf("summarizer is not configured")
	}

	entries, err := s.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &model.AuditSummary{Summary: "No audit activity recorded."}, nil
	}

	var b strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&b, "%s [%s] %s: %s: %s\n",
			entry.Timestamp.Format(time.RFC3339),
			entry.Level,
			entry.Actor,
			entry.Action,
			entry.Details,
		)
	}

	summary, err := s.summarizer.Summarize(ctx, b.String())
	if err != nil {
		return nil, fmt.Errorf("summarize audit logs: %w", err)
	}

	return summary, nil
}
