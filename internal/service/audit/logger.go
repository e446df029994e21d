package audit

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/pkg/auth"
)

// Recorder appends audit entries for entity mutations. Record never fails
// the caller.
type Recorder interface {
	Record(ctx context.Context, entityType string, entityID int64, action model.AuditAction, oldValue, newValue interface{})
}

// Enqueuer accepts entries for asynchronous persistence.
type Enqueuer interface {
	Enqueue(entry *model.AuditLog)
}

// AuditLogger snapshots values on the calling goroutine and hands the entry
// to the background writer.
type AuditLogger struct {
	queue  Enqueuer
	logger zerolog.Logger
}

func NewAuditLogger(queue Enqueuer, logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{queue: queue, logger: logger.With().Str("component", "audit-logger").Logger()}
}

func (l *AuditLogger) Record(ctx context.Context, entityType string, entityID int64, action model.AuditAction, oldValue, newValue interface{}) {
	entry, err := NewEntry(ctx, entityType, entityID, action, oldValue, newValue)
	if err != nil {
		l.logger.Error().Err(err).
			Str("entity_type", entityType).
			Int64("entity_id", entityID).
			Str("action", string(action)).
			Msg("Failed to snapshot audit values")
		return
	}
	l.queue.Enqueue(entry)
}

// NewEntry builds an unsaved entry. A nil value leaves its snapshot NULL.
func NewEntry(ctx context.Context, entityType string, entityID int64, action model.AuditAction, oldValue, newValue interface{}) (*model.AuditLog, error) {
	entry := &model.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
	}
	if actor, ok := auth.ActorFromContext(ctx); ok {
		entry.ChangedBy = &actor
	}

	var err error
	if oldValue != nil {
		if entry.OldValue, err = model.Snapshot(oldValue); err != nil {
			return nil, err
		}
	}
	if newValue != nil {
		if entry.NewValue, err = model.Snapshot(newValue); err != nil {
			return nil, err
		}
	}
	return entry, nil
}
