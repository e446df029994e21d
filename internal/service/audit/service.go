package audit

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
	apperrors "github.com/jwalitptl/healthcare-api/pkg/errors"
)

const entityName = "AuditLog"

type AuditService interface {
	ListAll(ctx context.Context, page model.Pagination, sort model.SortOrder) (model.Page[*model.AuditLog], error)
	ListByEntityType(ctx context.Context, entityType string) ([]*model.AuditLog, error)
	ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error)
	EntityHistory(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error)
	ListByAction(ctx context.Context, action string) ([]*model.AuditLog, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.AuditLog, error)
	Export(ctx context.Context, filter model.AuditFilter) ([]byte, error)
}

var _ AuditService = (*Service)(nil)

// Service answers historical queries over the audit log.
type Service struct {
	repo   repository.AuditRepository
	logger zerolog.Logger
}

func NewService(repo repository.AuditRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger.With().Str("service", "audit").Logger()}
}

// ListAll returns one page of entries, newest first unless sort says otherwise.
func (s *Service) ListAll(ctx context.Context, page model.Pagination, sort model.SortOrder) (model.Page[*model.AuditLog], error) {
	if sort.Field != "" && !model.IsAuditSortField(sort.Field) {
		return model.Page[*model.AuditLog]{}, apperrors.Validation("sort", "unsupported sort field "+sort.Field, entityName)
	}
	if sort.Dir != "" && !strings.EqualFold(sort.Dir, "asc") && !strings.EqualFold(sort.Dir, "desc") {
		return model.Page[*model.AuditLog]{}, apperrors.Validation("sort", "direction must be asc or desc", entityName)
	}

	page = page.Normalize()
	logs, total, err := s.repo.List(ctx, model.AuditFilter{}, sort, page)
	if err != nil {
		return model.Page[*model.AuditLog]{}, s.failure("list", err)
	}
	return model.NewPage(logs, page, total), nil
}

func (s *Service) ListByEntityType(ctx context.Context, entityType string) ([]*model.AuditLog, error) {
	entityType = model.NormalizeEntityType(entityType)
	if entityType == "" {
		return nil, apperrors.Validation("entity_type", "must not be blank", entityName)
	}
	return s.list(ctx, model.AuditFilter{EntityType: entityType})
}

func (s *Service) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	entityType = model.NormalizeEntityType(entityType)
	if entityType == "" {
		return nil, apperrors.Validation("entity_type", "must not be blank", entityName)
	}
	return s.list(ctx, model.AuditFilter{EntityType: entityType, EntityID: &entityID})
}

// EntityHistory is the full change history of one entity, newest first.
func (s *Service) EntityHistory(ctx context.Context, entityType string, entityID int64) ([]*model.AuditLog, error) {
	return s.ListByEntity(ctx, entityType, entityID)
}

func (s *Service) ListByAction(ctx context.Context, action string) ([]*model.AuditLog, error) {
	a, ok := model.ParseAuditAction(action)
	if !ok {
		return nil, apperrors.Validation("action", "must be one of CREATE, UPDATE, DELETE", entityName)
	}
	return s.list(ctx, model.AuditFilter{Action: a})
}

func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]*model.AuditLog, error) {
	if end.Before(start) {
		return nil, apperrors.Validation("end", "must not be before start", entityName)
	}
	return s.list(ctx, model.AuditFilter{Start: &start, End: &end})
}

// Query returns every entry matching filter, newest first.
func (s *Service) Query(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error) {
	if filter.Action != "" {
		a, ok := model.ParseAuditAction(string(filter.Action))
		if !ok {
			return nil, apperrors.Validation("action", "must be one of CREATE, UPDATE, DELETE", entityName)
		}
		filter.Action = a
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		return nil, apperrors.Validation("end", "must not be before start", entityName)
	}
	filter.EntityType = model.NormalizeEntityType(filter.EntityType)
	return s.list(ctx, filter)
}

func (s *Service) list(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, error) {
	logs, _, err := s.repo.List(ctx, filter, model.SortOrder{Field: "changed_at", Dir: "desc"}, model.Unpaged())
	if err != nil {
		return nil, s.failure("list", err)
	}
	if logs == nil {
		logs = []*model.AuditLog{}
	}
	return logs, nil
}

func (s *Service) failure(op string, err error) error {
	s.logger.Error().Err(err).Str("operation", op).Msg("audit query failed")
	return apperrors.ServiceFailure(op, entityName, err)
}
