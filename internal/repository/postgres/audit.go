package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/repository"
)

const auditColumns = `id, entity_type, entity_id, action, old_value, new_value, changed_by, changed_at`

// auditSortFields maps accepted sort keys to columns.
var auditSortFields = map[string]string{
	"changed_at":  "changed_at",
	"entity_type": "entity_type",
	"entity_id":   "entity_id",
	"action":      "action",
	"id":          "id",
}

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(base BaseRepository) repository.AuditRepository {
	return &auditRepository{base}
}

// Create appends an entry. Audit rows are never updated or deleted.
func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			entity_type, entity_id, action, old_value, new_value, changed_by, changed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.conn(ctx).QueryRowxContext(ctx, query,
		log.EntityType,
		log.EntityID,
		log.Action,
		log.OldValue,
		log.NewValue,
		log.ChangedBy,
		log.ChangedAt,
	).Scan(&log.ID)
	return mapError("create audit log", err)
}

func (r *auditRepository) List(ctx context.Context, filter model.AuditFilter, sort model.SortOrder, page model.Pagination) ([]*model.AuditLog, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		conditions = append(conditions, fmt.Sprintf("entity_type = $%d", len(args)))
	}
	if filter.EntityID != nil {
		args = append(args, *filter.EntityID)
		conditions = append(conditions, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		conditions = append(conditions, fmt.Sprintf("changed_at >= $%d", len(args)))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		conditions = append(conditions, fmt.Sprintf("changed_at <= $%d", len(args)))
	}

	baseQuery := " FROM audit_logs"
	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, "SELECT COUNT(*)"+baseQuery, args...); err != nil {
		return nil, 0, mapError("count audit logs", err)
	}

	query := "SELECT " + auditColumns + baseQuery + " ORDER BY " + orderBy(sort)
	if !page.IsUnpaged() {
		args = append(args, page.Limit(), page.Offset())
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	var logs []*model.AuditLog
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &logs, query, args...); err != nil {
		return nil, 0, mapError("list audit logs", err)
	}
	return logs, total, nil
}

// orderBy renders a whitelisted ORDER BY clause with id as tie-breaker.
func orderBy(sort model.SortOrder) string {
	column, ok := auditSortFields[strings.ToLower(sort.Field)]
	if !ok {
		column = "changed_at"
	}
	dir := "DESC"
	if strings.EqualFold(sort.Dir, "asc") {
		dir = "ASC"
	}
	if column == "id" {
		return "id " + dir
	}
	return column + " " + dir + ", id " + dir
}
