package model

import (
	"strings"
	"time"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

func ParseAuditAction(s string) (AuditAction, bool) {
	a := AuditAction(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete:
		return a, true
	}
	return a, false
}

const (
	AuditEntityFacility = "Facility"
	AuditEntityPatient  = "Patient"
)

type AuditLog struct {
	ID         int64       `json:"id" db:"id"`
	EntityType string      `json:"entity_type" db:"entity_type"`
	EntityID   int64       `json:"entity_id" db:"entity_id"`
	Action     AuditAction `json:"action" db:"action"`
	OldValue   *string     `json:"old_value" db:"old_value"`
	NewValue   *string     `json:"new_value" db:"new_value"`
	ChangedBy  *string     `json:"changed_by" db:"changed_by"`
	ChangedAt  time.Time   `json:"changed_at" db:"changed_at"`
}

// AuditFilter selects audit entries. Zero values are ignored.
type AuditFilter struct {
	EntityType string
	EntityID   *int64
	Action     AuditAction
	Start      *time.Time
	End        *time.Time
}

var auditEntityTypes = []string{AuditEntityFacility, AuditEntityPatient}

// NormalizeEntityType maps a case-insensitive entity name to its canonical form.
func NormalizeEntityType(s string) string {
	s = strings.TrimSpace(s)
	for _, t := range auditEntityTypes {
		if strings.EqualFold(s, t) {
			return t
		}
	}
	return s
}

var auditSortFields = map[string]bool{
	"changed_at":  true,
	"entity_type": true,
	"entity_id":   true,
	"action":      true,
	"id":          true,
}

func IsAuditSortField(field string) bool {
	return auditSortFields[strings.ToLower(field)]
}
