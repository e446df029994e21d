// Package audittest provides an in-memory audit.Recorder for service tests.
package audittest

import (
	"context"
	"sync"

	"github.com/jwalitptl/healthcare-api/internal/model"
	"github.com/jwalitptl/healthcare-api/internal/service/audit"
)

var _ audit.Recorder = (*Recorder)(nil)

// Recorder keeps every recorded entry in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []*model.AuditLog
}

func (r *Recorder) Record(ctx context.Context, entityType string, entityID int64, action model.AuditAction, oldValue, newValue interface{}) {
	entry, err := audit.NewEntry(ctx, entityType, entityID, action, oldValue, newValue)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []*model.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.AuditLog(nil), r.entries...)
}
