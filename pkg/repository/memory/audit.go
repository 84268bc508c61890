package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type auditRepository struct {
	mu      sync.RWMutex
	records map[types.UserID][]*model.AuditRecord
}

func newAuditRepository() *auditRepository {
	return &auditRepository{
		records: make(map[types.UserID][]*model.AuditRecord),
	}
}

func copyAuditRecord(r *model.AuditRecord) *model.AuditRecord {
	copied := *r
	return &copied
}

func (r *auditRepository) Append(ctx context.Context, record *model.AuditRecord) (*model.AuditRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid audit record")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyAuditRecord(record)
	if created.ID == "" {
		created.ID = model.NewAuditID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	r.records[created.UserID] = append(r.records[created.UserID], created)
	return copyAuditRecord(created), nil
}

func (r *auditRepository) List(ctx context.Context, userID types.UserID) ([]*model.AuditRecord, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.AuditRecord, 0, len(r.records[userID]))
	for _, record := range r.records[userID] {
		records = append(records, copyAuditRecord(record))
	}

	return records, nil
}
