package interfaces

import (
	"context"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// HistoryRepository defines the interface for processing history persistence.
// Append-only: records are never updated or deleted.
type HistoryRepository interface {
	// Append writes one processing record
	Append(ctx context.Context, record *model.ProcessingHistoryRecord) (*model.ProcessingHistoryRecord, error)

	// ListByWeek retrieves all records for the given user and week
	ListByWeek(ctx context.Context, userID types.UserID, weekStart types.Day) ([]*model.ProcessingHistoryRecord, error)

	// List retrieves all records for the given user
	List(ctx context.Context, userID types.UserID) ([]*model.ProcessingHistoryRecord, error)
}

// AuditRepository defines the interface for the credential audit trail.
// Append-only, independent of processing history.
type AuditRepository interface {
	// Append writes one audit record
	Append(ctx context.Context, record *model.AuditRecord) (*model.AuditRecord, error)

	// List retrieves all audit records for the given user
	List(ctx context.Context, userID types.UserID) ([]*model.AuditRecord, error)
}
