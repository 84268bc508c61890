package interfaces

import (
	"context"

	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// Repository defines the interface for data persistence. Every method is
// keyed by user: there is no "first record" fallback anywhere.
type Repository interface {
	Mapping() MappingRepository
	RecurringMapping() RecurringMappingRepository
	Pattern() PatternRepository
	History() HistoryRepository
	Audit() AuditRepository

	// Credential methods
	PutCredential(ctx context.Context, material *auth.Material) error
	GetCredential(ctx context.Context, userID types.UserID) (*auth.Material, error)
	DeleteCredential(ctx context.Context, userID types.UserID) error

	Close() error
}
