package interfaces

import (
	"context"
	"time"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// PatternRepository defines the interface for learned pattern persistence.
// Signatures are partitioned by user; writes for a single user must be
// serialized by the implementation so concurrent learns do not lose updates.
type PatternRepository interface {
	// Record registers one observed signature→outcome pair for the user,
	// incrementing the pair count and the signature's total count
	Record(ctx context.Context, userID types.UserID, signature string, project types.ProjectID, task types.TaskID, at time.Time) error

	// List retrieves all signatures for the given user
	List(ctx context.Context, userID types.UserID) ([]*model.PatternSignature, error)
}
