package interfaces

import (
	"context"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
)

// AuditNotifier pushes notable audit records to an external channel. Failures
// are logged, never propagated into the write path.
type AuditNotifier interface {
	NotifyAudit(ctx context.Context, record *model.AuditRecord) error
}
