package interfaces

import (
	"context"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// NewEntry is the input for TimeSink.CreateEntry
type NewEntry struct {
	ProjectID types.ProjectID
	TaskID    types.TaskID
	Day       types.Day
	Hours     float64
	Notes     string
}

// TimeSink is the external time-tracking service. Implementations return
// types.ErrSinkUnavailable (wrapped) on transport failure and
// types.ErrSinkRejected (wrapped, with reason) on validation failure.
type TimeSink interface {
	// ListEntries retrieves entries already recorded for the context's
	// remote user within [from, to], both inclusive calendar days
	ListEntries(ctx context.Context, authCtx *auth.Context, from, to types.Day) ([]*model.SinkEntry, error)

	// CreateEntry records one time entry and returns its sink-assigned ID
	CreateEntry(ctx context.Context, authCtx *auth.Context, entry *NewEntry) (types.EntryID, error)

	// GetIdentity performs a live call to the sink's identity endpoint
	GetIdentity(ctx context.Context, authCtx *auth.Context) (*model.RemoteIdentity, error)
}
