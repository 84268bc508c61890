package interfaces

import (
	"context"
	"time"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// CalendarSource provides calendar events for a user. Implementations return
// types.ErrSourceUnavailable (wrapped) on transport failure.
type CalendarSource interface {
	// FetchEvents retrieves the user's events within [from, to)
	FetchEvents(ctx context.Context, userID types.UserID, from, to time.Time) ([]*model.CalendarEvent, error)
}
