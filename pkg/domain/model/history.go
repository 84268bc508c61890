package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// HistoryID identifies one processing history record
type HistoryID string

// NewHistoryID generates a new random HistoryID
func NewHistoryID() HistoryID {
	return HistoryID(uuid.NewString())
}

// String returns the string representation of HistoryID
func (x HistoryID) String() string {
	return string(x)
}

// ProcessingHistoryRecord is one immutable record of an attempted submission.
// Written once by the orchestrator after each sink call attempt, never updated
// or deleted. Partial records from an aborted run stay valid: each reflects a
// real (or attempted) sink operation.
type ProcessingHistoryRecord struct {
	ID          HistoryID          `firestore:"id"`
	UserID      types.UserID       `firestore:"user_id"`
	WeekStart   types.Day          `firestore:"week_start"`
	EventIDs    []types.EventID    `firestore:"event_ids"`
	Summary     string             `firestore:"summary"`
	ProjectID   types.ProjectID    `firestore:"project_id"`
	TaskID      types.TaskID       `firestore:"task_id"`
	Day         types.Day          `firestore:"day"`
	Hours       float64            `firestore:"hours"`
	Status      types.RecordStatus `firestore:"status"`
	SinkEntryID types.EntryID      `firestore:"sink_entry_id,omitempty"`
	Error       string             `firestore:"error,omitempty"`
	ProcessedAt time.Time          `firestore:"processed_at"`
}

// Validate checks if the ProcessingHistoryRecord is well-formed
func (x *ProcessingHistoryRecord) Validate() error {
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if err := x.WeekStart.Validate(); err != nil {
		return goerr.Wrap(err, "invalid week start")
	}
	if !x.Status.IsValid() {
		return goerr.New("invalid record status", goerr.V("status", string(x.Status)))
	}
	if x.Status == types.RecordStatusError && x.Error == "" {
		return goerr.New("error record requires error detail")
	}
	return nil
}
