package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// MappingID identifies one user-authored mapping
type MappingID string

// NewMappingID generates a new random MappingID
func NewMappingID() MappingID {
	return MappingID(uuid.NewString())
}

// String returns the string representation of MappingID
func (x MappingID) String() string {
	return string(x)
}

// Mapping associates a calendar label with a sink project/task for one user.
// An active mapping's label is unique per user. Deactivation is soft so the
// mapping history stays available.
type Mapping struct {
	ID            MappingID       `firestore:"id"`
	UserID        types.UserID    `firestore:"user_id"`
	CalendarLabel string          `firestore:"calendar_label"`
	ProjectID     types.ProjectID `firestore:"project_id"`
	ProjectName   string          `firestore:"project_name"`
	TaskID        types.TaskID    `firestore:"task_id"`
	TaskName      string          `firestore:"task_name"`
	IsActive      bool            `firestore:"is_active"`
	CreatedAt     time.Time       `firestore:"created_at"`
	UpdatedAt     time.Time       `firestore:"updated_at"`
}

// Validate checks if the Mapping is well-formed
func (x *Mapping) Validate() error {
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}

	label := strings.TrimSpace(x.CalendarLabel)
	if label == "" {
		return goerr.New("calendar label cannot be empty")
	}
	if len(label) < 2 {
		return goerr.New("calendar label must be at least 2 characters",
			goerr.V("label", x.CalendarLabel))
	}

	if err := x.ProjectID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid project ID")
	}
	if err := x.TaskID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task ID")
	}

	return nil
}

// MatchesLabel reports whether the mapping's label equals the given label,
// ignoring case and surrounding whitespace
func (x *Mapping) MatchesLabel(label string) bool {
	return strings.EqualFold(strings.TrimSpace(x.CalendarLabel), strings.TrimSpace(label))
}

// RecurringMapping is a permanent mapping for a recurring event series,
// checked before label mappings during resolution.
type RecurringMapping struct {
	ID               MappingID       `firestore:"id"`
	UserID           types.UserID    `firestore:"user_id"`
	RecurringEventID string          `firestore:"recurring_event_id"`
	EventSummary     string          `firestore:"event_summary"`
	ProjectID        types.ProjectID `firestore:"project_id"`
	ProjectName      string          `firestore:"project_name"`
	TaskID           types.TaskID    `firestore:"task_id"`
	TaskName         string          `firestore:"task_name"`
	IsActive         bool            `firestore:"is_active"`
	CreatedAt        time.Time       `firestore:"created_at"`
	UpdatedAt        time.Time       `firestore:"updated_at"`
}

// Validate checks if the RecurringMapping is well-formed
func (x *RecurringMapping) Validate() error {
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if x.RecurringEventID == "" {
		return goerr.New("recurring event ID cannot be empty")
	}
	if err := x.ProjectID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid project ID")
	}
	if err := x.TaskID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid task ID")
	}
	return nil
}
