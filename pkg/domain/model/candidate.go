package model

import (
	"fmt"
	"math"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// RoundHours rounds hours half-up to two decimal places
func RoundHours(hours float64) float64 {
	return math.Floor(hours*100+0.5) / 100
}

// CandidateKey is the grouping and duplicate-detection key of a candidate
type CandidateKey struct {
	ProjectID types.ProjectID
	TaskID    types.TaskID
	Day       types.Day
}

// String returns a stable, human-readable form of the key. It doubles as the
// candidate ID so preview and commit agree on the same identifiers.
func (k CandidateKey) String() string {
	return fmt.Sprintf("%d-%d-%s", k.ProjectID, k.TaskID, k.Day)
}

// TimeEntryCandidate is one provisional time entry produced by grouping.
// Ephemeral: it is either discarded (preview) or submitted (commit), after
// which the outcome lands in processing history.
type TimeEntryCandidate struct {
	UserID      types.UserID
	ProjectID   types.ProjectID
	ProjectName string
	TaskID      types.TaskID
	TaskName    string
	Day         types.Day
	Hours       float64
	Notes       string

	// EventIDs references every contributing calendar event, for preview
	// display and the processed-event ledger.
	EventIDs []types.EventID
}

// ID returns the deterministic candidate identifier
func (x *TimeEntryCandidate) ID() string {
	return x.Key().String()
}

// Key returns the candidate's grouping key
func (x *TimeEntryCandidate) Key() CandidateKey {
	return CandidateKey{ProjectID: x.ProjectID, TaskID: x.TaskID, Day: x.Day}
}

// UnmappedEvent is an event that could not be resolved to any project/task.
// Carried forward for display, never committed.
type UnmappedEvent struct {
	Event     *CalendarEvent
	Signature string
}
