package model

import (
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// SinkEntry is a time entry already recorded in the time-tracking sink
type SinkEntry struct {
	ID        types.EntryID
	ProjectID types.ProjectID
	TaskID    types.TaskID
	Day       types.Day
	Hours     float64
	Notes     string
	IsLocked  bool
}

// Key returns the grouping key the duplicate guard compares against
func (x *SinkEntry) Key() CandidateKey {
	return CandidateKey{ProjectID: x.ProjectID, TaskID: x.TaskID, Day: x.Day}
}

// RemoteIdentity is the account identity reported by the sink's identity
// endpoint at call time
type RemoteIdentity struct {
	ID    int64
	Email string
}
