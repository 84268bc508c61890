package types

import "github.com/m-mizutani/goerr/v2"

// ProjectID is a sink-side project identifier
type ProjectID int64

// Validate checks if the ProjectID is valid
func (x ProjectID) Validate() error {
	if x <= 0 {
		return goerr.New("project ID must be positive", goerr.V("id", int64(x)))
	}
	return nil
}

// Int64 returns the numeric value of ProjectID
func (x ProjectID) Int64() int64 {
	return int64(x)
}

// TaskID is a sink-side task identifier
type TaskID int64

// Validate checks if the TaskID is valid
func (x TaskID) Validate() error {
	if x <= 0 {
		return goerr.New("task ID must be positive", goerr.V("id", int64(x)))
	}
	return nil
}

// Int64 returns the numeric value of TaskID
func (x TaskID) Int64() int64 {
	return int64(x)
}

// EntryID is a sink-assigned time entry identifier
type EntryID int64

// Int64 returns the numeric value of EntryID
func (x EntryID) Int64() int64 {
	return int64(x)
}

// AccountID is a sink-side account identifier
type AccountID int64

// Int64 returns the numeric value of AccountID
func (x AccountID) Int64() int64 {
	return int64(x)
}

// EventID is a calendar-side event identifier
type EventID string

// Validate checks if the EventID is valid
func (x EventID) Validate() error {
	if x == "" {
		return goerr.New("event ID cannot be empty")
	}
	return nil
}

// String returns the string representation of EventID
func (x EventID) String() string {
	return string(x)
}
