package types

import "fmt"

// RecordStatus represents the outcome of one attempted sink submission
type RecordStatus string

const (
	RecordStatusSuccess RecordStatus = "success"
	RecordStatusError   RecordStatus = "error"
	RecordStatusSkipped RecordStatus = "skipped"
)

// AllRecordStatuses returns all valid record statuses
func AllRecordStatuses() []RecordStatus {
	return []RecordStatus{
		RecordStatusSuccess,
		RecordStatusError,
		RecordStatusSkipped,
	}
}

// IsValid checks if the record status is valid
func (s RecordStatus) IsValid() bool {
	switch s {
	case RecordStatusSuccess,
		RecordStatusError,
		RecordStatusSkipped:
		return true
	default:
		return false
	}
}

// String returns the string representation of the record status
func (s RecordStatus) String() string {
	return string(s)
}

// ParseRecordStatus parses a string into a RecordStatus
func ParseRecordStatus(s string) (RecordStatus, error) {
	status := RecordStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid record status: %s", s)
	}
	return status, nil
}

// SkipReason explains why a candidate was not submitted
type SkipReason string

const (
	SkipReasonAlreadyExists SkipReason = "already_exists"
)

// String returns the string representation of the skip reason
func (s SkipReason) String() string {
	return string(s)
}
