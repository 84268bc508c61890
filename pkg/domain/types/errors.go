package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy shared across services and use cases. Per-candidate errors
// (SinkRejected, SinkUnavailable) are attached to the affected item and the
// batch continues; ErrAuthExpired and ErrIdentityMismatch abort the whole run.
var (
	// ErrAuthExpired means the stored token could not be refreshed and the
	// user must re-authorize. Never retried internally.
	ErrAuthExpired = goerr.New("authorization expired, reconnect required")

	// ErrIdentityMismatch means the sink identity endpoint returned an account
	// different from the one stored at authorization time. Hard stop.
	ErrIdentityMismatch = goerr.New("remote identity does not match authorized account")

	// ErrSourceUnavailable is a transient calendar transport error
	ErrSourceUnavailable = goerr.New("calendar source unavailable")

	// ErrSinkUnavailable is a transient time-tracking transport error
	ErrSinkUnavailable = goerr.New("time tracking sink unavailable")

	// ErrSinkRejected is a permanent per-candidate validation failure from
	// the sink (invalid project/task, insufficient permission)
	ErrSinkRejected = goerr.New("sink rejected time entry")

	// ErrNotFound is returned by repositories when a requested record does
	// not exist
	ErrNotFound = goerr.New("record not found")
)
