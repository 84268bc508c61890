package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// AuditID identifies one audit record
type AuditID string

// NewAuditID generates a new random AuditID
func NewAuditID() AuditID {
	return AuditID(uuid.NewString())
}

// String returns the string representation of AuditID
func (x AuditID) String() string {
	return string(x)
}

// AuditRecord is one append-only entry in the credential audit trail. It is
// independent of processing history: refreshes, validation failures and legacy
// fallback use are recorded here even when no submission happens.
type AuditRecord struct {
	ID        AuditID         `firestore:"id"`
	UserID    types.UserID    `firestore:"user_id"`
	Kind      types.AuditKind `firestore:"kind"`
	Detail    string          `firestore:"detail,omitempty"`
	CreatedAt time.Time       `firestore:"created_at"`
}

// Validate checks if the AuditRecord is well-formed
func (x *AuditRecord) Validate() error {
	if err := x.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if !x.Kind.IsValid() {
		return goerr.New("invalid audit kind", goerr.V("kind", string(x.Kind)))
	}
	return nil
}
