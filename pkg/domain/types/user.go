package types

import "github.com/m-mizutani/goerr/v2"

// UserID identifies one application user. Every repository and use case
// operation is keyed by it; an empty UserID is rejected at the boundary.
type UserID string

// Validate checks if the UserID is valid
func (x UserID) Validate() error {
	if x == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (x UserID) String() string {
	return string(x)
}
