package interfaces

import (
	"context"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// MappingRepository defines the interface for Mapping persistence
type MappingRepository interface {
	// Create creates a new mapping with auto-generated ID
	Create(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error)

	// Get retrieves a mapping by ID for the given user
	Get(ctx context.Context, userID types.UserID, id model.MappingID) (*model.Mapping, error)

	// List retrieves all mappings for the given user
	List(ctx context.Context, userID types.UserID) ([]*model.Mapping, error)

	// ListActive retrieves all active mappings for the given user
	ListActive(ctx context.Context, userID types.UserID) ([]*model.Mapping, error)

	// Update updates an existing mapping
	Update(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error)

	// Deactivate soft-deletes a mapping by ID for the given user
	Deactivate(ctx context.Context, userID types.UserID, id model.MappingID) error
}

// RecurringMappingRepository defines the interface for RecurringMapping persistence
type RecurringMappingRepository interface {
	// Create creates a new recurring mapping with auto-generated ID
	Create(ctx context.Context, mapping *model.RecurringMapping) (*model.RecurringMapping, error)

	// GetByEventID retrieves the active recurring mapping for a recurring
	// event series, if any
	GetByEventID(ctx context.Context, userID types.UserID, recurringEventID string) (*model.RecurringMapping, error)

	// List retrieves all recurring mappings for the given user
	List(ctx context.Context, userID types.UserID) ([]*model.RecurringMapping, error)

	// Deactivate soft-deletes a recurring mapping by ID for the given user
	Deactivate(ctx context.Context, userID types.UserID, id model.MappingID) error
}
