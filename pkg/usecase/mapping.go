package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// MappingUseCase manages user-authored label and recurring-event mappings
type MappingUseCase struct {
	repo interfaces.Repository
	now  func() time.Time
}

func newMappingUseCase(repo interfaces.Repository, now func() time.Time) *MappingUseCase {
	return &MappingUseCase{repo: repo, now: now}
}

// Create validates and stores a new active label mapping
func (x *MappingUseCase) Create(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error) {
	mapping.IsActive = true
	mapping.CreatedAt = x.now()
	mapping.UpdatedAt = mapping.CreatedAt
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	created, err := x.repo.Mapping().Create(ctx, mapping)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create mapping",
			goerr.V("user_id", mapping.UserID), goerr.V("label", mapping.CalendarLabel))
	}
	return created, nil
}

// Get retrieves one mapping by ID
func (x *MappingUseCase) Get(ctx context.Context, userID types.UserID, id model.MappingID) (*model.Mapping, error) {
	return x.repo.Mapping().Get(ctx, userID, id)
}

// List retrieves all of the user's mappings, active and deactivated
func (x *MappingUseCase) List(ctx context.Context, userID types.UserID) ([]*model.Mapping, error) {
	return x.repo.Mapping().List(ctx, userID)
}

// Update validates and stores changes to an existing mapping
func (x *MappingUseCase) Update(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error) {
	mapping.UpdatedAt = x.now()
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	updated, err := x.repo.Mapping().Update(ctx, mapping)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update mapping",
			goerr.V("user_id", mapping.UserID), goerr.V("id", mapping.ID))
	}
	return updated, nil
}

// Deactivate soft-deletes a mapping
func (x *MappingUseCase) Deactivate(ctx context.Context, userID types.UserID, id model.MappingID) error {
	if err := x.repo.Mapping().Deactivate(ctx, userID, id); err != nil {
		return goerr.Wrap(err, "failed to deactivate mapping",
			goerr.V("user_id", userID), goerr.V("id", id))
	}
	return nil
}

// CreateRecurring validates and stores a permanent mapping for a recurring
// event series
func (x *MappingUseCase) CreateRecurring(ctx context.Context, mapping *model.RecurringMapping) (*model.RecurringMapping, error) {
	mapping.IsActive = true
	mapping.CreatedAt = x.now()
	mapping.UpdatedAt = mapping.CreatedAt
	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	created, err := x.repo.RecurringMapping().Create(ctx, mapping)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create recurring mapping",
			goerr.V("user_id", mapping.UserID),
			goerr.V("recurring_event_id", mapping.RecurringEventID))
	}
	return created, nil
}

// ListRecurring retrieves all of the user's recurring mappings
func (x *MappingUseCase) ListRecurring(ctx context.Context, userID types.UserID) ([]*model.RecurringMapping, error) {
	return x.repo.RecurringMapping().List(ctx, userID)
}

// DeactivateRecurring soft-deletes a recurring mapping
func (x *MappingUseCase) DeactivateRecurring(ctx context.Context, userID types.UserID, id model.MappingID) error {
	if err := x.repo.RecurringMapping().Deactivate(ctx, userID, id); err != nil {
		return goerr.Wrap(err, "failed to deactivate recurring mapping",
			goerr.V("user_id", userID), goerr.V("id", id))
	}
	return nil
}
