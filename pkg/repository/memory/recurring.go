package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type recurringMappingRepository struct {
	mu       sync.RWMutex
	mappings map[types.UserID]map[model.MappingID]*model.RecurringMapping
}

func newRecurringMappingRepository() *recurringMappingRepository {
	return &recurringMappingRepository{
		mappings: make(map[types.UserID]map[model.MappingID]*model.RecurringMapping),
	}
}

func copyRecurringMapping(m *model.RecurringMapping) *model.RecurringMapping {
	copied := *m
	return &copied
}

func (r *recurringMappingRepository) Create(ctx context.Context, mapping *model.RecurringMapping) (*model.RecurringMapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid recurring mapping")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.mappings[mapping.UserID]
	if !ok {
		byUser = make(map[model.MappingID]*model.RecurringMapping)
		r.mappings[mapping.UserID] = byUser
	}

	for _, existing := range byUser {
		if existing.IsActive && existing.RecurringEventID == mapping.RecurringEventID {
			return nil, goerr.New("active recurring mapping already exists for event",
				goerr.V("user_id", mapping.UserID),
				goerr.V("recurring_event_id", mapping.RecurringEventID))
		}
	}

	now := time.Now().UTC()
	created := copyRecurringMapping(mapping)
	if created.ID == "" {
		created.ID = model.NewMappingID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	byUser[created.ID] = created
	return copyRecurringMapping(created), nil
}

func (r *recurringMappingRepository) GetByEventID(ctx context.Context, userID types.UserID, recurringEventID string) (*model.RecurringMapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, mapping := range r.mappings[userID] {
		if mapping.IsActive && mapping.RecurringEventID == recurringEventID {
			return copyRecurringMapping(mapping), nil
		}
	}

	return nil, goerr.Wrap(ErrNotFound, "recurring mapping not found",
		goerr.V("user_id", userID), goerr.V("recurring_event_id", recurringEventID))
}

func (r *recurringMappingRepository) List(ctx context.Context, userID types.UserID) ([]*model.RecurringMapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	mappings := make([]*model.RecurringMapping, 0, len(r.mappings[userID]))
	for _, mapping := range r.mappings[userID] {
		mappings = append(mappings, copyRecurringMapping(mapping))
	}

	return mappings, nil
}

func (r *recurringMappingRepository) Deactivate(ctx context.Context, userID types.UserID, id model.MappingID) error {
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mapping, ok := r.mappings[userID][id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "recurring mapping not found",
			goerr.V("user_id", userID), goerr.V("id", id))
	}

	mapping.IsActive = false
	mapping.UpdatedAt = time.Now().UTC()
	return nil
}
