package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type mappingRepository struct {
	mu       sync.RWMutex
	mappings map[types.UserID]map[model.MappingID]*model.Mapping
}

func newMappingRepository() *mappingRepository {
	return &mappingRepository{
		mappings: make(map[types.UserID]map[model.MappingID]*model.Mapping),
	}
}

func copyMapping(m *model.Mapping) *model.Mapping {
	copied := *m
	return &copied
}

func (r *mappingRepository) Create(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mapping")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	byUser, ok := r.mappings[mapping.UserID]
	if !ok {
		byUser = make(map[model.MappingID]*model.Mapping)
		r.mappings[mapping.UserID] = byUser
	}

	// Active label is unique per user
	for _, existing := range byUser {
		if existing.IsActive && existing.MatchesLabel(mapping.CalendarLabel) {
			return nil, goerr.New("active mapping already exists for label",
				goerr.V("user_id", mapping.UserID),
				goerr.V("label", mapping.CalendarLabel))
		}
	}

	now := time.Now().UTC()
	created := copyMapping(mapping)
	if created.ID == "" {
		created.ID = model.NewMappingID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	byUser[created.ID] = created
	return copyMapping(created), nil
}

func (r *mappingRepository) Get(ctx context.Context, userID types.UserID, id model.MappingID) (*model.Mapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	mapping, ok := r.mappings[userID][id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "mapping not found",
			goerr.V("user_id", userID), goerr.V("id", id))
	}

	return copyMapping(mapping), nil
}

func (r *mappingRepository) List(ctx context.Context, userID types.UserID) ([]*model.Mapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	mappings := make([]*model.Mapping, 0, len(r.mappings[userID]))
	for _, mapping := range r.mappings[userID] {
		mappings = append(mappings, copyMapping(mapping))
	}

	return mappings, nil
}

func (r *mappingRepository) ListActive(ctx context.Context, userID types.UserID) ([]*model.Mapping, error) {
	all, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := make([]*model.Mapping, 0, len(all))
	for _, mapping := range all {
		if mapping.IsActive {
			active = append(active, mapping)
		}
	}

	return active, nil
}

func (r *mappingRepository) Update(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mapping")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.mappings[mapping.UserID][mapping.ID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "mapping not found",
			goerr.V("user_id", mapping.UserID), goerr.V("id", mapping.ID))
	}

	updated := copyMapping(mapping)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	r.mappings[mapping.UserID][updated.ID] = updated
	return copyMapping(updated), nil
}

func (r *mappingRepository) Deactivate(ctx context.Context, userID types.UserID, id model.MappingID) error {
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	mapping, ok := r.mappings[userID][id]
	if !ok {
		return goerr.Wrap(ErrNotFound, "mapping not found",
			goerr.V("user_id", userID), goerr.V("id", id))
	}

	mapping.IsActive = false
	mapping.UpdatedAt = time.Now().UTC()
	return nil
}
