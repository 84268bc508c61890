package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type recurringMappingRepository struct {
	client *firestore.Client
}

func (r *recurringMappingRepository) collection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, userID.String()).Collection(recurringCollection)
}

func (r *recurringMappingRepository) Create(ctx context.Context, mapping *model.RecurringMapping) (*model.RecurringMapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid recurring mapping")
	}

	if existing, err := r.GetByEventID(ctx, mapping.UserID, mapping.RecurringEventID); err == nil && existing != nil {
		return nil, goerr.New("active recurring mapping already exists for event",
			goerr.V("user_id", mapping.UserID),
			goerr.V("recurring_event_id", mapping.RecurringEventID))
	}

	now := time.Now().UTC()
	created := *mapping
	if created.ID == "" {
		created.ID = model.NewMappingID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(created.UserID).Doc(created.ID.String()).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to put recurring mapping to firestore")
	}

	return &created, nil
}

func (r *recurringMappingRepository) GetByEventID(ctx context.Context, userID types.UserID, recurringEventID string) (*model.RecurringMapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).
		Where("recurring_event_id", "==", recurringEventID).
		Where("is_active", "==", true).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(ErrNotFound, "recurring mapping not found",
			goerr.V("user_id", userID), goerr.V("recurring_event_id", recurringEventID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query recurring mappings")
	}

	var mapping model.RecurringMapping
	if err := doc.DataTo(&mapping); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal recurring mapping")
	}

	return &mapping, nil
}

func (r *recurringMappingRepository) List(ctx context.Context, userID types.UserID) ([]*model.RecurringMapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).Documents(ctx)
	defer iter.Stop()

	var mappings []*model.RecurringMapping
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list recurring mappings")
		}

		var mapping model.RecurringMapping
		if err := doc.DataTo(&mapping); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal recurring mapping")
		}
		mappings = append(mappings, &mapping)
	}

	return mappings, nil
}

func (r *recurringMappingRepository) Deactivate(ctx context.Context, userID types.UserID, id model.MappingID) error {
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}

	docRef := r.collection(userID).Doc(id.String())
	doc, err := docRef.Get(ctx)
	if err != nil {
		return goerr.Wrap(ErrNotFound, "recurring mapping not found",
			goerr.V("user_id", userID), goerr.V("id", id))
	}

	var mapping model.RecurringMapping
	if err := doc.DataTo(&mapping); err != nil {
		return goerr.Wrap(err, "failed to unmarshal recurring mapping")
	}

	mapping.IsActive = false
	mapping.UpdatedAt = time.Now().UTC()

	if _, err := docRef.Set(ctx, &mapping); err != nil {
		return goerr.Wrap(err, "failed to deactivate recurring mapping in firestore")
	}

	return nil
}
