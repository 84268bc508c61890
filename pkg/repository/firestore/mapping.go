package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type mappingRepository struct {
	client *firestore.Client
}

func (r *mappingRepository) collection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, userID.String()).Collection(mappingsCollection)
}

func (r *mappingRepository) Create(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mapping")
	}

	// Active label must stay unique per user
	iter := r.collection(mapping.UserID).Where("is_active", "==", true).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to query mappings")
		}

		var existing model.Mapping
		if err := doc.DataTo(&existing); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mapping")
		}
		if existing.MatchesLabel(mapping.CalendarLabel) {
			return nil, goerr.New("active mapping already exists for label",
				goerr.V("user_id", mapping.UserID),
				goerr.V("label", mapping.CalendarLabel))
		}
	}

	now := time.Now().UTC()
	created := *mapping
	if created.ID == "" {
		created.ID = model.NewMappingID()
	}
	created.CreatedAt = now
	created.UpdatedAt = now

	if _, err := r.collection(created.UserID).Doc(created.ID.String()).Set(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to put mapping to firestore")
	}

	return &created, nil
}

func (r *mappingRepository) Get(ctx context.Context, userID types.UserID, id model.MappingID) (*model.Mapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	doc, err := r.collection(userID).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "mapping not found",
				goerr.V("user_id", userID), goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get mapping from firestore")
	}

	var mapping model.Mapping
	if err := doc.DataTo(&mapping); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal mapping")
	}

	return &mapping, nil
}

func (r *mappingRepository) List(ctx context.Context, userID types.UserID) ([]*model.Mapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).Documents(ctx)
	defer iter.Stop()

	var mappings []*model.Mapping
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list mappings")
		}

		var mapping model.Mapping
		if err := doc.DataTo(&mapping); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mapping")
		}
		mappings = append(mappings, &mapping)
	}

	return mappings, nil
}

func (r *mappingRepository) ListActive(ctx context.Context, userID types.UserID) ([]*model.Mapping, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).Where("is_active", "==", true).Documents(ctx)
	defer iter.Stop()

	var mappings []*model.Mapping
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list active mappings")
		}

		var mapping model.Mapping
		if err := doc.DataTo(&mapping); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal mapping")
		}
		mappings = append(mappings, &mapping)
	}

	return mappings, nil
}

func (r *mappingRepository) Update(ctx context.Context, mapping *model.Mapping) (*model.Mapping, error) {
	if err := mapping.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid mapping")
	}

	existing, err := r.Get(ctx, mapping.UserID, mapping.ID)
	if err != nil {
		return nil, err
	}

	updated := *mapping
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if _, err := r.collection(updated.UserID).Doc(updated.ID.String()).Set(ctx, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to update mapping in firestore")
	}

	return &updated, nil
}

func (r *mappingRepository) Deactivate(ctx context.Context, userID types.UserID, id model.MappingID) error {
	mapping, err := r.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	mapping.IsActive = false
	mapping.UpdatedAt = time.Now().UTC()

	if _, err := r.collection(userID).Doc(id.String()).Set(ctx, mapping); err != nil {
		return goerr.Wrap(err, "failed to deactivate mapping in firestore")
	}

	return nil
}
