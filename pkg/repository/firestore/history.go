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

type historyRepository struct {
	client *firestore.Client
}

func (r *historyRepository) collection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, userID.String()).Collection(historyCollection)
}

func (r *historyRepository) Append(ctx context.Context, record *model.ProcessingHistoryRecord) (*model.ProcessingHistoryRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid history record")
	}

	created := *record
	if created.ID == "" {
		created.ID = model.NewHistoryID()
	}
	if created.ProcessedAt.IsZero() {
		created.ProcessedAt = time.Now().UTC()
	}

	// Create (not Set) keeps the log append-only: overwriting an existing
	// record is an error.
	if _, err := r.collection(created.UserID).Doc(created.ID.String()).Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to append history record to firestore")
	}

	return &created, nil
}

func (r *historyRepository) ListByWeek(ctx context.Context, userID types.UserID, weekStart types.Day) ([]*model.ProcessingHistoryRecord, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).Where("week_start", "==", weekStart.String()).Documents(ctx)
	defer iter.Stop()

	return collectHistory(iter)
}

func (r *historyRepository) List(ctx context.Context, userID types.UserID) ([]*model.ProcessingHistoryRecord, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).OrderBy("processed_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	return collectHistory(iter)
}

func collectHistory(iter *firestore.DocumentIterator) ([]*model.ProcessingHistoryRecord, error) {
	var records []*model.ProcessingHistoryRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list history records")
		}

		var record model.ProcessingHistoryRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal history record")
		}
		records = append(records, &record)
	}

	return records, nil
}
