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

type auditRepository struct {
	client *firestore.Client
}

func (r *auditRepository) collection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, userID.String()).Collection(auditCollection)
}

func (r *auditRepository) Append(ctx context.Context, record *model.AuditRecord) (*model.AuditRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid audit record")
	}

	created := *record
	if created.ID == "" {
		created.ID = model.NewAuditID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection(created.UserID).Doc(created.ID.String()).Create(ctx, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to append audit record to firestore")
	}

	return &created, nil
}

func (r *auditRepository) List(ctx context.Context, userID types.UserID) ([]*model.AuditRecord, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var records []*model.AuditRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list audit records")
		}

		var record model.AuditRecord
		if err := doc.DataTo(&record); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal audit record")
		}
		records = append(records, &record)
	}

	return records, nil
}
