package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type patternRepository struct {
	client *firestore.Client
}

// patternDoc is the stored form of one signature→outcome pair. Totals per
// signature are derived at read time by summing pair occurrences.
type patternDoc struct {
	Signature   string    `firestore:"signature"`
	ProjectID   int64     `firestore:"project_id"`
	TaskID      int64     `firestore:"task_id"`
	Occurrences int       `firestore:"occurrences"`
	LastSeen    time.Time `firestore:"last_seen"`
}

func (r *patternRepository) collection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, userID.String()).Collection(patternsCollection)
}

func patternDocID(signature string, project types.ProjectID, task types.TaskID) string {
	sum := sha256.Sum256([]byte(signature))
	return fmt.Sprintf("%s-%d-%d", hex.EncodeToString(sum[:8]), project, task)
}

func (r *patternRepository) Record(ctx context.Context, userID types.UserID, signature string, project types.ProjectID, task types.TaskID, at time.Time) error {
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}
	if signature == "" {
		return goerr.New("signature cannot be empty", goerr.V("user_id", userID))
	}

	docRef := r.collection(userID).Doc(patternDocID(signature, project, task))

	// Transaction serializes concurrent learns for the same pair
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var stored patternDoc

		doc, err := tx.Get(docRef)
		switch {
		case err == nil:
			if err := doc.DataTo(&stored); err != nil {
				return goerr.Wrap(err, "failed to unmarshal pattern")
			}
		case status.Code(err) == codes.NotFound:
			stored = patternDoc{
				Signature: signature,
				ProjectID: project.Int64(),
				TaskID:    task.Int64(),
			}
		default:
			return goerr.Wrap(err, "failed to get pattern from firestore")
		}

		stored.Occurrences++
		if at.After(stored.LastSeen) {
			stored.LastSeen = at
		}

		return tx.Set(docRef, &stored)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to record pattern",
			goerr.V("user_id", userID), goerr.V("signature", signature))
	}

	return nil
}

func (r *patternRepository) List(ctx context.Context, userID types.UserID) ([]*model.PatternSignature, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	iter := r.collection(userID).Documents(ctx)
	defer iter.Stop()

	var docs []patternDoc
	totals := map[string]int{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list patterns")
		}

		var stored patternDoc
		if err := doc.DataTo(&stored); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal pattern")
		}
		docs = append(docs, stored)
		totals[stored.Signature] += stored.Occurrences
	}

	signatures := make([]*model.PatternSignature, 0, len(docs))
	for _, stored := range docs {
		signatures = append(signatures, &model.PatternSignature{
			UserID:           userID,
			Signature:        stored.Signature,
			ProjectID:        types.ProjectID(stored.ProjectID),
			TaskID:           types.TaskID(stored.TaskID),
			Occurrences:      stored.Occurrences,
			TotalOccurrences: totals[stored.Signature],
			LastSeen:         stored.LastSeen,
		})
	}

	return signatures, nil
}
