package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

func (f *Firestore) credentialDoc(userID types.UserID) *firestore.DocumentRef {
	return userDoc(f.client, userID.String()).Collection(credentialCollection).Doc(credentialDocument)
}

func (f *Firestore) PutCredential(ctx context.Context, material *auth.Material) error {
	if err := material.Validate(); err != nil {
		return goerr.Wrap(err, "invalid credential material")
	}

	stored := *material
	stored.UpdatedAt = time.Now().UTC()

	if _, err := f.credentialDoc(material.UserID).Set(ctx, &stored); err != nil {
		return goerr.Wrap(err, "failed to put credential to firestore",
			goerr.V("user_id", material.UserID))
	}

	return nil
}

func (f *Firestore) GetCredential(ctx context.Context, userID types.UserID) (*auth.Material, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	doc, err := f.credentialDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "credential not found", goerr.V("user_id", userID))
		}
		return nil, goerr.Wrap(err, "failed to get credential from firestore")
	}

	var material auth.Material
	if err := doc.DataTo(&material); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal credential")
	}

	return &material, nil
}

func (f *Firestore) DeleteCredential(ctx context.Context, userID types.UserID) error {
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}

	docRef := f.credentialDoc(userID)

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "credential not found", goerr.V("user_id", userID))
		}
		return goerr.Wrap(err, "failed to get credential from firestore")
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete credential from firestore")
	}

	return nil
}
