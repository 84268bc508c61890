package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

type credentialStore struct {
	mu        sync.RWMutex
	materials map[types.UserID]*auth.Material
}

func newCredentialStore() *credentialStore {
	return &credentialStore{
		materials: make(map[types.UserID]*auth.Material),
	}
}

func copyMaterial(m *auth.Material) *auth.Material {
	copied := *m
	if m.OAuth != nil {
		oauth := *m.OAuth
		copied.OAuth = &oauth
	}
	if m.Legacy != nil {
		legacy := *m.Legacy
		copied.Legacy = &legacy
	}
	return &copied
}

func (m *Memory) PutCredential(ctx context.Context, material *auth.Material) error {
	if err := material.Validate(); err != nil {
		return goerr.Wrap(err, "invalid credential material")
	}

	m.credentials.mu.Lock()
	defer m.credentials.mu.Unlock()

	stored := copyMaterial(material)
	stored.UpdatedAt = time.Now().UTC()
	m.credentials.materials[material.UserID] = stored
	return nil
}

func (m *Memory) GetCredential(ctx context.Context, userID types.UserID) (*auth.Material, error) {
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}

	m.credentials.mu.RLock()
	defer m.credentials.mu.RUnlock()

	material, ok := m.credentials.materials[userID]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "credential not found", goerr.V("user_id", userID))
	}

	return copyMaterial(material), nil
}

func (m *Memory) DeleteCredential(ctx context.Context, userID types.UserID) error {
	if err := userID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user ID")
	}

	m.credentials.mu.Lock()
	defer m.credentials.mu.Unlock()

	if _, ok := m.credentials.materials[userID]; !ok {
		return goerr.Wrap(ErrNotFound, "credential not found", goerr.V("user_id", userID))
	}

	delete(m.credentials.materials, userID)
	return nil
}
