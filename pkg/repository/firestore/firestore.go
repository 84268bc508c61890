package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = types.ErrNotFound

// Collection layout: everything lives under users/{userID}/..., so user
// partitioning is structural rather than a query filter.
const (
	usersCollection      = "users"
	mappingsCollection   = "mappings"
	recurringCollection  = "recurring_mappings"
	patternsCollection   = "patterns"
	historyCollection    = "history"
	auditCollection      = "audit"
	credentialDocument   = "credential"
	credentialCollection = "credentials"
)

type Firestore struct {
	client    *firestore.Client
	mapping   *mappingRepository
	recurring *recurringMappingRepository
	pattern   *patternRepository
	history   *historyRepository
	audit     *auditRepository
}

var _ interfaces.Repository = &Firestore{}

func New(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	return &Firestore{
		client:    client,
		mapping:   &mappingRepository{client: client},
		recurring: &recurringMappingRepository{client: client},
		pattern:   &patternRepository{client: client},
		history:   &historyRepository{client: client},
		audit:     &auditRepository{client: client},
	}, nil
}

func (f *Firestore) Mapping() interfaces.MappingRepository {
	return f.mapping
}

func (f *Firestore) RecurringMapping() interfaces.RecurringMappingRepository {
	return f.recurring
}

func (f *Firestore) Pattern() interfaces.PatternRepository {
	return f.pattern
}

func (f *Firestore) History() interfaces.HistoryRepository {
	return f.history
}

func (f *Firestore) Audit() interfaces.AuditRepository {
	return f.audit
}

// Close closes the underlying firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}

func userDoc(client *firestore.Client, userID string) *firestore.DocumentRef {
	return client.Collection(usersCollection).Doc(userID)
}
