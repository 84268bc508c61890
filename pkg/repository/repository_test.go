package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/repository/firestore"
	"github.com/hourbeam/hourbeam/pkg/repository/memory"
)

var userSeq atomic.Int64

// newUserID isolates subtests from each other so the suite can run against a
// shared Firestore database
func newUserID() types.UserID {
	return types.UserID(fmt.Sprintf("user-%d-%d", time.Now().UnixNano(), userSeq.Add(1)))
}

func testMapping(userID types.UserID, label string) *model.Mapping {
	return &model.Mapping{
		UserID:        userID,
		CalendarLabel: label,
		ProjectID:     10,
		ProjectName:   "Platform",
		TaskID:        20,
		TaskName:      "Development",
		IsActive:      true,
	}
}

func runRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Mapping create assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := repo.Mapping().Create(ctx, testMapping(userID, "platform"))
		gt.NoError(t, err).Required()

		gt.Value(t, created.ID.String()).NotEqual("")
		gt.Value(t, created.CalendarLabel).Equal("platform")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()

		got, err := repo.Mapping().Get(ctx, userID, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ProjectID).Equal(types.ProjectID(10))
	})

	t.Run("Mapping rejects duplicate active label", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		_, err := repo.Mapping().Create(ctx, testMapping(userID, "platform"))
		gt.NoError(t, err).Required()

		_, err = repo.Mapping().Create(ctx, testMapping(userID, "Platform"))
		gt.Error(t, err)
	})

	t.Run("Mapping deactivate frees the label", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := repo.Mapping().Create(ctx, testMapping(userID, "platform"))
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Mapping().Deactivate(ctx, userID, created.ID)).Required()

		active, err := repo.Mapping().ListActive(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, active).Length(0)

		all, err := repo.Mapping().List(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(1)

		_, err = repo.Mapping().Create(ctx, testMapping(userID, "platform"))
		gt.NoError(t, err)
	})

	t.Run("Mapping get for missing ID returns not found", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Mapping().Get(ctx, newUserID(), model.NewMappingID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("Mappings are partitioned by user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()
		other := newUserID()

		created, err := repo.Mapping().Create(ctx, testMapping(userID, "platform"))
		gt.NoError(t, err).Required()

		_, err = repo.Mapping().Get(ctx, other, created.ID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()

		mappings, err := repo.Mapping().List(ctx, other)
		gt.NoError(t, err).Required()
		gt.Array(t, mappings).Length(0)
	})

	t.Run("Recurring mapping lookup by event ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := repo.RecurringMapping().Create(ctx, &model.RecurringMapping{
			UserID:           userID,
			RecurringEventID: "series-1",
			EventSummary:     "Weekly sync",
			ProjectID:        10,
			TaskID:           20,
			IsActive:         true,
		})
		gt.NoError(t, err).Required()

		got, err := repo.RecurringMapping().GetByEventID(ctx, userID, "series-1")
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)

		gt.NoError(t, repo.RecurringMapping().Deactivate(ctx, userID, created.ID)).Required()

		_, err = repo.RecurringMapping().GetByEventID(ctx, userID, "series-1")
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("Pattern record accumulates pair and total counts", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()
		now := time.Now()

		gt.NoError(t, repo.Pattern().Record(ctx, userID, "weekly sync", 10, 20, now.Add(-time.Hour))).Required()
		gt.NoError(t, repo.Pattern().Record(ctx, userID, "weekly sync", 10, 20, now)).Required()
		gt.NoError(t, repo.Pattern().Record(ctx, userID, "weekly sync", 30, 40, now)).Required()

		signatures, err := repo.Pattern().List(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, signatures).Length(2)

		for _, sig := range signatures {
			gt.Value(t, sig.TotalOccurrences).Equal(3)
			if sig.ProjectID == 10 {
				gt.Value(t, sig.Occurrences).Equal(2)
			} else {
				gt.Value(t, sig.Occurrences).Equal(1)
			}
		}
	})

	t.Run("Pattern rejects empty signature", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.Error(t, repo.Pattern().Record(ctx, newUserID(), "", 10, 20, time.Now()))
	})

	t.Run("History append and list by week", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		record := &model.ProcessingHistoryRecord{
			UserID:    userID,
			WeekStart: "2024-03-04",
			EventIDs:  []types.EventID{"ev1", "ev2"},
			Summary:   "Weekly sync",
			ProjectID: 10,
			TaskID:    20,
			Day:       "2024-03-05",
			Hours:     1.5,
			Status:    types.RecordStatusSuccess,
		}

		created, err := repo.History().Append(ctx, record)
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID.String()).NotEqual("")
		gt.Bool(t, created.ProcessedAt.IsZero()).False()

		_, err = repo.History().Append(ctx, &model.ProcessingHistoryRecord{
			UserID:    userID,
			WeekStart: "2024-03-11",
			ProjectID: 10,
			TaskID:    20,
			Day:       "2024-03-12",
			Hours:     2,
			Status:    types.RecordStatusSkipped,
		})
		gt.NoError(t, err).Required()

		byWeek, err := repo.History().ListByWeek(ctx, userID, "2024-03-04")
		gt.NoError(t, err).Required()
		gt.Array(t, byWeek).Length(1)
		gt.Array(t, byWeek[0].EventIDs).Length(2)

		all, err := repo.History().List(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)
	})

	t.Run("History rejects error record without detail", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.History().Append(ctx, &model.ProcessingHistoryRecord{
			UserID:    newUserID(),
			WeekStart: "2024-03-04",
			ProjectID: 10,
			TaskID:    20,
			Day:       "2024-03-05",
			Hours:     1,
			Status:    types.RecordStatusError,
		})
		gt.Error(t, err)
	})

	t.Run("Audit append and list", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		created, err := repo.Audit().Append(ctx, &model.AuditRecord{
			UserID: userID,
			Kind:   types.AuditKindTokenRefresh,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID.String()).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		records, err := repo.Audit().List(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(1)
		gt.Value(t, records[0].Kind).Equal(types.AuditKindTokenRefresh)
	})

	t.Run("Credential put, get and delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newUserID()

		material := &auth.Material{
			UserID: userID,
			OAuth: &auth.OAuthMaterial{
				AccessToken:  "at",
				RefreshToken: "rt",
				Expiry:       time.Now().Add(time.Hour),
				AccountID:    111,
				AccountName:  "Acme",
				RemoteUserID: 777,
				RemoteEmail:  "someone@example.com",
			},
		}
		gt.NoError(t, repo.PutCredential(ctx, material)).Required()

		got, err := repo.GetCredential(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.OAuth).NotNil()
		gt.Value(t, got.OAuth.RemoteUserID).Equal(int64(777))

		gt.NoError(t, repo.DeleteCredential(ctx, userID)).Required()

		_, err = repo.GetCredential(ctx, userID)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrNotFound)).True()
	})

	t.Run("Credential rejects material without variants", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.Error(t, repo.PutCredential(ctx, &auth.Material{UserID: newUserID()}))
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreRepository(t *testing.T) {
	runRepositoryTest(t, newFirestoreRepository)
}
