package harvest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/service/harvest"
)

func testAuthCtx() *auth.Context {
	return &auth.Context{
		UserID:       "U123",
		Method:       auth.MethodOAuth,
		AccessToken:  "test-token",
		AccountID:    42,
		RemoteUserID: 777,
		RemoteEmail:  "worker@example.com",
	}
}

func TestListEntriesPagination(t *testing.T) {
	var gotAuth, gotAccount, gotUserID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccount = r.Header.Get("Harvest-Account-Id")
		gotUserID = r.URL.Query().Get("user_id")

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{
				"time_entries": [
					{"id": 1, "spent_date": "2024-03-04", "hours": 1.5, "notes": "standup",
					 "project": {"id": 10, "name": "Core"}, "task": {"id": 20, "name": "Dev"}}
				],
				"next_page": 2
			}`))
		default:
			_, _ = w.Write([]byte(`{
				"time_entries": [
					{"id": 2, "spent_date": "2024-03-05", "hours": 0.5, "is_locked": true,
					 "project": {"id": 10, "name": "Core"}, "task": {"id": 21, "name": "Review"}}
				],
				"next_page": null
			}`))
		}
	}))
	defer ts.Close()

	client := harvest.New(harvest.WithBaseURL(ts.URL))
	entries, err := client.ListEntries(context.Background(), testAuthCtx(), "2024-03-04", "2024-03-10")
	gt.NoError(t, err).Required()

	gt.Value(t, gotAuth).Equal("Bearer test-token")
	gt.Value(t, gotAccount).Equal("42")
	gt.Value(t, gotUserID).Equal("777")

	gt.Array(t, entries).Length(2)
	gt.Value(t, entries[0].ID).Equal(types.EntryID(1))
	gt.Value(t, entries[0].Day).Equal(types.Day("2024-03-04"))
	gt.Value(t, entries[0].Hours).Equal(1.5)
	gt.Value(t, entries[1].TaskID).Equal(types.TaskID(21))
	gt.Bool(t, entries[1].IsLocked).True()
}

func TestCreateEntry(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.Method).Equal(http.MethodPost)
		gt.Value(t, r.URL.Path).Equal("/time_entries")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 9001}`))
	}))
	defer ts.Close()

	client := harvest.New(harvest.WithBaseURL(ts.URL))
	entryID, err := client.CreateEntry(context.Background(), testAuthCtx(), &interfaces.NewEntry{
		ProjectID: 10,
		TaskID:    20,
		Day:       "2024-03-04",
		Hours:     1.5,
		Notes:     "standup | Time: 09:00-10:30",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, entryID).Equal(types.EntryID(9001))
}

func TestCreateEntryRejectsInvalidIDs(t *testing.T) {
	client := harvest.New()
	_, err := client.CreateEntry(context.Background(), testAuthCtx(), &interfaces.NewEntry{
		ProjectID: 0,
		TaskID:    20,
		Day:       "2024-03-04",
		Hours:     1,
	})
	gt.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, types.ErrAuthExpired},
		{"validation", http.StatusUnprocessableEntity, types.ErrSinkRejected},
		{"forbidden", http.StatusForbidden, types.ErrSinkRejected},
		{"throttled", http.StatusTooManyRequests, types.ErrSinkUnavailable},
		{"server", http.StatusInternalServerError, types.ErrSinkUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"message": "nope"}`))
			}))
			defer ts.Close()

			client := harvest.New(harvest.WithBaseURL(ts.URL))
			_, err := client.GetIdentity(context.Background(), testAuthCtx())
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, tc.want)).True()
		})
	}
}

func TestGetIdentity(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Value(t, r.URL.Path).Equal("/users/me")
		_, _ = w.Write([]byte(`{"id": 777, "email": "worker@example.com"}`))
	}))
	defer ts.Close()

	client := harvest.New(harvest.WithBaseURL(ts.URL))
	identity, err := client.GetIdentity(context.Background(), testAuthCtx())
	gt.NoError(t, err).Required()
	gt.Value(t, identity.ID).Equal(int64(777))
	gt.Value(t, identity.Email).Equal("worker@example.com")
}
