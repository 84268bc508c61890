package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/hourbeam/hourbeam/pkg/domain/interfaces"
	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/model/auth"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/repository/memory"
	"github.com/hourbeam/hourbeam/pkg/usecase"

	server "github.com/hourbeam/hourbeam/pkg/controller/http"
)

type stubSource struct {
	events []*model.CalendarEvent
}

func (x *stubSource) FetchEvents(ctx context.Context, userID types.UserID, from, to time.Time) ([]*model.CalendarEvent, error) {
	return x.events, nil
}

type stubSink struct {
	created []*interfaces.NewEntry
}

func (x *stubSink) ListEntries(ctx context.Context, authCtx *auth.Context, from, to types.Day) ([]*model.SinkEntry, error) {
	return nil, nil
}

func (x *stubSink) CreateEntry(ctx context.Context, authCtx *auth.Context, entry *interfaces.NewEntry) (types.EntryID, error) {
	x.created = append(x.created, entry)
	return types.EntryID(len(x.created)), nil
}

func (x *stubSink) GetIdentity(ctx context.Context, authCtx *auth.Context) (*model.RemoteIdentity, error) {
	return &model.RemoteIdentity{ID: 777, Email: "worker@example.com"}, nil
}

func newTestServer(t *testing.T) (*server.Server, *memory.Memory, *stubSink) {
	t.Helper()
	repo := memory.New()
	gt.NoError(t, repo.PutCredential(context.Background(), &auth.Material{
		UserID: "U123",
		OAuth: &auth.OAuthMaterial{
			AccessToken:  "token",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(time.Hour),
			AccountID:    42,
			RemoteUserID: 777,
			RemoteEmail:  "worker@example.com",
		},
	}))

	start, _ := time.ParseInLocation("2006-01-02T15:04", "2024-03-04T09:00", time.Local)
	source := &stubSource{events: []*model.CalendarEvent{
		{
			ID:         "ev-1",
			UserID:     "U123",
			Summary:    "Weekly sync",
			Start:      start,
			End:        start.Add(90 * time.Minute),
			Label:      "Platform",
			Attendance: model.AttendanceAccepted,
		},
	}}
	sink := &stubSink{}

	uc := usecase.New(repo,
		usecase.WithSource(source),
		usecase.WithSink(sink),
	)
	return server.New(uc), repo, sink
}

func createMapping(t *testing.T, srv *server.Server) string {
	t.Helper()
	body := bytes.NewBufferString(`{
		"calendar_label": "Platform",
		"project_id": 10,
		"project_name": "Core",
		"task_id": 20,
		"task_name": "Dev"
	}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/U123/mappings/", body))
	gt.Value(t, rec.Code).Equal(http.StatusCreated)

	var resp struct {
		ID string `json:"id"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func TestMappingCRUD(t *testing.T) {
	srv, _, _ := newTestServer(t)

	mappingID := createMapping(t, srv)
	gt.Bool(t, mappingID != "").True()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/U123/mappings/", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var listResp struct {
		Mappings []struct {
			ID            string `json:"id"`
			CalendarLabel string `json:"calendar_label"`
			IsActive      bool   `json:"is_active"`
		} `json:"mappings"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	gt.Array(t, listResp.Mappings).Length(1)
	gt.Value(t, listResp.Mappings[0].CalendarLabel).Equal("Platform")

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/users/U123/mappings/"+mappingID, nil))
	gt.Value(t, rec.Code).Equal(http.StatusNoContent)
}

func TestPreviewRoundTrip(t *testing.T) {
	srv, _, sink := newTestServer(t)
	createMapping(t, srv)

	body := bytes.NewBufferString(`{"week_start": "2024-03-04"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/U123/preview", body))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		WeekStart  string `json:"week_start"`
		Candidates []struct {
			ID    string  `json:"id"`
			Hours float64 `json:"hours"`
			Day   string  `json:"day"`
		} `json:"candidates"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.Value(t, resp.WeekStart).Equal("2024-03-04")
	gt.Array(t, resp.Candidates).Length(1)
	gt.Value(t, resp.Candidates[0].ID).Equal("10-20-2024-03-04")
	gt.Value(t, resp.Candidates[0].Hours).Equal(1.5)

	// preview never writes
	gt.Array(t, sink.created).Length(0)
}

func TestCommitRoundTrip(t *testing.T) {
	srv, repo, sink := newTestServer(t)
	createMapping(t, srv)

	body := bytes.NewBufferString(`{"week_start": "2024-03-04", "candidate_ids": ["10-20-2024-03-04"]}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/U123/commit", body))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Submitted []struct {
			Status      string `json:"status"`
			SinkEntryID int64  `json:"sink_entry_id"`
		} `json:"submitted"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.Array(t, resp.Submitted).Length(1)
	gt.Value(t, resp.Submitted[0].Status).Equal("success")
	gt.Array(t, sink.created).Length(1)

	history := gt.R1(repo.History().List(context.Background(), "U123")).NoError(t)
	gt.Array(t, history).Length(1)
}

func TestHistoryEndpoint(t *testing.T) {
	srv, repo, _ := newTestServer(t)

	_, err := repo.History().Append(context.Background(), &model.ProcessingHistoryRecord{
		UserID:    "U123",
		WeekStart: "2024-03-04",
		EventIDs:  []types.EventID{"ev-1"},
		Summary:   "Weekly sync",
		ProjectID: 10,
		TaskID:    20,
		Day:       "2024-03-04",
		Hours:     1.5,
		Status:    types.RecordStatusSuccess,
	})
	gt.NoError(t, err).Required()

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/U123/history", nil))
	gt.Value(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Records []struct {
			Status string `json:"status"`
			Hours  float64
		} `json:"records"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.Array(t, resp.Records).Length(1)
	gt.Value(t, resp.Records[0].Status).Equal("success")
}

func TestPreviewWithoutCredential(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo,
		usecase.WithSource(&stubSource{}),
		usecase.WithSink(&stubSink{}),
	)
	srv := server.New(uc)

	body := bytes.NewBufferString(`{"week_start": "2024-03-04"}`)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/users/U123/preview", body))
	gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
}
