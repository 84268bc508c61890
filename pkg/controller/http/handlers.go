package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/usecase"
	"github.com/hourbeam/hourbeam/pkg/utils/errutil"
	"github.com/hourbeam/hourbeam/pkg/utils/safe"
)

// statusOf maps taxonomy errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrAuthExpired):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrIdentityMismatch):
		return http.StatusForbidden
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrSinkRejected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrSourceUnavailable), errors.Is(err, types.ErrSinkUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func decodeJSON(r *http.Request, out any) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return goerr.Wrap(err, "invalid request body")
	}
	return nil
}

func pathUserID(r *http.Request) (types.UserID, error) {
	userID := types.UserID(chi.URLParam(r, "userID"))
	if err := userID.Validate(); err != nil {
		return "", err
	}
	return userID, nil
}

type runRequest struct {
	WeekStart string `json:"week_start"`
}

type commitRequest struct {
	WeekStart    string   `json:"week_start"`
	CandidateIDs []string `json:"candidate_ids"`
}

type candidateResponse struct {
	ID          string          `json:"id"`
	ProjectID   int64           `json:"project_id"`
	ProjectName string          `json:"project_name,omitempty"`
	TaskID      int64           `json:"task_id"`
	TaskName    string          `json:"task_name,omitempty"`
	Day         string          `json:"day"`
	Hours       float64         `json:"hours"`
	Notes       string          `json:"notes,omitempty"`
	EventIDs    []types.EventID `json:"event_ids"`
}

func toCandidateResponse(c *model.TimeEntryCandidate) candidateResponse {
	return candidateResponse{
		ID:          c.ID(),
		ProjectID:   c.ProjectID.Int64(),
		ProjectName: c.ProjectName,
		TaskID:      c.TaskID.Int64(),
		TaskName:    c.TaskName,
		Day:         c.Day.String(),
		Hours:       c.Hours,
		Notes:       c.Notes,
		EventIDs:    c.EventIDs,
	}
}

type skippedResponse struct {
	Candidate candidateResponse `json:"candidate"`
	Reason    string            `json:"reason"`
	Detail    string            `json:"detail,omitempty"`
}

type unmappedResponse struct {
	EventID   types.EventID `json:"event_id"`
	Summary   string        `json:"summary"`
	Day       string        `json:"day"`
	Hours     float64       `json:"hours"`
	Signature string        `json:"signature"`
}

type previewResponse struct {
	WeekStart     string              `json:"week_start"`
	Candidates    []candidateResponse `json:"candidates"`
	Skipped       []skippedResponse   `json:"skipped"`
	Unmapped      []unmappedResponse  `json:"unmapped"`
	Warnings      []string            `json:"warnings,omitempty"`
	SkippedEvents int                 `json:"skipped_events"`
}

func toUnmappedResponses(unmapped []*model.UnmappedEvent) []unmappedResponse {
	out := make([]unmappedResponse, 0, len(unmapped))
	for _, u := range unmapped {
		out = append(out, unmappedResponse{
			EventID:   u.Event.ID,
			Summary:   u.Event.Summary,
			Day:       u.Event.Day().String(),
			Hours:     model.RoundHours(u.Event.Duration().Hours()),
			Signature: u.Signature,
		})
	}
	return out
}

func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	weekStart, err := types.ParseDay(req.WeekStart)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	result, err := s.uc.Reconcile.Preview(r.Context(), userID, weekStart)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	resp := previewResponse{
		WeekStart:     result.WeekStart.String(),
		Candidates:    make([]candidateResponse, 0, len(result.Candidates)),
		Skipped:       make([]skippedResponse, 0, len(result.Skipped)),
		Unmapped:      toUnmappedResponses(result.Unmapped),
		Warnings:      result.Warnings,
		SkippedEvents: result.SkippedEvents,
	}
	for _, c := range result.Candidates {
		resp.Candidates = append(resp.Candidates, toCandidateResponse(c))
	}
	for _, skipped := range result.Skipped {
		resp.Skipped = append(resp.Skipped, skippedResponse{
			Candidate: toCandidateResponse(skipped.Candidate),
			Reason:    skipped.Reason.String(),
			Detail:    skipped.Detail,
		})
	}

	respondJSON(w, r, http.StatusOK, resp)
}

type outcomeResponse struct {
	Candidate   candidateResponse `json:"candidate"`
	Status      string            `json:"status"`
	SinkEntryID int64             `json:"sink_entry_id,omitempty"`
	Detail      string            `json:"detail,omitempty"`
}

type commitResponse struct {
	WeekStart       string             `json:"week_start"`
	Submitted       []outcomeResponse  `json:"submitted"`
	Skipped         []outcomeResponse  `json:"skipped"`
	Failed          []outcomeResponse  `json:"failed"`
	Unmapped        []unmappedResponse `json:"unmapped"`
	Warnings        []string           `json:"warnings,omitempty"`
	PartiallyFailed bool               `json:"partially_failed"`
}

func toOutcomeResponses(outcomes []*usecase.CommitOutcome) []outcomeResponse {
	out := make([]outcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, outcomeResponse{
			Candidate:   toCandidateResponse(o.Candidate),
			Status:      o.Status.String(),
			SinkEntryID: o.SinkEntryID.Int64(),
			Detail:      o.Detail,
		})
	}
	return out
}

func (s *Server) commitHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req commitRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	weekStart, err := types.ParseDay(req.WeekStart)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	result, err := s.uc.Reconcile.Commit(r.Context(), userID, weekStart, req.CandidateIDs)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, r, http.StatusOK, commitResponse{
		WeekStart:       result.WeekStart.String(),
		Submitted:       toOutcomeResponses(result.Submitted),
		Skipped:         toOutcomeResponses(result.Skipped),
		Failed:          toOutcomeResponses(result.Failed),
		Unmapped:        toUnmappedResponses(result.Unmapped),
		Warnings:        result.Warnings,
		PartiallyFailed: result.PartiallyFailed,
	})
}

type historyRecordResponse struct {
	ID          string          `json:"id"`
	WeekStart   string          `json:"week_start"`
	EventIDs    []types.EventID `json:"event_ids"`
	Summary     string          `json:"summary,omitempty"`
	ProjectID   int64           `json:"project_id"`
	TaskID      int64           `json:"task_id"`
	Day         string          `json:"day"`
	Hours       float64         `json:"hours"`
	Status      string          `json:"status"`
	SinkEntryID int64           `json:"sink_entry_id,omitempty"`
	Error       string          `json:"error,omitempty"`
	ProcessedAt string          `json:"processed_at"`
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	records, err := s.uc.Reconcile.History(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	resp := struct {
		Records []historyRecordResponse `json:"records"`
	}{Records: make([]historyRecordResponse, 0, len(records))}
	for _, record := range records {
		resp.Records = append(resp.Records, historyRecordResponse{
			ID:          record.ID.String(),
			WeekStart:   record.WeekStart.String(),
			EventIDs:    record.EventIDs,
			Summary:     record.Summary,
			ProjectID:   record.ProjectID.Int64(),
			TaskID:      record.TaskID.Int64(),
			Day:         record.Day.String(),
			Hours:       record.Hours,
			Status:      record.Status.String(),
			SinkEntryID: record.SinkEntryID.Int64(),
			Error:       record.Error,
			ProcessedAt: record.ProcessedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	respondJSON(w, r, http.StatusOK, resp)
}
