package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hourbeam/hourbeam/pkg/domain/model"
	"github.com/hourbeam/hourbeam/pkg/domain/types"
	"github.com/hourbeam/hourbeam/pkg/utils/errutil"
)

type mappingRequest struct {
	CalendarLabel string `json:"calendar_label"`
	ProjectID     int64  `json:"project_id"`
	ProjectName   string `json:"project_name"`
	TaskID        int64  `json:"task_id"`
	TaskName      string `json:"task_name"`
}

type mappingResponse struct {
	ID            string `json:"id"`
	CalendarLabel string `json:"calendar_label"`
	ProjectID     int64  `json:"project_id"`
	ProjectName   string `json:"project_name,omitempty"`
	TaskID        int64  `json:"task_id"`
	TaskName      string `json:"task_name,omitempty"`
	IsActive      bool   `json:"is_active"`
}

func toMappingResponse(m *model.Mapping) mappingResponse {
	return mappingResponse{
		ID:            m.ID.String(),
		CalendarLabel: m.CalendarLabel,
		ProjectID:     m.ProjectID.Int64(),
		ProjectName:   m.ProjectName,
		TaskID:        m.TaskID.Int64(),
		TaskName:      m.TaskName,
		IsActive:      m.IsActive,
	}
}

func (s *Server) listMappingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	mappings, err := s.uc.Mapping.List(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	resp := struct {
		Mappings []mappingResponse `json:"mappings"`
	}{Mappings: make([]mappingResponse, 0, len(mappings))}
	for _, m := range mappings {
		resp.Mappings = append(resp.Mappings, toMappingResponse(m))
	}

	respondJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createMappingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req mappingRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	created, err := s.uc.Mapping.Create(r.Context(), &model.Mapping{
		UserID:        userID,
		CalendarLabel: req.CalendarLabel,
		ProjectID:     types.ProjectID(req.ProjectID),
		ProjectName:   req.ProjectName,
		TaskID:        types.TaskID(req.TaskID),
		TaskName:      req.TaskName,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, r, http.StatusCreated, toMappingResponse(created))
}

func (s *Server) updateMappingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	mappingID := model.MappingID(chi.URLParam(r, "mappingID"))

	var req mappingRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	current, err := s.uc.Mapping.Get(r.Context(), userID, mappingID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	current.CalendarLabel = req.CalendarLabel
	current.ProjectID = types.ProjectID(req.ProjectID)
	current.ProjectName = req.ProjectName
	current.TaskID = types.TaskID(req.TaskID)
	current.TaskName = req.TaskName

	updated, err := s.uc.Mapping.Update(r.Context(), current)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, r, http.StatusOK, toMappingResponse(updated))
}

func (s *Server) deactivateMappingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	mappingID := model.MappingID(chi.URLParam(r, "mappingID"))

	if err := s.uc.Mapping.Deactivate(r.Context(), userID, mappingID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type recurringMappingRequest struct {
	RecurringEventID string `json:"recurring_event_id"`
	EventSummary     string `json:"event_summary"`
	ProjectID        int64  `json:"project_id"`
	ProjectName      string `json:"project_name"`
	TaskID           int64  `json:"task_id"`
	TaskName         string `json:"task_name"`
}

type recurringMappingResponse struct {
	ID               string `json:"id"`
	RecurringEventID string `json:"recurring_event_id"`
	EventSummary     string `json:"event_summary,omitempty"`
	ProjectID        int64  `json:"project_id"`
	ProjectName      string `json:"project_name,omitempty"`
	TaskID           int64  `json:"task_id"`
	TaskName         string `json:"task_name,omitempty"`
	IsActive         bool   `json:"is_active"`
}

func toRecurringMappingResponse(m *model.RecurringMapping) recurringMappingResponse {
	return recurringMappingResponse{
		ID:               m.ID.String(),
		RecurringEventID: m.RecurringEventID,
		EventSummary:     m.EventSummary,
		ProjectID:        m.ProjectID.Int64(),
		ProjectName:      m.ProjectName,
		TaskID:           m.TaskID.Int64(),
		TaskName:         m.TaskName,
		IsActive:         m.IsActive,
	}
}

func (s *Server) listRecurringMappingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	mappings, err := s.uc.Mapping.ListRecurring(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	resp := struct {
		Mappings []recurringMappingResponse `json:"mappings"`
	}{Mappings: make([]recurringMappingResponse, 0, len(mappings))}
	for _, m := range mappings {
		resp.Mappings = append(resp.Mappings, toRecurringMappingResponse(m))
	}

	respondJSON(w, r, http.StatusOK, resp)
}

func (s *Server) createRecurringMappingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req recurringMappingRequest
	if err := decodeJSON(r, &req); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	created, err := s.uc.Mapping.CreateRecurring(r.Context(), &model.RecurringMapping{
		UserID:           userID,
		RecurringEventID: req.RecurringEventID,
		EventSummary:     req.EventSummary,
		ProjectID:        types.ProjectID(req.ProjectID),
		ProjectName:      req.ProjectName,
		TaskID:           types.TaskID(req.TaskID),
		TaskName:         req.TaskName,
	})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	respondJSON(w, r, http.StatusCreated, toRecurringMappingResponse(created))
}

func (s *Server) deactivateRecurringMappingHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUserID(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}
	mappingID := model.MappingID(chi.URLParam(r, "mappingID"))

	if err := s.uc.Mapping.DeactivateRecurring(r.Context(), userID, mappingID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
