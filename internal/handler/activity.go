package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"petwell/internal/service"
)

// ActivityHandler exposes activity logging and the insights endpoint.
type ActivityHandler struct {
	activities *service.ActivityService
	logger     *slog.Logger
}

func NewActivityHandler(activities *service.ActivityService, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activities: activities, logger: logger}
}

// HandleCreate logs a new activity from a free-text description.
//
// HTTP: POST /api/activities
// BODY: {"petId", "description", "activityDate"?}
//
// The structured fields (type, title, duration, distance) come back in
// the response — derived by the AI, or by the deterministic fallback.
func (h *ActivityHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		PetID        int64      `json:"petId"`
		Description  string     `json:"description"`
		ActivityDate *time.Time `json:"activityDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid activity JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	activity, err := h.activities.Create(r.Context(), user.ID, service.ActivityInput{
		PetID:        req.PetID,
		Description:  req.Description,
		ActivityDate: req.ActivityDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, activity)
}

// HandleList returns the caller's activities, newest first.
//
// HTTP: GET /api/activities?petId=&limit=&offset=
func (h *ActivityHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	activities, err := h.activities.List(r.Context(), user.ID,
		queryInt64(r, "petId"), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activities)
}

// HandleGet returns a single activity.
//
// HTTP: GET /api/activities/{id}
func (h *ActivityHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	activity, err := h.activities.Get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// HandleUpdate manually corrects an activity record.
//
// HTTP: PUT /api/activities/{id}
func (h *ActivityHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		ActivityType *string    `json:"activityType"`
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Duration     *int       `json:"duration"`
		Distance     *float64   `json:"distance"`
		Notes        *string    `json:"notes"`
		ActivityDate *time.Time `json:"activityDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	activity, err := h.activities.Update(r.Context(), user.ID, id, service.ActivityPatch{
		Type:         req.ActivityType,
		Title:        req.Title,
		Description:  req.Description,
		Duration:     req.Duration,
		Distance:     req.Distance,
		Notes:        req.Notes,
		ActivityDate: req.ActivityDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// HandleDelete removes an activity.
//
// HTTP: DELETE /api/activities/{id}
func (h *ActivityHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.activities.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleInsights returns activities grouped by type plus AI-spotted
// routine patterns.
//
// HTTP: GET /api/activities/insights?petId=
func (h *ActivityHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	report, err := h.activities.Insights(r.Context(), user.ID, queryInt64(r, "petId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
