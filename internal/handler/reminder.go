package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"petwell/internal/service"
)

// ReminderHandler exposes reminder CRUD.
type ReminderHandler struct {
	reminders *service.ReminderService
	logger    *slog.Logger
}

func NewReminderHandler(reminders *service.ReminderService, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{reminders: reminders, logger: logger}
}

// HandleCreate stores a new reminder.
//
// HTTP: POST /api/reminders
// BODY: {"petId"?, "title", "description"?, "reminderType", "reminderDate"}
func (h *ReminderHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		PetID        *int64    `json:"petId"`
		Title        string    `json:"title"`
		Description  *string   `json:"description"`
		ReminderType string    `json:"reminderType"`
		ReminderDate time.Time `json:"reminderDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid reminder JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	reminder, err := h.reminders.Create(r.Context(), user.ID, service.ReminderInput{
		PetID:        req.PetID,
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.ReminderType,
		ReminderDate: req.ReminderDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reminder)
}

// HandleList returns the caller's reminders, soonest due first.
//
// HTTP: GET /api/reminders?completed=
// The completed parameter is tri-state: absent returns everything.
func (h *ReminderHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	reminders, err := h.reminders.List(r.Context(), user.ID, queryBool(r, "completed"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reminders)
}

// HandleGet returns a single reminder.
//
// HTTP: GET /api/reminders/{id}
func (h *ReminderHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reminder, err := h.reminders.Get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reminder)
}

// HandleUpdate partially updates a reminder. petId: null in the JSON body
// detaches the reminder from its pet.
//
// HTTP: PUT /api/reminders/{id}
func (h *ReminderHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// json.RawMessage for petId so we can tell three cases apart:
	// key absent (leave unchanged), explicit null (detach), number (relink).
	var req struct {
		PetID        json.RawMessage `json:"petId"`
		Title        *string         `json:"title"`
		Description  *string         `json:"description"`
		ReminderType *string         `json:"reminderType"`
		ReminderDate *time.Time      `json:"reminderDate"`
		IsCompleted  *bool           `json:"isCompleted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	patch := service.ReminderPatch{
		Title:        req.Title,
		Description:  req.Description,
		Type:         req.ReminderType,
		ReminderDate: req.ReminderDate,
		IsCompleted:  req.IsCompleted,
	}
	if len(req.PetID) > 0 {
		if string(req.PetID) == "null" {
			patch.ClearPetID = true
		} else {
			var petID int64
			if err := json.Unmarshal(req.PetID, &petID); err != nil {
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "petId must be a number or null"})
				return
			}
			patch.PetID = &petID
		}
	}

	reminder, err := h.reminders.Update(r.Context(), user.ID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reminder)
}

// HandleDelete removes a reminder.
//
// HTTP: DELETE /api/reminders/{id}
func (h *ReminderHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.reminders.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
