package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"petwell/internal/service"
)

// MedicationHandler exposes medication record CRUD.
type MedicationHandler struct {
	medications *service.MedicationService
	logger      *slog.Logger
}

func NewMedicationHandler(medications *service.MedicationService, logger *slog.Logger) *MedicationHandler {
	return &MedicationHandler{medications: medications, logger: logger}
}

// HandleCreate records a new medication.
//
// HTTP: POST /api/medications
func (h *MedicationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		PetID          int64      `json:"petId"`
		Name           string     `json:"name"`
		Dosage         string     `json:"dosage"`
		Frequency      string     `json:"frequency"`
		Route          *string    `json:"route"`
		Reason         *string    `json:"reason"`
		PrescribingVet *string    `json:"prescribingVet"`
		StartDate      *time.Time `json:"startDate"`
		EndDate        *time.Time `json:"endDate"`
		Notes          *string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	med, err := h.medications.Create(r.Context(), user.ID, service.MedicationInput{
		PetID:          req.PetID,
		Name:           req.Name,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Route:          req.Route,
		Reason:         req.Reason,
		PrescribingVet: req.PrescribingVet,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, med)
}

// HandleList returns the caller's medications, most recently started
// first.
//
// HTTP: GET /api/medications?petId=&activeOnly=&limit=&offset=
func (h *MedicationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	activeOnly := false
	if v := queryBool(r, "activeOnly"); v != nil {
		activeOnly = *v
	}

	meds, err := h.medications.List(r.Context(), user.ID,
		queryInt64(r, "petId"), activeOnly, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meds)
}

// HandleGet returns a single medication.
//
// HTTP: GET /api/medications/{id}
func (h *MedicationHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	med, err := h.medications.Get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, med)
}

// HandleUpdate partially updates a medication. Setting isActive=false is
// how a course is discontinued.
//
// HTTP: PUT /api/medications/{id}
func (h *MedicationHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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
		Name           *string    `json:"name"`
		Dosage         *string    `json:"dosage"`
		Frequency      *string    `json:"frequency"`
		Route          *string    `json:"route"`
		Reason         *string    `json:"reason"`
		PrescribingVet *string    `json:"prescribingVet"`
		StartDate      *time.Time `json:"startDate"`
		EndDate        *time.Time `json:"endDate"`
		IsActive       *bool      `json:"isActive"`
		Notes          *string    `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	med, err := h.medications.Update(r.Context(), user.ID, id, service.MedicationPatch{
		Name:           req.Name,
		Dosage:         req.Dosage,
		Frequency:      req.Frequency,
		Route:          req.Route,
		Reason:         req.Reason,
		PrescribingVet: req.PrescribingVet,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsActive:       req.IsActive,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, med)
}

// HandleDelete removes a medication record entirely. Prefer isActive=false
// for discontinuation — delete is for records created in error.
//
// HTTP: DELETE /api/medications/{id}
func (h *MedicationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.medications.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
