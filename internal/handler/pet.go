package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"petwell/internal/service"
)

// PetHandler exposes pet profile CRUD plus the care-tips regeneration
// endpoint.
type PetHandler struct {
	pets   *service.PetService
	logger *slog.Logger
}

func NewPetHandler(pets *service.PetService, logger *slog.Logger) *PetHandler {
	return &PetHandler{pets: pets, logger: logger}
}

// petRequest is the shared JSON shape for pet create and update.
//
// POINTER FIELDS AND PATCH SEMANTICS:
// Every field is a pointer so we can tell "absent from the JSON" (nil)
// apart from "present but empty". On create, nil just means the optional
// field wasn't given; on update, nil means "leave unchanged" while a
// present empty string clears the field.
type petRequest struct {
	Name           *string    `json:"name"`
	Species        *string    `json:"species"`
	Breed          *string    `json:"breed"`
	SecondaryBreed *string    `json:"secondaryBreed"`
	TertiaryBreed  *string    `json:"tertiaryBreed"`
	BreedType      *string    `json:"breedType"`
	Sex            *string    `json:"sex"`
	Birthday       *time.Time `json:"birthday"`
	Age            *int       `json:"age"`
	Weight         *float64   `json:"weight"`
	MedicalNotes   *string    `json:"medicalNotes"`
}

// HandleCreate registers a new pet.
//
// HTTP: POST /api/pets
//
// The response already carries the AI care tips when a provider is
// configured — creation blocks on the (timeout-bounded) AI call.
func (h *PetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid pet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	in := service.PetInput{
		Breed:          req.Breed,
		SecondaryBreed: req.SecondaryBreed,
		TertiaryBreed:  req.TertiaryBreed,
		BreedType:      req.BreedType,
		Sex:            req.Sex,
		Birthday:       req.Birthday,
		Age:            req.Age,
		Weight:         req.Weight,
		MedicalNotes:   req.MedicalNotes,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.Species != nil {
		in.Species = *req.Species
	}

	pet, err := h.pets.Create(r.Context(), user.ID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, pet)
}

// HandleList returns the caller's pets.
//
// HTTP: GET /api/pets?limit=&offset=
func (h *PetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	pets, err := h.pets.List(r.Context(), user.ID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pets)
}

// HandleGet returns a single pet.
//
// HTTP: GET /api/pets/{id}
func (h *PetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pet, err := h.pets.Get(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pet)
}

// HandleUpdate partially updates a pet.
//
// HTTP: PUT /api/pets/{id}
func (h *PetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	pet, err := h.pets.Update(r.Context(), user.ID, id, service.PetPatch{
		Name:           req.Name,
		Species:        req.Species,
		Breed:          req.Breed,
		SecondaryBreed: req.SecondaryBreed,
		TertiaryBreed:  req.TertiaryBreed,
		BreedType:      req.BreedType,
		Sex:            req.Sex,
		Birthday:       req.Birthday,
		Age:            req.Age,
		Weight:         req.Weight,
		MedicalNotes:   req.MedicalNotes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pet)
}

// HandleDelete removes a pet and, via database cascade, all its
// activities, medications and linked reminders.
//
// HTTP: DELETE /api/pets/{id}
func (h *PetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.pets.Delete(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRegenerateTips replaces the pet's care tips with a fresh AI
// generation.
//
// HTTP: POST /api/pets/{id}/regenerate-tips
//
// Responds 503 when no AI provider is configured — this endpoint has no
// fallback by design.
func (h *PetHandler) HandleRegenerateTips(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	pet, err := h.pets.RegenerateTips(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pet)
}
