package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"petwell/internal/apperror"
	"petwell/internal/auth"
	"petwell/internal/model"
)

// urlID extracts a numeric {id} path parameter.
// Chi guarantees the parameter exists on routes that declare it, so the
// only failure mode is a non-numeric value — a client error.
func urlID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed("id", "id must be a positive integer")
	}
	return id, nil
}

// queryInt reads an optional integer query parameter, returning 0 when
// absent or malformed. Services clamp the zero to their defaults.
func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// queryInt64 is queryInt for int64-valued parameters (entity IDs).
func queryInt64(r *http.Request, name string) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// queryBool reads an optional tri-state boolean query parameter:
// nil when absent, otherwise the parsed value ("true"/"false"/"1"/"0").
func queryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// currentUser pulls the authenticated user out of the request context.
//
// Every handler behind RequireAuth starts with this call. The !ok branch
// means a route was registered outside the auth group by mistake — we
// fail closed with 401 rather than panic.
func currentUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "valid authentication required",
		})
		return nil, false
	}
	return user, true
}
