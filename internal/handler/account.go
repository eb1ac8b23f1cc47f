// Package handler contains the HTTP layer: request parsing, response
// writing, and nothing else. Business rules live in the service layer;
// handlers translate between JSON and service calls.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"petwell/internal/service"
)

// AccountHandler exposes the account lifecycle over HTTP.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/users/register
// BODY: {"username","email","password","firstName","lastName"}
//
// Responds 201 with the new (unverified) user. The password hash and
// verification token never appear in the response — their struct fields
// are tagged json:"-".
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	user, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin authenticates and issues a session token.
//
// HTTP: POST /api/users/login
// BODY: {"identifier","password"} — identifier is username OR email.
func (h *AccountHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	result, err := h.accounts.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": result.Token,
		"tokenType":   "bearer",
		"user":        result.User,
	})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /api/users/me
func (h *AccountHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateMe partially updates the authenticated user's profile.
//
// HTTP: PUT /api/users/me
// BODY: any subset of {"username","email","firstName","lastName"}
func (h *AccountHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user, service.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// HandleChangePassword rotates the authenticated user's password.
//
// HTTP: POST /api/users/change-password
// BODY: {"currentPassword","newPassword"}
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// HandleVerifyEmail redeems a verification token from the emailed link.
//
// HTTP: POST /api/verify-email
// BODY: {"token"}
func (h *AccountHandler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	result, err := h.accounts.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	message := "Email verified successfully. You can now log in."
	if result == service.VerificationAlreadyVerified {
		message = "Email is already verified."
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": message})
}

// HandleResendVerification re-sends the verification email.
//
// HTTP: POST /api/resend-verification
// BODY: {"email"}
//
// ALWAYS THE SAME ANSWER:
// Whatever the service found (unknown email, already verified, email
// re-sent), the response is the identical generic sentence. See
// AccountService.ResendVerification for why.
func (h *AccountHandler) HandleResendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "Invalid JSON body"})
		return
	}

	if err := h.accounts.ResendVerification(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the email exists, a verification link has been sent.",
	})
}
