package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"petwell/internal/ai"
	"petwell/internal/auth"
	"petwell/internal/handler"
	"petwell/internal/mail"
	"petwell/internal/repository/sqlite"
	"petwell/internal/service"
)

// testEnv wires the real stack — sqlite :memory:, services, chi router —
// the way the server does, minus the AI provider and SMTP. Handler tests
// go through the router so URL params and the auth middleware are
// exercised too.
type testEnv struct {
	router *chi.Mux
	db     *sqlite.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("unit-test-secret-0123456789")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	passwords := auth.NewPasswordServiceForTest(bcrypt.MinCost)
	assistant := ai.NewAssistant(ai.Disabled{}, logger)
	mailer := mail.NewLogSender(logger)

	accounts := service.NewAccountService(db, passwords, tokens, mailer, logger)
	pets := service.NewPetService(db, assistant, logger)

	accountHandler := handler.NewAccountHandler(accounts, logger)
	petHandler := handler.NewPetHandler(pets, logger)

	router := chi.NewRouter()
	router.Route("/api", func(r chi.Router) {
		r.Post("/users/register", accountHandler.HandleRegister)
		r.Post("/users/login", accountHandler.HandleLogin)
		r.Post("/verify-email", accountHandler.HandleVerifyEmail)
		r.Post("/resend-verification", accountHandler.HandleResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens, db))

			r.Get("/users/me", accountHandler.HandleMe)
			r.Put("/users/me", accountHandler.HandleUpdateMe)

			r.Post("/pets", petHandler.HandleCreate)
			r.Get("/pets", petHandler.HandleList)
			r.Get("/pets/{id}", petHandler.HandleGet)
			r.Put("/pets/{id}", petHandler.HandleUpdate)
			r.Delete("/pets/{id}", petHandler.HandleDelete)
			r.Post("/pets/{id}/regenerate-tips", petHandler.HandleRegenerateTips)
		})
	})

	return &testEnv{router: router, db: db}
}

// do sends one request through the router. A non-empty token becomes the
// bearer credential.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response body %q: %v", rec.Body.String(), err)
	}
	return body
}

// signUp registers an account over HTTP, verifies it through the real
// verify-email endpoint (reading the token out of the database, playing
// the role of the inbox), and logs in. Returns the bearer token.
func (e *testEnv) signUp(t *testing.T, username string) string {
	t.Helper()

	email := username + "@example.com"
	rec := e.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"username": username,
		"email":    email,
		"password": "sekret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %q: status = %d, body %s", username, rec.Code, rec.Body.String())
	}

	user, err := e.db.GetUserByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("reading back registered user: %v", err)
	}
	rec = e.do(t, http.MethodPost, "/api/verify-email", "", map[string]string{
		"token": user.VerificationToken,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify %q: status = %d, body %s", username, rec.Code, rec.Body.String())
	}

	rec = e.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"identifier": username,
		"password":   "sekret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %q: status = %d, body %s", username, rec.Code, rec.Body.String())
	}

	token, _ := decodeBody(t, rec)["accessToken"].(string)
	if token == "" {
		t.Fatalf("login %q returned no access token", username)
	}
	return token
}
