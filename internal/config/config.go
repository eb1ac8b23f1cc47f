// Package config loads application configuration from the environment.
//
// WHY A CONFIG PACKAGE?
// The server needs a dozen settings (port, database path, JWT secret, SMTP
// credentials, OpenAI key). Reading os.Getenv all over the codebase scatters
// the knowledge of "what can be configured" across many files. Loading
// everything into one struct, once, at startup means:
//   - main.go stays a short wiring script
//   - every setting and its default is documented in one place
//   - components receive plain values, never the environment
//
// A .env file in the working directory is loaded first (godotenv) so local
// development doesn't need a shell full of exports. Real environment
// variables win over .env values, which is godotenv's default behaviour.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds every setting the application reads. Zero values are filled
// with defaults by Load; only JWTSecret is mandatory.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret signs session tokens. Must be at least 16 characters;
	// generate with: openssl rand -hex 32
	JWTSecret string

	// OpenAIAPIKey enables AI enrichment. Empty means the AI features
	// degrade (fallback tips, 503 on chat) but the server runs fine.
	OpenAIAPIKey string
	AIModel      string

	// SMTP settings. When host/user/password are not all set, email
	// delivery is disabled and verification tokens are only logged.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	// BaseURL is the public origin of the frontend, used to build the
	// verification link in outgoing email.
	BaseURL string
}

// Load reads .env (if present) and the environment, applies defaults, and
// validates the settings the server cannot run without.
func Load() (*Config, error) {
	// Missing .env is not an error — production sets real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:         8080,
		DBPath:       "data/petwell.db",
		JWTSecret:    os.Getenv("JWT_SECRET"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		AIModel:      "gpt-4o-mini",
		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     587,
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		FromEmail:    "noreply@petwell.app",
		FromName:     "PetWell",
		BaseURL:      "http://localhost:3000",
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AIModel = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid SMTP_PORT %q: %w", v, err)
		}
		cfg.SMTPPort = port
	}
	if v := os.Getenv("FROM_EMAIL"); v != "" {
		cfg.FromEmail = v
	}
	if v := os.Getenv("FROM_NAME"); v != "" {
		cfg.FromName = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET must be set")
	}

	return cfg, nil
}
