// Package main is the entry point for the PetWell API server.
//
// main() is kept to a script's job:
//  1. Read configuration (config.Load — .env plus environment)
//  2. Build the swappable collaborators (logger, AI client, mail sender)
//  3. Hand everything to server.New and block in Start
//
// All actual logic lives in the internal packages. The two optional
// integrations — OpenAI and SMTP — are decided HERE: the rest of the code
// never checks configuration, it just calls whatever implementation it
// was given.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"petwell/internal/ai"
	"petwell/internal/config"
	"petwell/internal/mail"
	"petwell/internal/server"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Ensure the database directory exists (like `mkdir -p`).
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// AI is optional: without an API key the assistant runs on the
	// Disabled client — enrichment degrades, chat returns 503.
	var aiClient ai.Client = ai.Disabled{}
	if cfg.OpenAIAPIKey != "" {
		aiClient = ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.AIModel)
		logger.Info("AI features enabled", slog.String("model", cfg.AIModel))
	} else {
		logger.Warn("OPENAI_API_KEY not set — AI features are disabled")
	}
	assistant := ai.NewAssistant(aiClient, logger)

	// Email is optional the same way: without SMTP credentials the
	// LogSender writes would-be deliveries (token included) to the log.
	smtpCfg := mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromAddr: cfg.FromEmail,
		FromName: cfg.FromName,
		BaseURL:  cfg.BaseURL,
	}
	var mailer mail.Sender
	if smtpCfg.Configured() {
		mailer = mail.NewSMTPSender(smtpCfg, logger)
	} else {
		logger.Warn("SMTP not configured — verification emails will only be logged")
		mailer = mail.NewLogSender(logger)
	}

	srv, err := server.New(server.Config{
		Port:      cfg.Port,
		DBPath:    cfg.DBPath,
		JWTSecret: cfg.JWTSecret,
	}, logger, assistant, mailer)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (Ctrl+C or SIGTERM).
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
