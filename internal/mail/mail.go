// Package mail sends account lifecycle email. Delivery is best-effort by
// contract: registration and verification must succeed even when SMTP is
// down, so callers fire these from a goroutine and only the logs know.
package mail

import (
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"
)

// Sender is what the account service depends on. Implementations must be
// safe for concurrent use.
type Sender interface {
	SendVerification(toEmail, firstName, token string) error
	SendWelcome(toEmail, firstName string) error
}

// SMTPConfig carries everything needed to talk to the relay. BaseURL is
// the public origin of the frontend; the verification link points there,
// not at this API.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromAddr string
	FromName string
	BaseURL  string
}

// Configured reports whether enough is set to attempt delivery.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != ""
}

// SMTPSender delivers through a gomail dialer. One dialer is reused for
// the process lifetime; gomail opens a fresh connection per send.
type SMTPSender struct {
	dialer  *gomail.Dialer
	cfg     SMTPConfig
	logger  *slog.Logger
	baseURL string
}

func NewSMTPSender(cfg SMTPConfig, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:     cfg,
		logger:  logger,
		baseURL: cfg.BaseURL,
	}
}

func (s *SMTPSender) SendVerification(toEmail, firstName, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token)

	body := fmt.Sprintf(`<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Welcome to PetWell, %s!</h2>
    <p>Thanks for signing up. Please confirm your email address to activate your account:</p>
    <p><a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #4F46E5; color: #fff; text-decoration: none; border-radius: 6px;">Verify Email</a></p>
    <p>Or paste this link into your browser:</p>
    <p>%s</p>
    <p>This link expires in 24 hours. If you didn't create an account, you can ignore this email.</p>
  </body>
</html>`, firstName, link, link)

	return s.send(toEmail, "Verify your PetWell email", body)
}

func (s *SMTPSender) SendWelcome(toEmail, firstName string) error {
	body := fmt.Sprintf(`<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2>You're all set, %s!</h2>
    <p>Your email is verified and your PetWell account is ready.</p>
    <p>Add your pets, log their activities and medications, and let us help you keep track of their care.</p>
  </body>
</html>`, firstName)

	return s.send(toEmail, "Welcome to PetWell", body)
}

func (s *SMTPSender) send(toEmail, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.cfg.FromAddr, s.cfg.FromName)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(msg); err != nil {
		s.logger.Error("sending email failed",
			slog.String("to", toEmail),
			slog.String("subject", subject),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("mail: sending %q: %w", subject, err)
	}

	s.logger.Info("email sent",
		slog.String("to", toEmail),
		slog.String("subject", subject),
	)
	return nil
}

// LogSender stands in when SMTP is not configured (local development,
// tests). It logs the would-be delivery, token included, so the
// verification flow can still be exercised by hand.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendVerification(toEmail, firstName, token string) error {
	s.logger.Info("email delivery disabled, skipping verification email",
		slog.String("to", toEmail),
		slog.String("token", token),
	)
	return nil
}

func (s *LogSender) SendWelcome(toEmail, firstName string) error {
	s.logger.Info("email delivery disabled, skipping welcome email",
		slog.String("to", toEmail),
	)
	return nil
}
