package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/mdsetiawan/facility-directory/internal/domain/providers"
	"github.com/mdsetiawan/facility-directory/internal/infrastructure/observability"
	"github.com/mdsetiawan/facility-directory/pkg/config"
)

// SMTPMailer implements the Mailer interface over plain SMTP. Without a
// configured host it logs the mail instead, so the reset flow works in
// development without a mail server.
type SMTPMailer struct {
	cfg *config.SMTPConfig
}

// Ensure SMTPMailer implements Mailer
var _ providers.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(cfg *config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendOTP delivers a one-time password to the given address
func (m *SMTPMailer) SendOTP(ctx context.Context, email, code string) error {
	subject := "Kode verifikasi reset password"
	body := fmt.Sprintf("Kode verifikasi Anda adalah %s. Kode berlaku selama beberapa menit.", code)

	if m.cfg.Host == "" {
		observability.LoggerFromContext(ctx).Info().
			Str("email", email).
			Str("code", code).
			Msg("smtp host not configured, otp logged instead of mailed")
		return nil
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.cfg.From, email, subject, body,
	))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{email}, msg); err != nil {
		return fmt.Errorf("failed to send otp mail: %w", err)
	}

	return nil
}
