// Package mailer sends the transactional emails for verification and
// password recovery.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"accounts-service/pkg/config"

	"go.uber.org/zap"
)

// Mailer is implemented by the SMTP sender and the dev log sender.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// New returns the SMTP mailer when a host is configured, otherwise a
// log-only mailer suitable for development.
func New(cfg *config.MailConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return &logMailer{log: log, baseURL: cfg.AppBaseURL}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg *config.MailConfig
}

func (m *smtpMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email/%s", m.cfg.AppBaseURL, token)
	subject := "Verify your email address"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Confirm your email address by opening the link below. The link is valid for one hour.\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you did not create an account, you can ignore this email.\r\n",
		displayName(name), link)
	return m.send(to, subject, body)
}

func (m *smtpMailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	link := fmt.Sprintf("%s/auth/reset-password/%s", m.cfg.AppBaseURL, token)
	subject := "Reset your password"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"A password reset was requested for your account. Open the link below to choose a new password. The link is valid for one hour.\r\n\r\n"+
			"%s\r\n\r\n"+
			"If you did not request a reset, you can ignore this email.\r\n",
		displayName(name), link)
	return m.send(to, subject, body)
}

func (m *smtpMailer) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.From, to, subject, body)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

// logMailer logs instead of sending, so flows can be exercised without an
// SMTP server.
type logMailer struct {
	log     *zap.Logger
	baseURL string
}

func (m *logMailer) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	m.log.Info("verification email (smtp disabled)",
		zap.String("to", to),
		zap.String("link", fmt.Sprintf("%s/auth/verify-email/%s", m.baseURL, token)))
	return nil
}

func (m *logMailer) SendPasswordResetEmail(ctx context.Context, to, name, token string) error {
	m.log.Info("password reset email (smtp disabled)",
		zap.String("to", to),
		zap.String("link", fmt.Sprintf("%s/auth/reset-password/%s", m.baseURL, token)))
	return nil
}
