package mail

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Mailer sends the transactional emails the backend produces.
type Mailer interface {
	SendVerification(to, linkURL string, expiresAt time.Time) error
	SendInvitation(to, orgName, role, linkURL string, expiresAt time.Time) error
}

// SMTPMailer sends plain-text mail over an authenticated SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) SendVerification(to, linkURL string, expiresAt time.Time) error {
	subject := "Confirm your email"
	body := fmt.Sprintf(
		"Follow the link to confirm your email address:\r\n\r\n%s\r\n\r\nThe link expires at %s.\r\n",
		linkURL, expiresAt.Format(time.RFC1123))
	return m.send(to, subject, body)
}

func (m *SMTPMailer) SendInvitation(to, orgName, role, linkURL string, expiresAt time.Time) error {
	subject := fmt.Sprintf("Invitation to join %s", orgName)
	body := fmt.Sprintf(
		"You have been invited to join %s as %s.\r\n\r\nAccept here:\r\n%s\r\n\r\nThe invitation expires at %s.\r\n",
		orgName, strings.ToLower(role), linkURL, expiresAt.Format(time.RFC1123))
	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg))
}

// LogMailer writes mail to the log instead of sending it. Used when SMTP is
// not configured so local flows stay testable end to end.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerification(to, linkURL string, expiresAt time.Time) error {
	m.log.Info().
		Str("email", to).
		Str("link_url", linkURL).
		Time("expires_at", expiresAt).
		Msg("verification email (log only; configure SMTP for real email)")
	return nil
}

func (m *LogMailer) SendInvitation(to, orgName, role, linkURL string, expiresAt time.Time) error {
	m.log.Info().
		Str("email", to).
		Str("organization", orgName).
		Str("role", role).
		Str("link_url", linkURL).
		Time("expires_at", expiresAt).
		Msg("invitation email (log only; configure SMTP for real email)")
	return nil
}

var (
	_ Mailer = (*SMTPMailer)(nil)
	_ Mailer = (*LogMailer)(nil)
)
