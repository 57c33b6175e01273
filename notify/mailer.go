package notify

import (
	"fmt"
	"log"
	"net/smtp"

	"restora-api/config"
)

// Mailer delivers a single message. Implementations own retry semantics;
// the dispatcher treats every error as non-fatal.
type Mailer interface {
	Send(to, subject, body string) error
}

// LogMailer writes mail to the log instead of the wire. Used when no SMTP
// host is configured and in tests.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	log.Printf("mail (log only): to=%s subject=%q", to, subject)
	return nil
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	Cfg config.SMTPConfig
}

func (m SMTPMailer) Send(to, subject, body string) error {
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.Cfg.From, to, subject, body))
	addr := m.Cfg.Host + ":" + m.Cfg.Port
	var auth smtp.Auth
	if m.Cfg.User != "" {
		auth = smtp.PlainAuth("", m.Cfg.User, m.Cfg.Pass, m.Cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.Cfg.From, []string{to}, msg)
}

// NewMailer picks the SMTP mailer when a host is configured, the log
// mailer otherwise.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return LogMailer{}
	}
	return SMTPMailer{Cfg: cfg}
}
