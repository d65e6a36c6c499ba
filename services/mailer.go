package services

import (
	"fmt"

	"pricehawk/config"

	gomail "gopkg.in/gomail.v2"
)

// Mailer delivers a single HTML notification. Send must only return nil once
// the transport has accepted the message; notification state is committed on
// that signal.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends notifications over plain SMTP.
type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(m.cfg.Sender, m.cfg.SenderName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %v", to, err)
	}

	return nil
}
