// FILE: internal/pkg/mailer/email_service.go
package mailer

import (
	"fmt"

	"notetrack-be/internal/pkg/logger"

	"gopkg.in/gomail.v2"
)

// MailSender delivers a rendered HTML message. The deadline scheduler is its only caller.
type MailSender interface {
	SendHTML(toEmail, subject, htmlBody string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) MailSender {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) SendHTML(toEmail, subject, htmlBody string) error {
	if toEmail == "" {
		return fmt.Errorf("mailer: empty recipient")
	}

	m := gomail.NewMessage()
	if s.senderName != "" {
		m.SetAddressHeader("From", s.senderEmail, s.senderName)
	} else {
		m.SetHeader("From", s.senderEmail)
	}
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mailer: send to %s: %w", toEmail, err)
	}
	return nil
}

type logSender struct {
	logger logger.ILogger
}

// NewLogSender records messages instead of sending them. Used when SMTP is not configured.
func NewLogSender(log logger.ILogger) MailSender {
	return &logSender{logger: log}
}

func (s *logSender) SendHTML(toEmail, subject, htmlBody string) error {
	if toEmail == "" {
		return fmt.Errorf("mailer: empty recipient")
	}
	s.logger.Info("Mailer", "SMTP disabled, message not sent", map[string]interface{}{
		"to":      toEmail,
		"subject": subject,
		"bytes":   len(htmlBody),
	})
	return nil
}
