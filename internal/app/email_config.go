package app

import (
	"strings"

	"github.com/nutralink/directory/pkg/mail"
)

// SMTPSettings adapts the outreach email configuration for pkg/mail. A port of
// zero selects the submission port when TLS is on and port 25 otherwise.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	smtp := c.SMTP
	port := smtp.Port
	if port <= 0 {
		port = 25
		if smtp.UseTLS {
			port = 587
		}
	}

	return mail.SMTPSettings{
		Enabled:    smtp.Enabled,
		Host:       strings.TrimSpace(smtp.Host),
		Port:       port,
		Username:   strings.TrimSpace(smtp.Username),
		Password:   smtp.Password,
		From:       strings.TrimSpace(smtp.From),
		SenderName: strings.TrimSpace(smtp.SenderName),
		UseTLS:     smtp.UseTLS,
		Timeout:    smtp.Timeout,
	}
}
