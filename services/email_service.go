package services

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"path/filepath"
	"strings"

	"github.com/federgolf/referee-system/config"
)

// EmailAttachment — файл, прикладываемый к письму.
type EmailAttachment struct {
	Filename string
	Content  []byte
}

// EmailService отправляет письма через SMTP федерации.
type EmailService interface {
	Send(to []string, subject, body string, attachments ...EmailAttachment) error
}

type smtpEmailService struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *slog.Logger
}

func NewSMTPEmailService(cfg *config.Config, logger *slog.Logger) EmailService {
	return &smtpEmailService{
		host:   cfg.SMTPHost,
		port:   cfg.SMTPPort,
		user:   cfg.SMTPUser,
		pass:   cfg.SMTPPass,
		from:   cfg.SMTPFrom,
		logger: logger,
	}
}

func (s *smtpEmailService) Send(to []string, subject, body string, attachments ...EmailAttachment) error {
	if len(to) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if s.host == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	msg := s.buildMessage(to, subject, body, attachments)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, to, msg); err != nil {
		s.logger.Error("failed to send email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject, "attachments", len(attachments))
	return nil
}

// buildMessage собирает MIME-сообщение. Без вложений — обычный text/plain,
// с вложениями — multipart/mixed с base64-кодированными частями.
func (s *smtpEmailService) buildMessage(to []string, subject, body string, attachments []EmailAttachment) []byte {
	var b strings.Builder

	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")

	if len(attachments) == 0 {
		b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
		b.WriteString("\r\n")
		b.WriteString(body)
		return []byte(b.String())
	}

	const boundary = "federgolf-attachment-boundary"
	b.WriteString("Content-Type: multipart/mixed; boundary=\"" + boundary + "\"\r\n")
	b.WriteString("\r\n")

	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	for _, att := range attachments {
		contentType := mime.TypeByExtension(filepath.Ext(att.Filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: " + contentType + "\r\n")
		b.WriteString("Content-Transfer-Encoding: base64\r\n")
		b.WriteString("Content-Disposition: attachment; filename=\"" + att.Filename + "\"\r\n")
		b.WriteString("\r\n")

		encoded := base64.StdEncoding.EncodeToString(att.Content)
		// RFC 2045: строки base64 не длиннее 76 символов.
		for len(encoded) > 76 {
			b.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		b.WriteString(encoded + "\r\n")
	}
	b.WriteString("--" + boundary + "--\r\n")

	return []byte(b.String())
}
