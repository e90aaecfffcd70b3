package notifications

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"
	"time"

	"cinetix/internal/shared/config"
	"cinetix/pkg/logger"
)

// EmailService delivers a notification as an email
type EmailService interface {
	Send(ctx context.Context, notification *EmailNotification) error
}

// SMTPEmailService sends notification emails over SMTP with STARTTLS
type SMTPEmailService struct {
	config    config.EmailConfig
	templates map[NotificationType]*template.Template
}

func NewSMTPEmailService(cfg config.EmailConfig) (*SMTPEmailService, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("smtp port must be between 1 and 65535")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	s := &SMTPEmailService{
		config:    cfg,
		templates: make(map[NotificationType]*template.Template),
	}
	if err := s.loadTemplates(); err != nil {
		return nil, err
	}
	return s, nil
}

const confirmedTemplate = `
<h2>Booking Confirmed</h2>
<p>Hi {{.Name}},</p>
<p>Your booking for <strong>{{index .Data "movie_title"}}</strong> is confirmed.</p>
<p>Showtime: <strong>{{index .Data "show_time"}}</strong></p>
<p>Seats: <strong>{{range $i, $s := index .Data "seats"}}{{if $i}}, {{end}}{{$s}}{{end}}</strong></p>
<p>Booking reference: {{index .Data "booking_id"}}</p>
<p>Show the QR code in the app at the entrance. Enjoy the movie!</p>
`

const releasedTemplate = `
<h2>Seat Hold Expired</h2>
<p>Hi {{.Name}},</p>
<p>Your hold on seats {{range $i, $s := index .Data "seats"}}{{if $i}}, {{end}}{{$s}}{{end}}
for <strong>{{index .Data "movie_title"}}</strong> expired before payment completed.</p>
<p>The seats have been released. You can book again if they are still available.</p>
`

func (s *SMTPEmailService) loadTemplates() error {
	pairs := map[NotificationType]string{
		TypeBookingConfirmed: confirmedTemplate,
		TypeBookingReleased:  releasedTemplate,
	}
	for typ, text := range pairs {
		tmpl, err := template.New(string(typ)).Parse(text)
		if err != nil {
			return fmt.Errorf("failed to parse %s template: %w", typ, err)
		}
		s.templates[typ] = tmpl
	}
	return nil
}

func (s *SMTPEmailService) Send(ctx context.Context, notification *EmailNotification) error {
	tmpl, ok := s.templates[notification.Type]
	if !ok {
		return fmt.Errorf("no template for notification type %s", notification.Type)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, notification); err != nil {
		return fmt.Errorf("failed to render email body: %w", err)
	}

	message := s.buildMessage(notification.Recipient, notification.Subject, body.String())
	if err := s.sendWithSTARTTLS(notification.Recipient, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logger.GetDefault().InfoWithContext(ctx, "email sent", map[string]interface{}{
		"recipient": notification.Recipient,
		"type":      string(notification.Type),
	})
	return nil
}

func (s *SMTPEmailService) buildMessage(to, subject, htmlBody string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(htmlBody)
	buf.WriteString("\r\n")
	return buf.Bytes()
}

func (s *SMTPEmailService) sendWithSTARTTLS(to string, message []byte) error {
	addr := s.config.SMTPHost + ":" + strconv.Itoa(s.config.SMTPPort)

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	if err := client.StartTLS(&tls.Config{ServerName: s.config.SMTPHost}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if s.config.SMTPUsername != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to open data writer: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

// MockEmailService logs instead of sending; used when SMTP is not configured
type MockEmailService struct{}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (s *MockEmailService) Send(ctx context.Context, notification *EmailNotification) error {
	logger.GetDefault().InfoWithContext(ctx, "email (mock)", map[string]interface{}{
		"recipient": notification.Recipient,
		"subject":   notification.Subject,
		"type":      string(notification.Type),
	})
	return nil
}
