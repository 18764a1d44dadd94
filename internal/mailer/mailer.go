// Package mailer sends plain-text notification emails over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/charity-events/backend/internal/models"
)

// Config holds SMTP settings. An empty SMTPHost makes Send log instead of sending.
type Config struct {
	FromAddress string
	FromName    string
	SMTPHost    string
	SMTPPort    int
	SMTPUser    string
	SMTPPass    string
}

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers messages.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
	send   sendFunc
}

// New creates a mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger, send: smtp.SendMail}
}

// Send delivers msg. ctx is checked before dialing; net/smtp has no cancellation.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg.To = headerValue(msg.To)
	msg.Subject = headerValue(msg.Subject)
	if m.cfg.SMTPHost == "" {
		m.logger.Info("email (smtp not configured)",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.String("body", msg.Body))
		return nil
	}
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	addr := net.JoinHostPort(m.cfg.SMTPHost, strconv.Itoa(m.cfg.SMTPPort))
	if err := m.send(addr, auth, m.cfg.FromAddress, []string{msg.To}, m.build(msg)); err != nil {
		return fmt.Errorf("send email to %s: %w", msg.To, err)
	}
	m.logger.Info("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (m *Mailer) build(msg Message) []byte {
	from := mail.Address{Name: m.cfg.FromName, Address: m.cfg.FromAddress}
	var b strings.Builder
	b.WriteString("From: " + from.String() + "\r\n")
	b.WriteString("To: " + headerValue(msg.To) + "\r\n")
	b.WriteString("Subject: " + headerValue(msg.Subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	return []byte(b.String())
}

// headerValue folds line breaks to spaces so a value cannot start a new header.
func headerValue(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(s)
	return strings.TrimSpace(s)
}

// RenderConfirmation builds the registration confirmation for a.
func RenderConfirmation(to, userName string, tickets int, a *models.Activity) Message {
	ticketWord := "tickets"
	if tickets == 1 {
		ticketWord = "ticket"
	}
	body := fmt.Sprintf("Hello %s,\n\n"+
		"You are registered for %q.\n\n"+
		"When:    %s\n"+
		"Where:   %s\n"+
		"Tickets: %d %s\n\n"+
		"Thank you for supporting our cause.\n",
		userName, a.Title, strings.Replace(a.Date, "T", " ", 1), a.Location, tickets, ticketWord)
	return Message{
		To:      to,
		Subject: headerValue("Registration confirmed: " + a.Title),
		Body:    body,
	}
}
