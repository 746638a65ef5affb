package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"voiceguide-backend/internal/config"
)

type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// MailSender delivers transactional email.
type MailSender interface {
	Send(ctx context.Context, email *Email) error
}

type smtpMailerImpl struct {
	cfg config.SMTP
}

type disabledMailer struct{}

// NewMailer returns an SMTP sender, or a sender that drops every message when
// EMAIL_ENABLED is off.
func NewMailer(cfg *config.Email) MailSender {
	if !cfg.Enabled {
		return disabledMailer{}
	}
	smtp := cfg.SMTP
	smtp.Pass = strings.ReplaceAll(smtp.Pass, " ", "")
	if smtp.From == "" {
		smtp.From = smtp.User
	}
	return &smtpMailerImpl{cfg: smtp}
}

func (disabledMailer) Send(_ context.Context, email *Email) error {
	slog.Debug("email disabled, skipping", "to", email.To, "subject", email.Subject)
	return nil
}

func (m *smtpMailerImpl) Send(ctx context.Context, email *Email) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return errors.New("smtp: SMTP_HOST/SMTP_FROM not configured")
	}

	msg := mail.NewMsg()
	var err error
	if m.cfg.FromName != "" {
		err = msg.FromFormat(m.cfg.FromName, m.cfg.From)
	} else {
		err = msg.From(m.cfg.From)
	}
	if err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	if m.cfg.ReplyTo != "" {
		if err := msg.ReplyTo(m.cfg.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.Text)
	if email.HTML != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, email.HTML)
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(20 * time.Second),
	}
	if m.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}
	if m.cfg.User != "" && m.cfg.Pass != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Pass),
		)
	}

	c, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
