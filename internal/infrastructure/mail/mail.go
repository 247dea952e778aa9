// Package mail sends transactional email over SMTP.
package mail

import (
	"context"
	"crypto/tls"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/storefront/storefront-api/internal/core/ports"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// InsecureSkipVerify disables certificate checks, for local relays such as MailHog.
	InsecureSkipVerify bool
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer implements ports.Mailer with gomail.
type Mailer struct {
	dialer   sender
	from     string
	fromName string
}

func NewMailer(cfg Config) *Mailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true, ServerName: cfg.Host} //nolint:gosec
	}
	return &Mailer{dialer: d, from: cfg.From, fromName: cfg.FromName}
}

// Send delivers msg as an HTML email. gomail has no context support, so ctx
// is only checked before dialing.
func (m *Mailer) Send(ctx context.Context, msg ports.MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	gm := gomail.NewMessage()
	if m.fromName != "" {
		gm.SetAddressHeader("From", m.from, m.fromName)
	} else {
		gm.SetHeader("From", m.from)
	}
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.Body)

	if err := m.dialer.DialAndSend(gm); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
