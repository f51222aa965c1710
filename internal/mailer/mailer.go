// Package mailer delivers invoice emails over SMTP.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

var ErrNoRecipient = errors.New("mailer: no recipient")

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	// Brand closes the subject line, e.g. "FitActive Vitan".
	Brand string
}

// InvoiceEmail is one invoice notification. PDF is attached when non-empty.
type InvoiceEmail struct {
	To     string
	Series string
	Number string
	PDF    []byte
}

func (e InvoiceEmail) Reference() string { return e.Series + "-" + e.Number }

type SMTP struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTP { return &SMTP{cfg: cfg} }

func (s *SMTP) SendInvoice(ctx context.Context, e InvoiceEmail) error {
	if s.cfg.Host == "" {
		return errors.New("mailer: smtp host not configured")
	}
	msg, err := s.build(e)
	if err != nil {
		return err
	}

	opts := []mail.Option{mail.WithPort(s.cfg.Port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if s.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.User),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending invoice %s to %s: %w", e.Reference(), e.To, err)
	}
	return nil
}

func (s *SMTP) build(e InvoiceEmail) (*mail.Msg, error) {
	if e.To == "" {
		return nil, ErrNoRecipient
	}
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := m.To(e.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", e.To, err)
	}
	m.Subject(Subject(e, s.cfg.Brand))
	m.SetBodyString(mail.TypeTextPlain, Body(e))
	if len(e.PDF) > 0 {
		m.AttachReader(AttachmentName(e), bytes.NewReader(e.PDF))
	}
	return m, nil
}

func Subject(e InvoiceEmail, brand string) string {
	if brand == "" {
		return "Factura " + e.Reference()
	}
	return "Factura " + e.Reference() + " · " + brand
}

func Body(e InvoiceEmail) string {
	if len(e.PDF) == 0 {
		return fmt.Sprintf("Mulțumim pentru comandă! Factura %s a fost emisă.", e.Reference())
	}
	return fmt.Sprintf("Mulțumim pentru comandă! Atașat găsești factura %s.", e.Reference())
}

func AttachmentName(e InvoiceEmail) string {
	return "Factura-" + e.Reference() + ".pdf"
}
