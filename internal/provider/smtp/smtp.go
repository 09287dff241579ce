// Package smtp implements a Provider that submits emails to an SMTP relay.
// It wraps github.com/wneessen/go-mail.
package smtp

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/shineum/contact-relay/internal/email"
	"github.com/shineum/contact-relay/internal/provider"
)

// Config holds SMTP relay configuration.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// UseSSL enables implicit TLS (port 465). Otherwise STARTTLS is required.
	UseSSL bool

	// Timeout for dialing and SMTP commands (default: 30 seconds).
	Timeout time.Duration
}

// Sender is the part of *mail.Client used to submit messages.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Provider delivers messages through an SMTP relay.
type Provider struct {
	client Sender
}

// New creates an SMTP provider for the given relay.
func New(cfg Config) (*Provider, error) {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(cfg.Timeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &Provider{client: c}, nil
}

// NewWithClient creates a Provider with a custom sender, used for testing.
func NewWithClient(client Sender) *Provider {
	return &Provider{client: client}
}

// Send builds a MIME message and submits it once. The receipt ID is the
// generated Message-ID header.
func (p *Provider) Send(ctx context.Context, msg *email.Email) (provider.Receipt, error) {
	m, err := buildMsg(msg)
	if err != nil {
		return provider.Receipt{}, provider.Fail(p.Name(), err)
	}

	if err := p.client.DialAndSendWithContext(ctx, m); err != nil {
		return provider.Receipt{}, provider.Fail(p.Name(), err)
	}

	return provider.Receipt{ID: m.GetMessageID()}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "smtp"
}

func buildMsg(msg *email.Email) (*mail.Msg, error) {
	m := mail.NewMsg()

	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid to address: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("invalid reply-to address: %w", err)
		}
	}

	m.Subject(msg.Subject)
	m.SetMessageID()
	m.SetDate()
	m.SetBodyString(mail.TypeTextHTML, msg.HTMLBody)

	return m, nil
}
