// Package resend implements a Provider that sends emails via the Resend API.
package resend

import (
	"context"
	"errors"

	resendsdk "github.com/resend/resend-go/v2"

	"github.com/shineum/contact-relay/internal/email"
	"github.com/shineum/contact-relay/internal/provider"
)

// EmailsAPI is the subset of the Resend SDK emails service this provider
// uses. Used for testing with mock implementations.
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resendsdk.SendEmailRequest) (*resendsdk.SendEmailResponse, error)
}

// Provider sends emails through Resend.
type Provider struct {
	emails EmailsAPI
}

// New creates a Resend provider authenticated with apiKey.
func New(apiKey string) *Provider {
	client := resendsdk.NewClient(apiKey)
	return &Provider{emails: client.Emails}
}

// NewWithClient creates a Provider with a custom emails client, used for testing.
func NewWithClient(emails EmailsAPI) *Provider {
	return &Provider{emails: emails}
}

// Send posts the message to Resend once and returns the assigned email ID.
func (p *Provider) Send(ctx context.Context, msg *email.Email) (provider.Receipt, error) {
	params := &resendsdk.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTMLBody,
		ReplyTo: msg.ReplyTo,
	}

	sent, err := p.emails.SendWithContext(ctx, params)
	if err != nil {
		return provider.Receipt{}, provider.Fail(p.Name(), err)
	}
	if sent == nil {
		return provider.Receipt{}, provider.Fail(p.Name(), errors.New("empty send response"))
	}

	return provider.Receipt{ID: provider.NormalizeID(sent.Id)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "resend"
}
