package smtp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wneessen/go-mail"

	"github.com/shineum/contact-relay/internal/email"
	"github.com/shineum/contact-relay/internal/provider"
)

type mockSender struct {
	err      error
	calls    int
	messages []*mail.Msg
}

func (m *mockSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	m.calls++
	m.messages = append(m.messages, messages...)
	return m.err
}

func testEmail() *email.Email {
	return &email.Email{
		From:     "noreply@example.com",
		To:       []string{"contact@example.com"},
		Subject:  "New Contact Form Message",
		HTMLBody: "<p>Hello</p>",
		ReplyTo:  "visitor@example.org",
	}
}

func TestSend_ReturnsMessageID(t *testing.T) {
	t.Parallel()

	mock := &mockSender{}
	receipt, err := NewWithClient(mock).Send(context.Background(), testEmail())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 1 || len(mock.messages) != 1 {
		t.Fatalf("calls: got %d with %d messages, want 1/1", mock.calls, len(mock.messages))
	}
	if receipt.ID == "" {
		t.Fatal("expected a Message-ID receipt")
	}
	if got := mock.messages[0].GetMessageID(); got != receipt.ID {
		t.Errorf("receipt ID: got %q, want %q", receipt.ID, got)
	}
}

func TestBuildMsg_Headers(t *testing.T) {
	t.Parallel()

	m, err := buildMsg(testEmail())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	raw := buf.String()

	for _, want := range []string{
		"Subject: New Contact Form Message",
		"Reply-To:",
		"visitor@example.org",
		"text/html",
	} {
		if !strings.Contains(raw, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestBuildMsg_InvalidFrom(t *testing.T) {
	t.Parallel()

	msg := testEmail()
	msg.From = "not an address"
	if _, err := buildMsg(msg); err == nil {
		t.Fatal("expected error for invalid from address")
	}
}

func TestSend_Error(t *testing.T) {
	t.Parallel()

	mock := &mockSender{err: errors.New("535 authentication failed")}
	_, err := NewWithClient(mock).Send(context.Background(), testEmail())

	var de *provider.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *provider.DeliveryError, got %v", err)
	}
	if de.Provider != "smtp" {
		t.Errorf("Provider: got %q, want %q", de.Provider, "smtp")
	}
	if mock.calls != 1 {
		t.Errorf("calls: got %d, want 1", mock.calls)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	p, err := New(Config{Host: "smtp.example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "smtp" {
		t.Errorf("Name(): got %q, want %q", p.Name(), "smtp")
	}
}
