package stdout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/shineum/contact-relay/internal/email"
	"github.com/shineum/contact-relay/internal/provider"
)

func TestSend_BasicEmail(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	msg := &email.Email{
		From:     "noreply@example.com",
		To:       []string{"alice@example.com", "bob@example.com"},
		Subject:  "New Contact Form Message",
		HTMLBody: "<p>Hello</p>",
		ReplyTo:  "visitor@example.org",
	}

	receipt, err := p.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uuid.Parse(receipt.ID); err != nil {
		t.Errorf("receipt ID %q is not a UUID: %v", receipt.ID, err)
	}

	output := buf.String()

	for _, want := range []string{
		"ID: " + receipt.ID,
		"From: noreply@example.com",
		"To: alice@example.com, bob@example.com",
		"Reply-To: visitor@example.org",
		"Subject: New Contact Form Message",
		"<p>Hello</p>",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.HasPrefix(output, separator) {
		t.Error("output should start with separator line")
	}
	if !strings.HasSuffix(output, separator) {
		t.Error("output should end with separator line")
	}
}

func TestSend_NoReplyTo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)

	_, err := p.Send(context.Background(), &email.Email{To: []string{"a@example.com"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), "Reply-To:") {
		t.Error("output should not contain Reply-To line when unset")
	}
}

func TestSend_DistinctIDs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewWithWriter(&buf)
	msg := &email.Email{To: []string{"a@example.com"}}

	first, _ := p.Send(context.Background(), msg)
	second, _ := p.Send(context.Background(), msg)
	if first.ID == second.ID {
		t.Errorf("expected distinct IDs, both were %q", first.ID)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestSend_WriteError(t *testing.T) {
	t.Parallel()

	p := NewWithWriter(failingWriter{})
	_, err := p.Send(context.Background(), &email.Email{})

	var de *provider.DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *provider.DeliveryError, got %v", err)
	}
	if de.Provider != "stdout" {
		t.Errorf("Provider: got %q, want %q", de.Provider, "stdout")
	}
}

func TestName(t *testing.T) {
	t.Parallel()
	if got := New().Name(); got != "stdout" {
		t.Errorf("Name(): got %q, want %q", got, "stdout")
	}
}
