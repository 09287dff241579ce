// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"
	"fmt"
	"reflect"

	"github.com/shineum/contact-relay/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// Each provider hands an outbound message to the target service (Resend,
// SES, Microsoft Graph, an SMTP relay or stdout) exactly once.
type Provider interface {
	// Send delivers an email message through this provider and returns the
	// identifier the service assigned to it. Failures are *DeliveryError.
	Send(ctx context.Context, msg *email.Email) (Receipt, error)

	// Name returns the human-readable name of this provider.
	Name() string
}

// Receipt is the normalized result of a successful send.
type Receipt struct {
	ID string
}

// DeliveryError wraps any failure reported by a delivery backend.
type DeliveryError struct {
	Provider string
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Type returns the Go type name of the underlying cause.
func (e *DeliveryError) Type() string {
	if e.Err == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", e.Err)
}

// Fail wraps err as a *DeliveryError for the named provider.
// A nil err yields nil.
func Fail(name string, err error) error {
	if err == nil {
		return nil
	}
	return &DeliveryError{Provider: name, Err: err}
}

// NormalizeID extracts a message identifier from whatever a provider SDK
// returned. Strings and string pointers are used as-is, maps are searched
// for an id key, and anything else is stringified.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case *string:
		if id == nil {
			return ""
		}
		return *id
	case map[string]any:
		for _, key := range []string{"id", "Id", "ID"} {
			if val, ok := id[key]; ok {
				return NormalizeID(val)
			}
		}
		return fmt.Sprint(id)
	case map[string]string:
		for _, key := range []string{"id", "Id", "ID"} {
			if val, ok := id[key]; ok {
				return val
			}
		}
		return fmt.Sprint(id)
	case fmt.Stringer:
		if rv := reflect.ValueOf(id); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return ""
		}
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}
