// Package contact turns an untrusted contact-form submission into an
// outbound email.
package contact

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Validation messages returned to clients verbatim.
const (
	MsgMissingMessage = "Missing required field: message"
	MsgMissingReplyTo = "Missing required field: reply_to"
	MsgInvalidReplyTo = "Invalid reply_to email format"
)

// ValidationError reports a missing or malformed submission field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Submission is the decoded request body of the send endpoint.
type Submission struct {
	Message string
	ReplyTo string
}

// Decode reads a JSON object from r and validates it. Fields are checked in
// order (message, reply_to presence, reply_to shape) and the first failure
// is returned as a *ValidationError. An empty or unparseable body counts as
// a missing message. Non-string field values count as missing.
func Decode(r io.Reader) (*Submission, error) {
	var raw map[string]any
	if r == nil {
		return nil, &ValidationError{Field: "message", Message: MsgMissingMessage}
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &ValidationError{Field: "message", Message: MsgMissingMessage}
	}

	sub := &Submission{
		Message: stringField(raw, "message"),
		ReplyTo: stringField(raw, "reply_to"),
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Validate checks required fields and the reply_to address shape.
func (s *Submission) Validate() error {
	if s.Message == "" {
		return &ValidationError{Field: "message", Message: MsgMissingMessage}
	}
	if s.ReplyTo == "" {
		return &ValidationError{Field: "reply_to", Message: MsgMissingReplyTo}
	}
	if !ValidReplyTo(s.ReplyTo) {
		return &ValidationError{Field: "reply_to", Message: MsgInvalidReplyTo}
	}
	return nil
}

// ValidReplyTo is a cheap syntactic guard, not an RFC validator: the address
// must contain '@' and the part after the first '@' must contain '.'.
func ValidReplyTo(addr string) bool {
	_, domain, ok := strings.Cut(addr, "@")
	return ok && strings.Contains(domain, ".")
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
