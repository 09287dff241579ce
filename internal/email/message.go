// Package email defines the outbound email model handed to delivery providers.
package email

// Email is a single outbound message. It is built once per accepted
// submission and discarded after the provider returns.
type Email struct {
	From     string
	To       []string
	Subject  string
	HTMLBody string

	// ReplyTo is the submitter's address. It has already passed the
	// address shape check when an Email is constructed.
	ReplyTo string
}
